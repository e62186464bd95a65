package cmn_test

import (
	"testing"

	"github.com/hok-pm/hok/cmn"
)

func TestCompareVersionsNumeric(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"1.3.0", "1.2.9", 1},
		{"1.2", "1.2.0", 0},
		{"1.2.0", "1.2", 0},
	}
	for _, c := range cases {
		if got := cmn.CompareVersions(c.a, c.b); got != c.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

// TestCompareVersionsAsymmetricQuirk pins the original comparator's
// documented asymmetry around non-numeric trailing segments (§9 open
// question): preserved intentionally, not a bug to fix here.
func TestCompareVersionsAsymmetricQuirk(t *testing.T) {
	if got := cmn.CompareVersions("1.2-rc4", "1.2"); got != -1 {
		t.Errorf("CompareVersions(1.2-rc4, 1.2) = %d, want -1", got)
	}
	if got := cmn.CompareVersions("1.2", "1.2-rc4"); got != 0 {
		t.Errorf("CompareVersions(1.2, 1.2-rc4) = %d, want 0", got)
	}
}

func TestCompareVersionsNumericBeatsText(t *testing.T) {
	if got := cmn.CompareVersions("1.2.0", "1.2-rc4"); got != 1 {
		t.Errorf("CompareVersions(1.2.0, 1.2-rc4) = %d, want 1", got)
	}
}
