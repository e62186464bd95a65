package manifest

import (
	"fmt"
	"strings"

	"github.com/hok-pm/hok/cmn"
	"github.com/hok-pm/hok/hash"
)

// HashString is a validated, normalized entry of a manifest's hash field:
// the algorithm defaults to sha256 when the "algo:" prefix is absent, and
// the hex value is lowercased (spec.md §3, §4.1; grounded on the Hasher
// facade's own Algo type so the grammar and the consumer agree on
// vocabulary).
type HashString struct {
	Algo  hash.Algo
	Value string
}

func (h *HashString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !cmn.RegexHash.MatchString(s) {
		return &cmn.ErrInvalidHashString{Raw: s}
	}
	algo, value, _ := strings.Cut(s, ":")
	if value == "" {
		// no "algo:" prefix: the whole string is the value, default sha256
		value = algo
		algo = string(hash.SHA256)
	}
	h.Algo = hash.Algo(strings.ToLower(algo))
	h.Value = strings.ToLower(value)
	return nil
}

func (h HashString) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h HashString) String() string {
	return fmt.Sprintf("%s:%s", h.Algo, h.Value)
}
