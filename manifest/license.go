package manifest

import (
	"bytes"
	"fmt"
)

// License is either a bare SPDX identifier or an {identifier, url} object
// (spec.md §3). When no url is given and the identifier is a recognized
// SPDX id, Display synthesizes a canonical spdx.org URL (original_source's
// package/manifest.rs impl fmt::Display for License).
type License struct {
	Identifier string `json:"identifier"`
	URL        string `json:"url,omitempty"`
}

func (l *License) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l.Identifier = s
		l.URL = ""
		return nil
	}
	var obj struct {
		Identifier string `json:"identifier"`
		URL        string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.Identifier = obj.Identifier
	l.URL = obj.URL
	return nil
}

// IsSPDX reports whether Identifier is a recognized SPDX license id.
func (l License) IsSPDX() bool {
	_, ok := spdxSet[l.Identifier]
	return ok
}

// Display renders the license the way the original's fmt::Display impl
// does: explicit url when present, else a synthesized spdx.org url for a
// recognized SPDX id, else the bare identifier.
func (l License) Display() string {
	if l.URL != "" {
		return fmt.Sprintf("%s (%s)", l.Identifier, l.URL)
	}
	if l.IsSPDX() {
		return fmt.Sprintf("%s (https://spdx.org/licenses/%s.html)", l.Identifier, l.Identifier)
	}
	return l.Identifier
}

// spdxSet is a representative subset of SPDX license identifiers
// commonly seen in package manifests - not the full SPDX list, which
// numbers in the hundreds and is out of scope for this core.
var spdxSet = map[string]struct{}{
	"MIT":          {},
	"Apache-2.0":   {},
	"BSD-2-Clause": {},
	"BSD-3-Clause": {},
	"GPL-2.0":      {},
	"GPL-3.0":      {},
	"LGPL-2.1":     {},
	"LGPL-3.0":     {},
	"MPL-2.0":      {},
	"ISC":          {},
	"Unlicense":    {},
	"CC0-1.0":      {},
	"Zlib":         {},
	"0BSD":         {},
	"WTFPL":        {},
	"AGPL-3.0":     {},
	"EPL-2.0":      {},
	"BSL-1.0":      {},
}
