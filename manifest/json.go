package manifest

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

// json is shared by every custom (Un)MarshalJSON in this package, the same
// jsoniter configuration cmn/jsp wraps for file-level load/save.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// trimmedJSON strips leading/trailing whitespace so a custom UnmarshalJSON
// can sniff the first significant byte to pick string vs. object vs. array.
func trimmedJSON(data []byte) []byte { return bytes.TrimSpace(data) }
