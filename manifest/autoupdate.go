package manifest

// Autoupdate, AutoupdateArchitecture, AutoupdateArchSpec and HashExtraction
// are carried-through fields (spec.md §3): the core parses them into typed
// structures but does not act on them itself (the autoupdate rewrite
// operation is out of this core's scope).
type Autoupdate struct {
	Architecture *AutoupdateArchitecture    `json:"architecture,omitempty"`
	ExtractDir   Vectorized[string]         `json:"extract_dir,omitempty"`
	Hash         Vectorized[HashExtraction] `json:"hash,omitempty"`
	Notes        Vectorized[string]         `json:"notes,omitempty"`
	URL          Vectorized[string]         `json:"url,omitempty"`
}

type AutoupdateArchitecture struct {
	IA32   *AutoupdateArchSpec `json:"32bit,omitempty"`
	AMD64  *AutoupdateArchSpec `json:"64bit,omitempty"`
	AARCH64 *AutoupdateArchSpec `json:"arm64,omitempty"`
}

type AutoupdateArchSpec struct {
	ExtractDir Vectorized[string]         `json:"extract_dir,omitempty"`
	Hash       Vectorized[HashExtraction] `json:"hash,omitempty"`
	URL        Vectorized[string]         `json:"url,omitempty"`
}

type HashExtraction struct {
	Find     string `json:"find,omitempty"`
	Regex    string `json:"regex,omitempty"`
	JSONPath string `json:"jsonpath,omitempty"`
	XPath    string `json:"xpath,omitempty"`
	Mode     string `json:"mode,omitempty"`
	URL      string `json:"url,omitempty"`
}

func (h *HashExtraction) UnmarshalJSON(data []byte) error {
	var obj struct {
		Find     string `json:"find"`
		Regex    string `json:"regex"`
		JSONPath string `json:"jsonpath"`
		JP       string `json:"jp"`
		XPath    string `json:"xpath"`
		Mode     string `json:"mode"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	h.Find = obj.Find
	h.Regex = obj.Regex
	h.JSONPath = obj.JSONPath
	if h.JSONPath == "" {
		h.JSONPath = obj.JP
	}
	h.XPath = obj.XPath
	h.Mode = obj.Mode
	h.URL = obj.URL
	return nil
}
