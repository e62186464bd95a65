package manifest

import encjson "encoding/json"

// githubCheckverRegex is the well-known GitHub-releases tag pattern the
// "github" checkver shorthand expands to (SPEC_FULL.md §6 item 2).
const githubCheckverRegex = `/releases/tag/(?:v|V)?([\d.]+)`

// Checkver describes how to discover a package's latest upstream version.
// Deserialization accepts either a bare string (a regex, or the "github"
// shorthand) or a full object, including the "github" and "re"/"jp" key
// aliases (original_source's package/manifest.rs Checkver deserializer).
type Checkver struct {
	Regex       string              `json:"regex,omitempty"`
	URL         string              `json:"url,omitempty"`
	JSONPath    string              `json:"jsonpath,omitempty"`
	XPath       string              `json:"xpath,omitempty"`
	Reverse     bool                `json:"reverse,omitempty"`
	Replace     string              `json:"replace,omitempty"`
	UserAgent   string              `json:"useragent,omitempty"`
	Script      Vectorized[string]  `json:"script,omitempty"`
	Sourceforge *Sourceforge        `json:"sourceforge,omitempty"`
}

func (c *Checkver) UnmarshalJSON(data []byte) error {
	trimmed := trimmedJSON(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "github" {
			c.Regex = githubCheckverRegex
		} else {
			c.Regex = s
		}
		return nil
	}

	var raw map[string]encjson.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		switch k {
		case "github":
			var prefix string
			if err := json.Unmarshal(v, &prefix); err != nil {
				return err
			}
			c.URL = prefix + "/releases/latest"
			c.Regex = githubCheckverRegex
		case "re", "regex":
			if err := json.Unmarshal(v, &c.Regex); err != nil {
				return err
			}
		case "url":
			if err := json.Unmarshal(v, &c.URL); err != nil {
				return err
			}
		case "jp", "jsonpath":
			if err := json.Unmarshal(v, &c.JSONPath); err != nil {
				return err
			}
		case "xpath":
			if err := json.Unmarshal(v, &c.XPath); err != nil {
				return err
			}
		case "reverse":
			if err := json.Unmarshal(v, &c.Reverse); err != nil {
				return err
			}
		case "replace":
			if err := json.Unmarshal(v, &c.Replace); err != nil {
				return err
			}
		case "useragent":
			if err := json.Unmarshal(v, &c.UserAgent); err != nil {
				return err
			}
		case "script":
			if err := json.Unmarshal(v, &c.Script); err != nil {
				return err
			}
		case "sourceforge":
			var sf Sourceforge
			if err := json.Unmarshal(v, &sf); err != nil {
				return err
			}
			c.Sourceforge = &sf
		}
	}
	return nil
}
