package manifest

import "strings"

// Sourceforge is the checkver shorthand for sourceforge.net projects: a bare
// string "project/path" or "path" normalizes to {project?, path}
// (original_source's package/manifest.rs Deserialize impl for Sourceforge;
// spec.md §3 carries checkver/autoupdate through, this adds the precise
// parse rule per SPEC_FULL.md §6 item 3).
type Sourceforge struct {
	Project string `json:"project,omitempty"`
	Path    string `json:"path"`
}

func (s *Sourceforge) UnmarshalJSON(data []byte) error {
	trimmed := trimmedJSON(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if project, path, ok := strings.Cut(raw, "/"); ok {
			s.Project = project
			s.Path = path
		} else {
			s.Project = ""
			s.Path = raw
		}
		return nil
	}
	var obj struct {
		Project string `json:"project"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Project = obj.Project
	s.Path = obj.Path
	return nil
}
