package manifest

// Installer and Uninstaller describe the (pre-packaged or custom) install
// and uninstall drivers a manifest may specify. Their actual execution is
// out of this core's scope (spec.md §1); only the parsed fields are
// exposed for the caller that does drive them.
type Installer struct {
	Args   Vectorized[string] `json:"args,omitempty"`
	File   string             `json:"file,omitempty"`
	Keep   bool               `json:"keep,omitempty"`
	Script Vectorized[string] `json:"script,omitempty"`
}

type Uninstaller struct {
	Args   Vectorized[string] `json:"args,omitempty"`
	File   string             `json:"file,omitempty"`
	Script Vectorized[string] `json:"script,omitempty"`
}

// Psmodule names a PowerShell module to import during installation.
type Psmodule struct {
	Name string `json:"name"`
}
