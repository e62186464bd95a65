package manifest

// Architecture holds the per-architecture field overrides keyed by the
// three supported triples (spec.md §3).
type Architecture struct {
	IA32    *ArchitectureSpec `json:"32bit,omitempty"`
	AMD64   *ArchitectureSpec `json:"64bit,omitempty"`
	AARCH64 *ArchitectureSpec `json:"arm64,omitempty"`
}

// ArchitectureSpec is the set of fields that may be overridden per
// architecture; any field left nil falls back to the noarch value at the
// top of ManifestSpec.
type ArchitectureSpec struct {
	Bin           Vectorized[Vectorized[string]] `json:"bin,omitempty"`
	Checkver      *Checkver                      `json:"checkver,omitempty"`
	EnvAddPath    Vectorized[string]              `json:"env_add_path,omitempty"`
	EnvSet        map[string]string               `json:"env_set,omitempty"`
	ExtractDir    Vectorized[string]              `json:"extract_dir,omitempty"`
	Hash          Vectorized[HashString]          `json:"hash,omitempty"`
	Installer     *Installer                      `json:"installer,omitempty"`
	PostInstall   Vectorized[string]              `json:"post_install,omitempty"`
	PostUninstall Vectorized[string]              `json:"post_uninstall,omitempty"`
	PreInstall    Vectorized[string]              `json:"pre_install,omitempty"`
	PreUninstall  Vectorized[string]              `json:"pre_uninstall,omitempty"`
	Shortcuts     [][]string                      `json:"shortcuts,omitempty"`
	Uninstaller   *Uninstaller                    `json:"uninstaller,omitempty"`
	URL           Vectorized[string]              `json:"url,omitempty"`
}
