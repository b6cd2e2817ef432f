package api

// ManifestVersion is bumped whenever the JSON shape changes.
const ManifestVersion = "v1"

// Manifest describes a bundle: the namespace tree generated for a pattern and
// the files bound into it.
type Manifest struct {
	// Version of the manifest format.
	Version string `json:"version"`
	// Pattern the files were matched with.
	Pattern string `json:"pattern"`
	// Root namespace, named after the declaration.
	Root Namespace `json:"root"`
}

// Namespace represents one directory level.
type Namespace struct {
	// Name is the raw path segment.
	Name string `json:"name"`
	// Ident is the Go identifier the namespace is reachable under.
	Ident string `json:"ident"`
	// Namespaces are nested directories.
	Namespaces []Namespace `json:"namespaces,omitempty"`
	// Consts are the files directly inside this directory.
	Consts []Const `json:"consts,omitempty"`
}

// Const represents one embedded file.
type Const struct {
	Name      string `json:"name"`
	Ident     string `json:"ident"`
	Path      string `json:"path"`
	Canonical string `json:"canonical"`
}
