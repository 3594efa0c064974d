package models

// Asset is a media file found under the assets root.
type Asset struct {
	Path     string // slash-normalized, relative
	OSPath   string // Path with native separators
	FullPath string // location on disk
	Category string // bucket derived from path substrings
	Size     int64
	Exists   bool
}

// CodeFile holds the text of a markup, stylesheet or script file.
type CodeFile struct {
	Path    string
	Content string
}

// DuplicateGroup lists assets sharing identical content.
type DuplicateGroup struct {
	Fingerprint string
	Paths       []string
}

// ScanResult is the outcome of one reference scan.
type ScanResult struct {
	Assets     []Asset
	CodeFiles  int
	Used       []string
	Unused     []string
	Skipped    []string // code files that could not be read
	Duplicates []DuplicateGroup
}

// AssetCount returns the number of assets considered.
func (r *ScanResult) AssetCount() int {
	return len(r.Assets)
}
