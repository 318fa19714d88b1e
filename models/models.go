package models

// SourceInfo locates a source document. Exactly one field is expected to be set.
type SourceInfo struct {
	Path     string `json:"path,omitempty"`
	URL      string `json:"url,omitempty"`
	ZoteroID string `json:"zotero_id,omitempty"`
}

// ExtractedImage describes one embedded image written to disk
type ExtractedImage struct {
	PageIndex    int    `json:"page_index"` // 0-indexed
	Name         string `json:"name"`       // resource name as embedded in the page
	FileType     string `json:"file_type"`  // jpg, png, tif, ...
	ObjectNumber int    `json:"object_number"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

// PageFile is a single-page document produced by a split
type PageFile struct {
	PageIndex int    `json:"page_index"`
	Path      string `json:"path"`
}

// PageSize is the media box of one page in PDF user space units (1/72 inch)
type PageSize struct {
	PageIndex int     `json:"page_index"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}
