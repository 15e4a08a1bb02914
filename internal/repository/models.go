package repository

import "io"

// StoredFile is the authoritative record of one uploaded object. DownloadRef
// is time-limited and re-derived on every listing and upload, never cached
// across them.
type StoredFile struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadRef string `json:"download_ref"`
	UploadedBy  string `json:"uploaded_by"`
	UploadedAt  string `json:"uploaded_at"`
}

// Identity is the acting principal for an upload, passed explicitly rather
// than read from ambient state.
type Identity struct {
	Nickname string
}

// Upload is one file payload within a batch.
type Upload struct {
	Name    string
	Content io.Reader
	Size    int64
}

// Progress is one per-job progress event.
type Progress struct {
	JobID       string `json:"job_id"`
	FileName    string `json:"file_name"`
	Transferred int64  `json:"transferred"`
	Total       int64  `json:"total"`
}

// UploadResult is the terminal outcome of one job. A failed job produces no
// StoredFile.
type UploadResult struct {
	JobID    string
	FileName string
	File     StoredFile
	Err      error
}
