// Package provenance encodes uploader identity and upload time into the
// sidecar key/value metadata stored alongside each object.
package provenance

import (
	"strings"
	"time"
)

const (
	keyUploadedBy = "uploadedBy"
	keyUploadedAt = "uploadedAt"

	// Unknown is the default for absent or unresolved provenance fields.
	Unknown = "Unknown"

	// TimeLayout renders upload times as a display string, matching the
	// en-US locale format the file list shows verbatim.
	TimeLayout = "1/2/2006, 3:04:05 PM"
)

// Record is the provenance attached to one stored object.
type Record struct {
	UploadedBy string
	UploadedAt string
}

// NewRecord builds a record for the acting identity at the given instant.
// An empty nickname falls back to Unknown.
func NewRecord(nickname string, at time.Time) Record {
	if strings.TrimSpace(nickname) == "" {
		nickname = Unknown
	}
	return Record{
		UploadedBy: nickname,
		UploadedAt: at.Format(TimeLayout),
	}
}

// Encode renders the record as the sidecar key/value map.
func (r Record) Encode() map[string]string {
	return map[string]string{
		keyUploadedBy: r.UploadedBy,
		keyUploadedAt: r.UploadedAt,
	}
}

// Decode reads a sidecar map back into a Record. Key matching is
// case-insensitive because S3-style backends canonicalize user metadata
// keys as header names. Absent or blank fields default to Unknown.
func Decode(md map[string]string) Record {
	rec := Record{UploadedBy: Unknown, UploadedAt: Unknown}
	for key, value := range md {
		if strings.TrimSpace(value) == "" {
			continue
		}
		switch {
		case strings.EqualFold(key, keyUploadedBy):
			rec.UploadedBy = value
		case strings.EqualFold(key, keyUploadedAt):
			rec.UploadedAt = value
		}
	}
	return rec
}
