package model

import (
	"strconv"
	"time"
)

// MaxFileSize is the largest accepted decoded payload, in bytes.
const MaxFileSize int64 = 10 * 1024 * 1024

// DefaultMimeType is stored when the caller does not declare a MIME type.
const DefaultMimeType = "application/octet-stream"

// AllowedMimeTypes lists the MIME types a caller may declare on upload.
var AllowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
	"application/zip": {},
	"video/mp4":       {},
	"video/webm":      {},
	"audio/mpeg":      {},
	"audio/wav":       {},
}

// IsAllowedMimeType reports whether mt is on the upload allow-list.
func IsAllowedMimeType(mt string) bool {
	_, ok := AllowedMimeTypes[mt]
	return ok
}

// FileRecord is the metadata of one stored file.
// This is a pure domain model with no database-specific dependencies or tags.
// Records are immutable once written; the only mutation is deletion.
type FileRecord struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"userId"`
	FileName    string    `json:"fileName"`
	StoragePath string    `json:"storagePath"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoragePath derives the object key for an upload: {owner}/{unixMillis}_{name}.
func StoragePath(ownerID string, at time.Time, fileName string) string {
	return ownerID + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + fileName
}
