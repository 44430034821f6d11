package types

import (
	"path"
	"strings"
	"time"
)

type MediaKind string

const (
	MediaKindPhoto   MediaKind = "photo"
	MediaKindVideo   MediaKind = "video"
	MediaKindDrawing MediaKind = "drawing"
)

// MediaKindFromMIME classifies an upload by its content type.
func MediaKindFromMIME(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaKindPhoto
	case strings.HasPrefix(mimeType, "video/"):
		return MediaKindVideo
	default:
		return MediaKindDrawing
	}
}

// Media is an uploaded file. SnagID is nil until the media is attached.
type Media struct {
	ID        string    `db:"id" json:"id"`
	AuditID   string    `db:"audit_id" json:"audit_id"`
	SnagID    *string   `db:"snag_id" json:"snag_id"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	MediaType MediaKind `db:"media_type" json:"media_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	URL string `db:"-" json:"url"`
}

const MediaURLPrefix = "/uploads/media/"

// WithURL fills in the retrieval URL derived from the stored file name.
func (m Media) WithURL() Media {
	m.URL = MediaURLPrefix + path.Base(strings.ReplaceAll(m.FilePath, "\\", "/"))
	return m
}

// MediaMatch is a suggested link between a photo and a snag. Suggestions
// are never stored; callers apply them through attach.
type MediaMatch struct {
	MediaID string `json:"media_id"`
	SnagID  string `json:"snag_id"`
}
