package documents

import "time"

// Source types.
const (
	TypePDF     = "pdf"
	TypeURL     = "url"
	TypeYouTube = "youtube"
)

// Document is the canonical record produced by ingestion.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Category    string    `json:"category"`
	Department  string    `json:"department"`
	UploadDate  time.Time `json:"uploadDate"`
	Type        string    `json:"type"`
	OriginalURL string    `json:"originalUrl,omitempty"`
	Content     string    `json:"content"`
	OwnerID     string    `json:"ownerId"`
	// SourceKey is the object-store key of an archived upload.
	SourceKey string `json:"-"`
}

// ListFilter narrows ListByOwner. Empty fields match everything.
type ListFilter struct {
	Category   string
	Department string
	Type       string
	Limit      int
	Offset     int
}
