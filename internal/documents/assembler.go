package documents

import (
	"time"

	"github.com/google/uuid"

	"docinsight-backend/internal/textnorm"
)

// AssembleInput gathers everything the pipeline knows about one source.
type AssembleInput struct {
	Title       string
	Summary     string
	Category    string
	Department  string
	Type        string
	OriginalURL string
	Content     string
	OwnerID     string
}

// Assembler builds Document records. It performs no I/O.
type Assembler struct {
	NewID func() string
	Now   func() time.Time
}

// NewAssembler uses random UUIDs and the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{NewID: uuid.NewString, Now: time.Now}
}

// Assemble stamps a fresh id and upload time and caps content for storage.
func (a *Assembler) Assemble(in AssembleInput) Document {
	newID, now := a.NewID, a.Now
	if newID == nil {
		newID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	doc := Document{
		ID:         newID(),
		Title:      in.Title,
		Summary:    in.Summary,
		Category:   in.Category,
		Department: in.Department,
		UploadDate: now().UTC(),
		Type:       in.Type,
		Content:    textnorm.CapStorage(in.Content),
		OwnerID:    in.OwnerID,
	}
	if in.Type != TypePDF {
		doc.OriginalURL = in.OriginalURL
	}
	return doc
}
