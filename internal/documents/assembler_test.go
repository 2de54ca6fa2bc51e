package documents

import (
	"strings"
	"testing"
	"time"

	"docinsight-backend/internal/textnorm"
)

func TestAssembleStampsIDAndTime(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	a := &Assembler{NewID: func() string { return "doc-1" }, Now: func() time.Time { return fixed }}

	doc := a.Assemble(AssembleInput{
		Title:       "Remote Work Policy",
		Summary:     "Employees may work remotely.",
		Category:    "HR",
		Department:  "HR",
		Type:        TypeURL,
		OriginalURL: "https://example.com/policy",
		Content:     "policy text",
		OwnerID:     "user-1",
	})

	if doc.ID != "doc-1" || doc.OwnerID != "user-1" {
		t.Fatalf("unexpected identity %+v", doc)
	}
	if !doc.UploadDate.Equal(fixed) || doc.UploadDate.Location() != time.UTC {
		t.Fatalf("expected UTC upload date, got %v", doc.UploadDate)
	}
	if doc.OriginalURL != "https://example.com/policy" || doc.Type != TypeURL {
		t.Fatalf("unexpected source fields %+v", doc)
	}
	if doc.Title != "Remote Work Policy" || doc.Category != "HR" || doc.Department != "HR" || doc.Summary == "" {
		t.Fatalf("classification not copied: %+v", doc)
	}
}

func TestAssembleCapsContentAndDropsURLForPDF(t *testing.T) {
	a := NewAssembler()
	long := strings.Repeat("a", textnorm.StorageCap+500)
	doc := a.Assemble(AssembleInput{Type: TypePDF, OriginalURL: "ignored", Content: long, OwnerID: "u"})
	if got := len([]rune(doc.Content)); got != textnorm.StorageCap {
		t.Fatalf("expected content capped at %d, got %d", textnorm.StorageCap, got)
	}
	if doc.OriginalURL != "" {
		t.Fatalf("pdf documents carry no original url")
	}
}

func TestAssembleFreshIDs(t *testing.T) {
	a := NewAssembler()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := a.Assemble(AssembleInput{OwnerID: "u"}).ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
