package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docinsight-backend/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	payload := []byte("%PDF-1.4\n% archived upload body")

	obj, err := store.Put(ctx, "user-1", "Q3 Report.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.Size != int64(len(payload)) {
		t.Fatalf("unexpected size %d", obj.Size)
	}
	if obj.MimeType != "application/pdf" {
		t.Fatalf("unexpected mime type %q", obj.MimeType)
	}
	if !strings.HasSuffix(obj.Key, "_Q3 Report.pdf") || strings.Contains(obj.Key, "user-1") {
		t.Fatalf("unexpected key %q", obj.Key)
	}

	rc, err := store.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}

	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, obj.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "u", "../escape.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
	if _, err := store.Open(ctx, "../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
	if err := store.Delete(ctx, "/abs/path"); err == nil {
		t.Fatalf("expected absolute key to be rejected")
	}
}
