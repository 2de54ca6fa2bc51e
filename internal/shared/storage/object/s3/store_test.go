package s3

import (
	"context"
	"testing"
)

func TestObjectKeyPrefixing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: normalizePrefix(""), key: "ab12/f_doc.pdf", want: "ab12/f_doc.pdf"},
		{name: "archive prefix", prefix: normalizePrefix("archive"), key: "ab12/f_doc.pdf", want: "archive/ab12/f_doc.pdf"},
		{name: "padded prefix", prefix: normalizePrefix("  /archive/pdf/ "), key: "/ab12/f_doc.pdf", want: "archive/pdf/ab12/f_doc.pdf"},
		{name: "prefix only", prefix: normalizePrefix("archive"), key: "", want: "archive"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "us-east-1", " ", "", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
