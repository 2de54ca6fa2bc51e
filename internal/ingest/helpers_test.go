package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"docinsight-backend/internal/classify"
	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/usage"
)

type fixture struct {
	svc     *Service
	docs    *documents.MemoryRepo
	tracker *usage.Tracker
	pdf     *countingPDF
	web     *countingRemote
	youtube *countingRemote
}

// newFixture builds a fallback-only service over memory stores. Extractors
// are wrapped so tests can assert whether they ran.
func newFixture(t *testing.T, fetcher *extract.Fetcher) *fixture {
	t.Helper()
	if fetcher == nil {
		fetcher = extract.NewFetcher(0)
	}
	pipeline := NewPipeline(fetcher, classify.New(nil, 0, nil), nil)
	f := &fixture{
		docs:    documents.NewMemoryRepo(),
		tracker: usage.NewMemoryTracker(),
		pdf:     &countingPDF{next: pipeline.PDF},
		web:     &countingRemote{next: pipeline.Web},
		youtube: &countingRemote{next: pipeline.YouTube},
	}
	pipeline.PDF, pipeline.Web, pipeline.YouTube = f.pdf, f.web, f.youtube
	f.svc = NewService(pipeline, documents.NewService(f.docs, nil, nil), f.tracker, nil, nil)
	return f
}

func (f *fixture) extractorCalls() int64 {
	return f.pdf.calls.Load() + f.web.calls.Load() + f.youtube.calls.Load()
}

func (f *fixture) storedCount(t *testing.T, owner string) int {
	t.Helper()
	docs, err := f.docs.ListByOwner(context.Background(), owner, documents.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return len(docs)
}

type countingPDF struct {
	next  extract.PDF
	calls atomic.Int64
}

func (c *countingPDF) Extract(ctx context.Context, data []byte, fileName string) (extract.Result, error) {
	c.calls.Add(1)
	return c.next.Extract(ctx, data, fileName)
}

type countingRemote struct {
	next  extract.Remote
	calls atomic.Int64
}

func (c *countingRemote) Extract(ctx context.Context, rawURL string) (extract.Result, error) {
	c.calls.Add(1)
	return c.next.Extract(ctx, rawURL)
}

// minimalPDF writes a one-page PDF with a correct xref table.
func minimalPDF(content, resources string, extra ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources " + resources + " >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	objects = append(objects, extra...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func textPDF(lines ...string) []byte {
	var cs strings.Builder
	cs.WriteString("BT /F1 12 Tf 72 720 Td ")
	for i, line := range lines {
		if i > 0 {
			cs.WriteString("0 -16 Td ")
		}
		fmt.Fprintf(&cs, "(%s) Tj ", line)
	}
	cs.WriteString("ET")
	return minimalPDF(cs.String(), "<< /Font << /F1 5 0 R >> >>")
}

func imageOnlyPDF() []byte {
	image := "<< /Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length 1 >>\nstream\n\x80\nendstream"
	return minimalPDF("q 100 0 0 100 72 600 cm /Im1 Do Q", "<< /XObject << /Im1 6 0 R >> >>", image)
}

func financePDF() []byte {
	return textPDF(
		"Q3 financial budget report discussing revenue and accounting. ",
		"The quarterly budget review covers operating expenses for every regional office.",
	)
}
