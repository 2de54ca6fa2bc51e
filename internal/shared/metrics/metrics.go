package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ingestStarted   = newCounterVec("source")
	ingestCompleted = newCounterVec("source")
	ingestFailed    = newCounterVec("source", "reason")
	quotaRejected   = newCounterVec("source")
	classifications = newCounterVec("method")

	ingestDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncIngestStarted counts an ingestion attempt that passed the quota check.
func IncIngestStarted(source string) { ingestStarted.Inc(source) }

// IncIngestCompleted counts a stored document.
func IncIngestCompleted(source string) { ingestCompleted.Inc(source) }

// IncIngestFailed counts a failed ingestion by error kind.
func IncIngestFailed(source, reason string) { ingestFailed.Inc(source, reason) }

// IncQuotaRejected counts requests refused by the daily quota.
func IncQuotaRejected(source string) { quotaRejected.Inc(source) }

// IncClassification counts classifier outcomes by method (ai or fallback).
func IncClassification(method string) { classifications.Inc(method) }

// ObserveIngestDuration records an end-to-end ingestion duration.
func ObserveIngestDuration(d time.Duration) {
	value := float64(d) / float64(time.Millisecond)
	if value < 0 {
		value = 0
	}
	ingestDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "ingest_started_total", "Ingestions started", ingestStarted)
	writeCounterVec(&buf, "ingest_completed_total", "Ingestions that stored a document", ingestCompleted)
	writeCounterVec(&buf, "ingest_failed_total", "Ingestions that failed", ingestFailed)
	writeCounterVec(&buf, "quota_rejected_total", "Requests refused by the daily quota", quotaRejected)
	writeCounterVec(&buf, "classification_total", "Classifier results by method", classifications)
	writeHistogram(&buf, "ingest_duration_ms", "Ingestion duration in milliseconds", ingestDuration.Snapshot())
	return buf.String()
}

type counterVec struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
	keys   map[string][]string
}

func newCounterVec(labels ...string) *counterVec {
	return &counterVec{
		labels: labels,
		values: make(map[string]uint64),
		keys:   make(map[string][]string),
	}
}

func (v *counterVec) Inc(labelValues ...string) {
	vals := make([]string, len(v.labels))
	copy(vals, labelValues)
	for i := range vals {
		if vals[i] == "" {
			vals[i] = "unknown"
		}
	}
	key := fmt.Sprint(vals)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key]++
	v.keys[key] = vals
}

type counterSample struct {
	labels []string
	value  uint64
}

func (v *counterVec) Snapshot() []counterSample {
	v.mu.Lock()
	defer v.mu.Unlock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]counterSample, 0, len(keys))
	for _, k := range keys {
		out = append(out, counterSample{labels: v.keys[k], value: v.values[k]})
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, s := range v.Snapshot() {
		fmt.Fprintf(buf, "%s%s %d\n", name, formatLabels(v.labels, s.labels), s.value)
	}
}

func formatLabels(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b bytes.Buffer
	b.WriteByte('{')
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%s", n, strconv.Quote(values[i]))
	}
	b.WriteByte('}')
	return b.String()
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
