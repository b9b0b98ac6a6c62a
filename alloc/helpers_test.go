package alloc

import (
	"bufio"
	"bytes"
	"log/slog"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

// logRecorder captures allocator diagnostics as decoded JSON records.
type logRecorder struct {
	buf bytes.Buffer
}

func newLogRecorder() (*logRecorder, *slog.Logger) {
	r := &logRecorder{}
	return r, slog.New(slog.NewJSONHandler(&r.buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (r *logRecorder) records(t testing.TB) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(r.buf.Bytes()))
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, jsoniter.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

// count returns how many records carry msg.
func (r *logRecorder) count(t testing.TB, msg string) int {
	t.Helper()
	n := 0
	for _, rec := range r.records(t) {
		if rec["msg"] == msg {
			n++
		}
	}
	return n
}

// last returns the most recent record carrying msg.
func (r *logRecorder) last(t testing.TB, msg string) map[string]any {
	t.Helper()
	recs := r.records(t)
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i]["msg"] == msg {
			return recs[i]
		}
	}
	t.Fatalf("no %q record in log", msg)
	return nil
}

func testOptions(t testing.TB) (*Options, *logRecorder) {
	t.Helper()
	rec, log := newLogRecorder()
	return &Options{Logger: log, Name: t.Name()}, rec
}
