package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/memkit/internal/logger"
)

// writeTrace writes src to a temporary trace file and returns its path.
func writeTrace(t *testing.T, src []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.trace")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatalf("failed to write trace: %v", err)
	}
	return path
}

// resetGlobals restores every flag variable to its default.
func resetGlobals() {
	verbose, quiet, jsonOut = false, false, false
	logLevel, logDir, providerName = "info", "", ""
	appLog = logger.Discard

	replayStrategy, replayCapacity, replayBlockSize = "freelist", "1m", "64"
	replayBlockCount, replayEncoding = 1024, "auto"

	benchStrategy, benchCapacity, benchBlockSize = "freelist", "1m", "64"
	benchBlockCount, benchOps, benchMaxSize, benchSeed = 1024, 1000, 256, 1
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain while fn runs; a full pipe would block its writes.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}
