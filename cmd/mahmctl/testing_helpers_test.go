package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshuapare/mahmkit/internal/config"
	"github.com/joshuapare/mahmkit/internal/logging"
)

// useReplay writes img to a temporary capture file and points the global
// config at it. Flags are reset to their defaults.
func useReplay(t *testing.T, img []byte) string {
	t.Helper()
	resetFlags()
	path := filepath.Join(t.TempDir(), "capture.bin")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}
	cfg = config.Default()
	cfg.Segment.Replay = path
	return path
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	configPath = ""
	segmentName = ""
	segmentDir = ""
	encoding = ""
	replayPath = ""
	outFormat = "text"
	verbose = false
	quiet = false
	entriesGPU = -1
	entriesName = ""
	entriesFlags = nil
	watchInterval = time.Millisecond
	watchCount = 1
	cfg = config.Default()
	logger = logging.Discard()
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		defer close(done)
		_, _ = buf.ReadFrom(r)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
