package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/models"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestLog_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	log.Event("=== Curo daemon started ===")
	log.Result(models.ExecutionResult{
		Status: models.StatusDone,
		Kind:   models.ActionClearCache,
		Detail: "dropped filesystem caches",
	})
	log.Unavailable(errors.New("connection refused"))
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), strings.Join(lines, "\n"))
	}

	for i, line := range lines {
		ts, _, ok := strings.Cut(line, " :: ")
		if !ok {
			t.Fatalf("line %d %q missing \" :: \" separator", i, line)
		}
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			t.Errorf("line %d timestamp %q not RFC 3339: %v", i, ts, err)
		}
	}

	if !strings.HasSuffix(lines[0], ":: === Curo daemon started ===") {
		t.Errorf("line 0 = %q, want start marker", lines[0])
	}
	if !strings.HasSuffix(lines[1], ":: Executed: [DONE] dropped filesystem caches") {
		t.Errorf("line 1 = %q, want bracketed result", lines[1])
	}
	if !strings.HasSuffix(lines[2], ":: Decision unavailable: connection refused") {
		t.Errorf("line 2 = %q, want unavailability entry", lines[2])
	}
}

func TestLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	first, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	first.Event("first run")
	first.Close()

	second, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	second.Event("second run")
	second.Close()

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines after reopen, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "first run") || !strings.Contains(lines[1], "second run") {
		t.Errorf("entries lost across reopen:\n%s", strings.Join(lines, "\n"))
	}
}

func TestLog_SnapshotRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	log.Snapshot(models.MetricsSnapshot{
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CPUPercent:   91.5,
		ProcessCount: 200,
	})
	log.Close()

	lines := readLines(t, path)
	_, msg, _ := strings.Cut(lines[0], " :: ")
	payload, ok := strings.CutPrefix(msg, "Metrics: ")
	if !ok {
		t.Fatalf("message %q missing Metrics prefix", msg)
	}

	var snapshot models.MetricsSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		t.Fatalf("snapshot line is not valid JSON: %v", err)
	}
	if snapshot.CPUPercent != 91.5 || snapshot.ProcessCount != 200 {
		t.Errorf("snapshot = %+v, want cpu 91.5 processes 200", snapshot)
	}
}

func TestLog_WriteAfterCloseIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	log.Event("kept")
	log.Close()
	log.Event("dropped")

	lines := readLines(t, path)
	if len(lines) != 1 || !strings.Contains(lines[0], "kept") {
		t.Errorf("log after close = %v, want single kept entry", lines)
	}
}
