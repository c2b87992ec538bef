package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/models"
)

// recordingOps returns a full allow-list of stub operations that append
// their kind to calls instead of touching the host.
func recordingOps(calls *[]string) map[string]Operation {
	ops := make(map[string]Operation)
	for _, kind := range models.ActionKinds() {
		kind := kind
		ops[kind] = func(context.Context, models.ActionRequest) (string, error) {
			*calls = append(*calls, kind)
			return "recorded " + kind, nil
		}
	}
	return ops
}

func TestExecute_RejectsUnknownKind(t *testing.T) {
	var calls []string
	e := NewWithOperations(config.ActionConfig{}, recordingOps(&calls), zap.NewNop())

	res := e.Execute(models.ActionRequest{Kind: "format_disk"})

	if res.Status != models.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
	if res.Kind != "format_disk" {
		t.Errorf("Kind = %q, want the rejected kind", res.Kind)
	}
	if !strings.Contains(res.Detail, "allow-list") {
		t.Errorf("Detail = %q, want allow-list rejection", res.Detail)
	}
	if len(calls) != 0 {
		t.Errorf("operations ran for unknown kind: %v", calls)
	}
}

func TestExecute_SkipsDisabledKind(t *testing.T) {
	var calls []string
	cfg := config.ActionConfig{Enabled: map[string]bool{models.ActionClearCache: false}}
	e := NewWithOperations(cfg, recordingOps(&calls), zap.NewNop())

	res := e.Execute(models.ActionRequest{Kind: models.ActionClearCache})

	if res.Status != models.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
	if !strings.Contains(res.Detail, "disabled") {
		t.Errorf("Detail = %q, want disabled reason", res.Detail)
	}
	if len(calls) != 0 {
		t.Errorf("operations ran for disabled kind: %v", calls)
	}
}

func TestExecute_RunsMappedOperation(t *testing.T) {
	var calls []string
	e := NewWithOperations(config.ActionConfig{}, recordingOps(&calls), zap.NewNop())

	res := e.Execute(models.ActionRequest{Kind: models.ActionNoop})

	if res.Status != models.StatusDone {
		t.Errorf("Status = %q, want done", res.Status)
	}
	if res.Detail != "recorded noop" {
		t.Errorf("Detail = %q, want operation detail", res.Detail)
	}
	if len(calls) != 1 || calls[0] != models.ActionNoop {
		t.Errorf("calls = %v, want single noop", calls)
	}
}

func TestExecute_OperationFailureIsErrorStatus(t *testing.T) {
	ops := map[string]Operation{
		models.ActionClearCache: func(context.Context, models.ActionRequest) (string, error) {
			return "", errors.New("permission denied")
		},
	}
	e := NewWithOperations(config.ActionConfig{}, ops, zap.NewNop())

	res := e.Execute(models.ActionRequest{Kind: models.ActionClearCache})

	if res.Status != models.StatusError {
		t.Errorf("Status = %q, want error", res.Status)
	}
	if !strings.Contains(res.Detail, "permission denied") {
		t.Errorf("Detail = %q, want underlying cause", res.Detail)
	}
}

func TestExecute_OperationSkipIsSkippedStatus(t *testing.T) {
	ops := map[string]Operation{
		models.ActionKillHighCPU: func(context.Context, models.ActionRequest) (string, error) {
			return "", skipf("process %d is not running", 99999)
		},
	}
	e := NewWithOperations(config.ActionConfig{}, ops, zap.NewNop())

	res := e.Execute(models.ActionRequest{Kind: models.ActionKillHighCPU})

	if res.Status != models.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
	if !strings.Contains(res.Detail, "not running") {
		t.Errorf("Detail = %q, want skip reason", res.Detail)
	}
}

func TestExecute_EveryKnownKindIsMapped(t *testing.T) {
	e := New(config.ActionConfig{TmpDir: t.TempDir(), LogDir: t.TempDir()}, zap.NewNop())

	for _, kind := range models.ActionKinds() {
		if _, ok := e.ops[kind]; !ok {
			t.Errorf("kind %q has no operation in the standard table", kind)
		}
	}
	if len(e.ops) != len(models.ActionKinds()) {
		t.Errorf("operation table has %d entries, want %d", len(e.ops), len(models.ActionKinds()))
	}
}

func TestExecute_ResultStringBracketForm(t *testing.T) {
	tests := []struct {
		result models.ExecutionResult
		want   string
	}{
		{models.ExecutionResult{Status: models.StatusDone, Detail: "no action required"}, "[DONE] no action required"},
		{models.ExecutionResult{Status: models.StatusSkipped, Detail: "disabled"}, "[SKIPPED] disabled"},
		{models.ExecutionResult{Status: models.StatusError, Detail: "boom"}, "[ERROR] boom"},
	}
	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
