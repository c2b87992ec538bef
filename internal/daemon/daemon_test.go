package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/audit"
	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/decision"
	"github.com/curo-sh/curo/internal/models"
)

type stubSampler struct {
	snapshot models.MetricsSnapshot
	degraded []string
}

func (s *stubSampler) Sample(context.Context) (models.MetricsSnapshot, []string) {
	return s.snapshot, s.degraded
}

type stubDecider struct {
	dec   models.Decision
	err   error
	calls int
}

func (s *stubDecider) Name() string { return "stub" }

func (s *stubDecider) Decide(context.Context, models.MetricsSnapshot) (models.Decision, error) {
	s.calls++
	return s.dec, s.err
}

// recordingExecutor returns canned statuses per kind (done by default) and
// records the execution order.
type recordingExecutor struct {
	statuses map[string]models.Status
	executed []string
}

func (r *recordingExecutor) Execute(req models.ActionRequest) models.ExecutionResult {
	r.executed = append(r.executed, req.Kind)
	status := models.StatusDone
	if s, ok := r.statuses[req.Kind]; ok {
		status = s
	}
	return models.ExecutionResult{
		Status: status,
		Kind:   req.Kind,
		Detail: "stub " + req.Kind,
	}
}

func decisionOf(kinds ...string) models.Decision {
	actions := make([]models.ActionRequest, len(kinds))
	for i, k := range kinds {
		actions[i] = models.ActionRequest{Kind: k}
	}
	raw, _ := json.Marshal(map[string][]models.ActionRequest{"actions": actions})
	return models.Decision{Actions: actions, Raw: raw}
}

func openAudit(t *testing.T) (*audit.Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	log, err := audit.Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return log, path
}

func auditContent(t *testing.T, log *audit.Log, path string) string {
	t.Helper()
	log.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCycle_ExecutesDecidedActionsInOrder(t *testing.T) {
	auditLog, path := openAudit(t)
	decider := &stubDecider{dec: decisionOf(models.ActionClearCache, models.ActionCleanupTmp)}
	exec := &recordingExecutor{}

	d := New(&stubSampler{}, decider, exec, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())

	want := []string{models.ActionClearCache, models.ActionCleanupTmp}
	if diff := cmp.Diff(want, exec.executed); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}

	content := auditContent(t, auditLog, path)
	for _, marker := range []string{"Metrics: ", "Decision: ", "Executed: [DONE] stub clear_cache", "Executed: [DONE] stub cleanup_tmp"} {
		if !strings.Contains(content, marker) {
			t.Errorf("audit log missing %q:\n%s", marker, content)
		}
	}
}

func TestCycle_DecisionUnavailableSkipsExecution(t *testing.T) {
	auditLog, path := openAudit(t)
	decider := &stubDecider{err: fmt.Errorf("%w: connection refused", decision.ErrDecisionUnavailable)}
	exec := &recordingExecutor{}

	d := New(&stubSampler{}, decider, exec, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())

	if len(exec.executed) != 0 {
		t.Errorf("executed = %v, want nothing on unavailable decision", exec.executed)
	}

	content := auditContent(t, auditLog, path)
	if !strings.Contains(content, "Decision unavailable: ") {
		t.Errorf("audit log missing unavailability entry:\n%s", content)
	}
	if strings.Contains(content, "Decision: ") {
		t.Errorf("audit log must not show a decision for a failed cycle:\n%s", content)
	}
	if strings.Contains(content, "Executed: ") {
		t.Errorf("audit log shows execution despite failed decision:\n%s", content)
	}
}

func TestCycle_ActionFailureDoesNotBlockRest(t *testing.T) {
	auditLog, path := openAudit(t)
	decider := &stubDecider{dec: decisionOf(models.ActionClearCache, models.ActionArchiveLogs)}
	exec := &recordingExecutor{statuses: map[string]models.Status{
		models.ActionClearCache: models.StatusError,
	}}

	d := New(&stubSampler{}, decider, exec, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())

	want := []string{models.ActionClearCache, models.ActionArchiveLogs}
	if diff := cmp.Diff(want, exec.executed); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}

	content := auditContent(t, auditLog, path)
	errIdx := strings.Index(content, "Executed: [ERROR] stub clear_cache")
	doneIdx := strings.Index(content, "Executed: [DONE] stub archive_old_logs")
	if errIdx == -1 || doneIdx == -1 || errIdx > doneIdx {
		t.Errorf("results missing or out of order:\n%s", content)
	}
}

func TestCycle_DegradedSampleStillDecides(t *testing.T) {
	auditLog, path := openAudit(t)
	sampler := &stubSampler{
		snapshot: models.MetricsSnapshot{ProcessCount: 50},
		degraded: []string{"cpu", "disk"},
	}
	decider := &stubDecider{dec: decisionOf(models.ActionNoop)}

	d := New(sampler, decider, &recordingExecutor{}, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())

	if decider.calls != 1 {
		t.Errorf("decider calls = %d, want 1 despite degraded sample", decider.calls)
	}
	if !strings.Contains(auditContent(t, auditLog, path), "Metrics: ") {
		t.Error("degraded snapshot was not recorded")
	}
}

func TestCycle_TallyCountsPerKind(t *testing.T) {
	auditLog, _ := openAudit(t)
	defer auditLog.Close()
	decider := &stubDecider{dec: decisionOf(models.ActionCleanupTmp, models.ActionCleanupTmp, models.ActionNoop)}

	d := New(&stubSampler{}, decider, &recordingExecutor{}, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())
	d.runCycle(context.Background())

	want := map[string]int{models.ActionCleanupTmp: 4, models.ActionNoop: 2}
	if diff := cmp.Diff(want, d.Tally()); diff != "" {
		t.Errorf("tally mismatch (-want +got):\n%s", diff)
	}
}

func TestCycle_CancelledContextLeavesActionsUnstarted(t *testing.T) {
	auditLog, _ := openAudit(t)
	defer auditLog.Close()
	decider := &stubDecider{dec: decisionOf(models.ActionClearCache, models.ActionCleanupTmp)}
	exec := &recordingExecutor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(&stubSampler{}, decider, exec, auditLog, time.Minute, zap.NewNop())
	d.runCycle(ctx)

	if len(exec.executed) != 0 {
		t.Errorf("executed = %v, want none after cancellation", exec.executed)
	}
}

func TestRun_StopsOnCancelAndWritesMarkers(t *testing.T) {
	auditLog, path := openAudit(t)
	decider := &stubDecider{dec: decisionOf(models.ActionNoop)}

	d := New(&stubSampler{}, decider, &recordingExecutor{}, auditLog, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	content := auditContent(t, auditLog, path)
	if !strings.Contains(content, "=== Curo daemon started ===") {
		t.Error("audit log missing start marker")
	}
	if !strings.Contains(content, "=== Curo daemon stopped ===") {
		t.Error("audit log missing stop marker")
	}
	// Immediate first cycle plus at least one tick.
	if got := strings.Count(content, "Metrics: "); got < 2 {
		t.Errorf("got %d cycles, want at least 2", got)
	}
}

func TestRun_EndToEndWithLocalEngine(t *testing.T) {
	auditLog, path := openAudit(t)
	engine := decision.NewEngine(config.ThresholdConfig{CPUPercent: 80, MemoryPercent: 85, DiskPercent: 90})
	sampler := &stubSampler{snapshot: models.MetricsSnapshot{
		CPUPercent: 95,
		Memory:     models.MemoryStats{Percent: 50},
		Disk:       models.DiskStats{Percent: 50},
	}}
	exec := &recordingExecutor{}

	d := New(sampler, engine, exec, auditLog, time.Minute, zap.NewNop())
	d.runCycle(context.Background())

	if diff := cmp.Diff([]string{models.ActionClearCache}, exec.executed); diff != "" {
		t.Errorf("executed mismatch (-want +got):\n%s", diff)
	}

	content := auditContent(t, auditLog, path)
	if !strings.Contains(content, `"type":"clear_cache"`) {
		t.Errorf("audit decision entry missing the triggered action:\n%s", content)
	}
}
