// Action vocabulary, decision payloads, and execution results.
package models

import (
	"encoding/json"
	"strings"
)

// Action kinds understood by the executor. The executor refuses anything
// outside this vocabulary regardless of where the decision came from.
const (
	ActionNoop           = "noop"
	ActionClearCache     = "clear_cache"
	ActionCleanupTmp     = "cleanup_tmp"
	ActionArchiveLogs    = "archive_old_logs"
	ActionRestartNetwork = "restart_network"
	ActionKillHighCPU    = "kill_high_cpu"
)

// ActionKinds returns the recognized action vocabulary in a stable order.
func ActionKinds() []string {
	return []string{
		ActionNoop,
		ActionClearCache,
		ActionCleanupTmp,
		ActionArchiveLogs,
		ActionRestartNetwork,
		ActionKillHighCPU,
	}
}

// KnownActionKind reports whether kind belongs to the recognized vocabulary.
func KnownActionKind(kind string) bool {
	for _, k := range ActionKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// ActionRequest is a single recommended action within a decision. Kind may
// fall outside the known vocabulary when a remote decision service suggests
// something unsupported; such requests are carried through unchanged so the
// executor can reject them on the record.
type ActionRequest struct {
	Kind    string                 `json:"type"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Decision is an ordered list of recommended actions plus the raw payload it
// was parsed from. Raw is what the audit log records, so local and remote
// decisions leave identical traces.
type Decision struct {
	Actions []ActionRequest
	Raw     json.RawMessage
}

// Status classifies the outcome of one action execution.
type Status string

const (
	// StatusDone means the operation ran and succeeded.
	StatusDone Status = "done"
	// StatusSkipped means the action was refused before anything ran:
	// unknown kind, disabled by configuration, or invalid parameters.
	StatusSkipped Status = "skipped"
	// StatusError means the operation ran and failed at the OS level.
	StatusError Status = "error"
)

// ExecutionResult is the outcome of attempting one ActionRequest. The
// executor produces exactly one per action it is handed.
type ExecutionResult struct {
	Status Status `json:"status"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// String renders the result in the audit log's bracket form, for example
// "[DONE] dropped filesystem caches".
func (r ExecutionResult) String() string {
	return "[" + strings.ToUpper(string(r.Status)) + "] " + r.Detail
}
