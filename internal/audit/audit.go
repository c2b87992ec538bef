// Package audit provides the append-only audit log: one timestamped line per
// recorded event. The log is the only state the daemon persists across
// restarts. It is never read back, rotated, or truncated by the daemon;
// retention is an operational concern.
//
// Line format: "<RFC 3339 timestamp> :: <message>".
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/models"
)

// Log appends timestamped entries to the audit file. The cycle loop is the
// only writer; the mutex serializes it against Close on the shutdown path.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	logger *zap.Logger
}

// Open opens the audit log at path for appending, creating it if needed.
// Existing entries are always preserved.
func Open(path string, logger *zap.Logger) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &Log{
		file:   file,
		logger: logger,
	}, nil
}

// Close closes the underlying file. Further writes are discarded and a
// second Close is a no-op.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Event appends a free-form message, such as the start and stop markers.
func (l *Log) Event(message string) {
	l.write(message)
}

// Snapshot appends a captured metrics snapshot as JSON.
func (l *Log) Snapshot(snapshot models.MetricsSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		l.logger.Error("Failed to marshal snapshot for audit", zap.Error(err))
		return
	}
	l.write("Metrics: " + string(data))
}

// Decision appends the raw decision payload exactly as it was produced, so
// the log shows what the daemon acted on rather than a re-rendering of it.
func (l *Log) Decision(raw json.RawMessage) {
	l.write("Decision: " + string(raw))
}

// Unavailable appends a decision failure with its cause. Kept distinct from
// Decision so a dead decision service is never mistaken for a healthy
// "nothing to do".
func (l *Log) Unavailable(err error) {
	l.write("Decision unavailable: " + err.Error())
}

// Result appends one execution outcome in its bracket form.
func (l *Log) Result(result models.ExecutionResult) {
	l.write("Executed: " + result.String())
}

// write appends one formatted line. Failures are logged and swallowed; an
// unwritable audit line must not stop the remediation loop.
func (l *Log) write(message string) {
	line := time.Now().UTC().Format(time.RFC3339) + " :: " + message + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if _, err := l.file.WriteString(line); err != nil {
		l.logger.Error("Failed to append audit entry", zap.Error(err))
	}
}
