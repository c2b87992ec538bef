// Concrete host operations behind the allow-list. Every entry is a specific,
// pre-approved procedure with its parameters fixed at construction time.
// Nothing here passes request data to a shell.
package executor

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/models"
)

// standardOperations builds the production allow-list. Keys are the only
// action kinds the executor will ever run.
func standardOperations(cfg config.ActionConfig) map[string]Operation {
	return map[string]Operation{
		models.ActionNoop:           opNoop,
		models.ActionClearCache:     opClearCache,
		models.ActionCleanupTmp:     opCleanupDir(cfg.TmpDir),
		models.ActionArchiveLogs:    opArchiveLogs(cfg.LogDir, cfg.LogMaxAge.Duration),
		models.ActionRestartNetwork: opRestartNetwork,
		models.ActionKillHighCPU:    opKillProcess,
	}
}

// opNoop records a healthy tick. It exists so "nothing to do" flows through
// the same execution path as every other action and lands in the audit log.
func opNoop(context.Context, models.ActionRequest) (string, error) {
	return "no action required", nil
}

// opCleanupDir removes every entry directly under dir. The directory itself
// is kept. Failures on individual entries do not stop the sweep; the first
// one is reported after the rest have been attempted.
func opCleanupDir(dir string) Operation {
	return func(_ context.Context, _ models.ActionRequest) (string, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", dir, err)
		}

		removed := 0
		var firstErr error
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			removed++
		}
		if firstErr != nil {
			return "", fmt.Errorf("removed %d entries from %s, first failure: %w", removed, dir, firstErr)
		}
		return fmt.Sprintf("removed %d entries from %s", removed, dir), nil
	}
}

// opArchiveLogs gzip-compresses plain files in dir whose modification time
// is older than maxAge, then removes the originals. Directories and files
// that are already compressed are left alone.
func opArchiveLogs(dir string, maxAge time.Duration) Operation {
	return func(_ context.Context, _ models.ActionRequest) (string, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", dir, err)
		}

		cutoff := time.Now().Add(-maxAge)
		archived := 0
		var firstErr error
		for _, entry := range entries {
			if entry.IsDir() || strings.HasSuffix(entry.Name(), ".gz") {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := gzipFile(filepath.Join(dir, entry.Name())); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			archived++
		}
		if firstErr != nil {
			return "", fmt.Errorf("archived %d files in %s, first failure: %w", archived, dir, firstErr)
		}
		return fmt.Sprintf("archived %d log files in %s", archived, dir), nil
	}
}

// gzipFile compresses path to path.gz and removes the original on success.
// A partial archive is removed rather than left beside the original.
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path + ".gz")
		return err
	}

	return os.Remove(path)
}

// opKillProcess terminates the process named by details.pid. This is the
// only parameterized operation: the pid arrives from outside the trust
// boundary, so it must resolve to a live process before termination is
// attempted. Anything short of that is a skip, not a failure.
func opKillProcess(ctx context.Context, req models.ActionRequest) (string, error) {
	pid, ok := pidFromDetails(req.Details)
	if !ok {
		return "", skipf("no valid pid provided for %s", models.ActionKillHighCPU)
	}

	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", skipf("process %d is not running", pid)
	}

	name, _ := proc.NameWithContext(ctx)
	if err := proc.TerminateWithContext(ctx); err != nil {
		return "", fmt.Errorf("terminating pid %d: %w", pid, err)
	}

	if name == "" {
		return fmt.Sprintf("terminated process %d", pid), nil
	}
	return fmt.Sprintf("terminated process %d (%s)", pid, name), nil
}

// pidFromDetails extracts a pid from the request details. Numbers arrive as
// float64 after JSON decoding; strings are tolerated for services that quote
// their numbers. Zero, negative, fractional, and out-of-range values are all
// rejected.
func pidFromDetails(details map[string]interface{}) (int32, bool) {
	raw, ok := details["pid"]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v <= 0 || v > math.MaxInt32 {
			return 0, false
		}
		return int32(v), true
	case int:
		if v <= 0 || v > math.MaxInt32 {
			return 0, false
		}
		return int32(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return 0, false
		}
		return int32(n), true
	default:
		return 0, false
	}
}
