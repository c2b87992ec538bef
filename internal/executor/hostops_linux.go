//go:build linux

// Linux-only host operations: kernel cache drop and network restart.
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/curo-sh/curo/internal/models"
)

// dropCachesPath is the kernel interface for releasing page, dentry, and
// inode caches.
const dropCachesPath = "/proc/sys/vm/drop_caches"

// opClearCache flushes dirty pages to disk and asks the kernel to drop its
// caches. Requires root. The write goes straight to procfs; no shell is
// involved.
func opClearCache(_ context.Context, _ models.ActionRequest) (string, error) {
	unix.Sync()
	if err := os.WriteFile(dropCachesPath, []byte("3"), 0200); err != nil {
		return "", fmt.Errorf("dropping caches: %w", err)
	}
	return "dropped filesystem caches", nil
}

// opRestartNetwork restarts NetworkManager through systemctl. The argument
// vector is fixed at compile time; nothing from the request reaches the
// command.
func opRestartNetwork(ctx context.Context, _ models.ActionRequest) (string, error) {
	args := []string{"systemctl", "restart", "NetworkManager"}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return "", fmt.Errorf("%s: %w (%s)", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return "restarted NetworkManager", nil
}
