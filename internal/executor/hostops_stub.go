//go:build !linux

// Stubs for the Linux-only host operations. Kernel cache control and
// systemd network restarts have no equivalent here, so these refuse to run
// rather than pretend.
package executor

import (
	"context"

	"github.com/curo-sh/curo/internal/models"
)

func opClearCache(_ context.Context, _ models.ActionRequest) (string, error) {
	return "", skipf("%s requires Linux", models.ActionClearCache)
}

func opRestartNetwork(_ context.Context, _ models.ActionRequest) (string, error) {
	return "", skipf("%s requires Linux", models.ActionRestartNetwork)
}
