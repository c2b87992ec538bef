// Package autostart installs the daemon as an OS-managed service so it
// starts at boot and restarts on failure. Linux uses systemd; the operations
// the daemon performs are Linux host procedures, so other platforms only get
// a refusing stub.
package autostart

// Manager provides platform-specific service installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	ServiceName() string
}
