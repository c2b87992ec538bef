//go:build !linux

package autostart

import "errors"

// errUnsupported is returned for every management request off Linux.
var errUnsupported = errors.New("service installation requires Linux")

// stubManager implements Manager on platforms without a supported init
// system. The binary still runs in the foreground there for development.
type stubManager struct{}

// New returns a Manager that refuses installation.
func New() Manager {
	return &stubManager{}
}

func (s *stubManager) ServiceName() string { return "curod" }

func (s *stubManager) IsInstalled() (bool, error) { return false, nil }

func (s *stubManager) Install(string) error { return errUnsupported }

func (s *stubManager) Uninstall() error { return errUnsupported }
