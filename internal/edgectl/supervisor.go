package edgectl

import (
	"os"
	"path/filepath"
	"strings"
)

// Supervisor is the process-supervisor surface the lifecycle controller
// needs. The real implementation shells out to systemctl; tests swap in an
// in-memory double.
type Supervisor interface {
	WriteUnit(name string, content []byte) error
	DaemonReload() error
	Enable(unit string) error
	Restart(unit string) error
	IsActive(unit string) (bool, error)
}

// Systemd drives the host's systemd over systemctl.
type Systemd struct {
	UnitDir string

	run     func(name string, args ...string) error
	capture func(name string, args ...string) (string, error)
}

func NewSystemd(unitDir string) *Systemd {
	return &Systemd{
		UnitDir: unitDir,
		run:     runCmdStream,
		capture: runCmdCapture,
	}
}

func (s *Systemd) WriteUnit(name string, content []byte) error {
	if err := ensureDir(s.UnitDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.UnitDir, name), content, 0o644)
}

func (s *Systemd) DaemonReload() error {
	return s.run("systemctl", "daemon-reload")
}

func (s *Systemd) Enable(unit string) error {
	return s.run("systemctl", "enable", unit)
}

func (s *Systemd) Restart(unit string) error {
	return s.run("systemctl", "restart", unit)
}

func (s *Systemd) IsActive(unit string) (bool, error) {
	out, err := s.capture("systemctl", "is-active", unit)
	state := strings.TrimSpace(out)
	if state == "active" {
		return true, nil
	}
	// is-active exits non-zero for inactive units; that is a state, not a
	// supervisor failure.
	if state != "" {
		return false, nil
	}
	return false, err
}

// StartProxy walks the unit through reload-index, enable-at-boot and
// restart-now, in that order. A failed reload must not be followed by a
// restart: systemd would start a stale definition.
func StartProxy(sup Supervisor) error {
	if err := sup.DaemonReload(); err != nil {
		return stageErrorf(KindSupervisor, "daemon-reload: %v", err)
	}
	if err := sup.Enable(UnitName); err != nil {
		return stageErrorf(KindSupervisor, "enable %s: %v", UnitName, err)
	}
	if err := sup.Restart(UnitName); err != nil {
		return stageErrorf(KindSupervisor, "restart %s: %v", UnitName, err)
	}
	return nil
}
