package edgectl

import (
	"os"
	"path/filepath"
)

const unitTemplate = "systemd/caddy.service"

// UnitVars supplies the paths the unit template references.
func UnitVars(target HostTarget) map[string]string {
	return map[string]string{
		"CADDY_BIN": filepath.Join(target.BinDir, "caddy"),
		"CADDYFILE": target.CaddyfilePath,
	}
}

// RenderUnit expands the unit template at src for the given target.
func RenderUnit(src string, target HostTarget) (string, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		return "", stageErrorf(KindRender, "read unit template: %v", err)
	}
	return RenderString(string(content), UnitVars(target))
}

// WriteUnit renders the caddy service unit and registers it with the
// supervisor, overwriting any previous version.
func WriteUnit(target HostTarget, sup Supervisor) error {
	content, err := RenderUnit(filepath.Join(FindTemplatesDir(), unitTemplate), target)
	if err != nil {
		return err
	}
	if err := sup.WriteUnit(UnitName, []byte(content)); err != nil {
		return stageErrorf(KindSupervisor, "write unit %s: %v", UnitName, err)
	}
	return nil
}
