package edgectl

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
)

type CheckResult struct {
	Name string
	OK   bool
	Err  error
}

// RunChecks probes the host without mutating it. Failures are advisory: the
// doctor reports, provisioning enforces.
func RunChecks(target HostTarget) []CheckResult {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"running as root", func() error {
			if os.Geteuid() != 0 {
				return fmt.Errorf("euid %d (provisioning needs root)", os.Geteuid())
			}
			return nil
		}},
		{"systemctl available", func() error {
			_, err := exec.LookPath("systemctl")
			return err
		}},
		{"caddy binary", func() error {
			if _, err := exec.LookPath("caddy"); err == nil {
				return nil
			}
			if fileExists(filepath.Join(target.BinDir, "caddy")) {
				return nil
			}
			return fmt.Errorf("not installed (will be downloaded)")
		}},
		{"envsubst binary", func() error {
			_, err := exec.LookPath("envsubst")
			return err
		}},
		{"caddyfile template", func() error {
			if fileExists(target.ResolveTemplate()) {
				return nil
			}
			return fmt.Errorf("%s not found", target.ResolveTemplate())
		}},
		{"config dir writable", func() error {
			return writableCheck(filepath.Dir(target.CaddyfilePath))
		}},
		{"unit dir writable", func() error {
			return writableCheck(target.UnitDir)
		}},
		{"disk space >= 1GiB on /", func() error {
			return diskCheck("/", 1)
		}},
		{"ports 80/443 status", func() error {
			out, err := runCmdCapture("ss", "-ltn")
			if err != nil {
				return err
			}
			if strings.Contains(out, ":80 ") || strings.Contains(out, ":443 ") {
				return fmt.Errorf("ports 80/443 already in use")
			}
			return nil
		}},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		err := check.fn()
		results = append(results, CheckResult{Name: check.name, OK: err == nil, Err: err})
	}
	return results
}

func RunDoctor(target HostTarget) error {
	fmt.Println("edgectl doctor")
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	for _, r := range RunChecks(target) {
		if r.OK {
			fmt.Printf("[ OK ] %s\n", r.Name)
		} else {
			fmt.Printf("[WARN] %s: %v\n", r.Name, r.Err)
		}
	}
	return nil
}

// writableCheck probes without creating anything: a directory provisioning
// would create later is judged by its nearest existing ancestor.
func writableCheck(dir string) error {
	probe := dir
	for {
		info, err := os.Stat(probe)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", probe)
			}
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}

	f, err := os.CreateTemp(probe, "edgectl-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func diskCheck(path string, minGiB uint64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	free := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if free < minGiB {
		return fmt.Errorf("free space %dGiB < %dGiB", free, minGiB)
	}
	return nil
}
