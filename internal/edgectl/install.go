package edgectl

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	caddyDistURL = "https://caddyserver.com/api/download"
	caddyPlugin  = "github.com/caddy-dns/cloudflare"

	envsubstPackage = "gettext-base"
)

// Installer makes sure the templating utility and the proxy binary exist on
// the host. Tools already present are left untouched; any fetch or package
// failure is fatal with no retry.
type Installer struct {
	Target HostTarget

	lookPath func(string) (string, error)
	run      func(name string, args ...string) error
	fetch    func(url, dest string) error
}

func NewInstaller(target HostTarget) *Installer {
	return &Installer{
		Target:   target,
		lookPath: exec.LookPath,
		run:      runCmdStream,
		fetch:    fetchToFile,
	}
}

func (in *Installer) EnsureAll() error {
	if err := in.ensureEnvsubst(); err != nil {
		return err
	}
	return in.ensureCaddy()
}

func (in *Installer) ensureEnvsubst() error {
	if _, err := in.lookPath("envsubst"); err == nil {
		return nil
	}
	fmt.Println("installing envsubst (" + envsubstPackage + ")")
	if err := in.run("apt-get", "update"); err != nil {
		return stageErrorf(KindDependency, "apt-get update: %v", err)
	}
	if err := in.run("apt-get", "install", "-y", envsubstPackage); err != nil {
		return stageErrorf(KindDependency, "install %s: %v", envsubstPackage, err)
	}
	return nil
}

func (in *Installer) ensureCaddy() error {
	if _, err := in.lookPath("caddy"); err == nil {
		return nil
	}
	if fileExists(filepath.Join(in.Target.BinDir, "caddy")) {
		return nil
	}

	url := fmt.Sprintf("%s?os=%s&arch=%s&p=%s", caddyDistURL, runtime.GOOS, runtime.GOARCH, caddyPlugin)
	fmt.Printf("downloading caddy with cloudflare dns plugin (%s/%s)\n", runtime.GOOS, runtime.GOARCH)

	archive, err := os.CreateTemp("", "caddy-dist-*.tar.gz")
	if err != nil {
		return stageErrorf(KindDependency, "create temp file: %v", err)
	}
	archivePath := archive.Name()
	archive.Close()
	defer os.Remove(archivePath)

	if err := in.fetch(url, archivePath); err != nil {
		return stageErrorf(KindDependency, "download caddy: %v", err)
	}

	dest := filepath.Join(in.Target.BinDir, "caddy")
	if err := extractExecutable(archivePath, "caddy", dest); err != nil {
		return stageErrorf(KindDependency, "extract caddy: %v", err)
	}
	fmt.Printf("installed %s\n", dest)
	return nil
}

func fetchToFile(url, dest string) error {
	client := resty.New().SetTimeout(5 * time.Minute)
	resp, err := client.R().SetOutput(dest).Get(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %s", resp.Status())
	}
	return nil
}

// extractExecutable pulls one named member out of a gzipped tarball and
// installs it executable at dest, via a temp file and rename so a running
// binary is never half-overwritten.
func extractExecutable(archivePath, member, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != member {
			continue
		}

		if err := ensureDir(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		tmp, err := os.CreateTemp(filepath.Dir(dest), member+"-*")
		if err != nil {
			return err
		}
		if _, err := io.Copy(tmp, tr); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		if err := os.Chmod(tmp.Name(), 0o755); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		return os.Rename(tmp.Name(), dest)
	}
	return fmt.Errorf("member %q not found in archive", member)
}
