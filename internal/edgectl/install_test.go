package edgectl

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) run(name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.err
}

func presentLookPath(string) (string, error) {
	return "/usr/bin/tool", nil
}

func absentLookPath(string) (string, error) {
	return "", errors.New("executable file not found in $PATH")
}

func writeCaddyArchive(t *testing.T, path string, contents []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "caddy", Mode: 0o755, Size: int64(len(contents)), Typeflag: tar.TypeReg,
	}))
	_, err = tw.Write(contents)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestInstaller_ToolsPresentMeansNoWork(t *testing.T) {
	runner := &fakeRunner{}
	fetched := false

	in := NewInstaller(DefaultHostTarget())
	in.lookPath = presentLookPath
	in.run = runner.run
	in.fetch = func(url, dest string) error {
		fetched = true
		return nil
	}

	require.NoError(t, in.EnsureAll())
	assert.Empty(t, runner.calls)
	assert.False(t, fetched, "present binary must not trigger a download")
}

func TestInstaller_InstallsEnvsubstViaPackageManager(t *testing.T) {
	runner := &fakeRunner{}

	target := DefaultHostTarget()
	target.BinDir = t.TempDir()

	in := NewInstaller(target)
	in.lookPath = func(tool string) (string, error) {
		if tool == "envsubst" {
			return absentLookPath(tool)
		}
		return presentLookPath(tool)
	}
	in.run = runner.run
	in.fetch = func(url, dest string) error { return nil }

	require.NoError(t, in.EnsureAll())
	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"apt-get", "update"}, runner.calls[0])
	assert.Equal(t, []string{"apt-get", "install", "-y", "gettext-base"}, runner.calls[1])
}

func TestInstaller_PackageFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{err: errors.New("index refresh failed")}

	in := NewInstaller(DefaultHostTarget())
	in.lookPath = absentLookPath
	in.run = runner.run

	err := in.EnsureAll()
	require.Error(t, err)
	assert.Equal(t, KindDependency, KindOf(err))
	// fails on apt-get update, never reaches install
	assert.Len(t, runner.calls, 1)
}

func TestInstaller_DownloadsAndExtractsCaddy(t *testing.T) {
	target := DefaultHostTarget()
	target.BinDir = t.TempDir()

	in := NewInstaller(target)
	in.lookPath = func(tool string) (string, error) {
		if tool == "caddy" {
			return absentLookPath(tool)
		}
		return presentLookPath(tool)
	}
	in.run = (&fakeRunner{}).run

	var requestedURL string
	in.fetch = func(url, dest string) error {
		requestedURL = url
		writeCaddyArchive(t, dest, []byte("fake caddy binary"))
		return nil
	}

	require.NoError(t, in.EnsureAll())
	assert.Contains(t, requestedURL, "caddyserver.com/api/download")
	assert.Contains(t, requestedURL, "p=github.com/caddy-dns/cloudflare")

	installed := filepath.Join(target.BinDir, "caddy")
	b, err := os.ReadFile(installed)
	require.NoError(t, err)
	assert.Equal(t, "fake caddy binary", string(b))

	info, err := os.Stat(installed)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestInstaller_BinDirCopySkipsDownload(t *testing.T) {
	target := DefaultHostTarget()
	target.BinDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target.BinDir, "caddy"), []byte("existing"), 0o755))

	fetched := false
	in := NewInstaller(target)
	in.lookPath = func(tool string) (string, error) {
		if tool == "caddy" {
			return absentLookPath(tool)
		}
		return presentLookPath(tool)
	}
	in.fetch = func(url, dest string) error {
		fetched = true
		return nil
	}

	require.NoError(t, in.EnsureAll())
	assert.False(t, fetched)
}

func TestInstaller_FetchFailureIsFatal(t *testing.T) {
	target := DefaultHostTarget()
	target.BinDir = t.TempDir()

	in := NewInstaller(target)
	in.lookPath = absentLookPath
	in.run = (&fakeRunner{}).run
	in.fetch = func(url, dest string) error { return errors.New("connection refused") }

	err := in.ensureCaddy()
	require.Error(t, err)
	assert.Equal(t, KindDependency, KindOf(err))
	assert.NoFileExists(t, filepath.Join(target.BinDir, "caddy"))
}

func TestExtractExecutable_MemberMissing(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "dist.tar.gz")

	f, err := os.Create(archive)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "README", Mode: 0o644, Size: 0, Typeflag: tar.TypeReg}))
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	err = extractExecutable(archive, "caddy", filepath.Join(dir, "caddy"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
