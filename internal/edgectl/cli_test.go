package edgectl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_NoCommandReturnsError(t *testing.T) {
	err := Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is required")
}

func TestRun_UnknownCommand(t *testing.T) {
	err := Run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestUp_ConfigErrorNeverReachesDeploy(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	marker := filepath.Join(dir, "deployed")
	script := filepath.Join(dir, "deploy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ntouch "+marker+"\n"), 0o755))

	caddyfile := filepath.Join(dir, "Caddyfile")
	yml := "caddyfile: " + caddyfile + "\ndeploy_script: " + script + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, targetFileName), []byte(yml), 0o644))

	t.Setenv("DOMAIN", "example.com")
	t.Setenv("LETSENCRYPT_EMAIL", "ops@example.com")
	t.Setenv("CLOUDFLARE_API_TOKEN", "")

	err := Run([]string{"up", "--env", "prod"})
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.NoFileExists(t, caddyfile, "no configuration may be rendered on a config error")
	assert.NoFileExists(t, marker, "deploy delegate must not run when provisioning fails")
}
