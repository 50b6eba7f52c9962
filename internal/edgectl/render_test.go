package edgectl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString_AllSyntaxes(t *testing.T) {
	vars := map[string]string{
		"DOMAIN":               "example.com",
		"LETSENCRYPT_EMAIL":    "ops@example.com",
		"CLOUDFLARE_API_TOKEN": "tok123",
	}

	in := "host ${DOMAIN}\nemail $LETSENCRYPT_EMAIL\ntls {env.CLOUDFLARE_API_TOKEN}\n"
	out, err := RenderString(in, vars)
	require.NoError(t, err)
	assert.Equal(t, "host example.com\nemail ops@example.com\ntls tok123\n", out)
}

func TestRenderString_NoResidualPlaceholders(t *testing.T) {
	vars := map[string]string{"A": "1", "B": "2", "C": "3"}
	out, err := RenderString("${A} $B {env.C}", vars)
	require.NoError(t, err)
	assert.Empty(t, findUnresolved(out, vars))
}

func TestRenderString_PlaceholderShapedValuesAreNotErrors(t *testing.T) {
	// values are data: a token or email containing $WORD or {env.X} must
	// pass through verbatim, not trip the unresolved-placeholder check
	vars := map[string]string{
		"DOMAIN":               "example.com",
		"CLOUDFLARE_API_TOKEN": "abc$DEF{env.GHI}",
	}
	out, err := RenderString("${DOMAIN} tls {env.CLOUDFLARE_API_TOKEN}\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "example.com tls abc$DEF{env.GHI}\n", out)
}

func TestRenderString_UnresolvedPlaceholderIsError(t *testing.T) {
	_, err := RenderString("tls {env.CLOUDFLARE_API_TOKEN}", map[string]string{})
	require.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))
	assert.Contains(t, err.Error(), "{env.CLOUDFLARE_API_TOKEN}")
}

func TestRenderString_UnresolvedEnvsubstIsError(t *testing.T) {
	_, err := RenderString("host ${MISSING_KEY}", map[string]string{"DOMAIN": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "${MISSING_KEY}")
}

func TestRenderString_LiteralBracesSurvive(t *testing.T) {
	vars := map[string]string{"DOMAIN": "example.com"}
	out, err := RenderString("${DOMAIN} {\n\tencode gzip\n}\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "example.com {\n\tencode gzip\n}\n", out)
}

func TestRenderFile_CreatesParentsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tpl")
	require.NoError(t, os.WriteFile(src, []byte("value ${V}\n"), 0o644))

	dst := filepath.Join(dir, "nested", "deeper", "out")
	require.NoError(t, RenderFile(src, dst, map[string]string{"V": "one"}))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "value one\n", string(b))

	// a second render replaces the file wholesale
	require.NoError(t, RenderFile(src, dst, map[string]string{"V": "two"}))
	b, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "value two\n", string(b))
}

func TestRenderCaddyfile_ShippedTemplate(t *testing.T) {
	t.Setenv("EDGECTL_TEMPLATES", "../../templates")

	dir := t.TempDir()
	target := DefaultHostTarget()
	target.CaddyfilePath = filepath.Join(dir, "Caddyfile")

	set := Settings{Domain: "example.com", Email: "ops@example.com", CloudflareToken: "tok123"}
	require.NoError(t, RenderCaddyfile(target, set))

	b, err := os.ReadFile(target.CaddyfilePath)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "example.com {")
	assert.Contains(t, content, "email ops@example.com")
	assert.Contains(t, content, "dns cloudflare tok123")
	assert.Empty(t, findUnresolved(content, set.RenderVars()))
}
