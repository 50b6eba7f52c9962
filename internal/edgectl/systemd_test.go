package edgectl

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUnit_ShippedTemplate(t *testing.T) {
	target := DefaultHostTarget()
	target.BinDir = "/opt/bin"
	target.CaddyfilePath = "/opt/etc/Caddyfile"

	content, err := RenderUnit("../../templates/systemd/caddy.service", target)
	require.NoError(t, err)

	assert.Contains(t, content, "ExecStart=/opt/bin/caddy run --environ --config /opt/etc/Caddyfile")
	assert.Contains(t, content, "ExecReload=/opt/bin/caddy reload --config /opt/etc/Caddyfile --force")
	assert.Contains(t, content, "Restart=on-abnormal")
	assert.Contains(t, content, "After=network.target network-online.target")
	assert.Contains(t, content, "Requires=network-online.target")
	assert.Contains(t, content, "WantedBy=multi-user.target")
	assert.Empty(t, findUnresolved(content, UnitVars(target)))

	// stop timeout must be bounded and non-zero
	m := regexp.MustCompile(`TimeoutStopSec=(\d+)`).FindStringSubmatch(content)
	require.NotNil(t, m, "unit must declare TimeoutStopSec")
	assert.NotEqual(t, "0", m[1])

	// fd ceiling high enough for a busy reverse proxy
	assert.Contains(t, content, "LimitNOFILE=1048576")
}

func TestWriteUnit_RegistersWithSupervisor(t *testing.T) {
	t.Setenv("EDGECTL_TEMPLATES", "../../templates")

	sup := newFakeSupervisor()
	require.NoError(t, WriteUnit(DefaultHostTarget(), sup))

	require.Contains(t, sup.units, UnitName)
	assert.Contains(t, string(sup.units[UnitName]), "Restart=on-abnormal")
}

func TestWriteUnit_IdempotentRegeneration(t *testing.T) {
	t.Setenv("EDGECTL_TEMPLATES", "../../templates")

	sup := newFakeSupervisor()
	target := DefaultHostTarget()

	require.NoError(t, WriteUnit(target, sup))
	first := append([]byte(nil), sup.units[UnitName]...)

	require.NoError(t, WriteUnit(target, sup))
	assert.Equal(t, first, sup.units[UnitName])
}
