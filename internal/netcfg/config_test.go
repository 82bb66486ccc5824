package netcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "proxy.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server_address = "0.0.0.0:1337"
service_image = "rad-node:latest"
auth_url = "http://auth.internal"
nodes = ["node-a:9000", "node-b:9000"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:1337", cfg.ServerAddress)
	require.Len(t, cfg.Nodes, 2)
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
service_image = "rad-node:latest"
`)
	_, err := Load(path)
	require.Error(t, err)
}
