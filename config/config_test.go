package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenorfi.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFillsFactoryDefaults(t *testing.T) {
	path := writeConfig(t, `
[Liquidation]
Adapter = "0x00000000000000000000000000000000000000A1"
Owner   = "0x00000000000000000000000000000000000000A2"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultV2Factory, cfg.AMM.V2Factory)
	require.Equal(t, DefaultV3InitCodeHash, cfg.AMM.V3InitCodeHash)

	adapter := cfg.AdapterConfig()
	require.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000A1"), adapter.Adapter)
	require.Equal(t, common.HexToHash(DefaultV2InitCodeHash), adapter.V2InitCodeHash)
	require.Equal(t, common.Address{}, adapter.Subsidizer)
}

func TestLoadRejectsBadAddresses(t *testing.T) {
	path := writeConfig(t, `
[Liquidation]
Adapter = "not-an-address"
Owner   = "0x00000000000000000000000000000000000000A2"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Liquidation.Adapter")
}

func TestLoadRejectsTruncatedHash(t *testing.T) {
	path := writeConfig(t, `
[AMM]
V2InitCodeHash = "0x96e8ac42"

[Liquidation]
Adapter = "0x00000000000000000000000000000000000000A1"
Owner   = "0x00000000000000000000000000000000000000A2"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "V2InitCodeHash")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultV3Factory, cfg.AMM.V3Factory)
	require.Empty(t, cfg.Liquidation.Adapter)
}
