package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "DropMint", cfg.DomainName)
	require.Equal(t, uint64(1), cfg.ChainID)
	require.FileExists(t, path)

	// Loading the written file round-trips.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPCAddress, reloaded.RPCAddress)
}

func TestLoadValidatesAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
ChainID = 187
DropToken = "0x1234"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	_, err := Load(path)
	require.Error(t, err)

	body = `
ChainID = 187
DropToken = "0x00000000000000000000000000000000000000dd"
VerifyingContract = "0x00000000000000000000000000000000000000cc"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	token, err := cfg.DropTokenAddress()
	require.NoError(t, err)
	require.Equal(t, byte(0xdd), token[19])

	contract, err := cfg.VerifyingContractAddress()
	require.NoError(t, err)
	require.Equal(t, byte(0xcc), contract[19])
}

func TestLoadRejectsZeroChainID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`ChainID = 0`), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
