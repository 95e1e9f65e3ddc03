package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

var envNames = []string{
	"TACHI_HTTP_ADDR", "TACHI_ALLOWED_ORIGINS", "TACHI_GIN_MODE", "GIN_MODE", "TACHI_RPC_URL", "RPC_URL",
	"TACHI_CONTRACT_ADDRESS", "CONTRACT_ADDRESS", "TACHI_PRIVATE_KEY", "ORGANIZER_PRIVATE_KEY",
	"TACHI_CHAIN_ID", "CHAIN_ID", "TACHI_DATABASE_URL", "DATABASE_URL", "DB_HOST", "DB_PORT",
	"DB_USER", "DB_PASSWORD", "DB_NAME", "TACHI_LOG_LEVEL", "LOG_LEVEL", "TACHI_LOG_DIR",
}

func clearEnv(t *testing.T) {
	for _, name := range envNames {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, market.ListRefreshInterval, cfg.LeaderboardInterval())
	assert.Equal(t, "host=localhost port=5432 user= password= dbname=tachi sslmode=disable", cfg.DSN())
	assert.False(t, cfg.HasSigner())
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9000"
chain:
  rpc_url: http://yaml:8545
  contract_address: `+contract+`
  read_rps: 5
database:
  user: tachi
  password: secret
log:
  level: debug
`)
	t.Setenv("RPC_URL", "http://legacy:8545")
	t.Setenv("TACHI_RPC_URL", "http://preferred:8545")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("TACHI_ALLOWED_ORIGINS", "http://localhost:3000, https://tachi.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "http://preferred:8545", cfg.Chain.RPCURL)
	assert.Equal(t, 5.0, cfg.Chain.ReadRPS)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://tachi.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "host=localhost port=6543 user=tachi password=secret dbname=tachi sslmode=disable", cfg.DSN())
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestDatabaseURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db/tachi")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/tachi", cfg.DSN())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Chain: ChainConfig{RPCURL: "http://localhost:8545", ContractAddress: contract},
			Log:   LogConfig{Level: "info"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing rpc url", func(c *Config) { c.Chain.RPCURL = "" }, "RPC URL is required"},
		{"missing contract", func(c *Config) { c.Chain.ContractAddress = "" }, "contract address is required"},
		{"bad contract", func(c *Config) { c.Chain.ContractAddress = "0x123" }, "not a hex address"},
		{"bad key", func(c *Config) { c.Chain.PrivateKey = "0xnothex" }, "invalid private key"},
		{"good key", func(c *Config) {
			c.Chain.PrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
		}, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
