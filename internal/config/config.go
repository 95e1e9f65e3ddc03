package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/market"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Chain    ChainConfig    `yaml:"chain"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr                       string   `yaml:"addr"`
	Mode                       string   `yaml:"mode"` // gin mode: debug | release | test
	LeaderboardIntervalSeconds int      `yaml:"leaderboard_interval_seconds"`
	AllowedOrigins             []string `yaml:"allowed_origins"` // empty allows any origin
}

type ChainConfig struct {
	RPCURL          string  `yaml:"rpc_url"`
	ContractAddress string  `yaml:"contract_address"`
	PrivateKey      string  `yaml:"private_key"` // optional; enables admin writes
	ChainID         int64   `yaml:"chain_id"`    // 0 asks the node
	ReadRPS         float64 `yaml:"read_rps"`
	ReadBurst       int     `yaml:"read_burst"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // empty disables the file sink
}

// Load reads the YAML file at path, if any, then applies .env and
// environment overrides and fills defaults. It does not validate.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// lookup returns the first non-empty variable among names.
func lookup(names ...string) (string, bool) {
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := lookup("TACHI_HTTP_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := lookup("TACHI_GIN_MODE", "GIN_MODE"); ok {
		cfg.Server.Mode = v
	}
	if v, ok := lookup("TACHI_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
			}
		}
	}
	if v, ok := lookup("TACHI_RPC_URL", "RPC_URL"); ok {
		cfg.Chain.RPCURL = v
	}
	if v, ok := lookup("TACHI_CONTRACT_ADDRESS", "CONTRACT_ADDRESS"); ok {
		cfg.Chain.ContractAddress = v
	}
	if v, ok := lookup("TACHI_PRIVATE_KEY", "ORGANIZER_PRIVATE_KEY"); ok {
		cfg.Chain.PrivateKey = v
	}
	if v, ok := lookup("TACHI_CHAIN_ID", "CHAIN_ID"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Chain.ChainID = id
		}
	}
	if v, ok := lookup("TACHI_DATABASE_URL", "DATABASE_URL"); ok {
		cfg.Database.URL = v
	}
	if v, ok := lookup("DB_HOST"); ok {
		cfg.Database.Host = v
	}
	if v, ok := lookup("DB_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v, ok := lookup("DB_USER"); ok {
		cfg.Database.User = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok {
		cfg.Database.Password = v
	}
	if v, ok := lookup("DB_NAME"); ok {
		cfg.Database.Name = v
	}
	if v, ok := lookup("TACHI_LOG_LEVEL", "LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("TACHI_LOG_DIR"); ok {
		cfg.Log.Dir = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.LeaderboardIntervalSeconds <= 0 {
		cfg.Server.LeaderboardIntervalSeconds = int(market.ListRefreshInterval / time.Second)
	}
	if cfg.Chain.ReadRPS <= 0 {
		cfg.Chain.ReadRPS = 20
	}
	if cfg.Chain.ReadBurst <= 0 {
		cfg.Chain.ReadBurst = 10
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "tachi"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("config: RPC URL is required (RPC_URL)")
	}
	if c.Chain.ContractAddress == "" {
		return fmt.Errorf("config: contract address is required (CONTRACT_ADDRESS)")
	}
	if !common.IsHexAddress(c.Chain.ContractAddress) {
		return fmt.Errorf("config: contract address %q is not a hex address", c.Chain.ContractAddress)
	}
	if c.Chain.PrivateKey != "" {
		if _, err := crypto.HexToECDSA(strings.TrimPrefix(c.Chain.PrivateKey, "0x")); err != nil {
			return fmt.Errorf("config: invalid private key: %w", err)
		}
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func (c *Config) LeaderboardInterval() time.Duration {
	return time.Duration(c.Server.LeaderboardIntervalSeconds) * time.Second
}

func (c *Config) ContractAddress() common.Address {
	return common.HexToAddress(c.Chain.ContractAddress)
}

// HasSigner reports whether an organizer key is configured.
func (c *Config) HasSigner() bool {
	return c.Chain.PrivateKey != ""
}
