package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config drives the dropmintd daemon.
type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	Env            string `toml:"Env"`

	// ChainID, DomainName, DomainVersion, and VerifyingContract pin the
	// domain signed mint authorizations are bound to.
	ChainID           uint64 `toml:"ChainID"`
	DomainName        string `toml:"DomainName"`
	DomainVersion     string `toml:"DomainVersion"`
	VerifyingContract string `toml:"VerifyingContract"`

	// DropToken is the issued collection; MaxSupply caps its total supply.
	DropToken string `toml:"DropToken"`
	MaxSupply uint64 `toml:"MaxSupply"`

	OTLPEndpoint string `toml:"OTLPEndpoint"`
	OTLPInsecure bool   `toml:"OTLPInsecure"`
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:     "127.0.0.1:8561",
		MetricsAddress: "127.0.0.1:9561",
		DataDir:        "./dropmint-data",
		ChainID:        1,
		DomainName:     "DropMint",
		DomainVersion:  "1",
		MaxSupply:      10_000,
	}
}

// Load reads the configuration at path, creating it with defaults when it
// does not exist.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := defaultConfig()
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = defaults.RPCAddress
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = defaults.MetricsAddress
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(cfg.DomainName) == "" {
		cfg.DomainName = defaults.DomainName
	}
	if strings.TrimSpace(cfg.DomainVersion) == "" {
		cfg.DomainVersion = defaults.DomainVersion
	}
	if cfg.MaxSupply == 0 {
		cfg.MaxSupply = defaults.MaxSupply
	}
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: write defaults: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration that cannot drive a daemon.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("config: ChainID required")
	}
	if strings.TrimSpace(c.DropToken) != "" {
		if _, err := c.DropTokenAddress(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.VerifyingContract) != "" {
		if _, err := c.VerifyingContractAddress(); err != nil {
			return err
		}
	}
	return nil
}

func parseAddress(field, raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != 20 {
		return addr, fmt.Errorf("config: %s must be a 20-byte hex address", field)
	}
	copy(addr[:], decoded)
	return addr, nil
}

// DropTokenAddress parses the configured drop token address.
func (c *Config) DropTokenAddress() ([20]byte, error) {
	return parseAddress("DropToken", c.DropToken)
}

// VerifyingContractAddress parses the configured verifying contract address.
func (c *Config) VerifyingContractAddress() ([20]byte, error) {
	return parseAddress("VerifyingContract", c.VerifyingContract)
}
