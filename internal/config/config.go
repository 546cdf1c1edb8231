package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	defaultRPC        = "http://127.0.0.1:8545"
	defaultAlgorithm  = "fastest"
	defaultListenAddr = "127.0.0.1:8080"

	configName  = "config"
	configFile  = configName + ".json"
	walletsFile = "wallets.json"
	logFile     = "w3vault.log"
)

// Config holds all w3vault configuration.
type Config struct {
	RPCURLs       []string `json:"rpc_urls"       mapstructure:"rpc_urls"`
	RPCAlgorithm  string   `json:"rpc_algorithm"  mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	ChainID       int64    `json:"chain_id"       mapstructure:"chain_id"`      // 0 = ask the node
	VaultAddress  string   `json:"vault_address"  mapstructure:"vault_address"` // empty = built-in vault
	DefaultWallet string   `json:"default_wallet" mapstructure:"default_wallet"`
	ListenAddr    string   `json:"listen_addr"    mapstructure:"listen_addr"`
	Env           string   `json:"env"            mapstructure:"env"`
	LogFile       string   `json:"log_file"       mapstructure:"log_file"`

	// internal: config dir path used for Save()
	configDir string
	// keys changed since Load, written back by Save
	dirty map[string]any
}

// DefaultDir returns $W3VAULT_CONFIG_DIR or ~/.w3vault.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3vault"), nil
}

// Load reads config.json from dir, layering defaults below and W3VAULT_*
// environment variables above it. dir defaults to DefaultDir().
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	cfg.RPCURLs = cleanURLs(cfg.RPCURLs)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_urls", []string{defaultRPC})
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("chain_id", 0)
	v.SetDefault("vault_address", "")
	v.SetDefault("default_wallet", "")
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("env", Development)
	v.SetDefault("log_file", "")
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if len(c.RPCURLs) == 0 {
		return errors.New("no RPC URL configured (set rpc_urls or W3VAULT_RPC_URLS)")
	}
	if c.VaultAddress != "" && !common.IsHexAddress(c.VaultAddress) {
		return fmt.Errorf("vault_address %q is not a valid address", c.VaultAddress)
	}
	if c.ChainID < 0 {
		return fmt.Errorf("chain_id must not be negative, got %d", c.ChainID)
	}
	return nil
}

// IsProduction reports whether env is "production".
func (c *Config) IsProduction() bool { return c.Env == Production }

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// LogPath returns log_file, or w3vault.log inside the config directory.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.configDir, logFile)
}

// AddRPC appends an RPC URL.
func (c *Config) AddRPC(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("empty RPC URL")
	}
	if slices.Contains(c.RPCURLs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.RPCURLs = append(c.RPCURLs, url)
	c.set("rpc_urls", c.RPCURLs)
	return nil
}

// RemoveRPC removes an RPC URL.
func (c *Config) RemoveRPC(url string) error {
	idx := slices.Index(c.RPCURLs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found", url)
	}
	c.RPCURLs = slices.Delete(c.RPCURLs, idx, idx+1)
	c.set("rpc_urls", c.RPCURLs)
	return nil
}

// SetVault overrides the vault contract address.
func (c *Config) SetVault(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid vault address %q", address)
	}
	c.VaultAddress = common.HexToAddress(address).Hex()
	c.set("vault_address", c.VaultAddress)
	return nil
}

// SetDefaultWallet records the wallet used when --wallet is not given.
func (c *Config) SetDefaultWallet(name string) {
	c.DefaultWallet = name
	c.set("default_wallet", name)
}

// Save writes the keys changed since Load to config.json. Values that came
// from the environment or from defaults are not persisted.
func (c *Config) Save() error {
	if len(c.dirty) == 0 {
		return nil
	}
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}

	path := filepath.Join(c.configDir, configFile)
	onDisk := make(map[string]any)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &onDisk); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for k, v := range c.dirty {
		onDisk[k] = v
	}

	out, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return err
	}
	c.dirty = nil
	return nil
}

func (c *Config) set(key string, value any) {
	if c.dirty == nil {
		c.dirty = make(map[string]any)
	}
	c.dirty[key] = value
}

// cleanURLs trims entries and drops blanks, so "a, b," from the environment works.
func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		for _, part := range strings.Split(u, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
