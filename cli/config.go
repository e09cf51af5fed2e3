package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/k1nk/qtyaccounting/ledger"
)

// DefaultConfigFile is looked for in the working directory when no
// --config flag is given.
const DefaultConfigFile = ".qtyaccounting.yaml"

// Config holds command defaults loaded from a YAML file.
type Config struct {
	// Accounts is the path of the account metadata CSV file.
	Accounts string `yaml:"accounts"`
	// Start and End bound trial balance windows, as YYYY-MM-DD.
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LoadConfig reads the config file at path. An empty path falls back to
// DefaultConfigFile, which may be absent.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// loadAccounts loads the account metadata table. An explicit flag wins
// over the config file; with neither, every key takes the defaults.
func loadAccounts(cfg *Config, flag string) (*ledger.AccountInfo, error) {
	path := flag
	if path == "" {
		path = cfg.Accounts
	}
	if path == "" {
		return ledger.NewAccountInfo(), nil
	}
	return ledger.LoadAccountInfo(path)
}
