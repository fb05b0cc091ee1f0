package expenses

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data directory file names. Backups archive them under the same names, which
// is what lets a restore work even after the data directory has moved.
const (
	ledgerName            = "transactions.csv"
	categoriesName        = "categories.json"
	aliasesName           = "merchant_aliases.json"
	defaultCategoriesName = "default_categories.json"
	backupDirName         = "auto_backups"
	connectionsName       = "truelayer_connections.json"
	configName            = "config.yaml"
)

// Config holds the application settings and the data directory layout.
type Config struct {
	Dir      string       `yaml:"-"`        // data directory, not read from the file
	Currency string       `yaml:"currency"` // display currency for reports
	Backups  BackupConfig `yaml:"backups"`
}

// BackupConfig tunes the backup subsystem.
type BackupConfig struct {
	MinIntervalSeconds int `yaml:"min_interval_seconds"` // throttle for non-forced backups
	RetentionDays      int `yaml:"retention_days"`       // backups older than this are removed
	MaxBackups         int `yaml:"max_backups"`          // backups ranked beyond this are removed
}

// DefaultDir returns the data directory: EXPENSES_DIR if set, otherwise
// the expenses folder under the user configuration directory.
func DefaultDir() string {
	if dir := os.Getenv("EXPENSES_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		// No home to speak of, fall back to the working directory.
		return "expenses"
	}
	return filepath.Join(base, "expenses")
}

// LoadConfig loads the settings for the given data directory. A missing
// config.yaml is not an error, defaults apply. A .env file in the working
// directory is loaded first so that credentials can live next to the user.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Load()

	if dir == "" {
		dir = DefaultDir()
	}
	cfg := &Config{
		Dir:      dir,
		Currency: "USD",
		Backups: BackupConfig{
			MinIntervalSeconds: 300,
			RetentionDays:      7,
			MaxBackups:         50,
		},
	}

	data, err := os.ReadFile(filepath.Join(dir, configName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if cfg.Backups.MinIntervalSeconds < 0 || cfg.Backups.RetentionDays <= 0 || cfg.Backups.MaxBackups <= 0 {
		return nil, fmt.Errorf("invalid backup settings in config file: %+v", cfg.Backups)
	}
	return cfg, nil
}

// LedgerFile returns the path of the canonical ledger file.
func (c *Config) LedgerFile() string { return filepath.Join(c.Dir, ledgerName) }

// CategoriesFile returns the path of the merchant to category assignments.
func (c *Config) CategoriesFile() string { return filepath.Join(c.Dir, categoriesName) }

// AliasesFile returns the path of the merchant alias map.
func (c *Config) AliasesFile() string { return filepath.Join(c.Dir, aliasesName) }

// DefaultCategoriesFile returns the path of the per-type default categories.
func (c *Config) DefaultCategoriesFile() string { return filepath.Join(c.Dir, defaultCategoriesName) }

// BackupDir returns the directory holding the backup archives.
func (c *Config) BackupDir() string { return filepath.Join(c.Dir, backupDirName) }

// ConnectionsFile returns the path of the bank feed connection store.
func (c *Config) ConnectionsFile() string { return filepath.Join(c.Dir, connectionsName) }
