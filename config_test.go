package expenses

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Backups.MinIntervalSeconds != 300 {
		t.Errorf("min interval = %d, want 300", cfg.Backups.MinIntervalSeconds)
	}
	if cfg.Backups.RetentionDays != 7 {
		t.Errorf("retention days = %d, want 7", cfg.Backups.RetentionDays)
	}
	if cfg.Backups.MaxBackups != 50 {
		t.Errorf("max backups = %d, want 50", cfg.Backups.MaxBackups)
	}
	if cfg.Currency != "USD" {
		t.Errorf("currency = %q, want USD", cfg.Currency)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "currency: EUR\nbackups:\n  min_interval_seconds: 60\n  retention_days: 14\n  max_backups: 10\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", cfg.Currency)
	}
	if cfg.Backups.MinIntervalSeconds != 60 || cfg.Backups.RetentionDays != 14 || cfg.Backups.MaxBackups != 10 {
		t.Errorf("backups = %+v", cfg.Backups)
	}
}

func TestLoadConfigRejectsBadSettings(t *testing.T) {
	dir := t.TempDir()
	content := "backups:\n  max_backups: -1\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("LoadConfig() accepted a negative max_backups")
	}
}

func TestConfigLayout(t *testing.T) {
	cfg := &Config{Dir: "/data"}
	if got := cfg.LedgerFile(); got != filepath.Join("/data", "transactions.csv") {
		t.Errorf("LedgerFile() = %q", got)
	}
	if got := cfg.BackupDir(); got != filepath.Join("/data", "auto_backups") {
		t.Errorf("BackupDir() = %q", got)
	}
	if got := cfg.CategoriesFile(); got != filepath.Join("/data", "categories.json") {
		t.Errorf("CategoriesFile() = %q", got)
	}
}
