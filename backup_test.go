package expenses

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const ledgerV1 = "Date,Merchant,Amount,Source,Deleted,Type\n2025-01-15,Coffee,3.50,Manual,false,expense\n"
const ledgerV2 = "Date,Merchant,Amount,Source,Deleted,Type\n2025-01-16,Burger,12.00,Manual,false,expense\n"

func writeLedger(t *testing.T, cfg *Config, content string) {
	t.Helper()
	if err := os.WriteFile(cfg.LedgerFile(), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readLedger(t *testing.T, cfg *Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.LedgerFile())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBackupCreateNoLedger(t *testing.T) {
	bm := NewBackupManager(testConfig(t))
	for _, force := range []bool{false, true} {
		path, err := bm.Create(force)
		if err != nil {
			t.Fatalf("Create(%v) error = %v", force, err)
		}
		if path != "" {
			t.Errorf("Create(%v) = %q, want empty without a ledger file", force, path)
		}
	}
}

func TestBackupCreateAndThrottle(t *testing.T) {
	cfg := testConfig(t)
	writeLedger(t, cfg, ledgerV1)
	bm := NewBackupManager(cfg)

	first, err := bm.Create(false)
	if err != nil {
		t.Fatalf("Create(false) error = %v", err)
	}
	if first == "" {
		t.Fatal("Create(false) skipped the very first backup")
	}
	if base := filepath.Base(first); !strings.HasPrefix(base, "backup_") || !strings.HasSuffix(base, ".tar.gz") {
		t.Errorf("archive name %q does not follow backup_<stamp>.tar.gz", base)
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("archive not on disk: %v", err)
	}

	// Immediately again: inside the minimum interval, so nothing happens.
	second, err := bm.Create(false)
	if err != nil {
		t.Fatalf("Create(false) error = %v", err)
	}
	if second != "" {
		t.Errorf("Create(false) = %q, want throttled empty result", second)
	}
	if got := len(bm.List()); got != 1 {
		t.Fatalf("have %d archives after throttled create, want 1", got)
	}

	forced, err := bm.Create(true)
	if err != nil {
		t.Fatalf("Create(true) error = %v", err)
	}
	if forced == "" || forced == first {
		t.Errorf("Create(true) = %q, want a fresh archive", forced)
	}
	backups := bm.List()
	if len(backups) != 2 {
		t.Fatalf("have %d archives after forced create, want 2", len(backups))
	}
	if backups[0].Time.Before(backups[1].Time) {
		t.Error("List() is not sorted newest first")
	}
}

func TestBackupArchiveMembers(t *testing.T) {
	cfg := testConfig(t)
	writeLedger(t, cfg, ledgerV1)
	if err := os.WriteFile(cfg.CategoriesFile(), []byte(`["Food"]`), 0o600); err != nil {
		t.Fatal(err)
	}

	path, err := NewBackupManager(cfg).Create(true)
	if err != nil {
		t.Fatalf("Create(true) error = %v", err)
	}

	members := readArchive(t, path)
	if got := members["transactions.csv"]; got != ledgerV1 {
		t.Errorf("archived ledger = %q, want %q", got, ledgerV1)
	}
	if got := members["categories.json"]; got != `["Food"]` {
		t.Errorf("archived categories = %q", got)
	}
	if _, ok := members["merchant_aliases.json"]; ok {
		t.Error("archive contains a member for an absent side-file")
	}
}

// readArchive returns the archive content as member name to file content.
func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer gz.Close()

	members := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return members
		}
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		members[hdr.Name] = string(data)
	}
}

// placeArchive drops a fake archive file with the name encoding 'when'.
func placeArchive(t *testing.T, cfg *Config, prefix string, when time.Time, content string) string {
	t.Helper()
	if err := os.MkdirAll(cfg.BackupDir(), 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.BackupDir(), prefix+when.Format(stampFormat)+archiveExt)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBackupCleanup(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backups.MaxBackups = 2
	cfg.Backups.RetentionDays = 7

	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	bm := NewBackupManager(cfg)
	bm.now = func() time.Time { return fixed }

	keepA := placeArchive(t, cfg, backupPrefix, fixed.Add(-1*time.Hour), "a")
	keepB := placeArchive(t, cfg, backupPrefix, fixed.Add(-2*time.Hour), "b")
	overCount := placeArchive(t, cfg, backupPrefix, fixed.Add(-72*time.Hour), "c")
	tooOld := placeArchive(t, cfg, backupPrefix, fixed.Add(-10*24*time.Hour), "d")

	bm.Cleanup()

	for _, path := range []string{keepA, keepB} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("kept backup %s is gone: %v", filepath.Base(path), err)
		}
	}
	for _, path := range []string{overCount, tooOld} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("backup %s should have been removed", filepath.Base(path))
		}
	}
}

func TestBackupList(t *testing.T) {
	cfg := testConfig(t)
	plain := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)
	placeArchive(t, cfg, backupPrefix, plain, "abc")
	// Same second with a microsecond suffix, the format used on collisions.
	micro := filepath.Join(cfg.BackupDir(), "backup_20240115_103000_123456.tar.gz")
	if err := os.WriteFile(micro, []byte("abcde"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Noise that must be ignored.
	placeArchive(t, cfg, emergencyPrefix, plain, "x")
	for _, name := range []string{"backup_bogus.tar.gz", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(cfg.BackupDir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	backups := NewBackupManager(cfg).List()
	if len(backups) != 2 {
		t.Fatalf("List() has %d entries, want 2: %+v", len(backups), backups)
	}
	wantNewest := plain.Add(123456 * time.Microsecond)
	if !backups[0].Time.Equal(wantNewest) {
		t.Errorf("newest time = %v, want %v", backups[0].Time, wantNewest)
	}
	if !backups[1].Time.Equal(plain) {
		t.Errorf("oldest time = %v, want %v", backups[1].Time, plain)
	}
	if backups[0].Size != 5 || backups[1].Size != 3 {
		t.Errorf("sizes = %d, %d, want 5, 3", backups[0].Size, backups[1].Size)
	}
}

func TestBackupStats(t *testing.T) {
	cfg := testConfig(t)
	bm := NewBackupManager(cfg)

	if stats := bm.Stats(); stats.Count != 0 || stats.TotalSize != 0 {
		t.Errorf("empty Stats() = %+v", stats)
	}

	oldest := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	newest := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)
	placeArchive(t, cfg, backupPrefix, oldest, "abc")
	placeArchive(t, cfg, backupPrefix, newest, "abcde")

	stats := bm.Stats()
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
	if stats.TotalSize != 8 {
		t.Errorf("TotalSize = %d, want 8", stats.TotalSize)
	}
	if !stats.Oldest.Equal(oldest) || !stats.Newest.Equal(newest) {
		t.Errorf("Oldest/Newest = %v/%v", stats.Oldest, stats.Newest)
	}
}

func TestRestoreFrom(t *testing.T) {
	cfg := testConfig(t)
	writeLedger(t, cfg, ledgerV1)
	bm := NewBackupManager(cfg)

	archive, err := bm.Create(true)
	if err != nil || archive == "" {
		t.Fatalf("Create(true) = %q, %v", archive, err)
	}

	writeLedger(t, cfg, ledgerV2)

	if !bm.RestoreFrom(archive) {
		t.Fatal("RestoreFrom() = false, want true")
	}
	if got := readLedger(t, cfg); got != ledgerV1 {
		t.Errorf("ledger after restore = %q, want the archived version", got)
	}

	// The pre-restore state must survive as exactly one emergency archive,
	// and the extraction scratch space must be gone.
	entries, err := os.ReadDir(cfg.BackupDir())
	if err != nil {
		t.Fatal(err)
	}
	emergencies := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), emergencyPrefix) {
			emergencies++
		}
		if strings.HasPrefix(entry.Name(), "restore_temp_") {
			t.Errorf("extraction directory %s was left behind", entry.Name())
		}
	}
	if emergencies != 1 {
		t.Errorf("have %d emergency archives, want exactly 1", emergencies)
	}

	// The emergency archive holds the overwritten state.
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), emergencyPrefix) {
			members := readArchive(t, filepath.Join(cfg.BackupDir(), entry.Name()))
			if got := members["transactions.csv"]; got != ledgerV2 {
				t.Errorf("emergency ledger = %q, want the pre-restore version", got)
			}
		}
	}
}

func TestRestoreFromInvalidArchive(t *testing.T) {
	cfg := testConfig(t)
	writeLedger(t, cfg, ledgerV1)
	bm := NewBackupManager(cfg)

	bad := filepath.Join(cfg.Dir, "bad.tar.gz")
	if err := os.WriteFile(bad, []byte("this is not a tarball"), 0o600); err != nil {
		t.Fatal(err)
	}

	if bm.RestoreFrom(bad) {
		t.Error("RestoreFrom() accepted garbage")
	}
	if bm.RestoreFrom(filepath.Join(cfg.Dir, "no-such-file.tar.gz")) {
		t.Error("RestoreFrom() accepted a missing file")
	}
	if got := readLedger(t, cfg); got != ledgerV1 {
		t.Errorf("ledger was modified by a failed restore: %q", got)
	}
	// Validation precedes the emergency backup, so none was taken.
	if entries, err := os.ReadDir(cfg.BackupDir()); err == nil {
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), emergencyPrefix) {
				t.Errorf("emergency archive %s created for a rejected restore", entry.Name())
			}
		}
	}
}

func TestAttemptAutoRecovery(t *testing.T) {
	cfg := testConfig(t)
	bm := NewBackupManager(cfg)

	if bm.AttemptAutoRecovery() {
		t.Error("AttemptAutoRecovery() = true without any backup")
	}

	writeLedger(t, cfg, ledgerV1)
	if _, err := bm.Create(true); err != nil {
		t.Fatal(err)
	}
	writeLedger(t, cfg, "garbage that replaced the ledger")

	if !bm.AttemptAutoRecovery() {
		t.Fatal("AttemptAutoRecovery() = false with a backup available")
	}
	if got := readLedger(t, cfg); got != ledgerV1 {
		t.Errorf("ledger after recovery = %q, want the archived version", got)
	}
}

func TestParseStamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "20240115_103000", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)},
		{in: "20240115_103000_123456", want: time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.Local)},
		{in: "20240115_103000_abcdef", wantErr: true},
		{in: "bogus", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseStamp(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseStamp(%q) accepted an invalid stamp", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseStamp(%q) error = %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("parseStamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
