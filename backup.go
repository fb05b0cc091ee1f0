package expenses

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	backupPrefix    = "backup_"
	emergencyPrefix = "emergency_"
	archiveExt      = ".tar.gz"
	stampFormat     = "20060102_150405"
)

// BackupInfo describes one routine backup archive.
type BackupInfo struct {
	Time time.Time // timestamp parsed from the file name
	Path string
	Size int64
}

// BackupStats aggregates the routine backups.
type BackupStats struct {
	Count     int
	TotalSize int64
	Oldest    time.Time
	Newest    time.Time
}

// BackupManager creates and restores point-in-time snapshots of the data
// directory: the ledger file plus the auxiliary JSON side-files, packed as a
// tar.gz archive under <dir>/auto_backups.
//
// Backups protect mutations, so their failures must never block the mutation
// they protect: every operation here degrades to a log line and a sentinel
// return instead of propagating.
type BackupManager struct {
	cfg *Config
	now func() time.Time
}

// NewBackupManager returns a manager for the given configuration.
func NewBackupManager(cfg *Config) *BackupManager {
	return &BackupManager{cfg: cfg, now: time.Now}
}

func (b *BackupManager) minInterval() time.Duration {
	return time.Duration(b.cfg.Backups.MinIntervalSeconds) * time.Second
}

func (b *BackupManager) retention() time.Duration {
	return time.Duration(b.cfg.Backups.RetentionDays) * 24 * time.Hour
}

// memberFiles maps fixed in-archive member names to the live file paths. Only
// members whose live file exists end up in an archive, and only recognized
// members are copied back on restore.
func (b *BackupManager) memberFiles() map[string]string {
	return map[string]string{
		ledgerName:            b.cfg.LedgerFile(),
		categoriesName:        b.cfg.CategoriesFile(),
		aliasesName:           b.cfg.AliasesFile(),
		defaultCategoriesName: b.cfg.DefaultCategoriesFile(),
	}
}

// memberOrder keeps archives deterministic, the ledger first.
var memberOrder = []string{ledgerName, categoriesName, aliasesName, defaultCategoriesName}

// Create takes a snapshot of the data files and returns the archive path.
//
// It returns "" without error when there is nothing to do: no ledger file
// yet, or a non-forced call landing inside the minimum interval since the
// newest backup. On failure the partial archive is removed best-effort and
// the error returned, callers log it and move on.
// A successful creation triggers retention cleanup.
func (b *BackupManager) Create(force bool) (string, error) {
	if _, err := os.Stat(b.cfg.LedgerFile()); err != nil {
		logger.Debug().Msg("no ledger file, nothing to back up")
		return "", nil
	}

	if !force {
		if backups := b.List(); len(backups) > 0 {
			if age := b.now().Sub(backups[0].Time); age < b.minInterval() {
				logger.Debug().Dur("age", age).Msg("skipping backup, newest is recent enough")
				return "", nil
			}
		}
	}

	if err := os.MkdirAll(b.cfg.BackupDir(), 0o700); err != nil {
		return "", fmt.Errorf("could not create backup directory: %w", err)
	}

	path := b.newArchivePath()
	if err := b.writeArchive(path); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn().Err(rmErr).Str("path", path).Msg("could not remove partial backup")
		}
		return "", fmt.Errorf("could not write backup archive: %w", err)
	}

	logger.Info().Str("path", path).Msg("backup created")
	b.Cleanup()
	return path, nil
}

// newArchivePath picks a timestamped file name, adding a microsecond suffix
// when a backup of the same second already exists.
func (b *BackupManager) newArchivePath() string {
	now := b.now()
	stamp := now.Format(stampFormat)
	path := filepath.Join(b.cfg.BackupDir(), backupPrefix+stamp+archiveExt)
	if _, err := os.Stat(path); err == nil {
		micro := now.Nanosecond() / 1000
		path = filepath.Join(b.cfg.BackupDir(), fmt.Sprintf("%s%s_%06d%s", backupPrefix, stamp, micro, archiveExt))
	}
	return path
}

// writeArchive packs the existing data files into a tar.gz at 'path'.
func (b *BackupManager) writeArchive(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	members := b.memberFiles()
	for _, member := range memberOrder {
		live := members[member]
		if _, err := os.Stat(live); err != nil {
			continue // absent side-files are simply not archived
		}
		if err := addArchiveMember(tw, member, live); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}

func addArchiveMember(tw *tar.Writer, member, live string) error {
	f, err := os.Open(live)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr := &tar.Header{
		Name:    member,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("could not archive %q: %w", live, err)
	}
	return nil
}

// Cleanup removes routine backups that fell out of retention: older than the
// retention window, or ranked beyond the maximum count. The two limits are
// independent, either one removes the file. The newest backups always
// survive. Removal failures are logged and skipped.
func (b *BackupManager) Cleanup() {
	cutoff := b.now().Add(-b.retention())
	for rank, info := range b.List() {
		if rank < b.cfg.Backups.MaxBackups && !info.Time.Before(cutoff) {
			continue
		}
		if err := os.Remove(info.Path); err != nil {
			logger.Warn().Err(err).Str("path", info.Path).Msg("could not remove old backup")
			continue
		}
		logger.Info().Str("path", info.Path).Msg("removed old backup")
	}
}

// List returns the routine backups, newest first. Emergency archives are not
// routine and are never listed nor cleaned up. Files whose name does not
// parse are skipped rather than failing the whole listing.
func (b *BackupManager) List() []BackupInfo {
	entries, err := os.ReadDir(b.cfg.BackupDir())
	if err != nil {
		return nil
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, archiveExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), archiveExt)
		when, err := parseStamp(stamp)
		if err != nil {
			logger.Debug().Str("name", name).Msg("skipping backup with unparseable timestamp")
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Time: when,
			Path: filepath.Join(b.cfg.BackupDir(), name),
			Size: info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Time.After(backups[j].Time) })
	return backups
}

// parseStamp reads the two accepted filename encodings:
// 20060102_150405 and 20060102_150405_ffffff (microseconds).
func parseStamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(stampFormat, s, time.Local); err == nil {
		return t, nil
	}
	if len(s) == len(stampFormat)+7 && s[len(stampFormat)] == '_' {
		t, err := time.ParseInLocation(stampFormat, s[:len(stampFormat)], time.Local)
		if err != nil {
			return time.Time{}, err
		}
		micros, err := strconv.Atoi(s[len(stampFormat)+1:])
		if err != nil || micros < 0 || micros > 999999 {
			return time.Time{}, fmt.Errorf("invalid microsecond suffix in %q", s)
		}
		return t.Add(time.Duration(micros) * time.Microsecond), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized backup timestamp %q", s)
}

// Stats aggregates the routine backups for display.
func (b *BackupManager) Stats() BackupStats {
	backups := b.List()
	stats := BackupStats{Count: len(backups)}
	if len(backups) == 0 {
		return stats
	}
	stats.Newest = backups[0].Time
	stats.Oldest = backups[len(backups)-1].Time
	for _, info := range backups {
		stats.TotalSize += info.Size
	}
	return stats
}

// RestoreFrom replaces the live data files with the content of the given
// archive. It reports success with a boolean: restore is a user-facing rescue
// operation where every failure mode has already been logged and the only
// question left is whether the live files were replaced.
//
// Before touching anything it snapshots the current state as an emergency
// backup, so the restore itself can be undone. An emergency backup failure is
// logged but does not block the restore.
//
// The archive is extracted into a temporary directory under the backup root,
// then each recognized member is copied over its live path. Members absent
// from the archive leave the corresponding live file untouched. There is no
// rollback across members: a copy failure midway leaves the earlier copies in
// place, and the emergency backup is the recovery path.
func (b *BackupManager) RestoreFrom(archive string) bool {
	if info, err := os.Stat(archive); err != nil || info.IsDir() {
		logger.Error().Str("archive", archive).Msg("backup archive does not exist")
		return false
	}
	if err := scanArchive(archive); err != nil {
		logger.Error().Err(err).Str("archive", archive).Msg("not a valid backup archive")
		return false
	}

	if path, err := b.Create(true); err != nil {
		logger.Warn().Err(err).Msg("could not create emergency backup, continuing with restore")
	} else if path != "" {
		emergency := filepath.Join(filepath.Dir(path), emergencyPrefix+strings.TrimPrefix(filepath.Base(path), backupPrefix))
		if err := os.Rename(path, emergency); err != nil {
			logger.Warn().Err(err).Msg("could not rename emergency backup, continuing with restore")
		}
	}

	if err := os.MkdirAll(b.cfg.BackupDir(), 0o700); err != nil {
		logger.Error().Err(err).Msg("could not create backup directory for extraction")
		return false
	}
	tmpDir, err := os.MkdirTemp(b.cfg.BackupDir(), "restore_temp_")
	if err != nil {
		logger.Error().Err(err).Msg("could not create extraction directory")
		return false
	}
	defer os.RemoveAll(tmpDir)

	if err := extractArchive(archive, tmpDir); err != nil {
		logger.Error().Err(err).Str("archive", archive).Msg("could not extract backup archive")
		return false
	}

	if err := os.MkdirAll(b.cfg.Dir, 0o700); err != nil {
		logger.Error().Err(err).Msg("could not create data directory")
		return false
	}
	for member, live := range b.memberFiles() {
		extracted := filepath.Join(tmpDir, member)
		if _, err := os.Stat(extracted); err != nil {
			continue // member not in this archive
		}
		if err := copyFile(extracted, live); err != nil {
			logger.Error().Err(err).Str("member", member).Msg("could not restore file")
			return false
		}
		logger.Info().Str("member", member).Str("to", live).Msg("restored file")
	}

	logger.Info().Str("archive", archive).Msg("restore complete")
	return true
}

// AttemptAutoRecovery restores from the newest routine backup. It returns
// false when there is no backup to recover from.
func (b *BackupManager) AttemptAutoRecovery() bool {
	backups := b.List()
	if len(backups) == 0 {
		logger.Warn().Msg("no backups available for auto recovery")
		return false
	}
	logger.Info().Str("archive", backups[0].Path).Msg("attempting auto recovery from newest backup")
	return b.RestoreFrom(backups[0].Path)
}

// scanArchive walks the whole archive to prove it is a readable tar.gz.
func scanArchive(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if _, err := tr.Next(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// extractArchive unpacks regular-file members into dir. Member names are
// expected to be flat, anything that would escape dir is skipped.
func extractArchive(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(filepath.Clean(hdr.Name))
		if name != hdr.Name {
			logger.Warn().Str("member", hdr.Name).Msg("skipping archive member with unsafe path")
			continue
		}

		out, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("could not extract member %q: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
