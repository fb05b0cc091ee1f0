package expenses

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Store owns the canonical ledger file. Every mutation goes through it and
// follows the same shape: validate, take a throttled backup, load the full
// record set, apply the change, save.
//
// The ledger is small enough to rewrite whole on every change, which keeps
// the on-disk format trivially inspectable and the code free of partial
// update paths.
type Store struct {
	cfg     *Config
	backups *BackupManager
	notices noticeSlot
}

// NewStore returns a store for the given configuration.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg, backups: NewBackupManager(cfg)}
}

// Backups exposes the backup manager for the maintenance commands.
func (s *Store) Backups() *BackupManager { return s.backups }

// Config returns the configuration the store was built with.
func (s *Store) Config() *Config { return s.cfg }

// Load reads the ledger. Soft-deleted records are filtered out unless
// includeDeleted is set.
//
// A missing ledger file is a fresh start, not an error. A ledger file that
// exists but cannot be parsed is reported as a corruption notice, returned
// here and kept pending for CheckAndClearCorruption, while the record set
// comes back empty so the caller can keep working and offer recovery. Plain
// I/O failures are returned as errors.
func (s *Store) Load(includeDeleted bool) (Records, *CorruptionNotice, error) {
	path := s.cfg.LedgerFile()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("file", path).Msg("no ledger file yet, starting empty")
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not open ledger file: %w", err)
	}
	defer f.Close()

	records, err := DecodeRecords(f)
	if err != nil {
		notice := &CorruptionNotice{File: path, Reason: err.Error()}
		s.notices.post(notice)
		logger.Error().Err(err).Str("file", path).Msg("ledger file is corrupted, treating it as empty")
		return nil, notice, nil
	}

	if !includeDeleted {
		records = records.Active()
	}
	return records, nil, nil
}

// Save writes the complete record set to the ledger file, replacing it. The
// write goes through a temporary file in the same directory so a crash never
// leaves a half-written ledger behind.
func (s *Store) Save(records Records) error {
	if err := os.MkdirAll(s.cfg.Dir, 0o700); err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.cfg.Dir, ledgerName+".tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary ledger file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if err := EncodeRecords(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.cfg.LedgerFile()); err != nil {
		return fmt.Errorf("could not replace ledger file: %w", err)
	}
	// The ledger is personal finance data, keep it out of group/other reach.
	if err := os.Chmod(s.cfg.LedgerFile(), 0o600); err != nil {
		logger.Warn().Err(err).Msg("could not restrict ledger file permissions")
	}
	logger.Debug().Int("records", len(records)).Msg("ledger saved")
	return nil
}

// Append validates a candidate batch, merges it into the ledger and returns
// how many records were actually added.
//
// The merge deduplicates on the identity key with existing records winning,
// so importing the same file twice is a no-op. Candidates whose key matches a
// currently soft-deleted record are dropped: the user already deleted that
// transaction once, a re-import must not resurrect it.
//
// Rows without their own source are tagged with 'source'. A failed backup is
// logged and does not block the append.
func (s *Store) Append(batch *Batch, source string) (int, error) {
	if err := Validate(batch, ValidateOptions{Currency: s.cfg.Currency}); err != nil {
		return 0, err
	}
	if batch.Len() == 0 {
		logger.Debug().Msg("empty batch, nothing to append")
		return 0, nil
	}

	if _, err := s.backups.Create(false); err != nil {
		logger.Warn().Err(err).Msg("pre-append backup failed, continuing")
	}

	existing, _, err := s.Load(true)
	if err != nil {
		return 0, err
	}
	incoming, err := batch.records(source)
	if err != nil {
		// Validate has already proven the rows parseable, this is a bug guard.
		return 0, fmt.Errorf("could not convert candidate batch: %w", err)
	}

	deletedKeys := existing.Filter(func(r Record) bool { return r.Deleted }).Keys()
	kept := make(Records, 0, len(incoming))
	blocked := 0
	for _, r := range incoming {
		if _, ok := deletedKeys[r.Key()]; ok {
			blocked++
			continue
		}
		kept = append(kept, r)
	}
	if blocked > 0 {
		logger.Info().Int("count", blocked).Msg("skipped candidates matching previously deleted transactions")
	}

	merged := append(existing, kept...).dedupe()
	added := len(merged) - len(existing)
	if err := s.Save(merged); err != nil {
		return 0, err
	}
	logger.Info().Int("added", added).Int("duplicates", len(kept)-added).Str("source", source).Msg("appended records")
	return added, nil
}

// SoftDelete marks every record matching a target's identity key as deleted
// and returns how many records changed. The records stay in the ledger file
// and keep blocking re-imports.
func (s *Store) SoftDelete(targets Records) (int, error) {
	return s.setDeleted(targets, true)
}

// Restore clears the deleted marker on every record matching a target's
// identity key. It is the exact inverse of SoftDelete.
func (s *Store) Restore(targets Records) (int, error) {
	return s.setDeleted(targets, false)
}

func (s *Store) setDeleted(targets Records, deleted bool) (int, error) {
	if len(targets) == 0 {
		return 0, nil
	}

	if _, err := s.backups.Create(false); err != nil {
		logger.Warn().Err(err).Msg("pre-change backup failed, continuing")
	}

	all, _, err := s.Load(true)
	if err != nil {
		return 0, err
	}

	keys := targets.Keys()
	changed := 0
	for i := range all {
		if _, ok := keys[all[i].Key()]; !ok {
			continue
		}
		if all[i].Deleted != deleted {
			all[i].Deleted = deleted
			changed++
		}
	}
	if changed == 0 {
		logger.Warn().Int("targets", len(targets)).Msg("no ledger record matched the requested change")
		return 0, nil
	}

	if err := s.Save(all); err != nil {
		return 0, err
	}
	logger.Info().Int("count", changed).Bool("deleted", deleted).Msg("updated records")
	return changed, nil
}

// Fmt rewrites the ledger file in canonical form: records sorted by date,
// identity-key duplicates collapsed keeping the first occurrence. It reports
// how many records were kept and how many duplicates were dropped.
func (s *Store) Fmt() (kept, dropped int, err error) {
	all, notice, err := s.Load(true)
	if err != nil {
		return 0, 0, err
	}
	if notice != nil {
		return 0, 0, fmt.Errorf("cannot format a corrupted ledger: %s", notice.Reason)
	}
	if len(all) == 0 {
		return 0, 0, nil
	}

	if _, err := s.backups.Create(false); err != nil {
		logger.Warn().Err(err).Msg("pre-format backup failed, continuing")
	}

	formatted := all.dedupe().Sorted()
	if err := s.Save(formatted); err != nil {
		return 0, 0, err
	}
	logger.Info().Int("kept", len(formatted)).Int("dropped", len(all)-len(formatted)).Msg("ledger formatted")
	return len(formatted), len(all) - len(formatted), nil
}

// CheckAndClearCorruption returns the pending corruption notice, if any, and
// clears it. Each corrupt load is reported exactly once: the caller shows it,
// offers recovery, and the slot stays quiet until another load goes wrong.
func (s *Store) CheckAndClearCorruption() *CorruptionNotice {
	return s.notices.take()
}
