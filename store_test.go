package expenses

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func batchOf(rows ...Candidate) *Batch {
	b := NewBatch("Date", "Merchant", "Amount")
	b.Add(rows...)
	return b
}

func mustLoad(t *testing.T, s *Store, includeDeleted bool) Records {
	t.Helper()
	records, notice, err := s.Load(includeDeleted)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if notice != nil {
		t.Fatalf("Load() reported unexpected corruption: %v", notice)
	}
	return records
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(testConfig(t))
	records := mustLoad(t, s, true)
	if len(records) != 0 {
		t.Errorf("Load() on a fresh directory = %d records, want 0", len(records))
	}
}

func TestStoreAppendIdempotent(t *testing.T) {
	s := NewStore(testConfig(t))
	batch := batchOf(
		Candidate{Date: "2025-01-15", Merchant: "Coffee Corner", Amount: "3.50"},
		Candidate{Date: "2025-01-16", Merchant: "Books & Co", Amount: "10"},
	)

	added, err := s.Append(batch, "CSV Import")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if added != 2 {
		t.Errorf("Append() added %d records, want 2", added)
	}
	if added, err = s.Append(batch, "CSV Import"); err != nil {
		t.Fatalf("second Append() error = %v", err)
	} else if added != 0 {
		t.Errorf("second Append() added %d records, want 0", added)
	}
	records := mustLoad(t, s, false)
	if len(records) != 2 {
		t.Fatalf("have %d records after appending the same batch twice, want 2", len(records))
	}

	// 10 and 10.00 are the same transaction, and the existing record wins, so
	// the original source tag survives the re-import.
	again := batchOf(Candidate{Date: "2025-01-16", Merchant: "Books & Co", Amount: "10.00"})
	if added, err := s.Append(again, "Manual"); err != nil {
		t.Fatal(err)
	} else if added != 0 {
		t.Errorf("Append() of an equivalent amount form added %d records, want 0", added)
	}
	records = mustLoad(t, s, false)
	if len(records) != 2 {
		t.Fatalf("have %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Source != "CSV Import" {
			t.Errorf("record %s has source %q, want the original CSV Import", r.Merchant, r.Source)
		}
	}
}

func TestStoreReimportGuard(t *testing.T) {
	s := NewStore(testConfig(t))
	row := Candidate{Date: "2025-02-01", Merchant: "Gym", Amount: "25.00"}
	if _, err := s.Append(batchOf(row), "Manual"); err != nil {
		t.Fatal(err)
	}

	if n, err := s.SoftDelete(mustLoad(t, s, false)); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	} else if n != 1 {
		t.Fatalf("SoftDelete() changed %d records, want 1", n)
	}
	if got := mustLoad(t, s, false); len(got) != 0 {
		t.Fatalf("have %d active records after delete, want 0", len(got))
	}

	// Importing the same row again must not resurrect the deleted record.
	if added, err := s.Append(batchOf(row), "CSV Import"); err != nil {
		t.Fatal(err)
	} else if added != 0 {
		t.Errorf("re-import added %d records, want 0", added)
	}
	if got := mustLoad(t, s, false); len(got) != 0 {
		t.Errorf("re-import resurrected a deleted record: %v", got)
	}
	full := mustLoad(t, s, true)
	if len(full) != 1 || !full[0].Deleted {
		t.Errorf("full ledger = %+v, want the single record still deleted", full)
	}
}

func TestStoreSoftDeleteRestore(t *testing.T) {
	s := NewStore(testConfig(t))
	batch := batchOf(
		Candidate{Date: "2025-03-01", Merchant: "Cafe", Amount: "4.00"},
		Candidate{Date: "2025-03-02", Merchant: "Market", Amount: "23.10"},
		Candidate{Date: "2025-03-03", Merchant: "Cinema", Amount: "12.00"},
	)
	if _, err := s.Append(batch, "Manual"); err != nil {
		t.Fatal(err)
	}

	target := mustLoad(t, s, false).Filter(func(r Record) bool { return r.Merchant == "Cafe" })
	if len(target) != 1 {
		t.Fatalf("found %d Cafe records, want 1", len(target))
	}

	if n, err := s.SoftDelete(target); err != nil || n != 1 {
		t.Fatalf("SoftDelete() = %d, %v, want 1 change", n, err)
	}
	if got := mustLoad(t, s, false); len(got) != 2 {
		t.Fatalf("have %d active records after delete, want 2", len(got))
	}
	if got := mustLoad(t, s, true); len(got) != 3 {
		t.Fatalf("have %d total records after delete, want 3", len(got))
	}

	if n, err := s.Restore(target); err != nil || n != 1 {
		t.Fatalf("Restore() = %d, %v, want 1 change", n, err)
	}
	records := mustLoad(t, s, false)
	if len(records) != 3 {
		t.Fatalf("have %d active records after restore, want 3", len(records))
	}
	for _, r := range records {
		if r.Deleted {
			t.Errorf("record %s still marked deleted after restore", r.Merchant)
		}
	}

	// Empty target sets are a no-op, not an error.
	if n, err := s.SoftDelete(nil); err != nil || n != 0 {
		t.Errorf("SoftDelete(nil) = %d, %v, want a no-op", n, err)
	}
}

func TestStoreAppendRejectsInvalidBatch(t *testing.T) {
	s := NewStore(testConfig(t))
	b := NewBatch("Date", "Amount") // Merchant column missing
	b.Add(Candidate{Date: "2025-01-15", Amount: "5"})

	_, err := s.Append(b, "Manual")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Append() error = %v, want a *ValidationError", err)
	}
	if _, statErr := os.Stat(s.cfg.LedgerFile()); !os.IsNotExist(statErr) {
		t.Error("a rejected batch must not touch the ledger file")
	}
}

func TestStoreAppendBacksUpExistingLedger(t *testing.T) {
	s := NewStore(testConfig(t))

	// First append: nothing on disk yet, so there is nothing to back up.
	if _, err := s.Append(batchOf(Candidate{Date: "2025-01-15", Merchant: "A", Amount: "1"}), "Manual"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Backups().List()); n != 0 {
		t.Fatalf("have %d backups after the first append, want 0", n)
	}

	// Second append snapshots the state before mutating it.
	if _, err := s.Append(batchOf(Candidate{Date: "2025-01-16", Merchant: "B", Amount: "2"}), "Manual"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Backups().List()); n != 1 {
		t.Fatalf("have %d backups after the second append, want 1", n)
	}
}

func TestStoreSaveRoundTrip(t *testing.T) {
	s := NewStore(testConfig(t))

	income := rec("2025-04-02", "Payroll", "1200.00")
	income.Type = Income
	income.Source = "TrueLayer - Monzo"
	deleted := rec("2025-04-03", "Impulse Buy", "99.99")
	deleted.Deleted = true
	want := Records{rec("2025-04-01", "Cafe", "4.20"), income, deleted}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(s.cfg.LedgerFile())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("ledger file permissions = %o, want 600", perm)
	}

	got := mustLoad(t, s, true)
	if len(got) != len(want) {
		t.Fatalf("loaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if active := mustLoad(t, s, false); len(active) != 2 {
		t.Errorf("have %d active records, want 2", len(active))
	}
}

func TestStoreFmt(t *testing.T) {
	s := NewStore(testConfig(t))

	// Save takes the records as given, so a hand-built file can hold
	// duplicates and out-of-order dates for Fmt to clean up.
	records := Records{
		rec("2025-05-02", "B", "2.00"),
		rec("2025-05-01", "A", "1.00"),
		rec("2025-05-02", "B", "2.00"),
	}
	if err := s.Save(records); err != nil {
		t.Fatal(err)
	}

	kept, dropped, err := s.Fmt()
	if err != nil {
		t.Fatalf("Fmt() error = %v", err)
	}
	if kept != 2 || dropped != 1 {
		t.Errorf("Fmt() = %d kept, %d dropped, want 2 kept, 1 dropped", kept, dropped)
	}

	got := mustLoad(t, s, true)
	if len(got) != 2 || got[0].Merchant != "A" || got[1].Merchant != "B" {
		t.Errorf("formatted ledger = %+v, want A then B", got)
	}
}

func TestStoreCorruptionNoticeOneShot(t *testing.T) {
	cfg := testConfig(t)
	s := NewStore(cfg)
	if err := os.WriteFile(cfg.LedgerFile(), []byte("\x00\x01 definitely not a ledger"), 0o600); err != nil {
		t.Fatal(err)
	}

	records, notice, err := s.Load(false)
	if err != nil {
		t.Fatalf("Load() error = %v, corruption must not be an error", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() of a corrupt file = %d records, want 0", len(records))
	}
	if notice == nil {
		t.Fatal("Load() of a corrupt file returned no notice")
	}
	if notice.File != cfg.LedgerFile() || !strings.Contains(notice.String(), "corrupted") {
		t.Errorf("notice = %v", notice)
	}

	if got := s.CheckAndClearCorruption(); got == nil {
		t.Fatal("CheckAndClearCorruption() = nil, want the pending notice")
	}
	if got := s.CheckAndClearCorruption(); got != nil {
		t.Errorf("CheckAndClearCorruption() = %v on the second call, want nil", got)
	}

	// Another corrupt load re-arms the notice.
	if _, _, err := s.Load(true); err != nil {
		t.Fatal(err)
	}
	if got := s.CheckAndClearCorruption(); got == nil {
		t.Error("notice not re-armed by a second corrupt load")
	}
}
