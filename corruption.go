package expenses

import (
	"fmt"
	"sync"
)

// CorruptionNotice describes a ledger file that exists but could not be
// parsed. The load path never fails on corruption: it returns an empty record
// set together with a notice, so the application stays usable and can offer
// recovery from a backup.
type CorruptionNotice struct {
	File   string // path of the unreadable ledger file
	Reason string // short diagnostic, the underlying parse error
}

func (n CorruptionNotice) String() string {
	return fmt.Sprintf("ledger file %q is corrupted: %s", n.File, n.Reason)
}

// noticeSlot holds at most one pending corruption notice.
//
// It is a one-shot notification channel for a UI layer, not a persistent
// health indicator: take drains the slot, and only another corrupt load
// re-arms it.
type noticeSlot struct {
	mu     sync.Mutex
	notice *CorruptionNotice
}

func (s *noticeSlot) post(n *CorruptionNotice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = n
}

func (s *noticeSlot) take() *CorruptionNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = nil
	return n
}
