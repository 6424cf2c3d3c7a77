package store

import (
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payengine/internal/domain"
)

// History is the process-lifetime record of every accepted deposit and
// withdrawal, keyed by tx id. Dispute-family records resolve their amounts
// through it. History owns its entries and never touches account balances.
type History struct {
	entries map[uint32]*domain.HistoryEntry
}

// NewHistory creates an empty transaction history.
func NewHistory() *History {
	return &History{entries: make(map[uint32]*domain.HistoryEntry)}
}

// Record inserts a new entry for an accepted deposit or withdrawal.
// Returns ErrDuplicateTransaction if the tx id was already recorded; the
// existing entry is left untouched.
func (h *History) Record(tx uint32, client uint16, amount decimal.Decimal) error {
	if _, ok := h.entries[tx]; ok {
		return domain.ErrDuplicateTransaction
	}

	h.entries[tx] = &domain.HistoryEntry{
		Client: client,
		Amount: amount,
		State:  domain.StateNone,
	}

	return nil
}

// Lookup returns a copy of the entry for tx, if one exists.
func (h *History) Lookup(tx uint32) (domain.HistoryEntry, bool) {
	entry, ok := h.entries[tx]
	if !ok {
		return domain.HistoryEntry{}, false
	}

	return *entry, true
}

// Mark transitions the dispute state of tx. Validating that the transition
// is legal is the caller's job; marking an unknown tx is a no-op.
func (h *History) Mark(tx uint32, state domain.DisputeState) {
	if entry, ok := h.entries[tx]; ok {
		entry.State = state
	}
}

// Len returns the number of recorded transactions.
func (h *History) Len() int {
	return len(h.entries)
}
