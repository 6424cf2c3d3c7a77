package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionKind enumerates the record types accepted on the input stream.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindDispute    TransactionKind = "dispute"
	KindResolve    TransactionKind = "resolve"
	KindChargeback TransactionKind = "chargeback"
)

// ParseKind maps a raw input token to a TransactionKind.
func ParseKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	}

	return "", fmt.Errorf("unknown transaction type %q", s)
}

// RequiresAmount reports whether records of this kind carry their own amount.
// Dispute-family records recover the amount from history instead.
func (k TransactionKind) RequiresAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Record is one immutable event from the input stream.
//
// Tx is globally unique across deposits and withdrawals; for the dispute
// family it references the tx id of a prior deposit or withdrawal.
type Record struct {
	Kind   TransactionKind
	Client uint16
	Tx     uint32
	Amount *decimal.Decimal // nil for dispute-family records
}

// DisputeState tracks where a recorded transaction sits in its dispute
// lifecycle. StateChargedBack is terminal; StateResolved behaves like
// StateNone for future disputes and exists for the audit trail.
type DisputeState string

const (
	StateNone        DisputeState = "NONE"
	StateDisputed    DisputeState = "DISPUTED"
	StateResolved    DisputeState = "RESOLVED"
	StateChargedBack DisputeState = "CHARGED_BACK"
)

// HistoryEntry is the audit record kept for every accepted deposit and
// withdrawal. Amount is the original transaction amount, always non-negative.
type HistoryEntry struct {
	Client uint16
	Amount decimal.Decimal
	State  DisputeState
}

// Disputable reports whether a new dispute may be raised against the entry.
func (e HistoryEntry) Disputable() bool {
	return e.State == StateNone || e.State == StateResolved
}
