package engine

import (
	"errors"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/punchamoorthee/payengine/internal/domain"
	"github.com/punchamoorthee/payengine/internal/store"
)

// Metrics
var (
	txProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payengine_transactions_processed_total",
		Help: "Transactions applied to an account",
	}, []string{"type"})

	txRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payengine_transactions_rejected_total",
		Help: "Transactions dropped without any state change",
	}, []string{"type", "reason"})
)

// Engine drives the account state machine across the transaction stream. It
// is the sole owner of the account map and the transaction history, and it is
// strictly single-consumer: records are applied one at a time, in arrival
// order, because a dispute must observe the transaction it references as
// already applied.
type Engine struct {
	accounts  map[uint16]*domain.Account
	history   *store.History
	logger    *zap.Logger
	processed uint64
	rejected  uint64
}

// New creates an engine with no accounts and an empty history.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		accounts: make(map[uint16]*domain.Account),
		history:  store.NewHistory(),
		logger:   logger,
	}
}

// Run consumes records until the channel is closed, then logs a run summary.
// There is no cancellation path: the stream runs to completion.
func (e *Engine) Run(records <-chan domain.Record) {
	for rec := range records {
		e.Process(rec)
	}

	e.logger.Info("stream exhausted",
		zap.Uint64("processed", e.processed),
		zap.Uint64("rejected", e.rejected),
		zap.Int("accounts", len(e.accounts)),
		zap.Int("recorded_transactions", e.history.Len()),
	)
}

// Process applies one record. It never fails: every inapplicable condition is
// a silent rejection, so one bad record cannot stall the rest of the stream.
func (e *Engine) Process(rec domain.Record) {
	acct := e.account(rec.Client)
	if acct.Locked {
		e.reject(rec, domain.ErrAccountLocked)
		return
	}

	switch rec.Kind {
	case domain.KindDeposit:
		e.deposit(acct, rec)
	case domain.KindWithdrawal:
		e.withdraw(acct, rec)
	case domain.KindDispute:
		e.dispute(acct, rec)
	case domain.KindResolve:
		e.resolve(acct, rec)
	case domain.KindChargeback:
		e.chargeback(acct, rec)
	}
}

// Snapshot returns the final state of every account ever touched, sorted by
// client id so the report is deterministic.
func (e *Engine) Snapshot() []domain.Account {
	out := make([]domain.Account, 0, len(e.accounts))
	for _, acct := range e.accounts {
		out = append(out, *acct)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })

	return out
}

func (e *Engine) deposit(acct *domain.Account, rec domain.Record) {
	if rec.Amount == nil {
		return
	}

	if err := e.history.Record(rec.Tx, rec.Client, *rec.Amount); err != nil {
		e.reject(rec, err)
		return
	}

	acct.Credit(*rec.Amount)
	e.accept(rec)
}

func (e *Engine) withdraw(acct *domain.Account, rec domain.Record) {
	if rec.Amount == nil {
		return
	}

	if !acct.HasAvailable(*rec.Amount) {
		e.reject(rec, domain.ErrInsufficientFunds)
		return
	}

	if err := e.history.Record(rec.Tx, rec.Client, *rec.Amount); err != nil {
		e.reject(rec, err)
		return
	}

	acct.Debit(*rec.Amount)
	e.accept(rec)
}

func (e *Engine) dispute(acct *domain.Account, rec domain.Record) {
	entry, err := e.reference(rec)
	if err != nil {
		e.reject(rec, err)
		return
	}

	// A second dispute against an already-disputed tx lands here too.
	if !entry.Disputable() {
		e.reject(rec, domain.ErrInvalidDisputeState)
		return
	}

	acct.Hold(entry.Amount)
	e.history.Mark(rec.Tx, domain.StateDisputed)
	e.accept(rec)
}

func (e *Engine) resolve(acct *domain.Account, rec domain.Record) {
	entry, err := e.reference(rec)
	if err != nil {
		e.reject(rec, err)
		return
	}

	if entry.State != domain.StateDisputed {
		e.reject(rec, domain.ErrInvalidDisputeState)
		return
	}

	acct.Release(entry.Amount)
	e.history.Mark(rec.Tx, domain.StateResolved)
	e.accept(rec)
}

func (e *Engine) chargeback(acct *domain.Account, rec domain.Record) {
	entry, err := e.reference(rec)
	if err != nil {
		e.reject(rec, err)
		return
	}

	if entry.State != domain.StateDisputed {
		e.reject(rec, domain.ErrInvalidDisputeState)
		return
	}

	acct.ChargeBack(entry.Amount)
	e.history.Mark(rec.Tx, domain.StateChargedBack)
	e.accept(rec)
}

// reference resolves a dispute-family record to its history entry.
func (e *Engine) reference(rec domain.Record) (domain.HistoryEntry, error) {
	entry, ok := e.history.Lookup(rec.Tx)
	if !ok {
		return domain.HistoryEntry{}, domain.ErrUnknownTransaction
	}

	if entry.Client != rec.Client {
		return domain.HistoryEntry{}, domain.ErrClientMismatch
	}

	return entry, nil
}

func (e *Engine) account(client uint16) *domain.Account {
	acct, ok := e.accounts[client]
	if !ok {
		acct = domain.NewAccount(client)
		e.accounts[client] = acct
	}

	return acct
}

func (e *Engine) accept(rec domain.Record) {
	e.processed++
	txProcessed.WithLabelValues(string(rec.Kind)).Inc()
}

func (e *Engine) reject(rec domain.Record, reason error) {
	e.rejected++
	txRejected.WithLabelValues(string(rec.Kind), rejectReason(reason)).Inc()

	if ce := e.logger.Check(zap.DebugLevel, "transaction rejected"); ce != nil {
		ce.Write(
			zap.String("type", string(rec.Kind)),
			zap.Uint16("client", rec.Client),
			zap.Uint32("tx", rec.Tx),
			zap.Error(reason),
		)
	}
}

// rejectReason maps a rejection error to a stable metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateTransaction):
		return "duplicate_tx"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrUnknownTransaction):
		return "unknown_tx"
	case errors.Is(err, domain.ErrClientMismatch):
		return "client_mismatch"
	case errors.Is(err, domain.ErrInvalidDisputeState):
		return "dispute_state"
	case errors.Is(err, domain.ErrAccountLocked):
		return "account_locked"
	}

	return "other"
}
