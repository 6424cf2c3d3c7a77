package engine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/punchamoorthee/payengine/internal/domain"
)

// ---------------------------------------------------------------------------
// Deposits and withdrawals
// ---------------------------------------------------------------------------

func TestDepositsAccumulate(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 2, "3.0"))

	assertBalances(t, account(t, e, 1), "8.0", "0", false)
}

func TestWithdrawal(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "8.0"))
	e.Process(withdrawal(1, 2, "2.5"))

	assertBalances(t, account(t, e, 1), "5.5", "0", false)
}

func TestWithdrawalInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 2, "3.0"))

	before := account(t, e, 1)
	e.Process(withdrawal(1, 3, "10.0"))

	assert.Equal(t, before, account(t, e, 1))

	// The rejected withdrawal must not be in history either: disputing its
	// tx id is an unknown reference.
	e.Process(dispute(1, 3))
	assertBalances(t, account(t, e, 1), "8.0", "0", false)
}

func TestDuplicateTxIDRejected(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 1, "5.0"))
	assertBalances(t, account(t, e, 1), "5.0", "0", false)

	// Withdrawals share the tx id namespace with deposits.
	e.Process(withdrawal(1, 1, "1.0"))
	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

// ---------------------------------------------------------------------------
// Dispute lifecycle
// ---------------------------------------------------------------------------

func TestDisputeHoldsFunds(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 2, "3.0"))
	e.Process(dispute(1, 1))

	acct := account(t, e, 1)
	assertBalances(t, acct, "3.0", "5.0", false)
	assert.True(t, acct.Total().Equal(decimal.RequireFromString("8.0")))
}

func TestDisputeAgainstWithdrawal(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "10.0"))
	e.Process(withdrawal(1, 2, "4.0"))
	e.Process(dispute(1, 2))

	assertBalances(t, account(t, e, 1), "2.0", "4.0", false)
}

func TestDisputeUnknownReference(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(dispute(2, 99))

	// The account is still created lazily, with zero balances.
	assertBalances(t, account(t, e, 2), "0", "0", false)
}

func TestDisputeClientMismatch(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(dispute(2, 1))

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
	assertBalances(t, account(t, e, 2), "0", "0", false)
}

func TestSecondDisputeIsNoOp(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(dispute(1, 1))
	e.Process(dispute(1, 1))

	assertBalances(t, account(t, e, 1), "0", "5.0", false)
}

func TestResolveReleasesHold(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(dispute(1, 1))
	e.Process(resolve(1, 1))

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestResolveRequiresActiveDispute(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(resolve(1, 1))

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestResolveThenRedispute(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(dispute(1, 1))
	e.Process(resolve(1, 1))
	e.Process(dispute(1, 1))

	assertBalances(t, account(t, e, 1), "0", "5.0", false)
}

// ---------------------------------------------------------------------------
// Chargebacks and locking
// ---------------------------------------------------------------------------

func TestChargebackLocksAccount(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 2, "3.0"))
	e.Process(dispute(1, 1))
	e.Process(chargeback(1, 1))

	assertBalances(t, account(t, e, 1), "3.0", "0", true)
}

func TestChargebackRequiresActiveDispute(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(chargeback(1, 1))

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestLockedAccountIgnoresEverything(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(deposit(1, 2, "3.0"))
	e.Process(dispute(1, 2))
	e.Process(chargeback(1, 2))

	locked := account(t, e, 1)
	require.True(t, locked.Locked)

	e.Process(deposit(1, 4, "100.0"))
	e.Process(withdrawal(1, 5, "1.0"))
	e.Process(dispute(1, 1))
	e.Process(resolve(1, 1))
	e.Process(chargeback(1, 1))

	assert.Equal(t, locked, account(t, e, 1))
}

func TestChargebackAfterResolveRejected(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(1, 1, "5.0"))
	e.Process(dispute(1, 1))
	e.Process(resolve(1, 1))
	e.Process(chargeback(1, 1))

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

// ---------------------------------------------------------------------------
// Stream-level behavior
// ---------------------------------------------------------------------------

func TestTotalInvariantAfterEveryRecord(t *testing.T) {
	e := New(zap.NewNop())

	stream := []domain.Record{
		deposit(1, 1, "5.0"),
		deposit(1, 2, "3.0"),
		withdrawal(1, 3, "10.0"),
		dispute(1, 1),
		withdrawal(1, 4, "1.5"),
		resolve(1, 1),
		dispute(1, 2),
		chargeback(1, 2),
		deposit(1, 5, "100.0"),
	}

	for _, rec := range stream {
		e.Process(rec)

		acct := account(t, e, 1)
		assert.True(t, acct.Total().Equal(acct.Available.Add(acct.Held)),
			"total invariant broken after %s tx=%d", rec.Kind, rec.Tx)
		assert.True(t, acct.Held.GreaterThanOrEqual(decimal.Zero),
			"held went negative after %s tx=%d", rec.Kind, rec.Tx)
	}

	// 5 + 3 - 1.5, then the disputed 3.0 charged back.
	assertBalances(t, account(t, e, 1), "3.5", "0", true)
}

func TestRunConsumesUntilClose(t *testing.T) {
	e := New(zap.NewNop())
	records := make(chan domain.Record, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run(records)
	}()

	records <- deposit(1, 1, "2.0")
	records <- deposit(2, 2, "7.0")
	records <- withdrawal(2, 3, "5.0")
	close(records)
	<-done

	assertBalances(t, account(t, e, 1), "2.0", "0", false)
	assertBalances(t, account(t, e, 2), "2.0", "0", false)
}

func TestSnapshotSortedByClient(t *testing.T) {
	e := New(zap.NewNop())

	e.Process(deposit(3, 1, "1"))
	e.Process(deposit(1, 2, "1"))
	e.Process(deposit(2, 3, "1"))

	snap := e.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, uint16(1), snap[0].Client)
	assert.Equal(t, uint16(2), snap[1].Client)
	assert.Equal(t, uint16(3), snap[2].Client)
}

func TestRejectedCounterIncrements(t *testing.T) {
	counter := txRejected.WithLabelValues(string(domain.KindWithdrawal), "insufficient_funds")
	before := testutil.ToFloat64(counter)

	e := New(zap.NewNop())
	e.Process(withdrawal(1, 1, "5.0"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func deposit(client uint16, tx uint32, amount string) domain.Record {
	a := decimal.RequireFromString(amount)
	return domain.Record{Kind: domain.KindDeposit, Client: client, Tx: tx, Amount: &a}
}

func withdrawal(client uint16, tx uint32, amount string) domain.Record {
	a := decimal.RequireFromString(amount)
	return domain.Record{Kind: domain.KindWithdrawal, Client: client, Tx: tx, Amount: &a}
}

func dispute(client uint16, tx uint32) domain.Record {
	return domain.Record{Kind: domain.KindDispute, Client: client, Tx: tx}
}

func resolve(client uint16, tx uint32) domain.Record {
	return domain.Record{Kind: domain.KindResolve, Client: client, Tx: tx}
}

func chargeback(client uint16, tx uint32) domain.Record {
	return domain.Record{Kind: domain.KindChargeback, Client: client, Tx: tx}
}

func account(t *testing.T, e *Engine, client uint16) domain.Account {
	t.Helper()

	for _, acct := range e.Snapshot() {
		if acct.Client == client {
			return acct
		}
	}

	t.Fatalf("no account for client %d", client)
	return domain.Account{}
}

func assertBalances(t *testing.T, acct domain.Account, available, held string, locked bool) {
	t.Helper()

	assert.True(t, acct.Available.Equal(decimal.RequireFromString(available)),
		"available = %s, want %s", acct.Available, available)
	assert.True(t, acct.Held.Equal(decimal.RequireFromString(held)),
		"held = %s, want %s", acct.Held, held)
	assert.True(t, acct.Total().Equal(acct.Available.Add(acct.Held)))
	assert.Equal(t, locked, acct.Locked)
}
