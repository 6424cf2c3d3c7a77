package domain

import "github.com/shopspring/decimal"

// Account holds the per-client balance state. Accounts are created lazily on
// the first record that references their client id and are mutated only by
// the engine, one record at a time. Total is never stored: it is always
// Available + Held, so the invariant holds by construction.
type Account struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// NewAccount creates an unlocked account with zero balances.
func NewAccount(client uint16) *Account {
	return &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total is the account's full balance: available plus held.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// HasAvailable reports whether the available balance covers amount.
func (a *Account) HasAvailable(amount decimal.Decimal) bool {
	return a.Available.GreaterThanOrEqual(amount)
}

// Credit adds a deposited amount to the available balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Available = a.Available.Add(amount)
}

// Debit removes a withdrawn amount from the available balance. Callers check
// HasAvailable first: a withdrawal must never drive available negative.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
}

// Hold freezes a disputed amount, moving it from available to held.
// Total is unchanged.
func (a *Account) Hold(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
}

// Release returns a resolved amount from held back to available.
// Total is unchanged.
func (a *Account) Release(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
}

// ChargeBack removes a disputed amount from held for good and locks the
// account. A locked account ignores every further transaction for the rest
// of the run.
func (a *Account) ChargeBack(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Locked = true
}
