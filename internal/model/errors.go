package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds means a balance would go negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientTokens means a MokToken debit exceeds the token balance.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrSameAccount means a transfer names the same source and destination.
	ErrSameAccount = errors.New("source and destination are the same account")
	// ErrOverContribution means a goal contribution exceeds the remaining target.
	ErrOverContribution = errors.New("contribution exceeds remaining goal amount")
	// ErrInvalidAmount means a non-positive or out-of-range amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPersistence means the external store rejected a commit. Callers keep
	// the pre-operation snapshot.
	ErrPersistence = errors.New("persistence failure")

	ErrUnknownAccount   = errors.New("unknown account")
	ErrMissionCompleted = errors.New("mission already completed")
	ErrNotFound         = errors.New("not found")
)

// BalanceError describes a rejected debit on a single field.
type BalanceError struct {
	Field string
	Have  string
	Need  string
	Err   error // ErrInsufficientFunds or ErrInsufficientTokens
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: %s has %s, needs %s", e.Err, e.Field, e.Have, e.Need)
}

func (e *BalanceError) Unwrap() error {
	return e.Err
}
