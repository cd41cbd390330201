package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountField names one of the monetary sub-accounts of an Account.
type AccountField string

const (
	FieldSavings     AccountField = "savings"
	FieldInvestment  AccountField = "investment"
	FieldCrypto      AccountField = "crypto"
	FieldUSDC        AccountField = "usdc"
	FieldTravelMiles AccountField = "travel_miles"
)

// MonetaryFields lists every sub-account in display order.
var MonetaryFields = []AccountField{
	FieldSavings,
	FieldInvestment,
	FieldCrypto,
	FieldUSDC,
	FieldTravelMiles,
}

// ParseAccountField validates a sub-account name.
func ParseAccountField(s string) (AccountField, error) {
	for _, f := range MonetaryFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccount, s)
}

// Account is the full economy state of one user.
type Account struct {
	UserID      string
	DisplayName string
	MokTokens   int64
	XP          int64
	Level       int64
	Savings     decimal.Decimal
	Investment  decimal.Decimal
	Crypto      decimal.Decimal
	USDC        decimal.Decimal
	TravelMiles decimal.Decimal
	UpdatedAt   time.Time
}

// NewAccount returns an empty account for userID.
func NewAccount(userID, displayName string) Account {
	return Account{
		UserID:      userID,
		DisplayName: displayName,
		Savings:     decimal.Zero,
		Investment:  decimal.Zero,
		Crypto:      decimal.Zero,
		USDC:        decimal.Zero,
		TravelMiles: decimal.Zero,
	}
}

// Balance returns the balance of a monetary sub-account.
func (a Account) Balance(f AccountField) (decimal.Decimal, error) {
	switch f {
	case FieldSavings:
		return a.Savings, nil
	case FieldInvestment:
		return a.Investment, nil
	case FieldCrypto:
		return a.Crypto, nil
	case FieldUSDC:
		return a.USDC, nil
	case FieldTravelMiles:
		return a.TravelMiles, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownAccount, f)
}

// WithBalance returns a copy of a with sub-account f set to v.
func (a Account) WithBalance(f AccountField, v decimal.Decimal) (Account, error) {
	switch f {
	case FieldSavings:
		a.Savings = v
	case FieldInvestment:
		a.Investment = v
	case FieldCrypto:
		a.Crypto = v
	case FieldUSDC:
		a.USDC = v
	case FieldTravelMiles:
		a.TravelMiles = v
	default:
		return a, fmt.Errorf("%w: %q", ErrUnknownAccount, f)
	}
	return a, nil
}
