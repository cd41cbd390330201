package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction row.
type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
	TxSaving  TransactionType = "saving"
)

// ParseTransactionType validates a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TxIncome, TxExpense, TxSaving:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Categories used by the engine.
const (
	CategoryCash        = "cash"
	CategoryUSDC        = "usdc"
	CategoryTravelMiles = "travel_miles"
	CategoryLearning    = "learning"
	CategoryMission     = "mission"
	CategoryCrypto      = "crypto"
	CategoryGoal        = "goal"
)

// Transaction is an immutable audit record of a balance-affecting event.
type Transaction struct {
	ID          string
	GroupID     string // shared by both legs of a transfer, empty otherwise
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}
