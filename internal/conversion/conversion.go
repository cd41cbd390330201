// Package conversion exchanges MokTokens for monetary assets.
package conversion

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/ledger"
	"github.com/mokbank/mokbank/internal/model"
	"github.com/mokbank/mokbank/internal/rates"
)

// Result is the outcome of a successful conversion.
type Result struct {
	Account     model.Account
	Credited    decimal.Decimal
	Transaction model.Transaction
}

// Service converts tokens using a rate table.
type Service struct {
	table  rates.Table
	ledger ledger.Ledger
}

// NewService creates a conversion Service.
func NewService(t rates.Table) *Service {
	return &Service{table: t, ledger: ledger.New(t)}
}

// Convert spends amount tokens and credits the matching asset balance.
// XP is never touched.
func (s *Service) Convert(acct model.Account, amount int64, asset rates.Asset, now time.Time) (Result, error) {
	if amount <= 0 {
		return Result{}, fmt.Errorf("%w: convert %d tokens", model.ErrInvalidAmount, amount)
	}
	if amount > acct.MokTokens {
		return Result{}, &model.BalanceError{
			Field: "mok_tokens",
			Have:  fmt.Sprint(acct.MokTokens),
			Need:  fmt.Sprint(amount),
			Err:   model.ErrInsufficientTokens,
		}
	}

	rate, err := s.table.Rate(asset)
	if err != nil {
		return Result{}, err
	}
	field, category := target(asset)
	credited := decimal.NewFromInt(amount).Mul(rate)

	next, err := s.ledger.Apply(acct, ledger.Delta{
		Monetary: []ledger.MonetaryDelta{{Field: field, Amount: credited}},
		Progress: ledger.ProgressDelta{Tokens: -amount},
	})
	if err != nil {
		return Result{}, fmt.Errorf("applying conversion: %w", err)
	}

	return Result{
		Account:  next,
		Credited: credited,
		Transaction: model.Transaction{
			Type:        model.TxSaving,
			Amount:      credited,
			Category:    category,
			Description: fmt.Sprintf("Converted %d MokTokens to %s %s", amount, credited.String(), asset),
			Date:        now,
		},
	}, nil
}

func target(a rates.Asset) (model.AccountField, string) {
	switch a {
	case rates.AssetUSDC:
		return model.FieldUSDC, model.CategoryUSDC
	case rates.AssetTravelMiles:
		return model.FieldTravelMiles, model.CategoryTravelMiles
	default:
		return model.FieldSavings, model.CategoryCash
	}
}
