package txlog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/id"
	"github.com/mokbank/mokbank/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func incomeTx(when time.Time, amount, category string) model.Transaction {
	return model.Transaction{
		ID:          id.New(),
		Type:        model.TxIncome,
		Amount:      dec(amount),
		Category:    category,
		Description: "reward",
		Date:        when,
	}
}

func transferPair(when time.Time, amount string) []model.Transaction {
	group := id.New()
	return []model.Transaction{
		{ID: id.FormatLegID(group, 0), GroupID: group, Type: model.TxExpense, Amount: dec(amount), Category: "savings", Date: when},
		{ID: id.FormatLegID(group, 1), GroupID: group, Type: model.TxSaving, Amount: dec(amount), Category: "investment", Date: when},
	}
}
