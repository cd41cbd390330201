package txlog

import (
	"fmt"

	"github.com/mokbank/mokbank/internal/id"
	"github.com/mokbank/mokbank/internal/model"
)

// Rule numbers reported in ValidationError.
const (
	RuleRow      = 1 // id, type, date and amount present and sane
	RuleUnique   = 2 // transaction IDs never repeat
	RuleTransfer = 3 // transfer groups are one expense + one saving of equal amount
)

// ValidationError describes a single audit-rule violation.
type ValidationError struct {
	Rule        int
	TxID        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", e.Rule, e.TxID, e.Description)
}

// ValidateRow checks the per-row rules of a single transaction.
func ValidateRow(tx model.Transaction) []ValidationError {
	var errs []ValidationError
	add := func(desc string) {
		errs = append(errs, ValidationError{Rule: RuleRow, TxID: tx.ID, Description: desc})
	}

	if tx.ID == "" {
		add("missing transaction id")
	}
	if _, err := model.ParseTransactionType(string(tx.Type)); err != nil {
		add(err.Error())
	}
	if tx.Date.IsZero() {
		add("missing date")
	}
	if !tx.Amount.IsPositive() {
		add(fmt.Sprintf("amount %s must be positive", tx.Amount))
	}
	if tx.GroupID != "" && id.Group(tx.ID) != tx.GroupID {
		add(fmt.Sprintf("id does not belong to group %s", tx.GroupID))
	}
	return errs
}

// Validate checks every rule over a complete set of transactions.
func Validate(txs []model.Transaction) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(txs))
	groups := make(map[string][]model.Transaction)
	var groupOrder []string
	for _, tx := range txs {
		errs = append(errs, ValidateRow(tx)...)

		if tx.ID != "" {
			if seen[tx.ID] {
				errs = append(errs, ValidationError{Rule: RuleUnique, TxID: tx.ID, Description: "duplicate transaction id"})
			}
			seen[tx.ID] = true
		}

		if tx.GroupID == "" {
			continue
		}
		if _, ok := groups[tx.GroupID]; !ok {
			groupOrder = append(groupOrder, tx.GroupID)
		}
		groups[tx.GroupID] = append(groups[tx.GroupID], tx)
	}

	for _, g := range groupOrder {
		legs := groups[g]
		if len(legs) != 2 {
			errs = append(errs, ValidationError{
				Rule:        RuleTransfer,
				TxID:        g,
				Description: fmt.Sprintf("transfer has %d legs, want 2", len(legs)),
			})
			continue
		}
		var expense, saving int
		for _, leg := range legs {
			switch leg.Type {
			case model.TxExpense:
				expense++
			case model.TxSaving:
				saving++
			}
		}
		if expense != 1 || saving != 1 {
			errs = append(errs, ValidationError{
				Rule:        RuleTransfer,
				TxID:        g,
				Description: "transfer must have one expense leg and one saving leg",
			})
		}
		if !legs[0].Amount.Equal(legs[1].Amount) {
			errs = append(errs, ValidationError{
				Rule:        RuleTransfer,
				TxID:        g,
				Description: fmt.Sprintf("legs differ: %s != %s", legs[0].Amount, legs[1].Amount),
			})
		}
	}

	return errs
}
