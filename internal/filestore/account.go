package filestore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mokbank/mokbank/internal/model"
)

const (
	acctNumFields  = 11
	colUserID      = 0
	colDisplayName = 1
	colMokTokens   = 2
	colXP          = 3
	colLevel       = 4
	colSavings     = 5
	colInvestment  = 6
	colCrypto      = 7
	colUSDC        = 8
	colTravelMiles = 9
	colAcctUpdated = 10
)

var accountHeader = []string{"user_id", "display_name", "mok_tokens", "xp", "level", "savings", "investment", "crypto", "usdc", "travel_miles", "updated_at"}

// ReadAccount reads account.csv. The file holds a header and exactly one row.
func ReadAccount(r io.Reader) (model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account CSV: %w", err)
	}
	if len(records) != 2 {
		return model.Account{}, fmt.Errorf("account CSV: expected 1 row, got %d", max(len(records)-1, 0))
	}
	acct, err := UnmarshalAccount(records[1])
	if err != nil {
		return model.Account{}, fmt.Errorf("row 2: %w", err)
	}
	return acct, nil
}

// WriteAccount writes account.csv.
func WriteAccount(w io.Writer, acct model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(accountHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.Write(MarshalAccount(acct)); err != nil {
		return fmt.Errorf("writing account: %w", err)
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, acctNumFields)
	row[colUserID] = acct.UserID
	row[colDisplayName] = acct.DisplayName
	row[colMokTokens] = strconv.FormatInt(acct.MokTokens, 10)
	row[colXP] = strconv.FormatInt(acct.XP, 10)
	row[colLevel] = strconv.FormatInt(acct.Level, 10)
	row[colSavings] = acct.Savings.String()
	row[colInvestment] = acct.Investment.String()
	row[colCrypto] = acct.Crypto.String()
	row[colUSDC] = acct.USDC.String()
	row[colTravelMiles] = acct.TravelMiles.String()
	row[colAcctUpdated] = formatTime(acct.UpdatedAt)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}
	if record[colUserID] == "" {
		return model.Account{}, fmt.Errorf("user_id is required")
	}

	acct := model.Account{
		UserID:      record[colUserID],
		DisplayName: record[colDisplayName],
	}
	ints := []struct {
		name string
		col  int
		dst  *int64
	}{
		{"mok_tokens", colMokTokens, &acct.MokTokens},
		{"xp", colXP, &acct.XP},
		{"level", colLevel, &acct.Level},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(record[f.col], 10, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing %s %q: %w", f.name, record[f.col], err)
		}
		if v < 0 {
			return model.Account{}, fmt.Errorf("%s is negative: %d", f.name, v)
		}
		*f.dst = v
	}

	decs := []struct {
		name string
		col  int
		dst  *decimal.Decimal
	}{
		{"savings", colSavings, &acct.Savings},
		{"investment", colInvestment, &acct.Investment},
		{"crypto", colCrypto, &acct.Crypto},
		{"usdc", colUSDC, &acct.USDC},
		{"travel_miles", colTravelMiles, &acct.TravelMiles},
	}
	for _, f := range decs {
		v, err := decimal.NewFromString(record[f.col])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing %s %q: %w", f.name, record[f.col], err)
		}
		if v.IsNegative() {
			return model.Account{}, fmt.Errorf("%s is negative: %s", f.name, v)
		}
		*f.dst = v
	}

	updated, err := parseTime(record[colAcctUpdated])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	acct.UpdatedAt = updated
	return acct, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
