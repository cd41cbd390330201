// Package txlog is the append-only transaction journal, one CSV file per month.
package txlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mokbank/mokbank/internal/model"
)

const fileName = "transactions.csv"

// Log appends and reads transactions under a root directory laid out as
// <root>/YYYY/MM/transactions.csv.
type Log struct {
	root string
}

// New creates a Log rooted at dir.
func New(dir string) *Log {
	return &Log{root: dir}
}

// AppendTransaction appends a single record.
func (l *Log) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	return l.Append(ctx, tx)
}

// Append validates and appends records to their months' files. Rows are
// never rewritten.
func (l *Log) Append(ctx context.Context, txs ...model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	byMonth := make(map[string][]model.Transaction)
	var months []string
	for _, tx := range txs {
		if verrs := ValidateRow(tx); len(verrs) > 0 {
			return joinErrors(verrs)
		}
		key := tx.Date.UTC().Format("2006/01")
		if _, ok := byMonth[key]; !ok {
			months = append(months, key)
		}
		byMonth[key] = append(byMonth[key], tx)
	}

	for _, key := range months {
		newTxs := byMonth[key]
		first := newTxs[0].Date.UTC()
		year, month := first.Year(), int(first.Month())

		existing, err := l.ReadMonth(year, month)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, tx := range existing {
			seen[tx.ID] = true
		}
		for _, tx := range newTxs {
			if seen[tx.ID] {
				return fmt.Errorf("validation failed: %s", ValidationError{Rule: RuleUnique, TxID: tx.ID, Description: "duplicate transaction id"})
			}
			seen[tx.ID] = true
		}

		if err := l.appendFile(l.monthPath(year, month), newTxs); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log) appendFile(path string, txs []model.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, txs); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

// ReadMonth reads all records for a given year/month.
func (l *Log) ReadMonth(year, month int) ([]model.Transaction, error) {
	path := l.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	return txs, nil
}

// Months lists the months that have a journal file, oldest first.
func (l *Log) Months() ([]time.Time, error) {
	years, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading journal root: %w", err)
	}

	var out []time.Time
	for _, y := range years {
		year, err := strconv.Atoi(y.Name())
		if !y.IsDir() || err != nil {
			continue
		}
		months, err := os.ReadDir(filepath.Join(l.root, y.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", y.Name(), err)
		}
		for _, m := range months {
			month, err := strconv.Atoi(m.Name())
			if !m.IsDir() || err != nil || month < 1 || month > 12 {
				continue
			}
			if _, err := os.Stat(l.monthPath(year, month)); err != nil {
				continue
			}
			out = append(out, time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// Filter narrows a Query. Zero fields match everything.
type Filter struct {
	Type     model.TransactionType
	Category string
	From     time.Time
	To       time.Time // exclusive
}

func (f Filter) match(tx model.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(f.To) {
		return false
	}
	return true
}

// Query returns matching records across all months in append order.
func (l *Log) Query(ctx context.Context, f Filter) ([]model.Transaction, error) {
	months, err := l.Months()
	if err != nil {
		return nil, err
	}
	var out []model.Transaction
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txs, err := l.ReadMonth(m.Year(), int(m.Month()))
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if f.match(tx) {
				out = append(out, tx)
			}
		}
	}
	return out, nil
}

// Verify runs the full audit rules over one month.
func (l *Log) Verify(year, month int) ([]ValidationError, error) {
	txs, err := l.ReadMonth(year, month)
	if err != nil {
		return nil, err
	}
	return Validate(txs), nil
}

// MonthFile returns the journal file a record dated date is appended to.
func (l *Log) MonthFile(date time.Time) string {
	d := date.UTC()
	return l.monthPath(d.Year(), int(d.Month()))
}

func (l *Log) monthPath(year, month int) string {
	return filepath.Join(l.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), fileName)
}

func joinErrors(verrs []ValidationError) error {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
