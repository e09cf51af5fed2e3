package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// TrialBalanceRow aggregates one account key over a reporting window.
// Opening entries accumulate separately, records before the window
// start form the brought-forward balance and records inside the window
// form the period movement.
type TrialBalanceRow struct {
	Key     journal.AccountKey
	Side    ast.Side
	DispCat string

	QuantityUnit string
	AmountUnit   string

	OpeningQuantity decimal.Decimal
	OpeningAmount   decimal.Decimal

	BeforeDrQuantity decimal.Decimal
	BeforeDrAmount   decimal.Decimal
	BeforeCrQuantity decimal.Decimal
	BeforeCrAmount   decimal.Decimal

	SumDrQuantity decimal.Decimal
	SumDrAmount   decimal.Decimal
	SumCrQuantity decimal.Decimal
	SumCrAmount   decimal.Decimal

	StartQuantity decimal.Decimal
	StartAmount   decimal.Decimal
	EndQuantity   decimal.Decimal
	EndAmount     decimal.Decimal
}

type tbConfig struct {
	filters []func(*Record) bool
}

// TrialBalanceOption filters the records feeding a trial balance.
type TrialBalanceOption func(*tbConfig)

// WithRecordFilter keeps only records matching f.
func WithRecordFilter(f func(*Record) bool) TrialBalanceOption {
	return func(c *tbConfig) {
		c.filters = append(c.filters, f)
	}
}

// WithPartner keeps only records for one partner.
func WithPartner(partner string) TrialBalanceOption {
	return WithRecordFilter(func(r *Record) bool {
		return r.Partner == partner
	})
}

// WithPersonInCharge keeps only records for one person in charge.
func WithPersonInCharge(person string) TrialBalanceOption {
	return WithRecordFilter(func(r *Record) bool {
		return r.PersonInCharge == person
	})
}

// WithMemo keeps only records carrying a memo key with the given value.
// Numeric memos match against their decimal string form.
func WithMemo(key, value string) TrialBalanceOption {
	return WithRecordFilter(func(r *Record) bool {
		v, ok := r.Memos.Get(key)
		if !ok {
			return false
		}
		if v.IsNumber {
			return v.Number.String() == value
		}
		return v.Str == value
	})
}

// TrialBalance aggregates the resolved records into per-key rows over
// the half-open window [start, end). A nil start puts every dated
// record inside the window, a nil end leaves it unbounded. Rows sort by
// display category, then account key.
func (l *Ledger) TrialBalance(start, end *time.Time, opts ...TrialBalanceOption) []*TrialBalanceRow {
	var cfg tbConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rows := make(map[journal.AccountKey]*TrialBalanceRow)
	for _, rec := range l.records {
		if !matches(&cfg, rec) {
			continue
		}
		row, ok := rows[rec.Key]
		if !ok {
			row = &TrialBalanceRow{
				Key:     rec.Key,
				Side:    l.accounts.Side(rec.Key),
				DispCat: l.accounts.DispCat(rec.Key),
			}
			rows[rec.Key] = row
		}
		if rec.QuantityUnit != "" {
			row.QuantityUnit = rec.QuantityUnit
		}
		if rec.AmountUnit != "" {
			row.AmountUnit = rec.AmountUnit
		}

		switch {
		case rec.IsOpening():
			addOpening(row, rec)
		case start != nil && rec.Datetime.Before(*start):
			addCells(rec,
				&row.BeforeDrQuantity, &row.BeforeDrAmount,
				&row.BeforeCrQuantity, &row.BeforeCrAmount)
		case end == nil || rec.Datetime.Before(*end):
			addCells(rec,
				&row.SumDrQuantity, &row.SumDrAmount,
				&row.SumCrQuantity, &row.SumCrAmount)
		}
	}

	out := make([]*TrialBalanceRow, 0, len(rows))
	for _, row := range rows {
		closeRow(row)
		out = append(out, row)
	}
	slices.SortFunc(out, compareRows)
	return out
}

func matches(cfg *tbConfig, rec *Record) bool {
	for _, f := range cfg.filters {
		if !f(rec) {
			return false
		}
	}
	return true
}

// addOpening folds an opening record into the opening balance, signed
// by the account's natural side.
func addOpening(row *TrialBalanceRow, rec *Record) {
	sign := decimal.NewFromInt(1)
	if rec.Side != row.Side {
		sign = sign.Neg()
	}
	if q := rec.Quantity(); q.IsNumber() {
		row.OpeningQuantity = row.OpeningQuantity.Add(q.Number.Mul(sign))
	}
	if a := rec.Amount(); a.IsNumber() {
		row.OpeningAmount = row.OpeningAmount.Add(a.Number.Mul(sign))
	}
}

func addCells(rec *Record, drQ, drA, crQ, crA *decimal.Decimal) {
	if rec.DrQuantity.IsNumber() {
		*drQ = drQ.Add(rec.DrQuantity.Number)
	}
	if rec.DrAmount.IsNumber() {
		*drA = drA.Add(rec.DrAmount.Number)
	}
	if rec.CrQuantity.IsNumber() {
		*crQ = crQ.Add(rec.CrQuantity.Number)
	}
	if rec.CrAmount.IsNumber() {
		*crA = crA.Add(rec.CrAmount.Number)
	}
}

// closeRow derives the brought-forward and closing balances. Balances
// are expressed on the account's natural side.
func closeRow(row *TrialBalanceRow) {
	if row.Side == ast.Debit {
		row.StartQuantity = row.OpeningQuantity.Add(row.BeforeDrQuantity).Sub(row.BeforeCrQuantity)
		row.StartAmount = row.OpeningAmount.Add(row.BeforeDrAmount).Sub(row.BeforeCrAmount)
		row.EndQuantity = row.StartQuantity.Add(row.SumDrQuantity).Sub(row.SumCrQuantity)
		row.EndAmount = row.StartAmount.Add(row.SumDrAmount).Sub(row.SumCrAmount)
	} else {
		row.StartQuantity = row.OpeningQuantity.Add(row.BeforeCrQuantity).Sub(row.BeforeDrQuantity)
		row.StartAmount = row.OpeningAmount.Add(row.BeforeCrAmount).Sub(row.BeforeDrAmount)
		row.EndQuantity = row.StartQuantity.Add(row.SumCrQuantity).Sub(row.SumDrQuantity)
		row.EndAmount = row.StartAmount.Add(row.SumCrAmount).Sub(row.SumDrAmount)
	}
}

func compareRows(a, b *TrialBalanceRow) int {
	if a.DispCat != b.DispCat {
		if a.DispCat < b.DispCat {
			return -1
		}
		return 1
	}
	if a.Key.Account != b.Key.Account {
		if a.Key.Account < b.Key.Account {
			return -1
		}
		return 1
	}
	if a.Key.SubAccount != b.Key.SubAccount {
		if a.Key.SubAccount < b.Key.SubAccount {
			return -1
		}
		return 1
	}
	if a.Key.Item < b.Key.Item {
		return -1
	}
	if a.Key.Item > b.Key.Item {
		return 1
	}
	return 0
}

// Partners returns the distinct partners across all records, sorted.
func (l *Ledger) Partners() []string {
	return l.distinct(func(r *Record) string { return r.Partner })
}

// PersonsInCharge returns the distinct persons in charge across all
// records, sorted.
func (l *Ledger) PersonsInCharge() []string {
	return l.distinct(func(r *Record) string { return r.PersonInCharge })
}

func (l *Ledger) distinct(get func(*Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range l.records {
		if v := get(rec); v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
