// Package ledger turns normalized journal entries into a resolved
// record book.
//
// Registration expands each entry into per-leg records, merging the
// carried-forward global header, the entry header and the leg (later
// layers win) and deriving missing quantities and amounts from prices.
// Resolution then walks the records in datetime order, computing
// deferred operators and costing outbound postings with the account's
// configured method. The resolved records feed sub-ledgers and trial
// balances.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// Well-known memo keys and values.
const (
	// MemoKind marks the bookkeeping kind of an entry.
	MemoKind = "KIND"
	// KindOpening marks opening balance entries.
	KindOpening = "OPENING"
	// KindAdjusting marks period-end adjusting entries.
	KindAdjusting = "ADJUSTING"
)

// Record is a single posting in the record book. The debit and credit
// cells mirror a ledger column pair: a record fills the cells of its
// leg's side and leaves the opposite side empty.
type Record struct {
	EntryID  int
	Datetime time.Time
	Raw      string // source spelling of the entry datetime
	Pos      ast.Position

	Side           ast.Side
	Key            journal.AccountKey
	Partner        string
	PersonInCharge string
	Memos          journal.Memos
	Remarks        string

	Price        *decimal.Decimal
	QuantityUnit string
	AmountUnit   string

	DrQuantity journal.Deferred
	DrAmount   journal.Deferred
	CrQuantity journal.Deferred
	CrAmount   journal.Deferred

	// Order is the leg's 0-based index within its entry across both
	// sides, LineNo its 0-based index within its side, LegCount the
	// entry's total leg count.
	Order    int
	LineNo   int
	LegCount int
}

// Quantity returns the filled-side quantity cell.
func (r *Record) Quantity() journal.Deferred {
	if r.Side == ast.Debit {
		return r.DrQuantity
	}
	return r.CrQuantity
}

// Amount returns the filled-side amount cell.
func (r *Record) Amount() journal.Deferred {
	if r.Side == ast.Debit {
		return r.DrAmount
	}
	return r.CrAmount
}

// Kind returns the value of the KIND memo, or the empty string.
func (r *Record) Kind() string {
	if v, ok := r.Memos.Get(MemoKind); ok && !v.IsNumber {
		return v.Str
	}
	return ""
}

// IsOpening reports whether the record belongs to an opening entry.
func (r *Record) IsOpening() bool { return r.Kind() == KindOpening }

// IsAdjusting reports whether the record belongs to an adjusting entry.
func (r *Record) IsAdjusting() bool { return r.Kind() == KindAdjusting }

// Ledger accumulates records from registered entries and resolves them.
type Ledger struct {
	accounts *AccountInfo
	records  []*Record
	global   journal.Header
	resolved bool

	// Costing state built during Resolve, keyed by account.
	costMA   map[journal.AccountKey]*maState
	costFIFO map[journal.AccountKey]*fifoState
}

// New creates an empty ledger using the given account metadata.
func New(accounts *AccountInfo) *Ledger {
	if accounts == nil {
		accounts = NewAccountInfo()
	}
	return &Ledger{accounts: accounts}
}

// Accounts returns the ledger's account metadata.
func (l *Ledger) Accounts() *AccountInfo {
	return l.accounts
}

// Records returns all registered records. After Resolve they are sorted
// by (datetime, entry) and all resolvable cells hold numbers.
func (l *Ledger) Records() []*Record {
	return l.records
}

// Register expands an entry into records. An entry without legs updates
// the carried-forward global header instead of producing records.
func (l *Ledger) Register(entry *journal.Entry) error {
	if len(entry.Legs) == 0 {
		l.mergeGlobal(entry.Header)
		return nil
	}

	l.resolved = false

	// Interleave debit and credit legs pairwise. Operator resolution
	// depends on this record order.
	debits := entry.Debits()
	credits := entry.Credits()
	n := len(debits)
	if len(credits) > n {
		n = len(credits)
	}
	for i := 0; i < n; i++ {
		if i < len(debits) {
			rec, err := l.record(entry, debits[i])
			if err != nil {
				return err
			}
			l.records = append(l.records, rec)
		}
		if i < len(credits) {
			rec, err := l.record(entry, credits[i])
			if err != nil {
				return err
			}
			l.records = append(l.records, rec)
		}
	}
	return nil
}

// mergeGlobal folds a header-only entry into the carried-forward global
// header. Non-empty scalars override, memos merge key-by-key with the
// newer value winning, remarks concatenate.
func (l *Ledger) mergeGlobal(h journal.Header) {
	if h.Partner != "" {
		l.global.Partner = h.Partner
	}
	if h.PersonInCharge != "" {
		l.global.PersonInCharge = h.PersonInCharge
	}
	l.global.Memos = journal.MergeMemos(l.global.Memos, h.Memos)
	l.global.Remarks += h.Remarks
}

func (l *Ledger) record(entry *journal.Entry, leg *journal.Leg) (*Record, error) {
	rec := &Record{
		EntryID:  entry.ID,
		Datetime: entry.Header.Datetime,
		Raw:      entry.Header.Raw,
		Pos:      leg.Pos,

		Side:           leg.Side,
		Key:            leg.Key,
		Partner:        firstNonEmpty(leg.Partner, entry.Header.Partner, l.global.Partner),
		PersonInCharge: firstNonEmpty(leg.PersonInCharge, entry.Header.PersonInCharge, l.global.PersonInCharge),
		Memos:          journal.MergeMemos(l.global.Memos, entry.Header.Memos, leg.Memos),
		Remarks:        l.global.Remarks + entry.Header.Remarks + leg.Remarks,

		Price:        leg.Price,
		QuantityUnit: leg.QuantityUnit,
		AmountUnit:   leg.AmountUnit,

		Order:    leg.Order,
		LineNo:   leg.LineNo,
		LegCount: len(entry.Legs),
	}

	quantity, amount, err := fill(leg)
	if err != nil {
		return nil, err
	}
	if leg.Side == ast.Debit {
		rec.DrQuantity, rec.DrAmount = quantity, amount
	} else {
		rec.CrQuantity, rec.CrAmount = quantity, amount
	}
	return rec, nil
}

// fill derives a leg's missing quantity or amount from its price.
func fill(leg *journal.Leg) (quantity, amount journal.Deferred, err error) {
	quantity, amount = leg.Quantity, leg.Amount
	price := leg.Price

	switch {
	case amount.IsNumber():
		if quantity.IsEmpty() {
			if price != nil && !price.IsZero() {
				quantity = journal.Number(amount.Number.Div(*price))
			} else {
				quantity = journal.Number(decimal.NewFromInt(1))
			}
		}

	case amount.Kind == journal.Operator:
		// The amount resolves later. Without a price the posting is a
		// single measure, counted as one unit.
		if quantity.IsEmpty() && price == nil {
			quantity = journal.Number(decimal.NewFromInt(1))
		}

	default: // amount empty
		switch {
		case quantity.IsNumber():
			if price == nil {
				return quantity, amount, &MissingValueError{
					Key:     leg.Key,
					Pos:     leg.Pos,
					Message: fmt.Sprintf("only quantity specified for %s, a price or amount is required", leg.Key),
				}
			}
			amount = journal.Number(price.Mul(quantity.Number))
		case quantity.Kind == journal.Operator:
			if price == nil {
				return quantity, amount, &MissingValueError{
					Key:     leg.Key,
					Pos:     leg.Pos,
					Message: fmt.Sprintf("quantity operator on %s needs a price or amount", leg.Key),
				}
			}
		default: // both empty
			if price == nil {
				return quantity, amount, &MissingValueError{
					Key:     leg.Key,
					Pos:     leg.Pos,
					Message: fmt.Sprintf("no quantity or amount specified for %s", leg.Key),
				}
			}
			quantity = journal.Number(decimal.NewFromInt(1))
			amount = journal.Number(*price)
		}
	}
	return quantity, amount, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Process registers all entries and resolves the ledger. Registration
// errors are collected and reported together; resolution stops at the
// first error.
func (l *Ledger) Process(ctx context.Context, entries []*journal.Entry) error {
	var errs []error
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.Register(entry); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return l.Resolve(ctx)
}
