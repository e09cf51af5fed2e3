// Package ast defines the syntax tree for quantity journal files.
//
// A journal is a sequence of entries delimited by << and >>, interleaved
// with free text that is preserved in document order. Each entry has a
// header line carrying the datetime and header-scoped parameters, followed
// by zero or more debit/credit legs. An entry without legs only contributes
// its parameters to the journal-global scope.
package ast

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal is the root node of a parsed journal file.
type Journal struct {
	Items []Item
}

// Entries returns the journal entries in document order, skipping free text.
func (j *Journal) Entries() []*Entry {
	entries := make([]*Entry, 0, len(j.Items))
	for _, item := range j.Items {
		if e, ok := item.(*Entry); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Item is a top-level journal item: an *Entry or a *Text block.
type Item interface {
	Pos() Position
	item()
}

// Text is free text between entries, preserved verbatim.
type Text struct {
	Position Position
	Body     string
}

func (t *Text) Pos() Position { return t.Position }
func (t *Text) item()         {}

// Entry is a single journal entry: a header and its legs.
type Entry struct {
	Position Position
	Header   *Header
	Legs     []*Leg
}

func (e *Entry) Pos() Position { return e.Position }
func (e *Entry) item()         {}

// Header is the entry header: the datetime plus entry-scoped parameters.
// Datetime is nil only for embedded fragments produced by the tabular
// adapter, which carry at most a time of day merged with the row date.
type Header struct {
	Position       Position
	Datetime       *Datetime
	Time           string // fragment-only raw time of day, e.g. "10:30:00"
	TimeZone       string // fragment-only raw zone offset, e.g. "+09:00"
	Partner        *StringValue
	PersonInCharge *StringValue
	Memos          []*MemoDecl
	Remarks        []string
}

// Datetime is a header datetime, either a bare date or a full RFC 3339
// timestamp. Raw preserves the source spelling for round-tripping.
type Datetime struct {
	Position Position
	Time     time.Time
	HasTime  bool
	Raw      string
}

// Side distinguishes debit and credit legs.
type Side uint8

const (
	Debit Side = iota
	Credit
)

func (s Side) String() string {
	if s == Credit {
		return "Cr"
	}
	return "Dr"
}

// Leg is a single debit or credit line of an entry.
//
// Account is empty only for embedded fragments from the tabular adapter.
// SubAccount, Item, Price, Quantity and Amount are nil when absent.
type Leg struct {
	Position       Position
	Side           Side
	Account        string
	SubAccount     *StringValue
	Item           *StringValue
	Price          *Value
	Quantity       *Value
	QuantityUnit   string
	Amount         *Value
	AmountUnit     string
	Partner        *StringValue
	PersonInCharge *StringValue
	Memos          []*MemoDecl
	Remarks        []string
}

// MemoDecl is a &key:number[unit] or &key::string parameter.
type MemoDecl struct {
	Position Position
	Key      string
	IsNumber bool
	Number   decimal.Decimal
	Unit     string // optional, number memos only
	Str      string
}
