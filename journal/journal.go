// Package journal defines the normalized entry model and the tree
// interpreter that produces it.
//
// The interpreter walks the syntax tree from the parser, resolves [key]
// references against the three-level scope chain (leg, entry header,
// carried-forward global) and assigns each entry an identity ordered by
// (datetime, document order). The result is free of references; quantity
// and amount fields hold either a concrete number or a deferred operator
// resolved later by the ledger.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/k1nk/qtyaccounting/ast"
)

// AccountKey identifies a posting target. SubAccount and Item are empty
// when unspecified. It is the join key across legs, costing state and
// account metadata.
type AccountKey struct {
	Account    string
	SubAccount string
	Item       string
}

func (k AccountKey) String() string {
	s := k.Account
	if k.SubAccount != "" {
		s += "/" + k.SubAccount
	}
	if k.Item != "" {
		s += "#" + k.Item
	}
	return s
}

// DeferredKind discriminates the Deferred union.
type DeferredKind uint8

const (
	// Empty means no value was supplied and none could be derived.
	Empty DeferredKind = iota
	// Concrete is a resolved number.
	Concrete
	// Operator is a deferred operator resolved by the ledger.
	Operator
)

// Deferred is a quantity or amount cell: empty, a concrete number, or a
// deferred operator.
type Deferred struct {
	Kind   DeferredKind
	Number decimal.Decimal
	Op     ast.Op
}

// Number returns a concrete deferred value.
func Number(n decimal.Decimal) Deferred {
	return Deferred{Kind: Concrete, Number: n}
}

// FromOp returns a deferred operator value.
func FromOp(op ast.Op) Deferred {
	return Deferred{Kind: Operator, Op: op}
}

// IsEmpty reports whether the cell holds no value.
func (d Deferred) IsEmpty() bool { return d.Kind == Empty }

// IsNumber reports whether the cell holds a concrete number.
func (d Deferred) IsNumber() bool { return d.Kind == Concrete }

// IsOp reports whether the cell holds the given operator.
func (d Deferred) IsOp(op ast.Op) bool { return d.Kind == Operator && d.Op == op }

// Header is a normalized entry header.
type Header struct {
	Datetime       time.Time
	HasTime        bool
	Raw            string // source spelling of the datetime
	Partner        string
	PersonInCharge string
	Memos          Memos
	Remarks        string
}

// Leg is a normalized posting line.
type Leg struct {
	Pos            ast.Position
	Side           ast.Side
	Key            AccountKey
	Price          *decimal.Decimal
	Quantity       Deferred
	QuantityUnit   string
	Amount         Deferred
	AmountUnit     string
	Partner        string
	PersonInCharge string
	Memos          Memos
	Remarks        string

	// Order is the leg's 0-based index within the entry across both
	// sides; LineNo is its 0-based index within its own side. LineNo
	// pairs mirrored legs for the EQUAL operator.
	Order  int
	LineNo int
}

// Entry is a normalized journal entry. ID is unique and increasing in
// (datetime, document order).
type Entry struct {
	ID     int
	Pos    ast.Position
	Header Header
	Legs   []*Leg
}

// Debits returns the entry's debit legs in document order.
func (e *Entry) Debits() []*Leg {
	return e.side(ast.Debit)
}

// Credits returns the entry's credit legs in document order.
func (e *Entry) Credits() []*Leg {
	return e.side(ast.Credit)
}

func (e *Entry) side(side ast.Side) []*Leg {
	legs := make([]*Leg, 0, len(e.Legs))
	for _, leg := range e.Legs {
		if leg.Side == side {
			legs = append(legs, leg)
		}
	}
	return legs
}
