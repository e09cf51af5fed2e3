package ast

import "github.com/shopspring/decimal"

// Op is a deferred operator attached to a quantity or amount.
type Op uint8

const (
	// OpAuto lets the account's costing policy supply the amount (? or ?A).
	OpAuto Op = iota
	// OpBalance resolves to the running balance on the account's side (B, ?B).
	OpBalance
	// OpDiff resolves to the difference that balances the entry (D, ?D).
	OpDiff
	// OpEqual copies the value from the leg with equal line number on the
	// opposite side (E, ?E).
	OpEqual
)

func (o Op) String() string {
	switch o {
	case OpBalance:
		return "B"
	case OpDiff:
		return "D"
	case OpEqual:
		return "E"
	}
	return "A"
}

// ValueKind discriminates the Value union.
type ValueKind uint8

const (
	Number ValueKind = iota
	Operator
	Ref
)

// Value is a quantity, price or amount position in a leg: a literal number,
// a deferred operator, or a [key] reference resolved by scope at
// interpretation time.
type Value struct {
	Position Position
	Kind     ValueKind
	Number   decimal.Decimal
	Op       Op
	Ref      string
}

// NumberValue returns a literal numeric value.
func NumberValue(pos Position, n decimal.Decimal) *Value {
	return &Value{Position: pos, Kind: Number, Number: n}
}

// OpValue returns a deferred operator value.
func OpValue(pos Position, op Op) *Value {
	return &Value{Position: pos, Kind: Operator, Op: op}
}

// RefValue returns a scoped reference value.
func RefValue(pos Position, key string) *Value {
	return &Value{Position: pos, Kind: Ref, Ref: key}
}

// StringValue is a string position in a header or leg: a literal, or a
// [key] reference resolved by scope at interpretation time.
type StringValue struct {
	Position Position
	Str      string
	Ref      string // non-empty when the value is a reference
}

// IsRef reports whether the value is a scoped reference.
func (v *StringValue) IsRef() bool { return v != nil && v.Ref != "" }
