package journal

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/k1nk/qtyaccounting/ast"
)

// scope is the three-level reference lookup chain, probed front-to-back.
type scope struct {
	local  *Memos
	entry  *Memos
	global *Memos
}

func (s scope) lookup(key string) (MemoValue, bool) {
	if s.local != nil {
		if v, ok := s.local.Get(key); ok {
			return v, true
		}
	}
	if s.entry != nil {
		if v, ok := s.entry.Get(key); ok {
			return v, true
		}
	}
	if s.global != nil {
		if v, ok := s.global.Get(key); ok {
			return v, true
		}
	}
	return MemoValue{}, false
}

// Interpret normalizes a parsed journal.
//
// Entries are sorted by (header datetime, document order) and numbered in
// that order. Header-only entries merge their memos into the global scope
// consulted by later entries; they are still returned so the ledger can
// carry their header fields forward.
func Interpret(doc *ast.Journal) ([]*Entry, error) {
	astEntries := doc.Entries()
	sorted := make([]*ast.Entry, len(astEntries))
	copy(sorted, astEntries)

	for _, e := range sorted {
		if e.Header == nil || e.Header.Datetime == nil {
			return nil, &MissingHeaderError{Pos: e.Position}
		}
	}
	// The raw ISO spelling sorts chronologically; a stable sort keeps
	// document order for equal datetimes.
	slices.SortStableFunc(sorted, func(a, b *ast.Entry) int {
		return strings.Compare(a.Header.Datetime.Raw, b.Header.Datetime.Raw)
	})

	var global Memos
	entries := make([]*Entry, 0, len(sorted))
	for id, ae := range sorted {
		entry, entryMemos, err := interpretEntry(ae, id, &global)
		if err != nil {
			return nil, err
		}
		if len(ae.Legs) == 0 {
			for _, k := range entryMemos.Keys() {
				v, _ := entryMemos.Get(k)
				global.Set(k, v)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func interpretEntry(ae *ast.Entry, id int, global *Memos) (*Entry, Memos, error) {
	hdr := ae.Header
	entryMemos := memosFromDecls(hdr.Memos)

	headerScope := scope{entry: &entryMemos, global: global}
	partner, err := resolveString(hdr.Partner, headerScope, "partner")
	if err != nil {
		return nil, Memos{}, err
	}
	person, err := resolveString(hdr.PersonInCharge, headerScope, "person in charge")
	if err != nil {
		return nil, Memos{}, err
	}

	entry := &Entry{
		ID:  id,
		Pos: ae.Position,
		Header: Header{
			Datetime:       hdr.Datetime.Time,
			HasTime:        hdr.Datetime.HasTime,
			Raw:            hdr.Datetime.Raw,
			Partner:        partner,
			PersonInCharge: person,
			Memos:          entryMemos,
			Remarks:        strings.Join(hdr.Remarks, ""),
		},
	}

	var drLine, crLine int
	for order, al := range ae.Legs {
		local := memosFromDecls(al.Memos)
		s := scope{local: &local, entry: &entryMemos, global: global}

		leg, err := interpretLeg(al, s)
		if err != nil {
			return nil, Memos{}, err
		}
		leg.Memos = local
		leg.Order = order
		if leg.Side == ast.Debit {
			leg.LineNo = drLine
			drLine++
		} else {
			leg.LineNo = crLine
			crLine++
		}
		entry.Legs = append(entry.Legs, leg)
	}

	return entry, entryMemos, nil
}

func interpretLeg(al *ast.Leg, s scope) (*Leg, error) {
	subAccount, err := resolveString(al.SubAccount, s, "sub-account")
	if err != nil {
		return nil, err
	}
	item, err := resolveString(al.Item, s, "item")
	if err != nil {
		return nil, err
	}
	price, err := resolvePrice(al.Price, s)
	if err != nil {
		return nil, err
	}
	quantity, err := resolveDeferred(al.Quantity, s, "quantity")
	if err != nil {
		return nil, err
	}
	amount, err := resolveDeferred(al.Amount, s, "amount")
	if err != nil {
		return nil, err
	}
	partner, err := resolveString(al.Partner, s, "partner")
	if err != nil {
		return nil, err
	}
	person, err := resolveString(al.PersonInCharge, s, "person in charge")
	if err != nil {
		return nil, err
	}

	return &Leg{
		Pos:  al.Position,
		Side: al.Side,
		Key: AccountKey{
			Account:    al.Account,
			SubAccount: subAccount,
			Item:       item,
		},
		Price:          price,
		Quantity:       quantity,
		QuantityUnit:   al.QuantityUnit,
		Amount:         amount,
		AmountUnit:     al.AmountUnit,
		Partner:        partner,
		PersonInCharge: person,
		Remarks:        strings.Join(al.Remarks, ""),
	}, nil
}

func memosFromDecls(decls []*ast.MemoDecl) Memos {
	var ms Memos
	for _, d := range decls {
		if d.IsNumber {
			ms.Set(d.Key, NumberMemo(d.Number, d.Unit))
		} else {
			ms.Set(d.Key, StringMemo(d.Str))
		}
	}
	return ms
}

// resolveString resolves an optional literal-or-reference string field.
// A reference miss yields the empty string; a reference hitting a number
// memo is a type error.
func resolveString(sv *ast.StringValue, s scope, what string) (string, error) {
	if sv == nil {
		return "", nil
	}
	if !sv.IsRef() {
		return sv.Str, nil
	}
	v, ok := s.lookup(sv.Ref)
	if !ok {
		return "", nil
	}
	if v.IsNumber {
		return "", &TypeError{
			Pos:     sv.Position,
			Key:     sv.Ref,
			Message: what + " reference [" + sv.Ref + "] must be a string",
		}
	}
	return v.Str, nil
}

// resolvePrice resolves the optional price field. A reference miss yields
// no price; the unit of a numeric memo is ignored.
func resolvePrice(v *ast.Value, s scope) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case ast.Number:
		n := v.Number
		return &n, nil
	case ast.Ref:
		mv, ok := s.lookup(v.Ref)
		if !ok {
			return nil, nil
		}
		if !mv.IsNumber {
			return nil, &TypeError{
				Pos:     v.Position,
				Key:     v.Ref,
				Message: "price reference [" + v.Ref + "] must be a number",
			}
		}
		n := mv.Number
		return &n, nil
	}
	return nil, &TypeError{Pos: v.Position, Message: "price must be a number or a reference"}
}

// resolveDeferred resolves a quantity or amount field to a concrete
// number, a deferred operator, or no value.
func resolveDeferred(v *ast.Value, s scope, what string) (Deferred, error) {
	if v == nil {
		return Deferred{}, nil
	}
	switch v.Kind {
	case ast.Number:
		return Number(v.Number), nil
	case ast.Operator:
		return FromOp(v.Op), nil
	case ast.Ref:
		mv, ok := s.lookup(v.Ref)
		if !ok {
			return Deferred{}, nil
		}
		if !mv.IsNumber {
			return Deferred{}, &TypeError{
				Pos:     v.Position,
				Key:     v.Ref,
				Message: what + " reference [" + v.Ref + "] must be a number",
			}
		}
		return Number(mv.Number), nil
	}
	return Deferred{}, &TypeError{Pos: v.Position, Message: what + " must be a number, operator or reference"}
}
