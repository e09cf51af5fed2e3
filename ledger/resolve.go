package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
	"github.com/k1nk/qtyaccounting/telemetry"
)

// equalPatch defers an equality assignment until the mirrored record at
// from has been resolved; its value is then copied back to the record
// at to.
type equalPatch struct {
	from, to int
}

// Resolve sorts the records by (datetime, entry) and computes all
// deferred operators and automatic costing in one ordered pass. Within
// a record, quantity operators resolve before costing and costing
// before amount operators, so each stage can feed the next.
func (l *Ledger) Resolve(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.resolve (%d records)", len(l.records)))
	defer timer.End()

	if l.resolved {
		return nil
	}

	sortRecords(l.records)
	l.costMA = make(map[journal.AccountKey]*maState)
	l.costFIFO = make(map[journal.AccountKey]*fifoState)

	var (
		equalQty []equalPatch
		equalAmt []equalPatch
		diffQty  []int
		diffAmt  []int
		entryEnd int
	)

	for idx, rec := range l.records {
		if idx%256 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		// Pending operators never cross an entry boundary.
		if idx == 0 || rec.EntryID != l.records[idx-1].EntryID {
			equalQty = equalQty[:0]
			equalAmt = equalAmt[:0]
			diffQty = diffQty[:0]
			diffAmt = diffAmt[:0]
			entryEnd = idx + 1
			for entryEnd < len(l.records) && l.records[entryEnd].EntryID == rec.EntryID {
				entryEnd++
			}
		}
		entryStart := idx
		for entryStart > 0 && l.records[entryStart-1].EntryID == rec.EntryID {
			entryStart--
		}

		// Quantity operators.
		if rec.Quantity().IsOp(ast.OpBalance) {
			setQuantity(rec, journal.Number(l.balanceBefore(idx, rec, cellQuantity)))
			l.deriveAmount(rec)
		}
		var err error
		if equalQty, err = l.resolveEqual(idx, rec, equalQty, cellQuantity); err != nil {
			return err
		}
		if rec.Quantity().IsOp(ast.OpDiff) {
			diffQty = append(diffQty, idx)
			if len(diffQty) > 1 {
				return l.conflict(rec, "more than one quantity difference operator in entry")
			}
		}
		if rec.Order == rec.LegCount-1 && len(diffQty) > 0 {
			l.fireDiff(diffQty[0], entryStart, entryEnd, cellQuantity)
			l.deriveAmount(l.records[diffQty[0]])
		}

		// Automatic costing.
		if err := l.applyCosting(rec); err != nil {
			return err
		}

		// Amount operators.
		if rec.Amount().IsOp(ast.OpBalance) {
			setAmount(rec, journal.Number(l.balanceBefore(idx, rec, cellAmount)))
		}
		if equalAmt, err = l.resolveEqual(idx, rec, equalAmt, cellAmount); err != nil {
			return err
		}
		if rec.Amount().IsOp(ast.OpDiff) {
			diffAmt = append(diffAmt, idx)
			if len(diffAmt) > 1 {
				return l.conflict(rec, "more than one amount difference operator in entry")
			}
		}
		if rec.Order == rec.LegCount-1 && len(diffAmt) > 0 {
			l.fireDiff(diffAmt[0], entryStart, entryEnd, cellAmount)
		}
	}

	l.resolved = true
	return nil
}

// cell selects the quantity or amount column pair of a record.
type cell uint8

const (
	cellQuantity cell = iota
	cellAmount
)

func (c cell) of(rec *Record) journal.Deferred {
	if c == cellQuantity {
		return rec.Quantity()
	}
	return rec.Amount()
}

func (c cell) dr(rec *Record) journal.Deferred {
	if c == cellQuantity {
		return rec.DrQuantity
	}
	return rec.DrAmount
}

func (c cell) cr(rec *Record) journal.Deferred {
	if c == cellQuantity {
		return rec.CrQuantity
	}
	return rec.CrAmount
}

func (c cell) set(rec *Record, d journal.Deferred) {
	if c == cellQuantity {
		setQuantity(rec, d)
	} else {
		setAmount(rec, d)
	}
}

func setQuantity(rec *Record, d journal.Deferred) {
	if rec.Side == ast.Debit {
		rec.DrQuantity = d
	} else {
		rec.CrQuantity = d
	}
}

func setAmount(rec *Record, d journal.Deferred) {
	if rec.Side == ast.Debit {
		rec.DrAmount = d
	} else {
		rec.CrAmount = d
	}
}

// deriveAmount fills an empty amount cell from a freshly resolved
// quantity and the leg price.
func (l *Ledger) deriveAmount(rec *Record) {
	if rec.Price == nil || !rec.Quantity().IsNumber() || !rec.Amount().IsEmpty() {
		return
	}
	setAmount(rec, journal.Number(rec.Price.Mul(rec.Quantity().Number)))
}

// balanceBefore sums all records strictly before idx, signed by the
// natural side of the current record's account. Unresolved cells are
// skipped.
func (l *Ledger) balanceBefore(idx int, rec *Record, c cell) decimal.Decimal {
	natural := l.accounts.Side(rec.Key)
	sum := decimal.Zero
	for _, prev := range l.records[:idx] {
		dr, cr := c.dr(prev), c.cr(prev)
		if dr.IsNumber() {
			if natural == ast.Debit {
				sum = sum.Add(dr.Number)
			} else {
				sum = sum.Sub(dr.Number)
			}
		}
		if cr.IsNumber() {
			if natural == ast.Debit {
				sum = sum.Sub(cr.Number)
			} else {
				sum = sum.Add(cr.Number)
			}
		}
	}
	return sum
}

// resolveEqual handles the equality operator for one record: adopt the
// mirrored record's value when it resolved earlier, otherwise defer,
// and patch any deferred assignments waiting on this record.
func (l *Ledger) resolveEqual(idx int, rec *Record, pending []equalPatch, c cell) ([]equalPatch, error) {
	if c.of(rec).IsOp(ast.OpEqual) {
		mirror := l.mirrorIndex(idx, rec)
		if mirror < 0 {
			return pending, l.conflict(rec, "equality operator has no mirrored line")
		}
		if mirror < idx {
			v := c.of(l.records[mirror])
			if !v.IsNumber() {
				return pending, l.conflict(rec, "equality operator refers to an unresolved value")
			}
			c.set(rec, v)
			if c == cellQuantity {
				l.deriveAmount(rec)
			}
		} else {
			pending = append(pending, equalPatch{from: mirror, to: idx})
		}
	}

	kept := pending[:0]
	for _, p := range pending {
		if p.from != idx {
			kept = append(kept, p)
			continue
		}
		v := c.of(rec)
		if !v.IsNumber() {
			return kept, l.conflict(rec, "equality operator refers to an unresolved value")
		}
		target := l.records[p.to]
		c.set(target, v)
		if c == cellQuantity {
			l.deriveAmount(target)
		}
	}
	return kept, nil
}

// mirrorIndex finds the record sharing the entry and line number with
// the record at idx, or -1.
func (l *Ledger) mirrorIndex(idx int, rec *Record) int {
	for i, other := range l.records {
		if i != idx && other.EntryID == rec.EntryID && other.LineNo == rec.LineNo {
			return i
		}
	}
	return -1
}

// fireDiff assigns the entry imbalance to the record holding the
// difference operator: the opposite-side total minus the same-side
// total, unresolved cells skipped.
func (l *Ledger) fireDiff(target, entryStart, entryEnd int, c cell) {
	rec := l.records[target]
	same, opposite := decimal.Zero, decimal.Zero
	for _, other := range l.records[entryStart:entryEnd] {
		v := c.of(other)
		if !v.IsNumber() {
			continue
		}
		if other.Side == rec.Side {
			same = same.Add(v.Number)
		} else {
			opposite = opposite.Add(v.Number)
		}
	}
	c.set(rec, journal.Number(opposite.Sub(same)))
}

// applyCosting resolves the automatic amount operator and feeds the
// costing state. Inbound records (posted on the account's natural side)
// add stock, outbound records consume it at the configured cost.
func (l *Ledger) applyCosting(rec *Record) error {
	method := l.accounts.Method(rec.Key)
	natural := l.accounts.Side(rec.Key)
	inbound := rec.Side == natural
	quantity := rec.Quantity()
	amount := rec.Amount()

	if amount.IsOp(ast.OpAuto) {
		if !quantity.IsNumber() {
			setAmount(rec, journal.Deferred{})
			return nil
		}
		switch method {
		case MA, FIFO:
			state := l.lookupCostState(method, rec.Key)
			if state == nil {
				// Nothing was ever put for this key.
				setQuantity(rec, journal.Deferred{})
				setAmount(rec, journal.Deferred{})
				return nil
			}
			want := quantity.Number
			if inbound {
				want = want.Neg()
			}
			q, a := state.get(want)
			if inbound {
				q, a = q.Neg(), a.Neg()
			}
			setQuantity(rec, journal.Number(q))
			setAmount(rec, journal.Number(a))
		default:
			var price *decimal.Decimal
			view := l.View(rec.Key)
			if method == PA {
				price = view.OutPricePA()
			} else {
				price = view.OutPriceLPC()
			}
			if price == nil {
				setAmount(rec, journal.Deferred{})
				return nil
			}
			setAmount(rec, journal.Number(price.Mul(quantity.Number)))
		}
		return nil
	}

	if (method == MA || method == FIFO) && quantity.IsNumber() && amount.IsNumber() {
		q, a := quantity.Number, amount.Number
		if !inbound {
			q, a = q.Neg(), a.Neg()
		}
		l.costState(method, rec.Key).put(q, a)
	}
	return nil
}

// costQueue is the stateful costing interface shared by the moving
// average and FIFO engines.
type costQueue interface {
	put(quantity, amount decimal.Decimal)
	get(out decimal.Decimal) (decimal.Decimal, decimal.Decimal)
	all() (decimal.Decimal, decimal.Decimal)
}

// lookupCostState returns the existing state for key, or nil if nothing
// has been put yet.
func (l *Ledger) lookupCostState(method Method, key journal.AccountKey) costQueue {
	if method == FIFO {
		if s, ok := l.costFIFO[key]; ok {
			return s
		}
		return nil
	}
	if s, ok := l.costMA[key]; ok {
		return s
	}
	return nil
}

func (l *Ledger) costState(method Method, key journal.AccountKey) costQueue {
	if method == FIFO {
		s, ok := l.costFIFO[key]
		if !ok {
			s = &fifoState{}
			l.costFIFO[key] = s
		}
		return s
	}
	s, ok := l.costMA[key]
	if !ok {
		s = &maState{}
		l.costMA[key] = s
	}
	return s
}

func (l *Ledger) conflict(rec *Record, msg string) error {
	return &OperatorConflictError{
		EntryID: rec.EntryID,
		Key:     rec.Key,
		Pos:     rec.Pos,
		Message: msg,
	}
}

// sortRecords orders records by the source spelling of their datetime,
// then by entry identity. The raw spelling sorts lexicographically for
// ISO dates and keeps date-only entries stable against timed ones.
func sortRecords(records []*Record) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		if a.Raw != b.Raw {
			if a.Raw < b.Raw {
				return -1
			}
			return 1
		}
		return a.EntryID - b.EntryID
	})
}
