package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// maState is a moving average accumulator for one account key.
type maState struct {
	quantity decimal.Decimal
	amount   decimal.Decimal
}

func (s *maState) put(quantity, amount decimal.Decimal) {
	s.quantity = s.quantity.Add(quantity)
	s.amount = s.amount.Add(amount)
}

// get removes out units and returns their average-cost value. When the
// stock cannot cover the request, everything left is taken.
func (s *maState) get(out decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if out.IsZero() || s.quantity.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	covered := (s.quantity.Sign() >= 0 && s.quantity.Cmp(out) < 0 && out.Sign() > 0) ||
		(s.quantity.Sign() <= 0 && s.quantity.Cmp(out) > 0 && out.Sign() < 0)
	if covered {
		quantity, amount := s.quantity, s.amount
		s.quantity, s.amount = decimal.Zero, decimal.Zero
		return quantity, amount
	}
	amount := s.amount.Mul(out).Div(s.quantity)
	s.quantity = s.quantity.Sub(out)
	s.amount = s.amount.Sub(amount)
	return out, amount
}

func (s *maState) all() (decimal.Decimal, decimal.Decimal) {
	return s.quantity, s.amount
}

// lot is a single first-in, first-out layer.
type lot struct {
	quantity decimal.Decimal
	amount   decimal.Decimal
}

// fifoState is a lot queue for one account key, oldest lot first.
type fifoState struct {
	lots []lot
}

func (s *fifoState) put(quantity, amount decimal.Decimal) {
	s.lots = append(s.lots, lot{quantity: quantity, amount: amount})
}

// get pops lots oldest-first until want units are covered, splitting the
// last lot and pushing the remainder back as the new oldest. When the
// queue cannot cover the request, everything popped is returned.
func (s *fifoState) get(want decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if want.IsZero() || len(s.lots) == 0 {
		return decimal.Zero, decimal.Zero
	}
	sum, sumAmount := decimal.Zero, decimal.Zero
	for len(s.lots) > 0 {
		head := s.lots[0]
		s.lots = s.lots[1:]
		sum = sum.Add(head.quantity)
		sumAmount = sumAmount.Add(head.amount)

		if sum.Equal(want) {
			return want, sumAmount
		}
		short := (sum.Sign() >= 0 && sum.Cmp(want) < 0) ||
			(sum.Sign() <= 0 && sum.Cmp(want) > 0)
		if short {
			continue
		}

		// Overshot: split the last popped lot.
		over := sum.Sub(want)
		overAmount := head.amount.Mul(over).Div(head.quantity)
		s.lots = append([]lot{{quantity: over, amount: overAmount}}, s.lots...)
		return want, sumAmount.Sub(overAmount)
	}
	return sum, sumAmount
}

func (s *fifoState) all() (decimal.Decimal, decimal.Decimal) {
	sum, sumAmount := decimal.Zero, decimal.Zero
	for _, l := range s.lots {
		sum = sum.Add(l.quantity)
		sumAmount = sumAmount.Add(l.amount)
	}
	return sum, sumAmount
}

// View is a per-key sub-ledger: the records posted to one exact
// (account, sub_account, item) triple in resolved order.
type View struct {
	Key     journal.AccountKey
	Side    ast.Side
	Records []*Record
}

// View returns the sub-ledger for key. Call after Resolve for fully
// resolved cells.
func (l *Ledger) View(key journal.AccountKey) *View {
	v := &View{Key: key, Side: l.accounts.Side(key)}
	for _, rec := range l.records {
		if rec.Key == key {
			v.Records = append(v.Records, rec)
		}
	}
	return v
}

// in returns a record's natural-side cells, out the opposite-side cells.
func (v *View) in(rec *Record) (quantity, amount journal.Deferred) {
	if v.Side == ast.Debit {
		return rec.DrQuantity, rec.DrAmount
	}
	return rec.CrQuantity, rec.CrAmount
}

func (v *View) out(rec *Record) (quantity, amount journal.Deferred) {
	if v.Side == ast.Debit {
		return rec.CrQuantity, rec.CrAmount
	}
	return rec.DrQuantity, rec.DrAmount
}

// totals scans the whole view. Non-numeric cells are skipped.
func (v *View) totals() (allInQ, allInA, lastInQ, lastInA, allOutQ decimal.Decimal) {
	for _, rec := range v.Records {
		if q, a := v.in(rec); q.IsNumber() && a.IsNumber() {
			allInQ = allInQ.Add(q.Number)
			allInA = allInA.Add(a.Number)
			lastInQ, lastInA = q.Number, a.Number
		}
		if q, _ := v.out(rec); q.IsNumber() {
			allOutQ = allOutQ.Add(q.Number)
		}
	}
	return
}

// OutPriceLPC values outbound units by last purchase cost: the closing
// stock is valued at the latest inbound unit price and the rest of the
// inbound value is spread over the outbound quantity. Returns nil when
// no inbound or outbound quantity exists to price against.
func (v *View) OutPriceLPC() *decimal.Decimal {
	allInQ, allInA, lastInQ, lastInA, allOutQ := v.totals()
	if allInQ.IsZero() || lastInQ.IsZero() || allOutQ.IsZero() {
		return nil
	}
	stockQ := allInQ.Sub(allOutQ)
	stockA := stockQ.Mul(lastInA).Div(lastInQ)
	price := allInA.Sub(stockA).Div(allOutQ)
	return &price
}

// OutPricePA values outbound units at the periodic average of all
// inbound postings. Returns nil when nothing came in.
func (v *View) OutPricePA() *decimal.Decimal {
	allInQ, allInA, _, _, _ := v.totals()
	if allInQ.IsZero() {
		return nil
	}
	price := allInA.Div(allInQ)
	return &price
}

// Stock returns the state held by the costing engine for key after
// Resolve: the remaining quantity and value for MA and FIFO accounts,
// or the view-derived closing stock for LPC and PA accounts.
func (l *Ledger) Stock(key journal.AccountKey) (quantity, amount decimal.Decimal) {
	switch l.accounts.Method(key) {
	case MA:
		if s, ok := l.costMA[key]; ok {
			return s.all()
		}
	case FIFO:
		if s, ok := l.costFIFO[key]; ok {
			return s.all()
		}
	default:
		v := l.View(key)
		allInQ, _, lastInQ, lastInA, allOutQ := v.totals()
		stockQ := allInQ.Sub(allOutQ)
		if lastInQ.IsZero() {
			return stockQ, decimal.Zero
		}
		return stockQ, stockQ.Mul(lastInA).Div(lastInQ)
	}
	return decimal.Zero, decimal.Zero
}
