// Package formatter renders journals back to their textual form.
//
// Syntax trees round-trip: formatting a parsed journal and parsing the
// output yields the same tree, references and operators included.
// Normalized entries from the journal package render in the same layout
// with references already resolved.
package formatter

import (
	"io"
	"strings"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// Formatter renders journals and entries.
type Formatter struct {
	// CompactHeader puts the header on the "<<" line instead of the
	// line below it.
	CompactHeader bool
}

// New returns a formatter with the default layout.
func New() *Formatter {
	return &Formatter{}
}

// Format writes the journal's textual form to w. Text between entries
// is preserved as-is.
func (f *Formatter) Format(w io.Writer, doc *ast.Journal) error {
	var sb strings.Builder
	for _, item := range doc.Items {
		switch it := item.(type) {
		case *ast.Text:
			sb.WriteString(it.Body)
			sb.WriteString("\n")
		case *ast.Entry:
			f.writeEntry(&sb, it)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatJournal renders the journal as a string.
func (f *Formatter) FormatJournal(doc *ast.Journal) string {
	var sb strings.Builder
	f.Format(&sb, doc)
	return sb.String()
}

// FormatEntry renders a single entry.
func (f *Formatter) FormatEntry(entry *ast.Entry) string {
	var sb strings.Builder
	f.writeEntry(&sb, entry)
	return sb.String()
}

func (f *Formatter) writeEntry(sb *strings.Builder, entry *ast.Entry) {
	sb.WriteString("<<")
	if !f.CompactHeader {
		sb.WriteString("\n")
	}

	if entry.Header != nil {
		f.writeHeader(sb, entry.Header)
	}
	sb.WriteString("\n")

	for _, leg := range entry.Legs {
		f.writeLeg(sb, leg)
		sb.WriteString("\n")
	}
	sb.WriteString(">>\n")
}

func (f *Formatter) writeHeader(sb *strings.Builder, hdr *ast.Header) {
	if hdr.Datetime != nil {
		sb.WriteString(hdr.Datetime.Raw)
	} else if hdr.Time != "" {
		sb.WriteString("T")
		sb.WriteString(hdr.Time)
		sb.WriteString(hdr.TimeZone)
	}

	writeStringValue(sb, " $", hdr.Partner)
	writeStringValue(sb, " >", hdr.PersonInCharge)
	for _, memo := range hdr.Memos {
		writeMemo(sb, memo)
	}
	for _, remarks := range hdr.Remarks {
		sb.WriteString(" ##")
		sb.WriteString(remarks)
	}
}

func (f *Formatter) writeLeg(sb *strings.Builder, leg *ast.Leg) {
	sb.WriteString(" ")
	sb.WriteString(leg.Side.String())
	if leg.Account != "" {
		sb.WriteString(" ")
		sb.WriteString(leg.Account)
	}

	writeStringValue(sb, "/", leg.SubAccount)
	writeStringValue(sb, "#", leg.Item)

	if leg.Price != nil {
		sb.WriteString(" @")
		writeValue(sb, leg.Price, opQuantityMark)
	}
	if leg.Quantity != nil {
		sb.WriteString(" ")
		if leg.Quantity.Kind != ast.Operator {
			sb.WriteString("*")
		}
		writeValue(sb, leg.Quantity, opQuantityMark)
		sb.WriteString(leg.QuantityUnit)
	}
	if leg.Amount != nil {
		sb.WriteString(" ")
		writeValue(sb, leg.Amount, opAmountMark)
		sb.WriteString(leg.AmountUnit)
	}

	writeStringValue(sb, " $", leg.Partner)
	writeStringValue(sb, " >", leg.PersonInCharge)
	for _, memo := range leg.Memos {
		writeMemo(sb, memo)
	}
	for _, remarks := range leg.Remarks {
		sb.WriteString(" ##")
		sb.WriteString(remarks)
	}
}

func writeValue(sb *strings.Builder, v *ast.Value, mark func(ast.Op) string) {
	switch v.Kind {
	case ast.Number:
		sb.WriteString(v.Number.String())
	case ast.Operator:
		sb.WriteString(mark(v.Op))
	case ast.Ref:
		sb.WriteString("[")
		sb.WriteString(v.Ref)
		sb.WriteString("]")
	}
}

func writeStringValue(sb *strings.Builder, prefix string, v *ast.StringValue) {
	if v == nil {
		return
	}
	sb.WriteString(prefix)
	if v.IsRef() {
		sb.WriteString("[")
		sb.WriteString(v.Ref)
		sb.WriteString("]")
	} else {
		sb.WriteString(v.Str)
	}
}

func writeMemo(sb *strings.Builder, memo *ast.MemoDecl) {
	sb.WriteString(" &")
	sb.WriteString(memo.Key)
	if memo.IsNumber {
		sb.WriteString(":")
		sb.WriteString(memo.Number.String())
		sb.WriteString(memo.Unit)
	} else {
		sb.WriteString("::")
		sb.WriteString(memo.Str)
	}
}

func opQuantityMark(op ast.Op) string {
	switch op {
	case ast.OpBalance:
		return "*B"
	case ast.OpDiff:
		return "*D"
	case ast.OpEqual:
		return "*E"
	}
	return "*E"
}

func opAmountMark(op ast.Op) string {
	switch op {
	case ast.OpAuto:
		return "?A"
	case ast.OpBalance:
		return "?B"
	case ast.OpDiff:
		return "?D"
	case ast.OpEqual:
		return "?E"
	}
	return "?A"
}

// FormatEntries renders normalized entries, references already resolved
// by the interpreter.
func (f *Formatter) FormatEntries(entries []*journal.Entry) string {
	var sb strings.Builder
	for _, entry := range entries {
		f.writeNormalizedEntry(&sb, entry)
	}
	return sb.String()
}

func (f *Formatter) writeNormalizedEntry(sb *strings.Builder, entry *journal.Entry) {
	sb.WriteString("<<")
	if !f.CompactHeader {
		sb.WriteString("\n")
	}

	hdr := entry.Header
	sb.WriteString(hdr.Raw)
	writePlain(sb, " $", hdr.Partner)
	writePlain(sb, " >", hdr.PersonInCharge)
	writeMemos(sb, hdr.Memos)
	writePlain(sb, " ##", hdr.Remarks)
	sb.WriteString("\n")

	for _, leg := range entry.Legs {
		f.writeNormalizedLeg(sb, leg)
		sb.WriteString("\n")
	}
	sb.WriteString(">>\n")
}

func (f *Formatter) writeNormalizedLeg(sb *strings.Builder, leg *journal.Leg) {
	sb.WriteString(" ")
	sb.WriteString(leg.Side.String())
	if leg.Key.Account != "" {
		sb.WriteString(" ")
		sb.WriteString(leg.Key.Account)
	}
	writePlain(sb, "/", leg.Key.SubAccount)
	writePlain(sb, "#", leg.Key.Item)

	if leg.Price != nil {
		sb.WriteString(" @")
		sb.WriteString(leg.Price.String())
	}
	if !leg.Quantity.IsEmpty() {
		sb.WriteString(" ")
		writeDeferred(sb, leg.Quantity, opQuantityMark, "*")
		sb.WriteString(leg.QuantityUnit)
	}
	if !leg.Amount.IsEmpty() {
		sb.WriteString(" ")
		writeDeferred(sb, leg.Amount, opAmountMark, "")
		sb.WriteString(leg.AmountUnit)
	}

	writePlain(sb, " $", leg.Partner)
	writePlain(sb, " >", leg.PersonInCharge)
	writeMemos(sb, leg.Memos)
	writePlain(sb, " ##", leg.Remarks)
}

func writeDeferred(sb *strings.Builder, d journal.Deferred, mark func(ast.Op) string, numberPrefix string) {
	if d.Kind == journal.Operator {
		sb.WriteString(mark(d.Op))
		return
	}
	sb.WriteString(numberPrefix)
	sb.WriteString(d.Number.String())
}

func writePlain(sb *strings.Builder, prefix, s string) {
	if s == "" {
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(s)
}

func writeMemos(sb *strings.Builder, memos journal.Memos) {
	for _, key := range memos.Keys() {
		v, _ := memos.Get(key)
		sb.WriteString(" &")
		sb.WriteString(key)
		if v.IsNumber {
			sb.WriteString(":")
			sb.WriteString(v.Number.String())
			sb.WriteString(v.Unit)
		} else {
			sb.WriteString("::")
			sb.WriteString(v.Str)
		}
	}
}
