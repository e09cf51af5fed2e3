// Package tabular imports journals from tabular accounting exports.
//
// The importer reads the CSV journal export of a Japanese cloud
// accounting service. Rows sharing a transaction number merge into one
// entry, and the description column may embed an entry fragment in the
// journal notation that supplies quantities, prices, items and memos
// the tabular format cannot express. Values from the fragment override
// the row; the row's own amount is preserved in a memo so the original
// figure stays recoverable.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/parser"
)

// Column headings of the journal export.
const (
	colTransactionNo = "取引No"
	colDate          = "取引日"
	colDrAccount     = "借方勘定科目"
	colDrSubAccount  = "借方補助科目"
	colDrDept        = "借方部門"
	colDrPartner     = "借方取引先"
	colDrTaxCat      = "借方税区分"
	colDrInvoice     = "借方インボイス"
	colDrAmount      = "借方金額(円)"
	colDrTax         = "借方税額"
	colCrAccount     = "貸方勘定科目"
	colCrSubAccount  = "貸方補助科目"
	colCrDept        = "貸方部門"
	colCrPartner     = "貸方取引先"
	colCrTaxCat      = "貸方税区分"
	colCrInvoice     = "貸方インボイス"
	colCrAmount      = "貸方金額(円)"
	colCrTax         = "貸方税額"
	colDescription   = "摘要"
	colNote          = "仕訳メモ"
	colTags          = "タグ"
	colEntryType     = "MF仕訳タイプ"
	colAdjusting     = "決算整理仕訳"
)

// unitYen is the amount unit of the export.
const unitYen = "円"

// Memo keys written by the importer.
const (
	// MemoOriginalAmount preserves the row amount when an embedded
	// fragment overrides it.
	MemoOriginalAmount = "ORIGINAL_AMOUNT"
	// MemoOriginalAmountUnit is the unit of MemoOriginalAmount.
	MemoOriginalAmountUnit = "ORIGINAL_AMOUNT_UNIT"
)

// safeReplacer rewrites characters that carry meaning in the journal
// notation so memo and remark values stay parseable.
var safeReplacer = strings.NewReplacer(
	"/", "_",
	" ", "_",
	":", "_",
	"　", "_",
	"-", "_",
	",", "_",
	"%", "_PCT_",
)

func safeTrans(s string) string {
	return safeReplacer.Replace(s)
}

// ReadMF reads a UTF-8 journal export and returns the journal tree.
func ReadMF(r io.Reader) (*ast.Journal, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal export: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("journal export is empty, expected a header row")
	}

	header := rows[0]
	doc := &ast.Journal{}

	var current *ast.Entry
	var currentID string
	flush := func() {
		if current != nil {
			doc.Items = append(doc.Items, current)
			current = nil
		}
	}

	for i, fields := range rows[1:] {
		row, err := parseRow(header, fields)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if row == nil || row.id == "" {
			continue
		}
		if current != nil && row.id != currentID {
			flush()
		}
		if current == nil {
			current = &ast.Entry{Header: row.header}
			currentID = row.id
		} else {
			mergeHeader(current.Header, row.header)
		}
		if row.debit != nil {
			current.Legs = append(current.Legs, row.debit)
		}
		if row.credit != nil {
			current.Legs = append(current.Legs, row.credit)
		}
	}
	flush()

	return doc, nil
}

// ReadMFShiftJIS reads a Shift_JIS encoded journal export.
func ReadMFShiftJIS(r io.Reader) (*ast.Journal, error) {
	return ReadMF(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
}

// row is one CSV line turned into a header contribution and up to two
// legs.
type row struct {
	id     string
	header *ast.Header
	debit  *ast.Leg
	credit *ast.Leg
}

func parseRow(header, fields []string) (*row, error) {
	r := &row{
		header: &ast.Header{},
		debit:  &ast.Leg{Side: ast.Debit},
		credit: &ast.Leg{Side: ast.Credit},
	}
	var date, timeOfDay, timeZone string
	var fragMemos []*ast.MemoDecl

	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	for i, heading := range header {
		content := field(i)
		if content == "" {
			continue
		}
		switch heading {
		case colTransactionNo:
			r.id = content
			r.header.Memos = append(r.header.Memos, stringMemo(colTransactionNo, content))
		case colDate:
			date = strings.ReplaceAll(content, "/", "-")
		case colDrAccount:
			r.debit.Account = content
		case colDrSubAccount:
			r.debit.SubAccount = &ast.StringValue{Str: content}
		case colDrDept, colDrTaxCat, colDrInvoice:
			r.debit.Memos = append(r.debit.Memos, stringMemo(heading, safeTrans(content)))
		case colDrPartner:
			r.debit.Partner = &ast.StringValue{Str: safeTrans(content)}
		case colDrAmount:
			if err := setRowAmount(r.debit, content); err != nil {
				return nil, err
			}
		case colDrTax:
			memo, err := taxMemo(heading, content)
			if err != nil {
				return nil, err
			}
			r.debit.Memos = append(r.debit.Memos, memo)
		case colCrAccount:
			r.credit.Account = content
		case colCrSubAccount:
			r.credit.SubAccount = &ast.StringValue{Str: content}
		case colCrDept, colCrTaxCat, colCrInvoice:
			r.credit.Memos = append(r.credit.Memos, stringMemo(heading, safeTrans(content)))
		case colCrPartner:
			r.credit.Partner = &ast.StringValue{Str: safeTrans(content)}
		case colCrAmount:
			if err := setRowAmount(r.credit, content); err != nil {
				return nil, err
			}
		case colCrTax:
			memo, err := taxMemo(heading, content)
			if err != nil {
				return nil, err
			}
			r.credit.Memos = append(r.credit.Memos, memo)
		case colDescription:
			remarks, frag, err := splitFragment(content)
			if err != nil {
				return nil, err
			}
			if frag != nil {
				fragMemos = append(fragMemos, mergeFragment(r, frag, &timeOfDay, &timeZone)...)
			}
			if remarks != "" {
				remarks = safeTrans(remarks)
				r.debit.Remarks = append(r.debit.Remarks, remarks)
				r.credit.Remarks = append(r.credit.Remarks, remarks)
			}
		case colNote:
			remarks, frag, err := splitFragment(content)
			if err != nil {
				return nil, err
			}
			if frag != nil {
				fragMemos = append(fragMemos, mergeFragment(r, frag, &timeOfDay, &timeZone)...)
			}
			if remarks != "" {
				r.header.Remarks = append(r.header.Remarks, safeTrans(remarks))
			}
		case colTags:
			for _, tag := range strings.Split(content, "|") {
				if tag != "" {
					r.header.Memos = append(r.header.Memos, stringMemo(tag, "1"))
				}
			}
		case colEntryType:
			if content == "開始仕訳" {
				r.header.Memos = append(r.header.Memos, stringMemo("KIND", "OPENING"))
			}
		case colAdjusting:
			if content == "1" {
				r.header.Memos = append(r.header.Memos, stringMemo("KIND", "ADJUSTING"))
			}
		default:
			r.header.Memos = append(r.header.Memos, stringMemo(heading, safeTrans(content)))
		}
	}

	// Fragment header memos lose to the row's own memos.
	r.header.Memos = append(fragMemos, r.header.Memos...)

	if date != "" {
		dt, err := makeDatetime(date, timeOfDay, timeZone)
		if err != nil {
			return nil, err
		}
		r.header.Datetime = dt
	}
	if r.debit.Account == "" {
		r.debit = nil
	}
	if r.credit.Account == "" {
		r.credit = nil
	}
	return r, nil
}

func stringMemo(key, value string) *ast.MemoDecl {
	return &ast.MemoDecl{Key: key, Str: value}
}

func taxMemo(heading, content string) (*ast.MemoDecl, error) {
	n, err := parseNumber(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", heading, err)
	}
	return &ast.MemoDecl{Key: heading, IsNumber: true, Number: n, Unit: unitYen}, nil
}

// setRowAmount stores the row amount on the leg and keeps a copy in
// memos, where it survives a fragment override.
func setRowAmount(leg *ast.Leg, content string) error {
	n, err := parseNumber(content)
	if err != nil {
		return err
	}
	leg.Amount = ast.NumberValue(ast.Position{}, n)
	leg.AmountUnit = unitYen
	leg.Memos = append(leg.Memos,
		&ast.MemoDecl{Key: MemoOriginalAmount, IsNumber: true, Number: n},
		stringMemo(MemoOriginalAmountUnit, unitYen))
	return nil
}

func parseNumber(content string) (decimal.Decimal, error) {
	n, err := decimal.NewFromString(strings.ReplaceAll(content, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q", content)
	}
	return n, nil
}

// splitFragment separates an embedded entry fragment from the text
// around it.
func splitFragment(content string) (string, *ast.Entry, error) {
	start := strings.Index(content, "<<")
	if start < 0 {
		return content, nil, nil
	}
	end := strings.Index(content, ">>")
	if end < 0 {
		return content, nil, fmt.Errorf("unterminated entry fragment in %q", content)
	}
	frag, err := parser.ParseFragment([]byte(content[start : end+2]))
	if err != nil {
		return "", nil, err
	}
	return content[:start] + content[end+2:], frag, nil
}

// mergeFragment folds a parsed fragment into the row. Fragment values
// override row values; fragment header memos are returned so the caller
// can order them below the row's own memos.
func mergeFragment(r *row, frag *ast.Entry, timeOfDay, timeZone *string) []*ast.MemoDecl {
	hdr := frag.Header
	var memos []*ast.MemoDecl
	if hdr != nil {
		*timeOfDay = hdr.Time
		*timeZone = hdr.TimeZone
		if hdr.Partner != nil {
			r.header.Partner = hdr.Partner
		}
		if hdr.PersonInCharge != nil {
			r.header.PersonInCharge = hdr.PersonInCharge
		}
		memos = hdr.Memos
		r.header.Remarks = append(r.header.Remarks, hdr.Remarks...)
	}

	var drDone, crDone bool
	for _, leg := range frag.Legs {
		switch {
		case leg.Side == ast.Debit && !drDone:
			mergeLeg(r.debit, leg)
			drDone = true
		case leg.Side == ast.Credit && !crDone:
			mergeLeg(r.credit, leg)
			crDone = true
		}
	}
	return memos
}

// mergeLeg applies fragment leg values over the row leg. Fragment leg
// memos are merged below the row's so the preserved originals win.
func mergeLeg(dst, src *ast.Leg) {
	if src.SubAccount != nil {
		dst.SubAccount = src.SubAccount
	}
	if src.Item != nil {
		dst.Item = src.Item
	}
	if src.Price != nil {
		dst.Price = src.Price
	}
	if src.Quantity != nil {
		dst.Quantity = src.Quantity
		dst.QuantityUnit = src.QuantityUnit
	}
	if src.Amount != nil {
		dst.Amount = src.Amount
		if src.AmountUnit != "" {
			dst.AmountUnit = src.AmountUnit
		}
	}
	if src.Partner != nil {
		dst.Partner = src.Partner
	}
	if src.PersonInCharge != nil {
		dst.PersonInCharge = src.PersonInCharge
	}
	dst.Memos = append(src.Memos, dst.Memos...)
	dst.Remarks = append(dst.Remarks, src.Remarks...)
}

// mergeHeader folds a later row of the same transaction into the entry
// header. Scalars from later rows win, memo keys seen first win.
func mergeHeader(dst, src *ast.Header) {
	if src.Datetime != nil {
		dst.Datetime = src.Datetime
	}
	if src.Partner != nil {
		dst.Partner = src.Partner
	}
	if src.PersonInCharge != nil {
		dst.PersonInCharge = src.PersonInCharge
	}
	seen := make(map[string]bool, len(dst.Memos))
	for _, memo := range dst.Memos {
		seen[memo.Key] = true
	}
	for _, memo := range src.Memos {
		if !seen[memo.Key] {
			dst.Memos = append(dst.Memos, memo)
		}
	}
	if len(src.Remarks) > 0 {
		dst.Remarks = src.Remarks
	}
}

func makeDatetime(date, timeOfDay, timeZone string) (*ast.Datetime, error) {
	raw := date
	if timeOfDay != "" {
		raw = date + "T" + timeOfDay + timeZone
	}

	dt := &ast.Datetime{Raw: raw}
	if timeOfDay == "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", date)
		}
		dt.Time = t
		return dt, nil
	}

	dt.HasTime = true
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		dt.Time = t
		return dt, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		dt.Time = t
		return dt, nil
	}
	return nil, fmt.Errorf("invalid datetime %q", raw)
}
