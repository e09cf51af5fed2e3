package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// Method selects the costing policy used to value outbound postings.
type Method uint8

const (
	// LPC is the last purchase cost method.
	LPC Method = iota
	// MA is the moving average method.
	MA
	// PA is the periodic average method.
	PA
	// FIFO is the first-in, first-out method.
	FIFO
)

func (m Method) String() string {
	switch m {
	case MA:
		return "MA"
	case PA:
		return "PA"
	case FIFO:
		return "FIFO"
	}
	return "LPC"
}

// ParseMethod parses a costing method name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "LPC":
		return LPC, nil
	case "MA":
		return MA, nil
	case "PA":
		return PA, nil
	case "FIFO":
		return FIFO, nil
	}
	return LPC, fmt.Errorf("unknown costing method %q", s)
}

// ParseSide parses a natural side name.
func ParseSide(s string) (ast.Side, error) {
	switch s {
	case "Dr":
		return ast.Debit, nil
	case "Cr":
		return ast.Credit, nil
	}
	return ast.Debit, fmt.Errorf("side must be Dr or Cr, got %q", s)
}

// ItemProp is the metadata attached to an account key. Empty string
// properties are treated as unset and fall back per property.
type ItemProp struct {
	Side    string // "Dr" or "Cr"
	Method  string // "LPC", "MA", "PA" or "FIFO"
	TaxCat  string
	DispCat string
}

// Undefined is the default for tax and display categories.
const Undefined = "UNDEFINED"

var defaultProp = ItemProp{
	Side:    "Dr",
	Method:  "LPC",
	TaxCat:  Undefined,
	DispCat: Undefined,
}

// AccountInfo maps account keys to their natural side, costing method and
// categories. Lookups fall back per property from the exact key to
// (account, sub_account, ""), then (account, "", ""), then the defaults.
type AccountInfo struct {
	keys  []journal.AccountKey
	props map[journal.AccountKey]ItemProp
}

// NewAccountInfo returns an empty metadata table; every lookup resolves
// to the defaults until entries are added.
func NewAccountInfo() *AccountInfo {
	return &AccountInfo{props: make(map[journal.AccountKey]ItemProp)}
}

// Set stores metadata for a key. Side and method must be valid when
// non-empty; empty means "fall back".
func (a *AccountInfo) Set(key journal.AccountKey, prop ItemProp) error {
	if prop.Side != "" {
		if _, err := ParseSide(prop.Side); err != nil {
			return err
		}
	}
	if prop.Method != "" {
		if _, err := ParseMethod(prop.Method); err != nil {
			return err
		}
	}
	if _, ok := a.props[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.props[key] = prop
	return nil
}

// Keys returns the configured keys in insertion order.
func (a *AccountInfo) Keys() []journal.AccountKey {
	return a.keys
}

func (a *AccountInfo) prop(key journal.AccountKey, get func(ItemProp) string, fallback string) string {
	probes := []journal.AccountKey{
		key,
		{Account: key.Account, SubAccount: key.SubAccount},
		{Account: key.Account},
	}
	for _, probe := range probes {
		if p, ok := a.props[probe]; ok {
			if v := get(p); v != "" {
				return v
			}
		}
	}
	return fallback
}

// Side returns the natural side for a key.
func (a *AccountInfo) Side(key journal.AccountKey) ast.Side {
	side, err := ParseSide(a.prop(key, func(p ItemProp) string { return p.Side }, defaultProp.Side))
	if err != nil {
		return ast.Debit
	}
	return side
}

// Method returns the costing method for a key.
func (a *AccountInfo) Method(key journal.AccountKey) Method {
	m, err := ParseMethod(a.prop(key, func(p ItemProp) string { return p.Method }, defaultProp.Method))
	if err != nil {
		return LPC
	}
	return m
}

// TaxCat returns the tax category for a key.
func (a *AccountInfo) TaxCat(key journal.AccountKey) string {
	return a.prop(key, func(p ItemProp) string { return p.TaxCat }, defaultProp.TaxCat)
}

// DispCat returns the display category for a key.
func (a *AccountInfo) DispCat(key journal.AccountKey) string {
	return a.prop(key, func(p ItemProp) string { return p.DispCat }, defaultProp.DispCat)
}

// CSV column indices for the account metadata table.
const (
	colAccount = iota
	colSubAccount
	colItem
	colSide
	colMethod
	colTaxCat
	colDispCat
	colCount
)

var csvHeader = []string{"account", "sub_account", "item", "side", "method", "tax_cat", "disp_cat"}

// ReadAccountInfo reads the metadata table from CSV. The first row must
// be the header.
func ReadAccountInfo(r io.Reader) (*AccountInfo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = colCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading account info: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("account info is empty, expected a header row")
	}

	info := NewAccountInfo()
	for i, row := range rows[1:] {
		key := journal.AccountKey{
			Account:    row[colAccount],
			SubAccount: row[colSubAccount],
			Item:       row[colItem],
		}
		prop := ItemProp{
			Side:    row[colSide],
			Method:  row[colMethod],
			TaxCat:  row[colTaxCat],
			DispCat: row[colDispCat],
		}
		if err := info.Set(key, prop); err != nil {
			return nil, fmt.Errorf("account info row %d: %w", i+2, err)
		}
	}
	return info, nil
}

// WriteAccountInfo writes the metadata table as CSV with a header row.
func (a *AccountInfo) WriteAccountInfo(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, key := range a.keys {
		p := a.props[key]
		row := []string{key.Account, key.SubAccount, key.Item, p.Side, p.Method, p.TaxCat, p.DispCat}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadAccountInfo reads the metadata table from a CSV file.
func LoadAccountInfo(path string) (*AccountInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAccountInfo(f)
}

// SaveAccountInfo writes the metadata table to a CSV file.
func (a *AccountInfo) SaveAccountInfo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.WriteAccountInfo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
