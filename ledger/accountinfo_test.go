package ledger

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

func TestAccountInfo_Fallback(t *testing.T) {
	info := NewAccountInfo()
	assert.NoError(t, info.Set(journal.AccountKey{Account: "商品"},
		ItemProp{Side: "Dr", Method: "MA", DispCat: "B1_資産"}))
	assert.NoError(t, info.Set(journal.AccountKey{Account: "商品", SubAccount: "倉庫A"},
		ItemProp{Method: "FIFO"}))
	assert.NoError(t, info.Set(journal.AccountKey{Account: "商品", SubAccount: "倉庫A", Item: "Tシャツ"},
		ItemProp{TaxCat: "課税仕入"}))

	exact := journal.AccountKey{Account: "商品", SubAccount: "倉庫A", Item: "Tシャツ"}

	// Each property falls back independently to the widest level that
	// sets it.
	assert.Equal(t, "課税仕入", info.TaxCat(exact))
	assert.Equal(t, FIFO, info.Method(exact))
	assert.Equal(t, ast.Debit, info.Side(exact))
	assert.Equal(t, "B1_資産", info.DispCat(exact))

	other := journal.AccountKey{Account: "商品", SubAccount: "倉庫B"}
	assert.Equal(t, MA, info.Method(other))

	unknown := journal.AccountKey{Account: "未知"}
	assert.Equal(t, ast.Debit, info.Side(unknown))
	assert.Equal(t, LPC, info.Method(unknown))
	assert.Equal(t, Undefined, info.TaxCat(unknown))
}

func TestAccountInfo_SetValidation(t *testing.T) {
	info := NewAccountInfo()
	assert.Error(t, info.Set(journal.AccountKey{Account: "a"}, ItemProp{Side: "Middle"}))
	assert.Error(t, info.Set(journal.AccountKey{Account: "a"}, ItemProp{Method: "LIFO"}))
}

func TestAccountInfo_CSV(t *testing.T) {
	info := NewAccountInfo()
	assert.NoError(t, info.Set(journal.AccountKey{Account: "売上"},
		ItemProp{Side: "Cr", TaxCat: "課税売上", DispCat: "P1_収益"}))
	assert.NoError(t, info.Set(journal.AccountKey{Account: "商品", SubAccount: "倉庫A"},
		ItemProp{Side: "Dr", Method: "FIFO"}))

	var buf bytes.Buffer
	assert.NoError(t, info.WriteAccountInfo(&buf))

	got, err := ReadAccountInfo(&buf)
	assert.NoError(t, err)
	assert.Equal(t, info.Keys(), got.Keys())
	assert.Equal(t, ast.Credit, got.Side(journal.AccountKey{Account: "売上"}))
	assert.Equal(t, FIFO, got.Method(journal.AccountKey{Account: "商品", SubAccount: "倉庫A"}))
}

func TestParseMethod(t *testing.T) {
	for name, want := range map[string]Method{
		"LPC": LPC, "MA": MA, "PA": PA, "FIFO": FIFO,
	} {
		got, err := ParseMethod(name)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, err := ParseMethod("AVG")
	assert.Error(t, err)
}
