package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/k1nk/qtyaccounting/journal"
)

func stockAccounts(t *testing.T, method string) *AccountInfo {
	t.Helper()
	info := NewAccountInfo()
	err := info.Set(journal.AccountKey{Account: "商品"}, ItemProp{Side: "Dr", Method: method})
	assert.NoError(t, err)
	return info
}

func TestResolve_BalanceQuantity(t *testing.T) {
	// The balance operator sums every prior record in the book, signed
	// by the natural side of the operator's account.
	l := mustProcess(t, nil, `
		<<2022-05-01 Dr 商品 @100 *10個 Cr 現金 1000円>>
		<<2022-05-10 Dr 現金 1000円 Cr 商品 @100 *B>>
	`)

	records := l.Records()
	last := records[3]
	assert.Equal(t, "商品", last.Key.Account)
	// Prior debit quantities 10 + 1, prior credit quantity 1.
	assert.Equal(t, "10", last.CrQuantity.Number.String())
	// The amount follows from the price once the quantity resolves.
	assert.Equal(t, "1000", last.CrAmount.Number.String())
}

func TestResolve_EqualQuantity(t *testing.T) {
	t.Run("mirror resolved earlier", func(t *testing.T) {
		l := mustProcess(t, nil, "<<2022-05-01 Dr 商品 *10個 1000円 Cr 買掛金 *E 1000円>>")

		records := l.Records()
		assert.Equal(t, "10", records[1].CrQuantity.Number.String())
	})

	t.Run("mirror resolved later", func(t *testing.T) {
		l := mustProcess(t, nil, "<<2022-05-01 Dr 売掛金 *E 1000円 Cr 売上 *10個 1000円>>")

		records := l.Records()
		assert.Equal(t, "10", records[0].DrQuantity.Number.String())
	})

	t.Run("no mirrored line", func(t *testing.T) {
		_, err := process(t, nil, `
			<<2022-05-01
			Dr 仕入 800円
			Dr 仮払消費税 *E 80円
			Cr 現金 880円>>
		`)
		assert.Error(t, err)
		_, ok := err.(*OperatorConflictError)
		assert.True(t, ok)
	})
}

func TestResolve_EqualAmount(t *testing.T) {
	l := mustProcess(t, nil, "<<2022-05-01 Dr 商品 @100 *10個 Cr 現金 ?E>>")

	records := l.Records()
	assert.Equal(t, "1000", records[1].CrAmount.Number.String())
}

func TestResolve_DiffAmount(t *testing.T) {
	t.Run("difference fills the gap", func(t *testing.T) {
		l := mustProcess(t, nil, `
			<<2022-05-01
			Dr 仕入 8000円
			Dr 仮払消費税 800円
			Cr 現金 ?D>>
		`)

		records := l.Records()
		// Interleaved order puts the credit second.
		cash := records[1]
		assert.Equal(t, "現金", cash.Key.Account)
		assert.Equal(t, "8800", cash.CrAmount.Number.String())
	})

	t.Run("two difference operators conflict", func(t *testing.T) {
		_, err := process(t, nil, `
			<<2022-05-01
			Dr 仕入 ?D
			Cr 現金 ?D>>
		`)
		assert.Error(t, err)
		_, ok := err.(*OperatorConflictError)
		assert.True(t, ok)
	})
}

func TestResolve_DiffQuantity(t *testing.T) {
	l := mustProcess(t, nil, `
		<<2022-05-01
		Dr 商品/倉庫A *6個 600円
		Dr 商品/倉庫B *4個 400円
		Cr 商品 @100 *D>>
	`)

	records := l.Records()
	total := records[1]
	assert.Equal(t, "商品", total.Key.Account)
	assert.Equal(t, "", total.Key.SubAccount)
	assert.Equal(t, "10", total.CrQuantity.Number.String())
	assert.Equal(t, "1000", total.CrAmount.Number.String())
}

func TestResolve_AutoCostingMA(t *testing.T) {
	l := mustProcess(t, stockAccounts(t, "MA"), `
		<<2022-05-01 Dr 商品 *10個 1000円 Cr 現金 1000円>>
		<<2022-05-02 Dr 売上原価 ?D Cr 商品 *5個 ?>>
		<<2022-05-03 Dr 売上原価 ?D Cr 商品 *5個 ?>>
	`)

	records := l.Records()
	assert.Equal(t, "500", records[3].CrAmount.Number.String())
	assert.Equal(t, "500", records[2].DrAmount.Number.String())
	assert.Equal(t, "500", records[5].CrAmount.Number.String())

	q, a := l.Stock(journal.AccountKey{Account: "商品"})
	assert.Equal(t, "0", q.String())
	assert.Equal(t, "0", a.String())
}

func TestResolve_AutoCostingFIFO(t *testing.T) {
	l := mustProcess(t, stockAccounts(t, "FIFO"), `
		<<2022-05-01 Dr 商品 *10個 1000円 Cr 現金 1000円>>
		<<2022-05-02 Dr 商品 *10個 2000円 Cr 現金 2000円>>
		<<2022-05-03 Dr 売上原価 ?D Cr 商品 *15個 ?>>
	`)

	records := l.Records()
	sale := records[5]
	assert.Equal(t, "商品", sale.Key.Account)
	assert.Equal(t, "15", sale.CrQuantity.Number.String())
	assert.Equal(t, "2000", sale.CrAmount.Number.String())

	q, a := l.Stock(journal.AccountKey{Account: "商品"})
	assert.Equal(t, "5", q.String())
	assert.Equal(t, "1000", a.String())
}

func TestResolve_AutoCostingFIFOShortStock(t *testing.T) {
	// Requesting more than the remaining stock caps the posting at
	// what is actually there.
	l := mustProcess(t, stockAccounts(t, "FIFO"), `
		<<2022-05-01 Dr 商品 *10個 1000円 Cr 現金 1000円>>
		<<2022-05-02 Dr 売上原価 ?D Cr 商品 *4個 ?>>
		<<2022-05-03 Dr 売上原価 ?D Cr 商品 *8個 ?>>
	`)

	records := l.Records()
	first := records[3]
	assert.Equal(t, "4", first.CrQuantity.Number.String())
	assert.Equal(t, "400", first.CrAmount.Number.String())

	second := records[5]
	assert.Equal(t, "6", second.CrQuantity.Number.String())
	assert.Equal(t, "600", second.CrAmount.Number.String())
}

func TestResolve_AutoCostingLPC(t *testing.T) {
	l := mustProcess(t, stockAccounts(t, "LPC"), `
		<<2022-05-01 Dr 商品 *10個 3000円 Cr 現金 3000円>>
		<<2022-05-02 Dr 商品 *10個 1000円 Cr 現金 1000円>>
		<<2022-05-03 Dr 売上原価 ?D Cr 商品 *5個 ?>>
	`)

	// Closing stock of 15 is valued at the last inbound unit price of
	// 100, leaving 2500 of the 4000 inbound value on the 5 outbound
	// units.
	records := l.Records()
	assert.Equal(t, "2500", records[5].CrAmount.Number.String())
}

func TestResolve_AutoCostingPA(t *testing.T) {
	l := mustProcess(t, stockAccounts(t, "PA"), `
		<<2022-05-01 Dr 商品 *10個 3000円 Cr 現金 3000円>>
		<<2022-05-02 Dr 商品 *10個 1000円 Cr 現金 1000円>>
		<<2022-05-03 Dr 売上原価 ?D Cr 商品 *5個 ?>>
	`)

	records := l.Records()
	assert.Equal(t, "1000", records[5].CrAmount.Number.String())
}

func TestResolve_AutoCostingNoStock(t *testing.T) {
	// An automatic amount with no stock history resolves to nothing.
	l := mustProcess(t, stockAccounts(t, "MA"), `
		<<2022-05-01
		Dr 売上原価 100円
		Cr 商品 *5個 ?>>
	`)

	records := l.Records()
	assert.True(t, records[1].CrQuantity.IsEmpty())
	assert.True(t, records[1].CrAmount.IsEmpty())
}
