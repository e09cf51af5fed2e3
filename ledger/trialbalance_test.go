package ledger

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/k1nk/qtyaccounting/journal"
)

func reportAccounts(t *testing.T) *AccountInfo {
	t.Helper()
	info := NewAccountInfo()
	for name, prop := range map[string]ItemProp{
		"現金":  {Side: "Dr", DispCat: "B1_資産"},
		"商品":  {Side: "Dr", DispCat: "B1_資産"},
		"元入金": {Side: "Cr", DispCat: "B3_純資産"},
		"売上":  {Side: "Cr", DispCat: "P1_収益"},
	} {
		err := info.Set(journal.AccountKey{Account: name}, prop)
		assert.NoError(t, err)
	}
	return info
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func findRow(t *testing.T, rows []*TrialBalanceRow, account string) *TrialBalanceRow {
	t.Helper()
	for _, row := range rows {
		if row.Key.Account == account {
			return row
		}
	}
	t.Fatalf("no row for account %s", account)
	return nil
}

const reportInput = `
	<<2022-01-01 &KIND::OPENING Dr 現金 5000円 Cr 元入金 5000円>>
	<<2022-02-01 Dr 商品 *10個 1000円 Cr 現金 1000円>>
	<<2022-03-01 Dr 現金 2000円 Cr 売上 2000円>>
`

func TestTrialBalance_Window(t *testing.T) {
	l := mustProcess(t, reportAccounts(t), reportInput)

	rows := l.TrialBalance(date("2022-03-01"), nil)

	cash := findRow(t, rows, "現金")
	assert.Equal(t, "5000", cash.OpeningAmount.String())
	assert.Equal(t, "1000", cash.BeforeCrAmount.String())
	assert.Equal(t, "2000", cash.SumDrAmount.String())
	assert.Equal(t, "4000", cash.StartAmount.String())
	assert.Equal(t, "6000", cash.EndAmount.String())

	sales := findRow(t, rows, "売上")
	assert.Equal(t, "0", sales.StartAmount.String())
	assert.Equal(t, "2000", sales.EndAmount.String())

	stock := findRow(t, rows, "商品")
	assert.Equal(t, "10", stock.StartQuantity.String())
	assert.Equal(t, "個", stock.QuantityUnit)
	assert.Equal(t, "円", stock.AmountUnit)
}

func TestTrialBalance_EndExclusive(t *testing.T) {
	l := mustProcess(t, reportAccounts(t), reportInput)

	rows := l.TrialBalance(nil, date("2022-03-01"))

	cash := findRow(t, rows, "現金")
	// The March entry falls outside the half-open window.
	assert.Equal(t, "5000", cash.StartAmount.String())
	assert.Equal(t, "1000", cash.SumCrAmount.String())
	assert.Equal(t, "4000", cash.EndAmount.String())
}

func TestTrialBalance_SortedByDispCat(t *testing.T) {
	l := mustProcess(t, reportAccounts(t), reportInput)

	rows := l.TrialBalance(nil, nil)

	var accounts []string
	for _, row := range rows {
		accounts = append(accounts, row.Key.Account)
	}
	assert.Equal(t, []string{"商品", "現金", "元入金", "売上"}, accounts)
}

func TestTrialBalance_Filtered(t *testing.T) {
	l := mustProcess(t, reportAccounts(t), `
		<<2022-03-01 $山田商店 Dr 売掛金 2000円 Cr 売上 2000円>>
		<<2022-03-02 $鈴木商店 Dr 売掛金 3000円 Cr 売上 3000円>>
	`)

	rows := l.TrialBalance(nil, nil, WithPartner("山田商店"))

	sales := findRow(t, rows, "売上")
	assert.Equal(t, "2000", sales.EndAmount.String())

	assert.Equal(t, []string{"山田商店", "鈴木商店"}, l.Partners())
}

func TestTrialBalance_MemoFilter(t *testing.T) {
	l := mustProcess(t, reportAccounts(t), `
		<<2022-03-01 &DEPT::東京 Dr 現金 100円 Cr 売上 100円>>
		<<2022-03-02 &DEPT::大阪 Dr 現金 300円 Cr 売上 300円>>
	`)

	rows := l.TrialBalance(nil, nil, WithMemo("DEPT", "大阪"))

	cash := findRow(t, rows, "現金")
	assert.Equal(t, "300", cash.EndAmount.String())
}
