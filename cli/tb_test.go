package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/k1nk/qtyaccounting/journal"
	"github.com/k1nk/qtyaccounting/ledger"
	"github.com/k1nk/qtyaccounting/parser"
)

func buildLedger(t *testing.T, source string) *ledger.Ledger {
	t.Helper()

	doc, err := parser.ParseString(source)
	assert.NoError(t, err)
	entries, err := journal.Interpret(doc)
	assert.NoError(t, err)

	accounts := ledger.NewAccountInfo()
	assert.NoError(t, accounts.Set(journal.AccountKey{Account: "現金"}, ledger.ItemProp{Side: "Dr", DispCat: "B1_資産"}))
	assert.NoError(t, accounts.Set(journal.AccountKey{Account: "売上"}, ledger.ItemProp{Side: "Cr", DispCat: "P1_収益"}))

	l := ledger.New(accounts)
	assert.NoError(t, l.Process(context.Background(), entries))
	return l
}

const saleJournal = `<<
2022-05-14 $山田商店
 Dr 現金 1000円
 Cr 売上 1000円
>>
`

func TestWriteTrialBalance(t *testing.T) {
	l := buildLedger(t, saleJournal)

	var buf bytes.Buffer
	assert.NoError(t, writeTrialBalance(&buf, l.TrialBalance(nil, nil)))

	rendered := buf.String()
	assert.Contains(t, rendered, "B1_資産")
	assert.Contains(t, rendered, "現金")
	assert.Contains(t, rendered, "P1_収益")
	assert.Contains(t, rendered, "売上")
	assert.Contains(t, rendered, "1000")

	// Header, rule and one row per account key.
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	assert.Equal(t, 4, len(lines))
}

func TestWriteView(t *testing.T) {
	l := buildLedger(t, saleJournal)

	view := l.View(journal.AccountKey{Account: "現金"})
	assert.Equal(t, 1, len(view.Records))

	var buf bytes.Buffer
	assert.NoError(t, writeView(&buf, view))

	rendered := buf.String()
	assert.Contains(t, rendered, "2022-05-14")
	assert.Contains(t, rendered, "山田商店")
	assert.Contains(t, rendered, "1000")
}

func TestDeferredCell(t *testing.T) {
	assert.Equal(t, "", deferredCell(journal.Deferred{}))
	assert.Equal(t, "10", deferredCell(journal.Number(decimal.NewFromInt(10))))
}
