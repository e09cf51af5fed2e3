package journal

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/parser"
)

func mustInterpret(t *testing.T, source string) []*Entry {
	t.Helper()

	doc, err := parser.ParseString(source)
	assert.NoError(t, err)

	entries, err := Interpret(doc)
	assert.NoError(t, err)
	return entries
}

func TestInterpretSortsByDatetime(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14 Dr 現金 300円 Cr 売上 300円 >>
<<2022-05-10 Dr 現金 100円 Cr 売上 100円 >>
<<2022-05-10T09:00:00 Dr 現金 200円 Cr 売上 200円 >>
`)

	assert.Equal(t, 3, len(entries))
	assert.Equal(t, "2022-05-10", entries[0].Header.Raw)
	assert.Equal(t, "2022-05-10T09:00:00", entries[1].Header.Raw)
	assert.Equal(t, "2022-05-14", entries[2].Header.Raw)

	for i, e := range entries {
		assert.Equal(t, i, e.ID)
	}
}

func TestInterpretKeepsDocumentOrderForEqualDatetimes(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-10 Dr 現金 100円 Cr 売上 100円 >>
<<2022-05-10 Dr 現金 200円 Cr 売上 200円 >>
`)

	assert.Equal(t, "100", entries[0].Legs[0].Amount.Number.String())
	assert.Equal(t, "200", entries[1].Legs[0].Amount.Number.String())
}

func TestInterpretHeaderFields(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14T10:30:00 $山田商店 >佐藤 ##月次 ##締め
	Dr 現金 1000円
	Cr 売上 1000円
>>`)

	h := entries[0].Header
	assert.Equal(t, "山田商店", h.Partner)
	assert.Equal(t, "佐藤", h.PersonInCharge)
	assert.Equal(t, "月次締め", h.Remarks)
	assert.True(t, h.HasTime)
	assert.Equal(t, "2022-05-14T10:30:00", h.Raw)
}

func TestInterpretScopeChain(t *testing.T) {
	// A header-only entry publishes its memos to all later entries.
	// Within an entry the probe order is leg, header, global.
	entries := mustInterpret(t, `
<<2022-04-01 &p:600 &dept::本社 >>
<<2022-05-14
	Dr 商品#TシャツA @[p] *1個 600円
	Cr 現金 600円
>>
<<2022-05-15 &p:700
	Dr 商品#TシャツB @[p] *1個 700円
	Dr 商品#TシャツC @[p] *1個 800円 &p:800
	Cr 現金 1500円
>>`)

	assert.Equal(t, 3, len(entries))

	fromGlobal := entries[1].Legs[0]
	assert.Equal(t, "600", fromGlobal.Price.String())

	fromHeader := entries[2].Legs[0]
	assert.Equal(t, "700", fromHeader.Price.String())

	fromLeg := entries[2].Legs[1]
	assert.Equal(t, "800", fromLeg.Price.String())
}

func TestInterpretLaterGlobalsOverrideEarlier(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-04-01 &p:600 >>
<<2022-04-02 &p:650 >>
<<2022-05-14
	Dr 商品#Tシャツ @[p] *1個 650円
	Cr 現金 650円
>>`)

	assert.Equal(t, "650", entries[2].Legs[0].Price.String())
}

func TestInterpretStringReferences(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14 &w::倉庫A &who::山田商店
	Dr 商品/[w]#Tシャツ *1個 600円 $[who]
	Cr 現金 600円
>>`)

	leg := entries[0].Legs[0]
	assert.Equal(t, "倉庫A", leg.Key.SubAccount)
	assert.Equal(t, "山田商店", leg.Partner)
}

func TestInterpretReferenceMissIsPermissive(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14
	Dr 商品#Tシャツ @[nope] *1個 [missing]円 $[unknown]
	Cr 現金 600円
>>`)

	leg := entries[0].Legs[0]
	assert.Zero(t, leg.Price)
	assert.True(t, leg.Amount.IsEmpty())
	assert.Equal(t, "", leg.Partner)
}

func TestInterpretTypeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "string reference to numeric memo",
			input: "<<2022-05-14 &p:600 Dr 現金 100円 $[p] Cr 売上 100円 >>",
			want:  "must be a string",
		},
		{
			name:  "price reference to string memo",
			input: "<<2022-05-14 &w::倉庫A Dr 商品 @[w] *1個 100円 Cr 現金 100円 >>",
			want:  "must be a number",
		},
		{
			name:  "amount reference to string memo",
			input: "<<2022-05-14 &w::倉庫A Dr 現金 [w]円 Cr 売上 100円 >>",
			want:  "must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.ParseString(tt.input)
			assert.NoError(t, err)

			_, err = Interpret(doc)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var terr *TypeError
			assert.True(t, errors.As(err, &terr))
			assert.NotZero(t, terr.GetPosition().Line)
		})
	}
}

func TestInterpretDeferredOperators(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14
	Dr 仕入 ?E
	Cr 商品#Tシャツ *10個 ?
	Cr 現金 ?D
>>`)

	legs := entries[0].Legs
	assert.True(t, legs[0].Amount.IsOp(ast.OpEqual))
	assert.True(t, legs[1].Amount.IsOp(ast.OpAuto))
	assert.True(t, legs[1].Quantity.IsNumber())
	assert.True(t, legs[2].Amount.IsOp(ast.OpDiff))
}

func TestInterpretLegNumbering(t *testing.T) {
	entries := mustInterpret(t, `
<<2022-05-14
	Dr 現金 600円
	Cr 商品#TシャツA *1個 ?
	Dr 仕入 ?E
	Cr 商品#TシャツB *1個 ?
>>`)

	legs := entries[0].Legs
	for i, leg := range legs {
		assert.Equal(t, i, leg.Order)
	}
	assert.Equal(t, 0, legs[0].LineNo)
	assert.Equal(t, 0, legs[1].LineNo)
	assert.Equal(t, 1, legs[2].LineNo)
	assert.Equal(t, 1, legs[3].LineNo)

	entry := entries[0]
	assert.Equal(t, 2, len(entry.Debits()))
	assert.Equal(t, 2, len(entry.Credits()))
	assert.Equal(t, "現金", entry.Debits()[0].Key.Account)
	assert.Equal(t, "TシャツB", entry.Credits()[1].Key.Item)
}

func TestInterpretMissingDatetime(t *testing.T) {
	doc := &ast.Journal{Items: []ast.Item{
		&ast.Entry{Header: &ast.Header{}},
	}}

	_, err := Interpret(doc)
	assert.Error(t, err)

	var merr *MissingHeaderError
	assert.True(t, errors.As(err, &merr))
}

func TestAccountKeyString(t *testing.T) {
	tests := []struct {
		key  AccountKey
		want string
	}{
		{AccountKey{Account: "現金"}, "現金"},
		{AccountKey{Account: "商品", Item: "Tシャツ"}, "商品#Tシャツ"},
		{AccountKey{Account: "商品", SubAccount: "倉庫A"}, "商品/倉庫A"},
		{AccountKey{Account: "商品", SubAccount: "倉庫A", Item: "Tシャツ"}, "商品/倉庫A#Tシャツ"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.String())
	}
}
