package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/k1nk/qtyaccounting/journal"
	"github.com/k1nk/qtyaccounting/ledger"
	"github.com/k1nk/qtyaccounting/output"
)

// AccountsCmd manages the account metadata table.
type AccountsCmd struct {
	Init AccountsInitCmd `cmd:"" help:"Write a starter account metadata CSV file."`
	Show AccountsShowCmd `cmd:"" help:"Print the account metadata table."`
}

type AccountsInitCmd struct {
	File  string `help:"Destination CSV file." arg:"" type:"path"`
	Force bool   `help:"Overwrite an existing file without confirmation." short:"f"`
}

func (cmd *AccountsInitCmd) Run(ctx *kong.Context, globals *Globals) error {
	if _, err := os.Stat(cmd.File); err == nil {
		overwrite := cmd.Force
		if !overwrite {
			confirmed, err := promptYesNo(ctx, fmt.Sprintf("File %q already exists. Overwrite it?", cmd.File))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			overwrite = confirmed
		}
		if !overwrite {
			return fmt.Errorf("file already exists: %s", cmd.File)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access file: %w", err)
	}

	accounts := starterAccounts()
	if err := accounts.SaveAccountInfo(cmd.File); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s", pathStyle.Render(cmd.File)))
	return nil
}

// starterAccounts returns a small metadata table covering the common
// account classes, as a starting point for editing.
func starterAccounts() *ledger.AccountInfo {
	accounts := ledger.NewAccountInfo()
	for _, seed := range []struct {
		key  journal.AccountKey
		prop ledger.ItemProp
	}{
		{journal.AccountKey{Account: "現金"}, ledger.ItemProp{Side: "Dr", DispCat: "B1_資産"}},
		{journal.AccountKey{Account: "預金"}, ledger.ItemProp{Side: "Dr", DispCat: "B1_資産"}},
		{journal.AccountKey{Account: "商品"}, ledger.ItemProp{Side: "Dr", Method: "MA", DispCat: "B1_資産"}},
		{journal.AccountKey{Account: "買掛金"}, ledger.ItemProp{Side: "Cr", DispCat: "B2_負債"}},
		{journal.AccountKey{Account: "元入金"}, ledger.ItemProp{Side: "Cr", DispCat: "B3_純資産"}},
		{journal.AccountKey{Account: "売上"}, ledger.ItemProp{Side: "Cr", DispCat: "P1_収益"}},
		{journal.AccountKey{Account: "仕入"}, ledger.ItemProp{Side: "Dr", DispCat: "P2_費用"}},
	} {
		// Seeds are static and always valid.
		_ = accounts.Set(seed.key, seed.prop)
	}
	return accounts
}

type AccountsShowCmd struct {
	File string `help:"Account metadata CSV file." arg:"" optional:"" type:"path"`
}

func (cmd *AccountsShowCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := LoadConfig(globals.Config)
	if err != nil {
		return err
	}

	accounts, err := loadAccounts(cfg, cmd.File)
	if err != nil {
		return err
	}

	table := output.NewTable(
		output.Column{Title: "account"},
		output.Column{Title: "sub"},
		output.Column{Title: "item"},
		output.Column{Title: "side"},
		output.Column{Title: "method"},
		output.Column{Title: "tax"},
		output.Column{Title: "category"},
	)
	for _, key := range accounts.Keys() {
		table.AddRow(
			key.Account,
			key.SubAccount,
			key.Item,
			accounts.Side(key).String(),
			accounts.Method(key).String(),
			accounts.TaxCat(key),
			accounts.DispCat(key),
		)
	}

	if table.Len() == 0 {
		printInfof(ctx.Stdout, "No account metadata found")
		return nil
	}
	return table.Render(ctx.Stdout)
}
