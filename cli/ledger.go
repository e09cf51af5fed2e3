package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/k1nk/qtyaccounting/journal"
	"github.com/k1nk/qtyaccounting/ledger"
	"github.com/k1nk/qtyaccounting/output"
	"github.com/k1nk/qtyaccounting/telemetry"
)

type LedgerCmd struct {
	Account  string      `help:"Account name to list." arg:""`
	File     FileOrStdin `help:"Journal input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Sub      string      `help:"Sub-account to list."`
	Item     string      `help:"Item to list."`
	Accounts string      `help:"Account metadata CSV file." type:"path"`
}

func (cmd *LedgerCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	cfg, err := LoadConfig(globals.Config)
	if err != nil {
		return err
	}
	accounts, err := loadAccounts(cfg, cmd.Accounts)
	if err != nil {
		return err
	}

	doc, source, err := cmd.File.ParseJournal()
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		return NewCommandError(1)
	}

	entries, err := journal.Interpret(doc)
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		return NewCommandError(1)
	}

	l := ledger.New(accounts)
	if err := l.Process(runCtx, entries); err != nil {
		renderer := NewErrorRenderer(source)
		var validationErrors *ledger.ValidationErrors
		if stdErrors.As(err, &validationErrors) {
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(validationErrors.Errors))
		} else {
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		}
		return NewCommandError(1)
	}

	key := journal.AccountKey{Account: cmd.Account, SubAccount: cmd.Sub, Item: cmd.Item}
	view := l.View(key)
	if len(view.Records) == 0 {
		printInfof(ctx.Stdout, "No records for %s", key.String())
		return nil
	}

	return writeView(ctx.Stdout, view)
}

// writeView renders the records of one account key as an aligned table.
func writeView(w io.Writer, view *ledger.View) error {
	table := output.NewTable(
		output.Column{Title: "date"},
		output.Column{Title: "partner"},
		output.Column{Title: "dr qty", Align: output.AlignRight},
		output.Column{Title: "dr", Align: output.AlignRight},
		output.Column{Title: "cr qty", Align: output.AlignRight},
		output.Column{Title: "cr", Align: output.AlignRight},
		output.Column{Title: "remarks"},
	)
	for _, rec := range view.Records {
		table.AddRow(
			rec.Raw,
			rec.Partner,
			deferredCell(rec.DrQuantity),
			deferredCell(rec.DrAmount),
			deferredCell(rec.CrQuantity),
			deferredCell(rec.CrAmount),
			rec.Remarks,
		)
	}
	return table.Render(w)
}

func deferredCell(d journal.Deferred) string {
	if !d.IsNumber() {
		return ""
	}
	return d.Number.String()
}
