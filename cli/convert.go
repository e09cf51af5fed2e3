package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/formatter"
	"github.com/k1nk/qtyaccounting/output"
	"github.com/k1nk/qtyaccounting/tabular"
	"github.com/k1nk/qtyaccounting/telemetry"
)

type ConvertCmd struct {
	File string `help:"Tabular CSV export to convert." arg:"" type:"existingfile"`
	Sjis bool   `help:"Input is Shift_JIS encoded."`
}

func (cmd *ConvertCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	file, err := os.Open(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	timer := telemetry.StartTimer(runCtx, fmt.Sprintf("convert %s", cmd.File))

	var doc *ast.Journal
	if cmd.Sjis {
		doc, err = tabular.ReadMFShiftJIS(file)
	} else {
		doc, err = tabular.ReadMF(file)
	}
	if err != nil {
		timer.End()
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	err = formatter.New().Format(os.Stdout, doc)
	timer.End()
	return err
}
