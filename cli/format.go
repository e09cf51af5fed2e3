package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/k1nk/qtyaccounting/formatter"
	"github.com/k1nk/qtyaccounting/output"
	"github.com/k1nk/qtyaccounting/telemetry"
)

type FormatCmd struct {
	File          FileOrStdin `help:"Journal input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	CompactHeader bool        `help:"Render entry headers on the '<<' line."`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	doc, source, err := cmd.File.ParseJournal()
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprint(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		return NewCommandError(1)
	}

	f := formatter.New()
	f.CompactHeader = cmd.CompactHeader

	timer := telemetry.StartTimer(runCtx, "format")
	defer timer.End()

	return f.Format(os.Stdout, doc)
}
