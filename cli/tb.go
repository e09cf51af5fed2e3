package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/k1nk/qtyaccounting/journal"
	"github.com/k1nk/qtyaccounting/ledger"
	"github.com/k1nk/qtyaccounting/output"
	"github.com/k1nk/qtyaccounting/telemetry"
)

type TbCmd struct {
	File     FileOrStdin `help:"Journal input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Accounts string      `help:"Account metadata CSV file." type:"path"`
	Start    string      `help:"Window start date (YYYY-MM-DD, inclusive)."`
	End      string      `help:"Window end date (YYYY-MM-DD, exclusive)."`
	Partner  string      `help:"Only include records with this partner."`
	Person   string      `help:"Only include records with this person in charge."`
	Watch    bool        `help:"Re-render when the journal file changes." short:"w"`
}

func (cmd *TbCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	start, err := windowDate(cmd.Start, cfg.Start)
	if err != nil {
		return err
	}
	end, err := windowDate(cmd.End, cfg.End)
	if err != nil {
		return err
	}

	render := func() error {
		return cmd.render(runCtx, ctx.Stdout, ctx.Stderr, accounts, start, end)
	}

	if err := render(); err != nil {
		if !cmd.Watch {
			return err
		}
		// Keep watching; the next write may fix the journal.
		var cmdErr *CommandError
		if !stdErrors.As(err, &cmdErr) {
			return err
		}
	}

	if !cmd.Watch {
		return nil
	}
	if cmd.File.Filename == "<stdin>" {
		return fmt.Errorf("--watch requires a file argument")
	}

	printInfof(ctx.Stdout, "Watching %s", pathStyle.Render(cmd.File.GetAbsoluteFilename()))
	return cmd.watch(runCtx, render)
}

func (cmd *TbCmd) render(runCtx context.Context, stdout, stderr io.Writer, accounts *ledger.AccountInfo, start, end *time.Time) error {
	doc, source, err := cmd.File.ParseJournal()
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(stderr, renderer.Render(err))
		return NewCommandError(1)
	}

	entries, err := journal.Interpret(doc)
	if err != nil {
		renderer := NewErrorRenderer(source)
		_, _ = fmt.Fprintln(stderr, renderer.Render(err))
		return NewCommandError(1)
	}

	l := ledger.New(accounts)
	if err := l.Process(runCtx, entries); err != nil {
		renderer := NewErrorRenderer(source)
		var validationErrors *ledger.ValidationErrors
		if stdErrors.As(err, &validationErrors) {
			_, _ = fmt.Fprintln(stderr, renderer.RenderAll(validationErrors.Errors))
		} else {
			_, _ = fmt.Fprintln(stderr, renderer.Render(err))
		}
		return NewCommandError(1)
	}

	var opts []ledger.TrialBalanceOption
	if cmd.Partner != "" {
		opts = append(opts, ledger.WithPartner(cmd.Partner))
	}
	if cmd.Person != "" {
		opts = append(opts, ledger.WithPersonInCharge(cmd.Person))
	}

	rows := l.TrialBalance(start, end, opts...)
	return writeTrialBalance(stdout, rows)
}

// writeTrialBalance renders trial balance rows as an aligned table.
func writeTrialBalance(w io.Writer, rows []*ledger.TrialBalanceRow) error {
	table := output.NewTable(
		output.Column{Title: "category"},
		output.Column{Title: "account"},
		output.Column{Title: "unit"},
		output.Column{Title: "start qty", Align: output.AlignRight},
		output.Column{Title: "start", Align: output.AlignRight},
		output.Column{Title: "dr", Align: output.AlignRight},
		output.Column{Title: "cr", Align: output.AlignRight},
		output.Column{Title: "end qty", Align: output.AlignRight},
		output.Column{Title: "end", Align: output.AlignRight},
	)
	for _, row := range rows {
		table.AddRow(
			row.DispCat,
			row.Key.String(),
			row.QuantityUnit,
			row.StartQuantity.String(),
			row.StartAmount.String(),
			row.SumDrAmount.String(),
			row.SumCrAmount.String(),
			row.EndQuantity.String(),
			row.EndAmount.String(),
		)
	}
	return table.Render(w)
}

func windowDate(flag, fallback string) (*time.Time, error) {
	s := flag
	if s == "" {
		s = fallback
	}
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// watch re-runs render whenever the journal file changes, debouncing the
// multi-step writes editors produce.
func (cmd *TbCmd) watch(ctx context.Context, render func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(cmd.File.GetAbsoluteFilename()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch file: %w", err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Remove/Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(debounceDelay, func() {
				// Atomic saves replace the inode; re-add the path.
				_ = watcher.Add(cmd.File.GetAbsoluteFilename())
				if err := render(); err != nil {
					log.Printf("render failed: %v", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("file watcher error: %v", err)
		}
	}
}
