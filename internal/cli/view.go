package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/statebus/internal/logging"
	"github.com/dshills/statebus/internal/view"
)

// newScreen is replaced in tests.
var newScreen = func() (view.Screen, error) {
	return tcell.NewScreen()
}

func newViewCommand(a *app) *cobra.Command {
	var (
		logFile string
		accent  string
	)

	cmd := &cobra.Command{
		Use:   "view [data-file]",
		Short: "Show a data file as a live key/value listing",
		Long: `View runs the same pipeline as watch and draws the current state in
the terminal, redrawing on every commit. Press q, Esc or Ctrl-C to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal belongs to the view, so logs go to a file or nowhere.
			logger := logging.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				if logger, err = logging.New(f, a.cfg.Log()); err != nil {
					return err
				}
			}

			opts := []view.Option{}
			if accent != "" {
				c, err := view.ParseColor(accent)
				if err != nil {
					return err
				}
				opts = append(opts, view.WithAccent(c))
			}

			p, err := newPipeline(a.cfg, logger, firstArg(args))
			if err != nil {
				return err
			}
			defer p.Close()
			opts = append(opts, view.WithTitle(p.source.Path()))

			screen, err := newScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			return runView(cmd.Context(), screen, p, logger, opts)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	cmd.Flags().StringVar(&accent, "accent", "", "hex color for the title and keys")
	return cmd
}

// runView feeds the store in the background while the view owns the
// foreground. Quitting the view stops the feed.
func runView(ctx context.Context, screen view.Screen, p *pipeline, logger *slog.Logger, opts []view.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fed := make(chan error, 1)
	go func() { fed <- p.source.Run(ctx) }()

	err := view.Run(ctx, screen, p.store, opts...)
	cancel()
	if ferr := <-fed; ferr != nil {
		logger.Error("source stopped", "error", ferr)
		if err == nil {
			err = ferr
		}
	}
	return err
}
