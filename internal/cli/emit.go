package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/event/topic"
)

func newEmitCommand(a *app) *cobra.Command {
	var (
		glob bool
		once bool
	)

	cmd := &cobra.Command{
		Use:   "emit <pattern> <topic>...",
		Short: "Subscribe a pattern and emit topics against it",
		Long: `Emit subscribes one handler with the given pattern and then emits each
topic in turn, printing which ones were delivered. The pattern is a regular
expression unless --glob is set. A topic may hold several space or comma
separated names.`,
		Example: `  statebus emit 'user\..*' user.login user.logout system.boot
  statebus emit --glob 'user.*' "user.login, user.logout"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := newBus(a.cfg, a.logger)

			var pattern any = args[0]
			if glob {
				pattern = topic.Glob(args[0])
			}

			subscribe := bus.On
			if once {
				subscribe = bus.Once
			}
			if _, err := subscribe(pattern, func(e *event.Event) {
				fmt.Fprintf(a.stdout, "delivered %s [%s]\n", e.Topic, strings.Join(e.Names, " "))
			}); err != nil {
				return err
			}

			for _, t := range args[1:] {
				bus.Emit(t)
			}

			stats := bus.Stats()
			fmt.Fprintf(a.stdout, "%d emitted, %d delivered\n", stats.Emitted, stats.Delivered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&glob, "glob", false, "treat the pattern as a glob instead of a regular expression")
	cmd.Flags().BoolVar(&once, "once", false, "unsubscribe after the first delivery")
	return cmd
}
