package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/statebus/internal/store"
)

func newWatchCommand(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch [data-file]",
		Short: "Print every committed change of a data file as YAML",
		Long: `Watch seeds a store from a TOML, YAML or JSON data file, runs the
configured Lua transforms over each change and prints every commit to
stdout as a YAML document. The file is reloaded whenever it changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(a.cfg, a.logger, firstArg(args))
			if err != nil {
				return err
			}
			defer p.Close()

			printer := &changePrinter{w: a.stdout}
			if _, err := p.OnCommit(printer.print); err != nil {
				return err
			}

			if once {
				return p.source.Load()
			}
			a.logger.Info("watching", "path", p.source.Path())
			return p.source.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "load the file once and exit")
	return cmd
}

// changePrinter writes changes as a stream of YAML documents.
type changePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *changePrinter) print(c store.Change[map[string]any]) {
	doc := map[string]any{
		"version": c.Version,
		"value":   c.Value,
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		out = fmt.Appendf(nil, "error: %q\n", err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "---\n")
	_, _ = p.w.Write(out)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
