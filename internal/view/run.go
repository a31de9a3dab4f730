package view

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/statebus/internal/binding"
	"github.com/dshills/statebus/internal/store"
)

// Run initializes screen, shows s through a new View and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, screen Screen, s *store.Store[map[string]any], opts ...Option) error {
	v := New(screen, opts...)
	return v.Run(ctx, binding.New(s, v.Render))
}

// Run initializes the screen, mounts b and handles input until the user
// quits or ctx is cancelled. b must render through v. The binding is
// unmounted and the screen finalized before Run returns.
func (v *View) Run(ctx context.Context, b *binding.Binding[map[string]any]) error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("view: init screen: %w", err)
	}
	defer v.screen.Fini()

	b.Mount()
	defer b.Unmount()

	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for ctx.Err() == nil {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			// Screen finalized elsewhere.
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
			v.Redraw()
		case *tcell.EventKey:
			if Quits(ev) {
				return nil
			}
		}
	}
	return nil
}

// Quits reports whether ev is one of the quit keys.
func Quits(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
