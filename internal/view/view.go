package view

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/statebus/internal/value"
)

// Screen is the part of tcell.Screen the view uses.
type Screen interface {
	Init() error
	Fini()
	Clear()
	Show()
	Sync()
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
}

var _ Screen = tcell.Screen(nil)

// Entry is one rendered line.
type Entry struct {
	Key   string
	Value string
}

// Entries flattens snapshot into dot-path entries sorted by key.
func Entries(snapshot map[string]any) []Entry {
	flat := value.Flatten(snapshot)
	entries := make([]Entry, 0, len(flat))
	for k, v := range flat {
		entries = append(entries, Entry{Key: k, Value: formatValue(v)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case map[string]any:
		if len(x) == 0 {
			return "{}"
		}
	}
	return fmt.Sprint(v)
}

// Option configures a View.
type Option func(*View)

// WithTitle sets the heading drawn on the first row.
func WithTitle(title string) Option {
	return func(v *View) {
		v.title = title
	}
}

// WithAccent sets the color used for the title and keys.
func WithAccent(c tcell.Color) Option {
	return func(v *View) {
		v.titleStyle = v.titleStyle.Foreground(c)
		v.keyStyle = v.keyStyle.Foreground(c)
	}
}

// ParseColor parses a hex color such as "#5f87af".
func ParseColor(hex string) (tcell.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("view: parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

// View draws map snapshots on a Screen.
type View struct {
	screen Screen
	title  string

	titleStyle tcell.Style
	keyStyle   tcell.Style
	valueStyle tcell.Style

	mu     sync.Mutex
	last   map[string]any
	frames uint64
}

// New creates a view over screen. It does not initialize the screen.
func New(screen Screen, opts ...Option) *View {
	v := &View{
		screen:     screen,
		title:      "statebus",
		titleStyle: tcell.StyleDefault.Bold(true),
		keyStyle:   tcell.StyleDefault,
		valueStyle: tcell.StyleDefault,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render draws snapshot and shows the result.
func (v *View) Render(snapshot map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.last = snapshot
	v.draw()
}

// Redraw draws the last rendered snapshot again.
func (v *View) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.draw()
}

// Frames returns how many times the view has been drawn.
func (v *View) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

func (v *View) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	row := 0
	if v.title != "" && row < height {
		drawText(v.screen, 0, row, width, v.title, v.titleStyle)
		row++
	}
	for _, e := range Entries(v.last) {
		if row >= height {
			break
		}
		x := drawText(v.screen, 0, row, width, e.Key, v.keyStyle)
		x = drawText(v.screen, x, row, width, " = ", tcell.StyleDefault)
		drawText(v.screen, x, row, width, e.Value, v.valueStyle)
		row++
	}

	v.screen.Show()
	v.frames++
}

// drawText writes text from column x, stopping before maxX. It returns
// the column after the last cell written.
func drawText(s Screen, x, y, maxX int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}
