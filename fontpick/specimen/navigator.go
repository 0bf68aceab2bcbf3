// Package specimen drives which catalog font is on display.
//
// A Navigator always completes a font switch: a font that fails to load
// is still shown and the page falls back to the browser default face.
package specimen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
)

var (
	ErrClipboard   = errors.New("clipboard write failed")
	ErrUnknownFont = errors.New("unknown font")
)

// CopyFeedback is how long the copied indicator stays on.
const CopyFeedback = 1500 * time.Millisecond

// FontLoader makes a font usable before it is displayed.
type FontLoader interface {
	EnsureLoaded(ctx context.Context, font catalog.Font) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Timer is a pending call scheduled by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, time.AfterFunc by default.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is a snapshot of what the page should show.
type State struct {
	Font     catalog.Font
	Family   string
	Command  string
	Accent   string
	Position int // 1-based
	Total    int

	Ready         bool
	Transitioning bool
	Copied        bool
}

// Option configures a Navigator.
type Option func(*Navigator)

func WithClipboard(c Clipboard) Option {
	return func(n *Navigator) { n.clip = c }
}

func WithRand(r *rand.Rand) Option {
	return func(n *Navigator) { n.rng = r }
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(n *Navigator) { n.after = fn }
}

func WithLogger(log *slog.Logger) Option {
	return func(n *Navigator) { n.log = log }
}

// Navigator walks a shuffled order of the catalog.
type Navigator struct {
	fonts  []catalog.Font
	loader FontLoader
	clip   Clipboard
	rng    *rand.Rand
	after  AfterFunc
	log    *slog.Logger

	mu            sync.Mutex
	order         []int
	pos           int
	ready         bool
	transitioning bool
	copied        bool
	copyTimer     Timer
	copyGen       int
	observers     []func(State)
}

// New returns a Navigator over fonts, which must not be empty.
func New(fonts []catalog.Font, loader FontLoader, opts ...Option) *Navigator {
	n := &Navigator{
		fonts:  fonts,
		loader: loader,
		after:  stdAfterFunc,
	}
	for _, o := range opts {
		o(n)
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if n.log == nil {
		n.log = slog.Default()
	}
	n.order = Shuffle(n.rng, len(fonts), -1)
	return n
}

// OnChange registers fn to be called with every new state.
func (n *Navigator) OnChange(fn func(State)) {
	n.mu.Lock()
	n.observers = append(n.observers, fn)
	n.mu.Unlock()
}

// State returns the current snapshot.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Navigator) stateLocked() State {
	f := n.fonts[n.order[n.pos]]
	return State{
		Font:          f,
		Family:        f.Family(),
		Command:       f.InstallCommand(),
		Accent:        f.Accent().Hex(),
		Position:      n.pos + 1,
		Total:         len(n.fonts),
		Ready:         n.ready,
		Transitioning: n.transitioning,
		Copied:        n.copied,
	}
}

func (n *Navigator) notify() {
	n.mu.Lock()
	s := n.stateLocked()
	obs := append([]func(State){}, n.observers...)
	n.mu.Unlock()
	for _, fn := range obs {
		fn(s)
	}
}

// Start loads the first font of the order and marks the specimen ready
// whatever the outcome. The load error, if any, is returned.
func (n *Navigator) Start(ctx context.Context) error {
	n.mu.Lock()
	font := n.fonts[n.order[n.pos]]
	n.mu.Unlock()

	err := n.loader.EnsureLoaded(ctx, font)
	if err != nil {
		n.log.Error("font load failed", "font", font.ID, "err", err)
	}

	n.mu.Lock()
	n.ready = true
	n.mu.Unlock()
	n.notify()
	return err
}

// Next moves to the next font, reshuffling after the last one. It does
// nothing before Start completes or while another switch is running.
// The returned error is the load error; the switch happened anyway.
func (n *Navigator) Next(ctx context.Context) error {
	n.mu.Lock()
	if !n.ready || n.transitioning {
		n.mu.Unlock()
		return nil
	}
	pos, order := n.pos+1, n.order
	if pos >= len(order) {
		pos, order = 0, Shuffle(n.rng, len(n.fonts), n.order[n.pos])
	}
	n.transitioning = true
	n.mu.Unlock()

	return n.switchTo(ctx, pos, order)
}

// Previous moves back one font within the current order.
func (n *Navigator) Previous(ctx context.Context) error {
	n.mu.Lock()
	if !n.ready || n.transitioning || n.pos == 0 {
		n.mu.Unlock()
		return nil
	}
	pos, order := n.pos-1, n.order
	n.transitioning = true
	n.mu.Unlock()

	return n.switchTo(ctx, pos, order)
}

// Show jumps to the font with the given id.
func (n *Navigator) Show(ctx context.Context, id string) error {
	n.mu.Lock()
	if !n.ready || n.transitioning {
		n.mu.Unlock()
		return nil
	}
	pos := -1
	for i, idx := range n.order {
		if n.fonts[idx].ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		n.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownFont, id)
	}
	if pos == n.pos {
		n.mu.Unlock()
		return nil
	}
	order := n.order
	n.transitioning = true
	n.mu.Unlock()

	return n.switchTo(ctx, pos, order)
}

// switchTo expects transitioning to be set by the caller.
func (n *Navigator) switchTo(ctx context.Context, pos int, order []int) error {
	n.notify()

	font := n.fonts[order[pos]]
	err := n.loader.EnsureLoaded(ctx, font)
	if err != nil {
		n.log.Error("font load failed", "font", font.ID, "err", err)
	}

	n.mu.Lock()
	n.order = order
	n.pos = pos
	n.transitioning = false
	n.ready = true
	n.resetCopiedLocked()
	n.mu.Unlock()
	n.notify()
	return err
}

// Copy writes the install command of the current font to the clipboard
// and turns the copied indicator on for CopyFeedback. Copying again
// before that restarts the delay.
func (n *Navigator) Copy(ctx context.Context) error {
	if n.clip == nil {
		return fmt.Errorf("%w: no clipboard", ErrClipboard)
	}
	cmd := n.State().Command
	if err := n.clip.WriteText(ctx, cmd); err != nil {
		n.log.Error("clipboard copy failed", "err", err)
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}

	n.mu.Lock()
	if n.copyTimer != nil {
		n.copyTimer.Stop()
	}
	n.copied = true
	n.copyGen++
	gen := n.copyGen
	n.copyTimer = n.after(CopyFeedback, func() {
		n.mu.Lock()
		if gen != n.copyGen {
			n.mu.Unlock()
			return
		}
		n.copied = false
		n.copyTimer = nil
		n.mu.Unlock()
		n.notify()
	})
	n.mu.Unlock()
	n.notify()
	return nil
}

func (n *Navigator) resetCopiedLocked() {
	if n.copyTimer != nil {
		n.copyTimer.Stop()
		n.copyTimer = nil
	}
	n.copyGen++
	n.copied = false
}

// Close stops the pending copied indicator timer.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.resetCopiedLocked()
	n.mu.Unlock()
}
