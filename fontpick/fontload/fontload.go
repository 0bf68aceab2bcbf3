// Package fontload makes catalog fonts usable in a document.
//
// A Loader attaches each font stylesheet at most once, lets concurrent
// callers for the same font share a single in-flight load, and forgets
// failures so the next call starts over.
package fontload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
	"golang.org/x/sync/singleflight"
)

// ErrStylesheetLoad is returned when a font stylesheet fails to load.
var ErrStylesheetLoad = errors.New("font stylesheet failed to load")

// Weights the readiness wait asks the renderer for.
var readyWeights = []int{400, 700}

// Document is the host page a Loader attaches stylesheets to.
type Document interface {
	// Stylesheet finds a stylesheet link tagged with the font id.
	Stylesheet(id string) (Link, bool)
	// NewStylesheet creates an unattached link tagged with the font id.
	NewStylesheet(id string) Link
	// Attach appends the link to the document.
	Attach(Link)
	// Detach removes the link from the document.
	Detach(Link)
}

// Link is a stylesheet link element.
type Link interface {
	SetHref(url string)
	// Ready reports whether the stylesheet is already applied.
	Ready() bool
	// Watch registers fn for the next load (nil) or error signal. fn is
	// called at most once and must not block.
	Watch(fn func(error))
}

// FaceSet asks the renderer to have a font face ready for layout.
type FaceSet interface {
	Load(ctx context.Context, query string) error
}

// Option configures a Loader.
type Option func(*Loader)

// WithFaces enables the font face readiness wait.
func WithFaces(fs FaceSet) Option {
	return func(l *Loader) { l.faces = fs }
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// Loader tracks which fonts are loaded and which are in flight.
type Loader struct {
	doc   Document
	faces FaceSet
	log   *slog.Logger

	mu     sync.Mutex
	loaded map[string]struct{}
	group  singleflight.Group

	// called once a caller has joined the in-flight load
	testHookJoin func(id string)
}

// New returns a Loader with empty state.
func New(doc Document, opts ...Option) *Loader {
	l := &Loader{
		doc:    doc,
		loaded: map[string]struct{}{},
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

// Loaded reports whether the font stylesheet was observed ready.
func (l *Loader) Loaded(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loaded[id]
	return ok
}

func (l *Loader) markLoaded(id string) {
	l.mu.Lock()
	l.loaded[id] = struct{}{}
	l.mu.Unlock()
}

// EnsureLoaded makes sure the font stylesheet is in the document and
// waits for it. Callers that arrive while a load for the same font is in
// flight get that load's result. An error wraps ErrStylesheetLoad and is
// not remembered.
//
// Cancelling ctx stops this caller from waiting; the load itself keeps
// going for the others.
func (l *Loader) EnsureLoaded(ctx context.Context, font catalog.Font) error {
	if l.Loaded(font.ID) {
		l.waitFaces(ctx, font)
		return nil
	}

	ch := l.group.DoChan(font.ID, func() (interface{}, error) {
		return nil, l.load(context.WithoutCancel(ctx), font)
	})
	if l.testHookJoin != nil {
		l.testHookJoin(font.ID)
	}

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) load(ctx context.Context, font catalog.Font) error {
	link, exists := l.doc.Stylesheet(font.ID)
	if exists && link.Ready() {
		l.log.Debug("reusing stylesheet", "font", font.ID)
		l.markLoaded(font.ID)
		l.waitFaces(ctx, font)
		return nil
	}

	if !exists {
		link = l.doc.NewStylesheet(font.ID)
	}
	link.SetHref(font.URL)

	settled := make(chan error, 1)
	link.Watch(func(err error) { settled <- err })
	if !exists {
		l.log.Debug("attaching stylesheet", "font", font.ID, "url", font.URL)
		l.doc.Attach(link)
	}

	if err := <-settled; err != nil {
		// a failed link never fires again; drop it so a retry starts clean
		l.doc.Detach(link)
		return fmt.Errorf("%w: %s: %v", ErrStylesheetLoad, font.Name, err)
	}
	l.markLoaded(font.ID)
	l.waitFaces(ctx, font)
	return nil
}

// waitFaces asks for the regular and bold faces and waits for both to
// settle. Failures are only logged.
func (l *Loader) waitFaces(ctx context.Context, font catalog.Font) {
	if l.faces == nil {
		return
	}
	var wg sync.WaitGroup
	for _, w := range readyWeights {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			if err := l.faces.Load(ctx, query); err != nil {
				l.log.Debug("font face not ready", "font", font.ID, "query", query, "err", err)
			}
		}(font.FaceQuery(w))
	}
	wg.Wait()
}
