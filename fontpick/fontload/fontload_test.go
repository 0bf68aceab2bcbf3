package fontload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stdiopt/gowasm-fontpick/fontpick/catalog"
)

var testFont = catalog.Font{
	ID:   "inter",
	Name: "Inter",
	URL:  "https://fonts.example/inter.css",
	Tags: []string{"ui"},
}

type fakeLink struct {
	id string

	mu      sync.Mutex
	href    string
	ready   bool
	watches []func(error)
}

func (l *fakeLink) SetHref(u string) {
	l.mu.Lock()
	l.href = u
	l.mu.Unlock()
}

func (l *fakeLink) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

func (l *fakeLink) Watch(fn func(error)) {
	l.mu.Lock()
	l.watches = append(l.watches, fn)
	l.mu.Unlock()
}

func (l *fakeLink) settle(err error) {
	l.mu.Lock()
	fns := l.watches
	l.watches = nil
	if err == nil {
		l.ready = true
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

type fakeDoc struct {
	mu       sync.Mutex
	links    map[string]*fakeLink
	created  int
	attaches int
	detaches int

	// settle, when set, settles a link as soon as it is attached.
	settle   func(*fakeLink)
	attached chan *fakeLink
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		links:    map[string]*fakeLink{},
		attached: make(chan *fakeLink, 16),
	}
}

func (d *fakeDoc) Stylesheet(id string) (Link, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.links[id]
	if !ok {
		return nil, false
	}
	return l, true
}

func (d *fakeDoc) NewStylesheet(id string) Link {
	d.mu.Lock()
	d.created++
	d.mu.Unlock()
	return &fakeLink{id: id}
}

func (d *fakeDoc) Attach(l Link) {
	fl := l.(*fakeLink)
	d.mu.Lock()
	d.links[fl.id] = fl
	d.attaches++
	settle := d.settle
	d.mu.Unlock()
	if settle != nil {
		settle(fl)
		return
	}
	d.attached <- fl
}

func (d *fakeDoc) Detach(l Link) {
	fl := l.(*fakeLink)
	d.mu.Lock()
	delete(d.links, fl.id)
	d.detaches++
	d.mu.Unlock()
}

func (d *fakeDoc) counts() (created, attaches, detaches int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created, d.attaches, d.detaches
}

type fakeFaces struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *fakeFaces) Load(ctx context.Context, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.err
}

func (f *fakeFaces) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := append([]string(nil), f.queries...)
	sort.Strings(q)
	return q
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func settleOK(l *fakeLink) { l.settle(nil) }

func settleErr(l *fakeLink) { l.settle(errors.New("404")) }

func TestEnsureLoadedDedup(t *testing.T) {
	const n = 8
	tests := []struct {
		name    string
		outcome error
	}{
		{"success", nil},
		{"failure", errors.New("blocked")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newFakeDoc()
			l := New(doc, WithLogger(quietLogger()))

			var joined sync.WaitGroup
			joined.Add(n)
			l.testHookJoin = func(string) { joined.Done() }

			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				go func() {
					errs <- l.EnsureLoaded(context.Background(), testFont)
				}()
			}

			link := <-doc.attached
			joined.Wait()
			link.settle(tt.outcome)

			for i := 0; i < n; i++ {
				err := <-errs
				if tt.outcome == nil && err != nil {
					t.Errorf("caller %d: unexpected error %v", i, err)
				}
				if tt.outcome != nil && !errors.Is(err, ErrStylesheetLoad) {
					t.Errorf("caller %d: got %v, want ErrStylesheetLoad", i, err)
				}
			}
			if _, attaches, _ := doc.counts(); attaches != 1 {
				t.Errorf("got %d attaches, want 1", attaches)
			}
			if got, want := l.Loaded(testFont.ID), tt.outcome == nil; got != want {
				t.Errorf("Loaded = %v, want %v", got, want)
			}
		})
	}
}

func TestEnsureLoadedCacheHit(t *testing.T) {
	doc := newFakeDoc()
	doc.settle = settleOK
	faces := &fakeFaces{}
	l := New(doc, WithFaces(faces), WithLogger(quietLogger()))

	for i := 0; i < 2; i++ {
		if err := l.EnsureLoaded(context.Background(), testFont); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}

	if _, attaches, _ := doc.counts(); attaches != 1 {
		t.Errorf("got %d attaches, want 1", attaches)
	}
	// the readiness wait runs again on the cache hit
	want := []string{
		`400 1rem "Inter"`, `400 1rem "Inter"`,
		`700 1rem "Inter"`, `700 1rem "Inter"`,
	}
	if d := cmp.Diff(want, faces.got()); d != "" {
		t.Errorf("face queries mismatch (-want +got):\n%s", d)
	}
}

func TestEnsureLoadedFailureIsNotSticky(t *testing.T) {
	doc := newFakeDoc()
	doc.settle = settleErr
	l := New(doc, WithLogger(quietLogger()))

	err := l.EnsureLoaded(context.Background(), testFont)
	if !errors.Is(err, ErrStylesheetLoad) {
		t.Fatalf("got %v, want ErrStylesheetLoad", err)
	}
	if l.Loaded(testFont.ID) {
		t.Fatal("failed font marked as loaded")
	}
	if _, ok := doc.Stylesheet(testFont.ID); ok {
		t.Fatal("failed link left in the document")
	}

	doc.mu.Lock()
	doc.settle = settleOK
	doc.mu.Unlock()

	if err := l.EnsureLoaded(context.Background(), testFont); err != nil {
		t.Fatalf("retry: %v", err)
	}
	created, attaches, detaches := doc.counts()
	if created != 2 || attaches != 2 || detaches != 1 {
		t.Errorf("got created=%d attaches=%d detaches=%d, want 2 2 1", created, attaches, detaches)
	}
	if !l.Loaded(testFont.ID) {
		t.Error("font not loaded after retry")
	}
}

func TestEnsureLoadedReusesReadyLink(t *testing.T) {
	doc := newFakeDoc()
	doc.links[testFont.ID] = &fakeLink{id: testFont.ID, ready: true}
	faces := &fakeFaces{}
	l := New(doc, WithFaces(faces), WithLogger(quietLogger()))

	if err := l.EnsureLoaded(context.Background(), testFont); err != nil {
		t.Fatal(err)
	}
	created, attaches, _ := doc.counts()
	if created != 0 || attaches != 0 {
		t.Errorf("got created=%d attaches=%d, want none", created, attaches)
	}
	if !l.Loaded(testFont.ID) {
		t.Error("font not marked loaded")
	}
	if got := len(faces.got()); got != 2 {
		t.Errorf("got %d face queries, want 2", got)
	}
}

func TestEnsureLoadedReusesPendingLink(t *testing.T) {
	doc := newFakeDoc()
	link := &fakeLink{id: testFont.ID}
	doc.links[testFont.ID] = link
	l := New(doc, WithLogger(quietLogger()))

	joined := make(chan struct{})
	l.testHookJoin = func(string) { close(joined) }

	errc := make(chan error, 1)
	go func() { errc <- l.EnsureLoaded(context.Background(), testFont) }()
	<-joined

	// wait for the loader to register on the link before settling it
	for {
		link.mu.Lock()
		n := len(link.watches)
		link.mu.Unlock()
		if n > 0 {
			break
		}
		runtime.Gosched()
	}
	link.settle(nil)

	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	created, attaches, _ := doc.counts()
	if created != 0 || attaches != 0 {
		t.Errorf("got created=%d attaches=%d, want none", created, attaches)
	}
	if link.href != testFont.URL {
		t.Errorf("href = %q, want %q", link.href, testFont.URL)
	}
}

func TestEnsureLoadedIgnoresFaceErrors(t *testing.T) {
	doc := newFakeDoc()
	doc.settle = settleOK
	faces := &fakeFaces{err: errors.New("no such face")}
	l := New(doc, WithFaces(faces), WithLogger(quietLogger()))

	if err := l.EnsureLoaded(context.Background(), testFont); err != nil {
		t.Fatalf("face errors leaked: %v", err)
	}
	if err := l.EnsureLoaded(context.Background(), testFont); err != nil {
		t.Fatalf("face errors leaked on cache hit: %v", err)
	}
}

func TestEnsureLoadedCancelDetachesCaller(t *testing.T) {
	doc := newFakeDoc()
	l := New(doc, WithLogger(quietLogger()))

	joined := make(chan string, 2)
	l.testHookJoin = func(id string) { joined <- id }

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- l.EnsureLoaded(ctx, testFont) }()
	link := <-doc.attached
	<-joined

	second := make(chan error, 1)
	go func() { second <- l.EnsureLoaded(context.Background(), testFont) }()
	<-joined

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: got %v, want context.Canceled", err)
	}

	link.settle(nil)
	if err := <-second; err != nil {
		t.Fatalf("second caller: %v", err)
	}
	if _, attaches, _ := doc.counts(); attaches != 1 {
		t.Errorf("got %d attaches, want 1", attaches)
	}
	if !l.Loaded(testFont.ID) {
		t.Error("load did not complete after the first caller left")
	}
}

func TestEnsureLoadedIndependentFonts(t *testing.T) {
	doc := newFakeDoc()
	doc.settle = func(l *fakeLink) {
		if l.id == "bad" {
			settleErr(l)
			return
		}
		settleOK(l)
	}
	l := New(doc, WithLogger(quietLogger()))

	good := catalog.Font{ID: "good", Name: "Good"}
	bad := catalog.Font{ID: "bad", Name: "Bad"}

	var wg sync.WaitGroup
	var goodErr, badErr error
	wg.Add(2)
	go func() { defer wg.Done(); goodErr = l.EnsureLoaded(context.Background(), good) }()
	go func() { defer wg.Done(); badErr = l.EnsureLoaded(context.Background(), bad) }()
	wg.Wait()

	if goodErr != nil {
		t.Errorf("good: %v", goodErr)
	}
	if !errors.Is(badErr, ErrStylesheetLoad) {
		t.Errorf("bad: got %v, want ErrStylesheetLoad", badErr)
	}
	if !l.Loaded("good") || l.Loaded("bad") {
		t.Errorf("Loaded(good)=%v Loaded(bad)=%v", l.Loaded("good"), l.Loaded("bad"))
	}
}
