package flipbook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// untitled hides fakeDoc's Title method.
type untitled struct{ Document }

type titled struct {
	*fakeDoc
	title string
}

func (t titled) Title() string { return t.title }

type mapSource map[string]Document

func (m mapSource) Open(path string) (Document, error) {
	d, ok := m[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return d, nil
}

func newTestViewer(t *testing.T, src PageSource, opts ...Option) (*Viewer, *fakeUploader) {
	t.Helper()
	up := &fakeUploader{}
	base := []Option{WithTextureSize(16), WithRenderScale(1), WithPreviewScale(1), WithSyncLoad()}
	v, err := NewViewer(src, up, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewViewer() = %v", err)
	}
	v.Resize(800, 600)
	t.Cleanup(func() { _ = v.Close() })
	return v, up
}

func TestNewViewerRejectsInvalidConfig(t *testing.T) {
	if _, err := NewViewer(&fakeSource{}, &fakeUploader{}, WithFlipStep(0)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewViewer() error = %v, want ErrInvalidConfig", err)
	}
}

func TestViewerOpen(t *testing.T) {
	doc := newFakeDoc(5)
	v, _ := newTestViewer(t, &fakeSource{docs: map[string]*fakeDoc{"book.pdf": doc}})

	err := v.Open("missing.pdf")
	var oe *OpenError
	if !errors.As(err, &oe) || oe.Path != "missing.pdf" || !errors.Is(err, ErrOpen) {
		t.Fatalf("Open(missing) = %v, want *OpenError", err)
	}
	if got := v.Notice(); got != "Failed to load PDF: no such file" {
		t.Errorf("Notice() = %q", got)
	}
	v.Dismiss()

	if err := v.Open("book.pdf"); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if v.Title() != "Fake Book" || v.Navigator().PageCount() != 5 || v.Navigator().Current() != 0 {
		t.Errorf("after Open: title %q, pages %d, current %d", v.Title(), v.Navigator().PageCount(), v.Navigator().Current())
	}
}

func TestViewerOpenWrapsPlainErrors(t *testing.T) {
	v, _ := newTestViewer(t, mapSource{})
	err := v.Open("x.pdf")
	var oe *OpenError
	if !errors.As(err, &oe) || oe.Path != "x.pdf" {
		t.Errorf("Open() = %v, want *OpenError", err)
	}
}

func TestViewerOpenEmptyDocument(t *testing.T) {
	empty := newFakeDoc(0)
	v, _ := newTestViewer(t, mapSource{"empty.pdf": empty})
	if err := v.Open("empty.pdf"); !errors.Is(err, ErrOpen) {
		t.Errorf("Open(empty) = %v, want ErrOpen", err)
	}
	if !empty.closed {
		t.Error("empty document was not closed")
	}
	if v.Navigator().Loaded() {
		t.Error("navigator loaded an empty document")
	}
}

func TestViewerTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		path string
		want string
	}{
		{"metadata", newFakeDoc(1), "a.pdf", "Fake Book"},
		{"file name", untitled{newFakeDoc(1)}, "/books/Moby Dick.pdf", "Moby Dick"},
		{"blank metadata", titled{newFakeDoc(1), "  "}, "notes.pdf", "notes"},
		{"normalised", titled{newFakeDoc(1), "Cafe\u0301"}, "c.pdf", "Caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestViewer(t, mapSource{tt.path: tt.doc})
			if err := v.Open(tt.path); err != nil {
				t.Fatal(err)
			}
			if got := v.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewerReplaceDocumentClosesPrevious(t *testing.T) {
	a, b := newFakeDoc(4), newFakeDoc(2)
	v, _ := newTestViewer(t, mapSource{"a.pdf": a, "b.pdf": b})
	_ = v.Open("a.pdf")
	_ = v.Next()
	if err := v.Open("b.pdf"); err != nil {
		t.Fatal(err)
	}
	if !a.closed {
		t.Error("previous document still open")
	}
	if v.Navigator().Current() != 0 || v.Navigator().PageCount() != 2 {
		t.Errorf("navigator = page %d of %d, want 0 of 2", v.Navigator().Current(), v.Navigator().PageCount())
	}

	// A failed open keeps the current document.
	_ = v.Open("c.pdf")
	if v.Path() != "b.pdf" || b.closed {
		t.Errorf("failed open replaced the document: path %q closed %v", v.Path(), b.closed)
	}
}

func TestViewerFlatNavigation(t *testing.T) {
	v, _ := newTestViewer(t, mapSource{"b.pdf": newFakeDoc(5)})
	_ = v.Open("b.pdf")
	ctx := context.Background()

	steps := []struct {
		name string
		do   func()
		want int
	}{
		{"next key", func() { v.HandleKey(ctx, KeyNext) }, 2},
		{"right click", func() { v.HandleClick(700, 10) }, 4},
		{"next at end", func() { v.HandleKey(ctx, KeyNext) }, 4},
		{"left click", func() { v.HandleClick(100, 10) }, 2},
		{"swap", func() { v.HandleKey(ctx, KeySwap) }, 3},
		{"previous", func() { v.HandleKey(ctx, KeyPrevious) }, 1},
		{"previous clamps", func() { v.HandleKey(ctx, KeyPrevious) }, 0},
	}
	for _, s := range steps {
		s.do()
		if got := v.Navigator().Current(); got != s.want {
			t.Fatalf("%s: current page = %d, want %d", s.name, got, s.want)
		}
	}
	if v.Notice() != "" {
		t.Errorf("unexpected notice %q", v.Notice())
	}
}

func TestViewerNoticeIsModal(t *testing.T) {
	v, _ := newTestViewer(t, mapSource{"b.pdf": newFakeDoc(6)})
	ctx := context.Background()

	v.HandleKey(ctx, KeyNext)
	if v.Notice() != "No PDF loaded." {
		t.Fatalf("Notice() = %q, want no-document notice", v.Notice())
	}

	_ = v.Open("b.pdf")
	v.fail(errors.New("something broke"))
	v.HandleKey(ctx, KeyNext)
	v.HandleClick(700, 0)
	v.HandleKey(ctx, KeyBook)
	if v.Navigator().Current() != 0 || v.Mode() != FlatMode {
		t.Fatalf("input was not swallowed by the notice")
	}

	v.HandleKey(ctx, KeyBack)
	if v.Notice() != "" {
		t.Fatal("KeyBack did not dismiss the notice")
	}
	v.HandleKey(ctx, KeyNext)
	if v.Navigator().Current() != 2 {
		t.Errorf("current page = %d, want 2 after dismissing", v.Navigator().Current())
	}
}

func TestViewerReopenAfterFailedOpen(t *testing.T) {
	src := mapSource{}
	v, _ := newTestViewer(t, src)
	ctx := context.Background()

	if err := v.Reopen(); !errors.Is(err, ErrNoDocumentLoaded) {
		t.Errorf("Reopen() before any Open = %v", err)
	}
	v.Dismiss()

	var oe *OpenError
	if err := v.Open("late.pdf"); !errors.As(err, &oe) {
		t.Fatalf("Open(missing) = %v, want *OpenError", err)
	}
	src["late.pdf"] = newFakeDoc(6)

	// The notice is modal: the first KeyReopen is swallowed.
	v.HandleKey(ctx, KeyReopen)
	if v.Path() != "" {
		t.Fatal("KeyReopen acted while a notice was shown")
	}
	v.HandleKey(ctx, KeyBack)
	v.HandleKey(ctx, KeyReopen)
	if v.Path() != "late.pdf" || v.Notice() != "" {
		t.Fatalf("after KeyReopen: path %q notice %q", v.Path(), v.Notice())
	}
	if v.Navigator().PageCount() != 6 {
		t.Errorf("PageCount() = %d, want 6", v.Navigator().PageCount())
	}
}

func TestViewerReopenKeepsPage(t *testing.T) {
	src := mapSource{"b.pdf": newFakeDoc(8)}
	v, _ := newTestViewer(t, src)
	_ = v.Open("b.pdf")
	_ = v.Navigator().SetPage(6)

	src["b.pdf"] = newFakeDoc(8)
	if err := v.Reopen(); err != nil {
		t.Fatal(err)
	}
	if got := v.Navigator().Current(); got != 6 {
		t.Errorf("current page = %d after re-reading, want 6", got)
	}

	// A shorter document starts over.
	src["b.pdf"] = newFakeDoc(3)
	if err := v.Reopen(); err != nil {
		t.Fatal(err)
	}
	if got := v.Navigator().Current(); got != 0 {
		t.Errorf("current page = %d in a shorter document, want 0", got)
	}
}

func TestViewerBookMode(t *testing.T) {
	v, up := newTestViewer(t, mapSource{"b.pdf": newFakeDoc(5)})
	_ = v.Open("b.pdf")
	ctx := context.Background()

	v.HandleKey(ctx, KeyBook)
	if v.Mode() != BookMode {
		t.Fatalf("Mode() = %v, want book (notice %q)", v.Mode(), v.Notice())
	}
	if up.live() != 2 {
		t.Errorf("live textures = %d, want 2", up.live())
	}

	v.HandleKey(ctx, KeyNext)
	v.Loop().Advance()
	if v.Loop().Animator().State() != FlippingRight {
		t.Errorf("State() = %v, want FlippingRight", v.Loop().Animator().State())
	}

	v.HandleKey(ctx, KeyBack)
	if v.Mode() != FlatMode || up.live() != 0 {
		t.Errorf("after KeyBack: mode %v, live textures %d", v.Mode(), up.live())
	}
	if v.Loop().Animator().Active() {
		t.Error("flip still active after leaving book mode")
	}
}

func TestViewerBookModeFrameAndQuit(t *testing.T) {
	v, _ := newTestViewer(t, mapSource{"b.pdf": newFakeDoc(5)})
	_ = v.Open("b.pdf")
	if err := v.EnterBook(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := &recordingSurface{}
	now := time.Unix(50, 0)
	if err := v.Frame(now, s); err != nil {
		t.Fatal(err)
	}
	if s.presents != 1 || len(s.overlays) != 1 || s.overlays[0].Title != "Fake Book" {
		t.Fatalf("frame: presents %d overlays %+v", s.presents, s.overlays)
	}

	v.Loop().Post(Quit{})
	if err := v.Frame(now.Add(time.Second), s); err != nil {
		t.Fatal(err)
	}
	if v.Mode() != FlatMode {
		t.Errorf("Mode() = %v after Quit, want flat", v.Mode())
	}
}

func TestViewerEnterBookFailure(t *testing.T) {
	doc := newFakeDoc(4)
	doc.fail[0] = errors.New("corrupt")
	doc.fail[1] = errors.New("corrupt")
	v, up := newTestViewer(t, mapSource{"b.pdf": doc})

	if err := v.EnterBook(context.Background()); !errors.Is(err, ErrNoDocumentLoaded) {
		t.Errorf("EnterBook() without document = %v", err)
	}
	v.Dismiss()

	_ = v.Open("b.pdf")
	err := v.EnterBook(context.Background())
	if !errors.Is(err, ErrTextureLoadFailed) {
		t.Fatalf("EnterBook() = %v, want ErrTextureLoadFailed", err)
	}
	if v.Mode() != FlatMode || up.live() != 0 {
		t.Errorf("mode %v, live textures %d after total failure", v.Mode(), up.live())
	}
	if !strings.HasPrefix(v.Notice(), "Failed to display pages") {
		t.Errorf("Notice() = %q", v.Notice())
	}

	// One bad page still enters book mode with the other page shown.
	delete(doc.fail, 0)
	v.Dismiss()
	if err := v.EnterBook(context.Background()); !errors.Is(err, ErrTextureLoadFailed) {
		t.Fatalf("EnterBook() = %v, want partial failure", err)
	}
	if v.Mode() != BookMode || up.live() != 1 {
		t.Errorf("mode %v, live textures %d after partial failure", v.Mode(), up.live())
	}
}

func TestViewerPreview(t *testing.T) {
	doc := newFakeDoc(3)
	v, _ := newTestViewer(t, mapSource{"b.pdf": doc})
	ctx := context.Background()

	if _, err := v.Preview(ctx); !errors.Is(err, ErrNoDocumentLoaded) {
		t.Errorf("Preview() without document = %v", err)
	}

	_ = v.Open("b.pdf")
	img, err := v.Preview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("preview bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(350, 300); !colorNear(got, pageColor(0)) {
		t.Errorf("left of centre = %v, want page 0", got)
	}
	if got := img.RGBAAt(450, 300); !colorNear(got, pageColor(1)) {
		t.Errorf("right of centre = %v, want page 1", got)
	}

	calls := len(doc.rasterized())
	again, _ := v.Preview(ctx)
	if again != img || len(doc.rasterized()) != calls {
		t.Error("unchanged spread was rendered again")
	}

	doc.fail[2] = errors.New("bad page")
	_ = v.Next()
	if _, err := v.Preview(ctx); !errors.Is(err, ErrRasterize) {
		t.Errorf("Preview() = %v, want ErrRasterize", err)
	}
	if v.Notice() == "" {
		t.Error("failed preview raised no notice")
	}
	v.Dismiss()
	_, _ = v.Preview(ctx)
	if v.Notice() != "" {
		t.Error("failed preview was retried for the same spread")
	}
}
