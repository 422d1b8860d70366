package flipbook

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/flipbook/flat"
)

// Mode is the viewer's presentation mode.
type Mode int

// Modes.
const (
	// FlatMode shows the spread as one still image.
	FlatMode Mode = iota

	// BookMode shows the spread as two textured pages that flip in 3D.
	BookMode
)

func (m Mode) String() string {
	if m == BookMode {
		return "book"
	}
	return "flat"
}

// Key is a viewer command bound to a keyboard key by the host.
type Key int

// Keys. The usual bindings are Left, Right, S, Space, Escape and R.
const (
	KeyNone Key = iota
	KeyPrevious
	KeyNext
	KeySwap
	KeyBook
	KeyBack
	KeyReopen
)

// Viewer is the application state of the book viewer: the open document,
// the current presentation mode and any notice waiting to be dismissed.
//
// A notice is modal. While one is shown every input except KeyBack is
// ignored, and KeyBack only dismisses it.
//
// Viewer is not safe for concurrent use; it belongs to the UI thread.
type Viewer struct {
	cfg    Config
	source PageSource
	nav    *Navigator
	cache  *TextureCache
	loop   *Loop

	doc    Document
	path   string
	last   string // last path passed to Open, even if it failed
	title  string
	mode   Mode
	notice string

	width, height int

	preview    *image.RGBA
	previewErr error
	previewKey previewKey
}

type previewKey struct {
	spread        Spread
	width, height int
}

// NewViewer creates a viewer with no document open.
func NewViewer(source PageSource, uploader Uploader, opts ...Option) (*Viewer, error) {
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v := &Viewer{
		cfg:    cfg,
		source: source,
		nav:    NewNavigator(0),
		cache:  NewTextureCache(uploader, cfg),
	}
	v.loop = NewLoop(v.nav, v.cache, cfg)
	v.loop.OnError(v.fail)
	v.loop.DecorateOverlay(func(o *Overlay) {
		o.Title = v.title
		o.Notice = v.notice
	})
	return v, nil
}

// Navigator returns the viewer's navigator.
func (v *Viewer) Navigator() *Navigator { return v.nav }

// Loop returns the render loop of the book mode.
func (v *Viewer) Loop() *Loop { return v.loop }

// Mode returns the current presentation mode.
func (v *Viewer) Mode() Mode { return v.mode }

// Title returns the document title, or "" with no document.
func (v *Viewer) Title() string { return v.title }

// Path returns the path of the open document.
func (v *Viewer) Path() string { return v.path }

// Notice returns the message of the pending notice, or "".
func (v *Viewer) Notice() string { return v.notice }

// Dismiss clears the pending notice.
func (v *Viewer) Dismiss() { v.notice = "" }

// Open replaces the current document with the one at path. On failure the
// previous document stays open and a notice is raised.
func (v *Viewer) Open(path string) error {
	v.last = path
	doc, err := v.source.Open(path)
	if err == nil && doc.PageCount() <= 0 {
		_ = doc.Close()
		err = errors.New("document has no pages")
	}
	if err != nil {
		var oe *OpenError
		if !errors.As(err, &oe) {
			err = &OpenError{Path: path, Err: err}
		}
		v.fail(err)
		return err
	}

	v.LeaveBook()
	if cerr := v.closeDocument(); cerr != nil {
		Logger().Warn("flipbook: closing previous document", "path", v.path, "err", cerr)
	}
	v.doc = doc
	v.path = path
	v.title = titleOf(doc, path)
	v.nav.Reset(doc.PageCount())
	v.cache.Bind(doc)
	v.notice = ""
	Logger().Info("flipbook: document opened", "path", path, "pages", doc.PageCount(), "title", v.title)
	return nil
}

// Reopen opens the last requested path again. It retries an open that
// failed and re-reads a document that changed on disk, keeping the page
// when it still exists.
func (v *Viewer) Reopen() error {
	if v.last == "" {
		v.fail(ErrNoDocumentLoaded)
		return ErrNoDocumentLoaded
	}
	page, same := v.nav.Current(), v.doc != nil && v.path == v.last
	if err := v.Open(v.last); err != nil {
		return err
	}
	if same && page < v.nav.PageCount() {
		_ = v.nav.SetPage(page)
	}
	return nil
}

// Close stops the book mode, waits for background loads and closes the
// document.
func (v *Viewer) Close() error {
	v.LeaveBook()
	return errors.Join(v.cache.Close(), v.closeDocument())
}

func (v *Viewer) closeDocument() error {
	v.cache.Bind(nil)
	v.nav.Reset(0)
	v.preview, v.previewErr = nil, nil
	if v.doc == nil {
		return nil
	}
	doc := v.doc
	v.doc, v.path, v.title = nil, "", ""
	return doc.Close()
}

// Previous shows the previous spread in flat mode.
func (v *Viewer) Previous() error { return v.navigate(v.nav.Previous) }

// Next shows the next spread in flat mode.
func (v *Viewer) Next() error { return v.navigate(v.nav.Next) }

// Swap shows the other page of the current pair in flat mode.
func (v *Viewer) Swap() error { return v.navigate(v.nav.Swap) }

func (v *Viewer) navigate(op func() error) error {
	if err := op(); err != nil {
		v.fail(err)
		return err
	}
	return nil
}

// EnterBook switches to book mode and loads the current spread. When
// neither page can be loaded the viewer stays in flat mode. A partial
// failure enters book mode and still returns the load error.
func (v *Viewer) EnterBook(ctx context.Context) error {
	if v.mode == BookMode {
		return nil
	}
	if !v.nav.Loaded() {
		v.fail(ErrNoDocumentLoaded)
		return ErrNoDocumentLoaded
	}
	v.loop.SetViewport(v.width, v.height)
	err := v.loop.Start(ctx)
	if err != nil {
		v.fail(err)
		var loadErr *TextureLoadError
		if !errors.As(err, &loadErr) || loadErr.Total() {
			v.loop.Stop()
			return err
		}
	}
	v.mode = BookMode
	Logger().Info("flipbook: book mode", "page", v.nav.Current())
	return err
}

// LeaveBook returns to flat mode, abandoning any flip in progress.
func (v *Viewer) LeaveBook() {
	if v.mode != BookMode {
		return
	}
	v.loop.Stop()
	v.mode = FlatMode
}

// Resize records the viewport size.
func (v *Viewer) Resize(width, height int) {
	v.width, v.height = width, height
	v.loop.SetViewport(width, height)
}

// HandleKey applies a key command.
func (v *Viewer) HandleKey(ctx context.Context, k Key) {
	if v.notice != "" {
		if k == KeyBack {
			v.Dismiss()
		}
		return
	}
	if v.mode == BookMode {
		switch k {
		case KeyPrevious:
			v.loop.Post(Flip{Side: SideLeft})
		case KeyNext:
			v.loop.Post(Flip{Side: SideRight})
		case KeySwap:
			v.loop.Post(SwapPages{})
		case KeyBack:
			v.LeaveBook()
		case KeyReopen:
			_ = v.Reopen()
		}
		return
	}
	switch k {
	case KeyPrevious:
		_ = v.Previous()
	case KeyNext:
		_ = v.Next()
	case KeySwap:
		_ = v.Swap()
	case KeyBook:
		_ = v.EnterBook(ctx)
	case KeyReopen:
		_ = v.Reopen()
	}
}

// HandleClick applies a mouse press at viewport coordinates: a flip in
// book mode, previous or next spread in flat mode.
func (v *Viewer) HandleClick(x, y float64) {
	if v.notice != "" {
		return
	}
	if v.mode == BookMode {
		v.loop.Post(Click{X: x, Y: y})
		return
	}
	if ClassifyClick(float64(v.width), x) == SideRight {
		_ = v.Next()
	} else {
		_ = v.Previous()
	}
}

// Frame advances and draws the book mode for a host frame at now. It
// returns to flat mode when the loop has quit.
func (v *Viewer) Frame(now time.Time, s Surface) error {
	if v.mode != BookMode {
		return nil
	}
	running, err := v.loop.Frame(now, s)
	if !running {
		v.mode = FlatMode
	}
	return err
}

// Preview returns the flat rendering of the current spread at the
// viewport size. The image is reused until the spread or size changes;
// a failed rendering is not retried until then.
func (v *Viewer) Preview(ctx context.Context) (*image.RGBA, error) {
	if v.doc == nil {
		return nil, ErrNoDocumentLoaded
	}
	if v.width <= 0 || v.height <= 0 {
		return nil, flat.ErrEmptyTarget
	}
	key := previewKey{spread: v.nav.Spread(), width: v.width, height: v.height}
	if key == v.previewKey && (v.preview != nil || v.previewErr != nil) {
		return v.preview, v.previewErr
	}

	start := time.Now()
	img, err := flat.Compose(ctx, v.doc, key.spread.Indices(), v.width, v.height, v.cfg.PreviewScale)
	if err != nil {
		var pe *flat.PageError
		if errors.As(err, &pe) {
			err = rasterizeError(pe.Page, pe.Err)
		}
		if ctx.Err() != nil {
			return nil, err
		}
		v.fail(err)
	} else {
		Logger().Debug("flipbook: preview composed", "pages", key.spread.Indices(), "elapsed", time.Since(start))
	}
	v.preview, v.previewErr, v.previewKey = img, err, key
	return img, err
}

// Overlay returns the HUD for the current state.
func (v *Viewer) Overlay() Overlay {
	return Overlay{
		Title:     v.title,
		Spread:    v.nav.Spread(),
		PageCount: v.nav.PageCount(),
		Loading:   v.cache.Pending(),
		Notice:    v.notice,
	}
}

// fail raises a notice for err. A newer notice replaces an older one.
func (v *Viewer) fail(err error) {
	Logger().Warn("flipbook: notice", "err", err)
	v.notice = noticeText(err)
}

func noticeText(err error) string {
	var oe *OpenError
	switch {
	case errors.As(err, &oe):
		return fmt.Sprintf("Failed to load PDF: %v", oe.Err)
	case errors.Is(err, ErrNoDocumentLoaded):
		return "No PDF loaded."
	case errors.Is(err, ErrTextureLoadFailed), errors.Is(err, ErrRasterize):
		return fmt.Sprintf("Failed to display pages: %v", err)
	default:
		return err.Error()
	}
}

// titleOf prefers the document's own title and falls back to the file
// name without extension.
func titleOf(doc Document, path string) string {
	if t, ok := doc.(Titler); ok {
		if title := strings.TrimSpace(norm.NFC.String(t.Title())); title != "" {
			return title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
