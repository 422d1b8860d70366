// Command flipbook shows a PDF as a two-page book, with an optional 3D
// page-flip view.
//
// Usage:
//
//	flipbook [flags] file.pdf
//
// Keys: Left and Right turn the page, S swaps the page pairing, Space
// opens the 3D view and Escape closes it (or dismisses an error). In the
// flat view a click on the left or right half turns the page; in the 3D
// view it flips that page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gg"
	_ "github.com/gogpu/gg/gpu" // Register GPU accelerator
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"golang.org/x/term"

	"github.com/gogpu/flipbook"
	"github.com/gogpu/flipbook/fitzsource"
	"github.com/gogpu/flipbook/integration/ggview"
)

// flatBackground surrounds the pages in the flat view.
var flatBackground = gg.RGB(0.12, 0.12, 0.12)

func main() {
	var (
		width    = flag.Int("width", 1280, "window width")
		height   = flag.Int("height", 800, "window height")
		scale    = flag.Float64("scale", flipbook.DefaultRenderScale, "rasterizing scale of 3D page textures")
		preview  = flag.Float64("preview-scale", flipbook.DefaultPreviewScale, "rasterizing scale of the flat view")
		texture  = flag.Int("texture", flipbook.DefaultTextureSize, "edge of the square page textures in pixels")
		step     = flag.Int("step", flipbook.DefaultFlipStep, "flip degrees per tick")
		tps      = flag.Int("tps", flipbook.DefaultTickRate, "animation ticks per second")
		syncLoad = flag.Bool("sync", false, "load page textures on the render thread")
		book     = flag.Bool("3d", false, "start in the 3D view")
		page     = flag.Int("page", 1, "first page to show, counted from one")
		snapshot = flag.String("snapshot", "", "render one frame to this PNG file and exit")
		verbose  = flag.Bool("v", false, "log debug messages")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: flipbook [flags] file.pdf\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	setupLogging(*verbose)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := []flipbook.Option{
		flipbook.WithRenderScale(*scale),
		flipbook.WithPreviewScale(*preview),
		flipbook.WithTextureSize(*texture),
		flipbook.WithFlipStep(*step),
		flipbook.WithTickRate(*tps),
	}
	if *syncLoad {
		opts = append(opts, flipbook.WithSyncLoad())
	}
	viewer, err := flipbook.NewViewer(fitzsource.Source{}, ggview.NewUploader(), opts...)
	if err != nil {
		log.Fatal(err)
	}

	// A document that fails to open is reported in the window, so the
	// error is only fatal for snapshots.
	openErr := viewer.Open(flag.Arg(0))
	if openErr == nil && *page > 1 {
		if err := viewer.Navigator().SetPage(*page - 1); err != nil {
			slog.Warn("ignoring -page", "page", *page, "err", err)
		}
	}

	if *snapshot != "" {
		if openErr != nil {
			log.Fatal(openErr)
		}
		err := writeSnapshot(viewer, *snapshot, *width, *height, *book)
		if cerr := viewer.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(viewer, *width, *height, *book && openErr == nil); err != nil {
		log.Fatal(err)
	}
}

// setupLogging routes library logs to stderr: text for a terminal, JSON
// otherwise.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h = slog.NewTextHandler(os.Stderr, hopts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, hopts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	flipbook.SetLogger(l)
}

func run(viewer *flipbook.Viewer, width, height int, book bool) error {
	title := "flipbook"
	if t := viewer.Title(); t != "" {
		title = t + " - flipbook"
	}
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(title).
		WithSize(width, height))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := ggview.NewSurface()
	in := newInputQueue(64)
	var canvas *ggcanvas.Canvas

	app.OnDraw(func(dc *gogpu.Context) {
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}
		if canvas == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			var err error
			canvas, err = ggcanvas.New(provider, w, h)
			if err != nil {
				slog.Error("creating canvas", "err", err)
				return
			}
		}
		if cw, ch := canvas.Size(); cw != w || ch != h {
			if err := canvas.Resize(w, h); err != nil {
				slog.Error("resizing canvas", "err", err)
			}
		}
		viewer.Resize(w, h)
		if book {
			book = false
			_ = viewer.EnterBook(ctx)
		}
		in.drain(ctx, viewer)

		if err := canvas.Draw(func(cc *gg.Context) {
			drawFrame(ctx, viewer, surface, cc)
		}); err != nil {
			slog.Error("drawing frame", "err", err)
		}
		if err := canvas.RenderTo(dc.AsTextureDrawer()); err != nil {
			slog.Error("presenting frame", "err", err)
		}
	})

	events := app.EventSource()
	events.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if k := keyOf(key); k != flipbook.KeyNone {
			in.push(func(ctx context.Context, v *flipbook.Viewer) { v.HandleKey(ctx, k) })
		}
	})
	events.OnMousePress(func(button gpucontext.MouseButton, x, y float64) {
		if button != gpucontext.MouseButtonLeft {
			return
		}
		in.push(func(_ context.Context, v *flipbook.Viewer) { v.HandleClick(x, y) })
	})

	app.OnClose(func() {
		cancel()
		if err := viewer.Close(); err != nil {
			slog.Warn("closing viewer", "err", err)
		}
		gg.CloseAccelerator()
	})

	return app.Run()
}

// drawFrame draws the current mode into cc.
func drawFrame(ctx context.Context, viewer *flipbook.Viewer, surface *ggview.Surface, cc *gg.Context) {
	surface.Begin(cc)
	if viewer.Mode() == flipbook.BookMode {
		if err := viewer.Frame(time.Now(), surface); err != nil {
			slog.Error("book frame", "err", err)
		}
		if viewer.Mode() == flipbook.BookMode {
			return
		}
	}
	cc.ClearWithColor(flatBackground)
	if img, err := viewer.Preview(ctx); err == nil {
		surface.DrawFlat(img)
	}
	surface.DrawOverlay(viewer.Overlay())
}

// writeSnapshot renders one frame offscreen and saves it as PNG.
func writeSnapshot(viewer *flipbook.Viewer, path string, width, height int, book bool) error {
	ctx := context.Background()
	viewer.Resize(width, height)
	if book {
		if err := viewer.EnterBook(ctx); err != nil {
			return err
		}
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()
	drawFrame(ctx, viewer, ggview.NewSurface(), dc)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("flipbook: saving snapshot: %w", err)
	}
	slog.Info("snapshot saved", "path", path, "mode", viewer.Mode())
	return nil
}

func keyOf(k gpucontext.Key) flipbook.Key {
	switch k {
	case gpucontext.KeyLeft:
		return flipbook.KeyPrevious
	case gpucontext.KeyRight:
		return flipbook.KeyNext
	case gpucontext.KeyS:
		return flipbook.KeySwap
	case gpucontext.KeySpace:
		return flipbook.KeyBook
	case gpucontext.KeyEscape:
		return flipbook.KeyBack
	case gpucontext.KeyR:
		return flipbook.KeyReopen
	default:
		return flipbook.KeyNone
	}
}
