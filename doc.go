// Package flipbook shows paginated documents as a virtual book.
//
// # Overview
//
// A document is read two pages at a time. The Navigator tracks the left
// page of the visible spread; the TextureCache turns the spread's pages
// into textures; the Animator turns a page over the spine in fixed steps;
// the Loop ties them together at a fixed tick rate and draws each frame
// into a Surface. Viewer adds the document lifecycle, a flat two-page
// view and modal error notices on top.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/flipbook"
//	    "github.com/gogpu/flipbook/fitzsource"
//	    "github.com/gogpu/flipbook/integration/ggview"
//	)
//
//	v, err := flipbook.NewViewer(fitzsource.Source{}, ggview.NewUploader())
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//	if err := v.Open("book.pdf"); err != nil {
//	    return err
//	}
//	v.Resize(1280, 800)
//	_ = v.EnterBook(ctx)
//
//	// on every host frame
//	surface.Begin(cc)
//	_ = v.Frame(time.Now(), surface)
//
// # Coordinate System
//
// Pages live in book space: the spine is the Y axis at X=0, the left page
// covers X in [-2, 0], the right page X in [0, 2], both Y in [-2, 2] and
// Z=0. A Camera on +Z projects book space to viewport pixels with the
// origin at the top-left.
//
// # Threading
//
// Everything except Loop.Post and the background half of
// TextureCache.Request runs on one thread, the render thread. Background
// loads only rasterize and resize; textures are created and swapped in by
// TextureCache.Poll on the render thread.
//
// # Logging
//
// The package is silent by default. Use SetLogger to route its log/slog
// output.
package flipbook
