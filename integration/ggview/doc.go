// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggview draws flipbook frames with gg.
//
// Surface implements flipbook.Surface and flipbook.OverlayDrawer on a
// gg.Context, so a book frame can be drawn into a ggcanvas.Canvas (and
// from there into a gogpu window) or into an offscreen context:
//
//	up := ggview.NewUploader()
//	viewer, _ := flipbook.NewViewer(fitzsource.Source{}, up)
//	surface := ggview.NewSurface()
//
//	canvas.Draw(func(cc *gg.Context) {
//	    surface.Begin(cc)
//	    _ = viewer.Frame(time.Now(), surface)
//	})
//
// Page quads are rotated about the vertical spine only, so every vertical
// line of a page stays vertical on screen. Surface uses that to draw a
// page as a row of narrow image strips, each placed at its projected
// position, which gives the perspective of the turning page without a 3D
// pipeline.
package ggview
