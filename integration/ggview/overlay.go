// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggview

import (
	"fmt"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/flipbook"
)

const (
	hudSize    = 16
	noticeSize = 20
	margin     = 12
)

type fonts struct {
	loaded bool
	face   text.Face
	large  text.Face
}

// load prepares Go Regular on first use. A font that fails to load leaves
// the overlay without text.
func (f *fonts) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		flipbook.Logger().Warn("ggview: overlay font unavailable", "err", err)
		return
	}
	f.face = src.Face(hudSize)
	f.large = src.Face(noticeSize)
}

func (f *fonts) notice() text.Face {
	if f.large != nil {
		return f.large
	}
	return f.face
}

// HUDText returns the status line for o: the title and the visible page
// numbers, counted from one.
func HUDText(o flipbook.Overlay) string {
	if o.PageCount == 0 {
		return "No document"
	}
	pages := fmt.Sprintf("%d", o.Spread.Left+1)
	if o.Spread.HasRight {
		pages = fmt.Sprintf("%d-%d", o.Spread.Left+1, o.Spread.Right+1)
	}
	line := fmt.Sprintf("%s / %d", pages, o.PageCount)
	if o.Title != "" {
		line = o.Title + "  " + line
	}
	if o.Loading {
		line += "  (loading)"
	}
	return line
}

// DrawOverlay draws the status line along the bottom edge and, when a
// notice is pending, a dimmed frame with the notice in the middle.
func (s *Surface) DrawOverlay(o flipbook.Overlay) {
	if s.dc == nil {
		return
	}
	s.flush()
	s.fonts.load()
	dc := s.dc
	w, h := float64(dc.Width()), float64(dc.Height())

	if s.fonts.face != nil {
		dc.SetFont(s.fonts.face)
		dc.SetRGBA(1, 1, 1, 0.85)
		dc.DrawStringAnchored(HUDText(o), margin, h-margin, 0, 0)
	}
	if o.Notice == "" {
		return
	}

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, w, h)
	_ = dc.Fill()

	boxW, boxH := min(w-2*margin, 560), 120.0
	x, y := (w-boxW)/2, (h-boxH)/2
	dc.SetRGBA(0.2, 0.2, 0.2, 1)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	_ = dc.Fill()

	if face := s.fonts.notice(); face != nil {
		dc.SetFont(face)
		dc.SetRGBA(1, 0.45, 0.4, 1)
		dc.DrawStringAnchored(o.Notice, w/2, y+boxH/2-8, 0.5, 0)
		if s.fonts.face != nil {
			dc.SetFont(s.fonts.face)
		}
		dc.SetRGBA(0.8, 0.8, 0.8, 1)
		dc.DrawStringAnchored("Press Esc to dismiss", w/2, y+boxH-margin-4, 0.5, 0)
	}
}
