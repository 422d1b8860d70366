package flipbook

// Spread is the pair of pages visible at once. Right is meaningful only
// when HasRight is set.
type Spread struct {
	Left     int
	Right    int
	HasRight bool
}

// Indices returns the spread's pages in slot order.
func (s Spread) Indices() []int {
	if s.HasRight {
		return []int{s.Left, s.Right}
	}
	return []int{s.Left}
}

// SpreadAt pairs page with its successor, dropping the successor when it is
// past the end of a pageCount-page document.
func SpreadAt(page, pageCount int) Spread {
	s := Spread{Left: page}
	if page+1 < pageCount {
		s.Right = page + 1
		s.HasRight = true
	}
	return s
}

// Navigator owns the current page of an open document. The visible spread
// is always derived from it.
//
// Navigator is not safe for concurrent use; it belongs to the render thread.
type Navigator struct {
	current   int
	pageCount int
}

// NewNavigator returns a navigator for a pageCount-page document.
// A pageCount of zero means no document is loaded.
func NewNavigator(pageCount int) *Navigator {
	n := &Navigator{}
	n.Reset(pageCount)
	return n
}

// Reset binds the navigator to a new document and rewinds to page 0.
func (n *Navigator) Reset(pageCount int) {
	n.pageCount = max(pageCount, 0)
	n.current = 0
}

// Loaded reports whether a document is bound.
func (n *Navigator) Loaded() bool { return n.pageCount > 0 }

// PageCount returns the number of pages of the bound document.
func (n *Navigator) PageCount() int { return n.pageCount }

// Current returns the current page.
func (n *Navigator) Current() int { return n.current }

// Spread returns the visible spread.
func (n *Navigator) Spread() Spread { return SpreadAt(n.current, n.pageCount) }

// Previous moves one spread back, stopping at page 0.
func (n *Navigator) Previous() error {
	if !n.Loaded() {
		return ErrNoDocumentLoaded
	}
	if n.current > 0 {
		n.current = max(n.current-2, 0)
	}
	return nil
}

// Next moves one spread forward. The last spread may hold a single page;
// past it Next is a no-op.
func (n *Navigator) Next() error {
	if !n.Loaded() {
		return ErrNoDocumentLoaded
	}
	if n.current+2 < n.pageCount {
		n.current += 2
	}
	return nil
}

// Swap re-pairs the spread so it starts on the adjacent page: an even page
// moves to the following odd page, an odd page to the preceding even page.
func (n *Navigator) Swap() error {
	if !n.Loaded() {
		return ErrNoDocumentLoaded
	}
	switch {
	case n.current%2 == 0 && n.current+1 < n.pageCount:
		n.current++
	case n.current%2 != 0 && n.current-1 >= 0:
		n.current--
	}
	return nil
}

// SetPage jumps to page. Out-of-range pages are rejected with
// ErrPageOutOfRange and leave the navigator unchanged.
func (n *Navigator) SetPage(page int) error {
	if !n.Loaded() {
		return ErrNoDocumentLoaded
	}
	if page < 0 || page >= n.pageCount {
		return ErrPageOutOfRange
	}
	n.current = page
	return nil
}
