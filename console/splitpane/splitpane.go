// Package splitpane computes the geometry of two panes separated by a
// draggable divider.  Divider positions are kept as ratios so a layout
// survives a change of the available size.
package splitpane

import (
	"fmt"
	"math"
)

// Orientation tells along which axis the two panes are placed.
type Orientation int

const (
	// Horizontal places the panes side by side with a vertical divider.
	Horizontal Orientation = iota
	// Vertical stacks the panes with a horizontal divider.
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ParseOrientation is the inverse of Orientation.String.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

// DefaultDividerSize is the divider thickness in pixels.
const DefaultDividerSize = 5

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height int
}

// Layout is the result of laying out a pane.
type Layout struct {
	First   Rect
	Second  Rect
	Divider Rect
}

// Pane holds the divider state of one split.
type Pane struct {
	Name        string
	Orientation Orientation
	// Ratio is the share of the available extent given to the first pane.
	Ratio       float64
	MinFirst    int
	MinSecond   int
	DividerSize int

	bounds   Rect
	position int
}

// NewPane returns a pane split in the middle.
func NewPane(name string, orientation Orientation, minFirst, minSecond int) *Pane {
	return &Pane{
		Name:        name,
		Orientation: orientation,
		Ratio:       0.5,
		MinFirst:    minFirst,
		MinSecond:   minSecond,
		DividerSize: DefaultDividerSize,
	}
}

// SetRatio sets the divider ratio, limited to [0, 1].
func (p *Pane) SetRatio(ratio float64) {
	switch {
	case math.IsNaN(ratio):
		ratio = 0.5
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	p.Ratio = ratio
}

// Layout lays the pane out in a width x height area at the origin.
func (p *Pane) Layout(width, height int) Layout {
	return p.LayoutIn(Rect{Width: width, Height: height})
}

// LayoutIn lays the pane out inside bounds.  The divider position follows
// the ratio, moved as needed so both sides keep their minimum size.  When the
// minimums cannot both be met the first pane wins.
func (p *Pane) LayoutIn(bounds Rect) Layout {
	p.bounds = bounds
	avail := p.available()
	p.position = p.clamp(int(math.Round(p.Ratio*float64(avail))))
	return p.layout()
}

// Position returns the divider offset from the start of the bounds of the
// last layout.
func (p *Pane) Position() int {
	return p.position
}

// Drag moves the divider by delta pixels along the split axis, relative to
// the last layout, and updates the ratio.  It returns the new layout.
func (p *Pane) Drag(delta int) Layout {
	avail := p.available()
	p.position = p.clamp(p.position + delta)
	if avail > 0 {
		p.Ratio = float64(p.position) / float64(avail)
	}
	return p.layout()
}

func (p *Pane) extent() int {
	if p.Orientation == Vertical {
		return p.bounds.Height
	}
	return p.bounds.Width
}

func (p *Pane) divider() int {
	if p.DividerSize < 0 {
		return 0
	}
	return p.DividerSize
}

func (p *Pane) available() int {
	if avail := p.extent() - p.divider(); avail > 0 {
		return avail
	}
	return 0
}

func (p *Pane) clamp(pos int) int {
	avail := p.available()
	if max := avail - p.MinSecond; pos > max {
		pos = max
	}
	if pos < p.MinFirst {
		pos = p.MinFirst
	}
	if pos > avail {
		pos = avail
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (p *Pane) layout() Layout {
	b, pos, div := p.bounds, p.position, p.divider()
	rest := p.available() - pos
	if p.Orientation == Vertical {
		return Layout{
			First:   Rect{X: b.X, Y: b.Y, Width: b.Width, Height: pos},
			Divider: Rect{X: b.X, Y: b.Y + pos, Width: b.Width, Height: div},
			Second:  Rect{X: b.X, Y: b.Y + pos + div, Width: b.Width, Height: rest},
		}
	}
	return Layout{
		First:   Rect{X: b.X, Y: b.Y, Width: pos, Height: b.Height},
		Divider: Rect{X: b.X + pos, Y: b.Y, Width: div, Height: b.Height},
		Second:  Rect{X: b.X + pos + div, Y: b.Y, Width: rest, Height: b.Height},
	}
}
