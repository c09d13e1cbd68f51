// Package wm holds the logical window model of the desktop: the set of open
// windows, their stacking order, focus, and the bookkeeping that keeps the
// address bar and document title in step with the focused window.
//
// The model never touches rendering directly. Views register a Surface per
// window and a Navigator for the address bar; the store pushes visual state
// through those adapters.
package wm

// StyleAlert marks a modal window. While one is open it is the only window
// that can take focus.
const StyleAlert = "alert"

// BaseZIndex is the baseline of the stacking counter. The first focused
// window after a reset receives BaseZIndex+1.
const BaseZIndex = 100

// Size is a width/height pair in the view's units (cells for the terminal
// desktop).
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position relative to the desktop's origin.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Entry describes one open window.
type Entry struct {
	ID    string
	Title string
	Route string

	// Component is an opaque renderer handle; the store never inspects it.
	Component any

	DefaultSize     *Size
	CurrentSize     *Size
	MinSize         *Size
	MaxSize         *Size
	CurrentPosition *Point
	XYOrigin        *Point

	Resizable bool
	Minimized bool

	// Style is store-managed. Only StyleAlert has meaning today.
	Style string

	Icon       string
	Date       string
	Medium     string
	Categories []string
	Published  bool

	Data any
}

// IsAlert reports whether the entry is a modal alert window.
func (e Entry) IsAlert() bool {
	return e.Style == StyleAlert
}

// Patch is a partial update for an open window. Nil fields are left alone.
// There is deliberately no way to set Style or the window's surface here.
type Patch struct {
	Title           *string
	Route           *string
	Component       any
	DefaultSize     *Size
	CurrentSize     *Size
	MinSize         *Size
	MaxSize         *Size
	CurrentPosition *Point
	XYOrigin        *Point
	Resizable       *bool
	Minimized       *bool
	Icon            *string
	Data            any
}

func (p Patch) apply(e *Entry) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Route != nil {
		e.Route = *p.Route
	}
	if p.Component != nil {
		e.Component = p.Component
	}
	if p.DefaultSize != nil {
		e.DefaultSize = cloneSize(p.DefaultSize)
	}
	if p.CurrentSize != nil {
		e.CurrentSize = cloneSize(p.CurrentSize)
	}
	if p.MinSize != nil {
		e.MinSize = cloneSize(p.MinSize)
	}
	if p.MaxSize != nil {
		e.MaxSize = cloneSize(p.MaxSize)
	}
	if p.CurrentPosition != nil {
		e.CurrentPosition = clonePoint(p.CurrentPosition)
	}
	if p.XYOrigin != nil {
		e.XYOrigin = clonePoint(p.XYOrigin)
	}
	if p.Resizable != nil {
		e.Resizable = *p.Resizable
	}
	if p.Minimized != nil {
		e.Minimized = *p.Minimized
	}
	if p.Icon != nil {
		e.Icon = *p.Icon
	}
	if p.Data != nil {
		e.Data = p.Data
	}
}

// clone returns a copy that shares no pointers with e.
func (e Entry) clone() Entry {
	c := e
	c.DefaultSize = cloneSize(e.DefaultSize)
	c.CurrentSize = cloneSize(e.CurrentSize)
	c.MinSize = cloneSize(e.MinSize)
	c.MaxSize = cloneSize(e.MaxSize)
	c.CurrentPosition = clonePoint(e.CurrentPosition)
	c.XYOrigin = clonePoint(e.XYOrigin)
	if e.Categories != nil {
		c.Categories = append([]string(nil), e.Categories...)
	}
	return c
}

func cloneSize(s *Size) *Size {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T {
	return &v
}
