package desktop

import (
	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/wm"
)

// windowView is the rendered side of one open window. The store pushes
// stacking and focus through it; the drag handlers move and resize the
// entry it belongs to.
type windowView struct {
	id string
	d  *Desktop

	z      int
	active bool
	scroll int
	lines  int // content lines at the last render

	selected int // portfolio and gallery selection
	page     int // gallery page, zero based
	form     *contactForm

	drag   *drag.Handler
	resize *drag.Resizer
	detach func()
}

var (
	_ wm.Surface            = (*windowView)(nil)
	_ drag.ResizableElement = (*windowView)(nil)
)

func (v *windowView) SetZIndex(z int)       { v.z = z }
func (v *windowView) SetActive(active bool) { v.active = active }
func (v *windowView) ScrollTop() int        { return v.scroll }
func (v *windowView) SetScrollTop(o int)    { v.scroll = max(o, 0) }

func (v *windowView) entry() (wm.Entry, bool) {
	return v.d.store.Get(v.id)
}

// Bounds returns the window box relative to the desktop area.
func (v *windowView) Bounds() drag.Rect {
	e, ok := v.entry()
	if !ok {
		return drag.Rect{}
	}
	size := sizeOf(e)
	pos := positionOf(e)
	return drag.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

// ParentBounds returns the area between the address bar and the dock.
func (v *windowView) ParentBounds() (drag.Rect, bool) {
	if _, ok := v.entry(); !ok {
		return drag.Rect{}, false
	}
	area := v.d.area()
	return area, area.Width > 0 && area.Height > 0
}

func (v *windowView) MoveTo(x, y int) {
	v.d.store.Update(v.id, wm.Patch{CurrentPosition: &wm.Point{X: x, Y: y}})
}

func (v *windowView) ResizeTo(w, h int) {
	v.d.store.Update(v.id, wm.Patch{CurrentSize: &wm.Size{Width: w, Height: h}})
}

// destroy releases the view's listeners and its store surface.
func (v *windowView) destroy() {
	v.drag.Destroy()
	v.resize.Destroy()
	if v.detach != nil {
		v.detach()
	}
}

func (v *windowView) kind() content.Kind {
	e, ok := v.entry()
	if !ok {
		return content.KindPage
	}
	if view, ok := e.Component.(content.View); ok {
		return view.Kind
	}
	return content.KindPage
}

func sizeOf(e wm.Entry) wm.Size {
	switch {
	case e.CurrentSize != nil:
		return *e.CurrentSize
	case e.DefaultSize != nil:
		return *e.DefaultSize
	default:
		return wm.Size{Width: config.DefaultWindowWidth, Height: config.DefaultWindowHeight}
	}
}

func positionOf(e wm.Entry) wm.Point {
	switch {
	case e.CurrentPosition != nil:
		return *e.CurrentPosition
	case e.XYOrigin != nil:
		return *e.XYOrigin
	default:
		return wm.Point{}
	}
}

func limitsOf(e wm.Entry) drag.Limits {
	l := drag.Limits{MinWidth: config.MinWindowWidth, MinHeight: config.MinWindowHeight}
	if e.MinSize != nil {
		l.MinWidth, l.MinHeight = e.MinSize.Width, e.MinSize.Height
	}
	if e.MaxSize != nil {
		l.MaxWidth, l.MaxHeight = e.MaxSize.Width, e.MaxSize.Height
	}
	return l
}

// area is the desktop box windows live in, in screen coordinates.
func (d *Desktop) area() drag.Rect {
	return drag.Rect{
		X:      0,
		Y:      config.AddressBarHeight,
		Width:  d.Width,
		Height: max(d.Height-config.AddressBarHeight-config.DockHeight, 0),
	}
}

// viewFor returns the view of id, creating and attaching it on first use.
func (d *Desktop) viewFor(id string) *windowView {
	if v, ok := d.views[id]; ok {
		return v
	}
	e, ok := d.store.Get(id)
	if !ok {
		return nil
	}
	v := &windowView{id: id, d: d}
	v.drag = drag.Attach(v, d.scope,
		drag.OnStart(d.dragStarted),
		drag.OnEnd(d.dragEnded),
	)
	v.resize = drag.AttachResize(v, d.scope, limitsOf(e),
		drag.OnStart(d.interactionStarted),
		drag.OnEnd(d.interactionEnded),
	)
	if view, ok := e.Component.(content.View); ok && view.Kind == content.KindContact {
		v.form = newContactForm()
	}
	d.views[id] = v
	v.detach = d.store.Attach(id, v)
	return v
}

// syncViews creates views for new windows and tears down views whose
// window is gone.
func (d *Desktop) syncViews() {
	open := make(map[string]bool, d.store.Len())
	for _, e := range d.store.Windows() {
		open[e.ID] = true
		d.viewFor(e.ID)
	}
	for id, v := range d.views {
		if !open[id] {
			v.destroy()
			delete(d.views, id)
		}
	}
}

func (d *Desktop) interactionStarted() {
	d.interacting = true
}

func (d *Desktop) interactionEnded() {
	d.interacting = false
}
