package drag

// Rect is a box. For an element it is relative to the parent's origin; for a
// parent it is in host coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Element is a draggable box inside a parent container.
type Element interface {
	// Bounds returns the element's position relative to its parent and its
	// size.
	Bounds() Rect
	// ParentBounds returns the parent's content box in host coordinates.
	// ok is false when the element is detached.
	ParentBounds() (r Rect, ok bool)
	// MoveTo positions the element relative to its parent.
	MoveTo(x, y int)
}

// Option configures a Handler or Resizer.
type Option func(*callbacks)

type callbacks struct {
	onStart func()
	onEnd   func()
	onMove  func(Rect)
}

// OnStart is called once per gesture, on the first pointer move after a
// press.
func OnStart(fn func()) Option {
	return func(c *callbacks) { c.onStart = fn }
}

// OnEnd is called on release, only for gestures that started.
func OnEnd(fn func()) Option {
	return func(c *callbacks) { c.onEnd = fn }
}

// OnMove is called with the element's new bounds after every applied move.
func OnMove(fn func(Rect)) Option {
	return func(c *callbacks) { c.onMove = fn }
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Handler drags one element.
type Handler struct {
	el    Element
	scope Scope
	cb    callbacks

	dragging bool
	started  bool
	offsetX  int
	offsetY  int

	cancelMove   func()
	cancelUp     func()
	cancelResize func()
}

// Attach makes el draggable. It listens for parent resizes right away; move
// and release listeners are only held during a drag. A handler without a
// scope never drags.
func Attach(el Element, scope Scope, opts ...Option) *Handler {
	h := &Handler{el: el, scope: scope}
	for _, opt := range opts {
		opt(&h.cb)
	}
	if scope != nil {
		h.cancelResize = scope.Listen(Resize, h.onResize)
	}
	return h
}

// Press starts a drag for a primary-button press at (ev.X, ev.Y). It
// reports whether tracking began.
func (h *Handler) Press(ev Event) bool {
	if ev.Button != ButtonPrimary || h.dragging || h.scope == nil {
		return false
	}
	parent, ok := h.el.ParentBounds()
	if !ok {
		return false
	}
	b := h.el.Bounds()
	h.offsetX = ev.X - parent.X - b.X
	h.offsetY = ev.Y - parent.Y - b.Y
	h.dragging = true
	h.started = false

	h.cancelMove = h.scope.Listen(PointerMove, h.onMove)
	h.cancelUp = h.scope.Listen(PointerUp, h.onUp)
	return true
}

// Dragging reports whether a press is being tracked.
func (h *Handler) Dragging() bool {
	return h.dragging
}

func (h *Handler) onMove(ev Event) {
	if !h.dragging {
		return
	}
	parent, ok := h.el.ParentBounds()
	if !ok {
		return
	}
	if !h.started {
		h.started = true
		if h.cb.onStart != nil {
			h.cb.onStart()
		}
	}

	b := h.el.Bounds()
	x := Clamp(ev.X-parent.X-h.offsetX, 0, parent.Width-b.Width)
	y := Clamp(ev.Y-parent.Y-h.offsetY, 0, parent.Height-b.Height)
	h.el.MoveTo(x, y)

	if h.cb.onMove != nil {
		h.cb.onMove(Rect{X: x, Y: y, Width: b.Width, Height: b.Height})
	}
}

func (h *Handler) onUp(Event) {
	if !h.dragging {
		return
	}
	started := h.started
	h.stop()
	if started && h.cb.onEnd != nil {
		h.cb.onEnd()
	}
}

// onResize keeps an idle element inside a parent that changed size.
func (h *Handler) onResize(Event) {
	if h.dragging {
		return
	}
	parent, ok := h.el.ParentBounds()
	if !ok {
		return
	}
	b := h.el.Bounds()
	x := Clamp(b.X, 0, parent.Width-b.Width)
	y := Clamp(b.Y, 0, parent.Height-b.Height)
	if x != b.X || y != b.Y {
		h.el.MoveTo(x, y)
		if h.cb.onMove != nil {
			h.cb.onMove(Rect{X: x, Y: y, Width: b.Width, Height: b.Height})
		}
	}
}

func (h *Handler) stop() {
	h.dragging = false
	h.started = false
	if h.cancelMove != nil {
		h.cancelMove()
		h.cancelMove = nil
	}
	if h.cancelUp != nil {
		h.cancelUp()
		h.cancelUp = nil
	}
}

// Destroy releases every listener the handler holds, including those of an
// in-progress drag. No end notification is sent.
func (h *Handler) Destroy() {
	h.stop()
	if h.cancelResize != nil {
		h.cancelResize()
		h.cancelResize = nil
	}
}
