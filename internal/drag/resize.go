package drag

// ResizableElement is an Element that can also change size.
type ResizableElement interface {
	Element
	ResizeTo(width, height int)
}

// Limits bounds a resize. Zero maximums mean "up to the parent edge".
type Limits struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// Resizer resizes an element from its bottom-right corner.
type Resizer struct {
	el     ResizableElement
	scope  Scope
	limits Limits
	cb     callbacks

	active  bool
	started bool
	startX  int
	startY  int
	startW  int
	startH  int

	cancelMove func()
	cancelUp   func()
}

// AttachResize prepares el for corner resizing within limits.
func AttachResize(el ResizableElement, scope Scope, limits Limits, opts ...Option) *Resizer {
	r := &Resizer{el: el, scope: scope, limits: limits}
	for _, opt := range opts {
		opt(&r.cb)
	}
	return r
}

// Press starts a resize gesture. Only the primary button resizes.
func (r *Resizer) Press(ev Event) bool {
	if ev.Button != ButtonPrimary || r.active || r.scope == nil {
		return false
	}
	if _, ok := r.el.ParentBounds(); !ok {
		return false
	}
	b := r.el.Bounds()
	r.startX, r.startY = ev.X, ev.Y
	r.startW, r.startH = b.Width, b.Height
	r.active = true
	r.started = false
	r.cancelMove = r.scope.Listen(PointerMove, r.onMove)
	r.cancelUp = r.scope.Listen(PointerUp, r.onUp)
	return true
}

// Active reports whether a resize is in progress.
func (r *Resizer) Active() bool {
	return r.active
}

func (r *Resizer) onMove(ev Event) {
	if !r.active {
		return
	}
	parent, ok := r.el.ParentBounds()
	if !ok {
		return
	}
	if !r.started {
		r.started = true
		if r.cb.onStart != nil {
			r.cb.onStart()
		}
	}

	b := r.el.Bounds()
	maxW := parent.Width - b.X
	if r.limits.MaxWidth > 0 {
		maxW = min(maxW, r.limits.MaxWidth)
	}
	maxH := parent.Height - b.Y
	if r.limits.MaxHeight > 0 {
		maxH = min(maxH, r.limits.MaxHeight)
	}
	w := Clamp(r.startW+ev.X-r.startX, r.limits.MinWidth, maxW)
	h := Clamp(r.startH+ev.Y-r.startY, r.limits.MinHeight, maxH)
	if w == b.Width && h == b.Height {
		return
	}
	r.el.ResizeTo(w, h)
	if r.cb.onMove != nil {
		r.cb.onMove(Rect{X: b.X, Y: b.Y, Width: w, Height: h})
	}
}

func (r *Resizer) onUp(Event) {
	if !r.active {
		return
	}
	started := r.started
	r.Destroy()
	if started && r.cb.onEnd != nil {
		r.cb.onEnd()
	}
}

// Destroy drops any gesture in progress and its listeners.
func (r *Resizer) Destroy() {
	r.active = false
	r.started = false
	if r.cancelMove != nil {
		r.cancelMove()
		r.cancelMove = nil
	}
	if r.cancelUp != nil {
		r.cancelUp()
		r.cancelUp = nil
	}
}
