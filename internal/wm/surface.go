package wm

// Surface is the rendered projection of one window. The store writes visual
// state through it and reads back the scroll offset it has to preserve
// across address-bar updates.
type Surface interface {
	SetZIndex(z int)
	SetActive(active bool)
	ScrollTop() int
	SetScrollTop(offset int)
}

// Navigator is the address bar and document title of the host.
type Navigator interface {
	// Location returns the route currently shown.
	Location() string
	// Replace swaps the current history entry for route without adding a
	// new one and without scrolling. It returns once the transition is done.
	Replace(route string) error
	// SetTitle sets the document title.
	SetTitle(title string)
}

// Attach registers the surface for a window and applies its current visual
// state immediately. The returned function detaches it again; it is a no-op
// if another surface has been attached for the same id in the meantime.
func (s *Store) Attach(id string, surface Surface) (detach func()) {
	if surface == nil {
		return func() {}
	}
	s.surfaces[id] = surface
	if s.indexOf(id) >= 0 {
		s.applyVisual(id)
	}
	delete(s.pending, id)

	return func() {
		if cur, ok := s.surfaces[id]; ok && cur == surface {
			delete(s.surfaces, id)
		}
	}
}

// Flush is called by the view once a render pass has completed. Visual
// updates still waiting for a surface are retried; any whose surface is
// still missing are dropped for this cycle with a diagnostic.
func (s *Store) Flush() {
	for id := range s.pending {
		if s.indexOf(id) < 0 {
			delete(s.pending, id)
			continue
		}
		if _, ok := s.surfaces[id]; ok {
			s.applyVisual(id)
		} else {
			s.logger.Warn("window surface missing after render, visual state not applied", "id", id)
		}
		delete(s.pending, id)
	}
}

// Pending reports whether a visual update for id is waiting on its surface.
func (s *Store) Pending(id string) bool {
	return s.pending[id]
}

// applyVisual pushes z-index and active marker for one window.
func (s *Store) applyVisual(id string) {
	surface, ok := s.surfaces[id]
	if !ok {
		s.pending[id] = true
		return
	}
	if z, ok := s.z[id]; ok {
		surface.SetZIndex(z)
	}
	surface.SetActive(id == s.focused)
}

// applyFocusVisuals marks the focused window active and every other window
// inactive. Windows without a surface are queued for Flush.
func (s *Store) applyFocusVisuals() {
	for _, w := range s.windows {
		if w.ID == s.focused {
			s.applyVisual(w.ID)
			continue
		}
		if surface, ok := s.surfaces[w.ID]; ok {
			surface.SetActive(false)
		}
	}
}

// captureScroll records the scroll offset of every attached surface.
func (s *Store) captureScroll() map[string]int {
	offsets := make(map[string]int, len(s.surfaces))
	for id, surface := range s.surfaces {
		offsets[id] = surface.ScrollTop()
	}
	return offsets
}

func (s *Store) restoreScroll(offsets map[string]int) {
	for id, offset := range offsets {
		if surface, ok := s.surfaces[id]; ok && surface.ScrollTop() != offset {
			surface.SetScrollTop(offset)
		}
	}
}
