package wm

// Persisted is the subset of a window that survives a restart.
type Persisted struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Route           string `json:"route"`
	DefaultSize     *Size  `json:"defaultSize,omitempty"`
	Resizable       bool   `json:"resizable,omitempty"`
	CurrentSize     *Size  `json:"currentSize,omitempty"`
	CurrentPosition *Point `json:"currentPosition,omitempty"`
	Minimized       bool   `json:"minimized,omitempty"`
	Icon            string `json:"icon,omitempty"`
}

// Persist projects an entry onto its persisted fields.
func (e Entry) Persist() Persisted {
	return Persisted{
		ID:              e.ID,
		Title:           e.Title,
		Route:           e.Route,
		DefaultSize:     cloneSize(e.DefaultSize),
		Resizable:       e.Resizable,
		CurrentSize:     cloneSize(e.CurrentSize),
		CurrentPosition: clonePoint(e.CurrentPosition),
		Minimized:       e.Minimized,
		Icon:            e.Icon,
	}
}

// Entry turns a persisted record back into an entry. Component and other
// transient fields are left for the caller to resolve from the route.
func (p Persisted) Entry() Entry {
	return Entry{
		ID:              p.ID,
		Title:           p.Title,
		Route:           p.Route,
		DefaultSize:     cloneSize(p.DefaultSize),
		Resizable:       p.Resizable,
		CurrentSize:     cloneSize(p.CurrentSize),
		CurrentPosition: clonePoint(p.CurrentPosition),
		Minimized:       p.Minimized,
		Icon:            p.Icon,
	}
}

// Snapshot returns the persisted projection of every open window, bottom to
// top, so Initialize restores the same stacking. Alerts are never saved.
func (s *Store) Snapshot() []Persisted {
	stacked := s.Stacked()
	out := make([]Persisted, 0, len(stacked))
	for _, w := range stacked {
		if w.IsAlert() {
			continue
		}
		out = append(out, w.Persist())
	}
	return out
}
