package wm

import (
	"fmt"
	"io"
	"slices"

	"charm.land/log/v2"
	"github.com/google/uuid"
)

// Store owns the set of open windows. It is not safe for concurrent use; a
// desktop's event loop owns exactly one Store.
type Store struct {
	windows  []Entry
	z        map[string]int
	focused  string
	counter  int
	siteName string

	surfaces map[string]Surface
	pending  map[string]bool
	nav      Navigator

	listeners map[int]func()
	nextSub   int

	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSiteName sets the suffix used for document titles.
func WithSiteName(name string) Option {
	return func(s *Store) {
		s.siteName = name
	}
}

// WithNavigator sets the address bar adapter.
func WithNavigator(nav Navigator) Option {
	return func(s *Store) {
		s.nav = nav
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store with the counter at BaseZIndex.
func New(opts ...Option) *Store {
	s := &Store{
		z:         make(map[string]int),
		counter:   BaseZIndex,
		surfaces:  make(map[string]Surface),
		pending:   make(map[string]bool),
		listeners: make(map[int]func()),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNavigator replaces the address bar adapter. A nil navigator disables
// address and title sync.
func (s *Store) SetNavigator(nav Navigator) {
	s.nav = nav
}

// Reset closes every window and returns the counter to its baseline.
// Surfaces, navigator and listeners stay registered.
func (s *Store) Reset() {
	s.windows = nil
	s.z = make(map[string]int)
	s.focused = ""
	s.counter = BaseZIndex
	s.pending = make(map[string]bool)
	s.notify()
}

// DocumentTitle formats the title shown for a focused window.
func DocumentTitle(title, siteName string) string {
	if siteName == "" {
		return title
	}
	return fmt.Sprintf("%s - %s", title, siteName)
}

// Add opens a window and focuses it. An entry whose id is already open is
// not duplicated; the open window is focused instead. Entries without an id
// get a generated one, which is returned.
func (s *Store) Add(e Entry) string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if s.indexOf(e.ID) < 0 {
		s.windows = append(s.windows, e.clone())
		s.logger.Debug("window added", "id", e.ID, "route", e.Route)
		s.notify()
	}
	s.Focus(e.ID)
	return e.ID
}

// Remove closes a window. If it held focus, focus moves to the window that
// was directly behind it, or to the remaining alert if there is one.
func (s *Store) Remove(id string) {
	i := s.indexOf(id)
	if i < 0 {
		s.logger.Warn("remove: unknown window", "id", id)
		return
	}

	removedZ, hadZ := s.z[id]
	wasFocused := s.focused == id

	s.windows = slices.Delete(s.windows, i, i+1)
	delete(s.z, id)
	delete(s.surfaces, id)
	delete(s.pending, id)
	s.logger.Debug("window removed", "id", id)

	if len(s.windows) == 0 {
		s.focused = ""
		s.counter = BaseZIndex
		s.notify()
		return
	}

	if hadZ && removedZ >= s.counter {
		s.counter = max(BaseZIndex, s.maxZ())
	}

	if wasFocused {
		s.focused = ""
		if next := s.nextAfterRemoval(removedZ); next != "" {
			s.Focus(next)
		}
	}
	s.notify()
}

// Update merges patch into an open window.
func (s *Store) Update(id string, patch Patch) {
	i := s.indexOf(id)
	if i < 0 {
		s.logger.Warn("update: unknown window", "id", id)
		return
	}
	patch.apply(&s.windows[i])
	s.notify()
}

// Focus raises a window to the top and makes it the active one. Focusing the
// already focused window does nothing. While an alert is open, focusing any
// other window is refused.
func (s *Store) Focus(id string) {
	i := s.indexOf(id)
	if i < 0 {
		s.logger.Warn("focus: unknown window", "id", id)
		return
	}
	if s.focused == id {
		return
	}
	if alert := s.alertID(); alert != "" && alert != id {
		s.logger.Debug("focus blocked by alert", "id", id, "alert", alert)
		return
	}

	s.counter++
	s.z[id] = s.counter
	s.focused = id
	s.applyFocusVisuals()

	w := s.windows[i]
	if s.nav != nil {
		if w.Route != "" && s.nav.Location() != w.Route {
			offsets := s.captureScroll()
			if err := s.nav.Replace(w.Route); err != nil {
				s.logger.Warn("address bar update failed", "route", w.Route, "err", err)
			}
			s.restoreScroll(offsets)
		}
		if w.Title != "" {
			s.nav.SetTitle(DocumentTitle(w.Title, s.siteName))
		}
	}
	s.notify()
}

// DefocusAll clears focus without changing the stacking order.
func (s *Store) DefocusAll() {
	s.focused = ""
	for _, surface := range s.surfaces {
		surface.SetActive(false)
	}
}

// Initialize replaces the open windows with list, stacking them in list
// order starting just above the baseline. Duplicate ids keep their first
// occurrence. Focus is cleared; surfaces of windows not in list are
// forgotten.
func (s *Store) Initialize(list []Entry) {
	s.windows = s.windows[:0]
	s.z = make(map[string]int, len(list))
	s.pending = make(map[string]bool)
	s.focused = ""

	z := BaseZIndex
	for _, e := range list {
		if e.ID == "" || s.indexOf(e.ID) >= 0 {
			continue
		}
		z++
		s.windows = append(s.windows, e.clone())
		s.z[e.ID] = z
	}
	s.counter = z

	for id, surface := range s.surfaces {
		zi, ok := s.z[id]
		if !ok {
			delete(s.surfaces, id)
			continue
		}
		surface.SetZIndex(zi)
		surface.SetActive(false)
	}
	s.notify()
}

// Subscribe registers fn to run after every change to the open windows.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Windows returns copies of the open windows in opening order.
func (s *Store) Windows() []Entry {
	out := make([]Entry, len(s.windows))
	for i, w := range s.windows {
		out[i] = w.clone()
	}
	return out
}

// Stacked returns the open windows from bottom to top.
func (s *Store) Stacked() []Entry {
	out := s.Windows()
	order := s.stackOrder()
	slices.SortStableFunc(out, func(a, b Entry) int {
		return order[a.ID] - order[b.ID]
	})
	return out
}

// Get returns a copy of an open window.
func (s *Store) Get(id string) (Entry, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.windows[i].clone(), true
}

// Focused returns the focused window, if any.
func (s *Store) Focused() (Entry, bool) {
	if s.focused == "" {
		return Entry{}, false
	}
	return s.Get(s.focused)
}

// FocusedID returns the id of the focused window or "".
func (s *Store) FocusedID() string {
	return s.focused
}

// Active reports whether id is the focused window.
func (s *Store) Active(id string) bool {
	return id != "" && s.focused == id
}

// ZIndex returns the stacking value of a window. Windows that have never
// been stacked report 0.
func (s *Store) ZIndex(id string) (int, bool) {
	if s.indexOf(id) < 0 {
		return 0, false
	}
	return s.z[id], true
}

// Counter returns the current value of the stacking counter.
func (s *Store) Counter() int {
	return s.counter
}

// Len returns the number of open windows.
func (s *Store) Len() int {
	return len(s.windows)
}

// Topmost returns the window with the highest stacking value.
func (s *Store) Topmost() (Entry, bool) {
	stacked := s.Stacked()
	if len(stacked) == 0 {
		return Entry{}, false
	}
	return stacked[len(stacked)-1], true
}

// AlertOpen reports whether a modal alert is open.
func (s *Store) AlertOpen() bool {
	return s.alertID() != ""
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.windows, func(w Entry) bool {
		return w.ID == id
	})
}

func (s *Store) alertID() string {
	for _, w := range s.windows {
		if w.IsAlert() {
			return w.ID
		}
	}
	return ""
}

func (s *Store) maxZ() int {
	highest := 0
	for _, w := range s.windows {
		highest = max(highest, s.z[w.ID])
	}
	return highest
}

// stackOrder ranks windows by z, breaking ties by opening order.
func (s *Store) stackOrder() map[string]int {
	ids := make([]string, len(s.windows))
	pos := make(map[string]int, len(s.windows))
	for i, w := range s.windows {
		ids[i] = w.ID
		pos[w.ID] = i
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		if s.z[a] != s.z[b] {
			return s.z[a] - s.z[b]
		}
		return pos[a] - pos[b]
	})
	order := make(map[string]int, len(ids))
	for rank, id := range ids {
		order[id] = rank
	}
	return order
}

// nextAfterRemoval picks the window that inherits focus once a focused
// window stacked at removedZ is gone.
func (s *Store) nextAfterRemoval(removedZ int) string {
	if alert := s.alertID(); alert != "" {
		return alert
	}
	order := s.stackOrder()
	best, bestBehind := "", ""
	for _, w := range s.windows {
		if best == "" || order[w.ID] > order[best] {
			best = w.ID
		}
		if s.z[w.ID] < removedZ && (bestBehind == "" || order[w.ID] > order[bestBehind]) {
			bestBehind = w.ID
		}
	}
	if bestBehind != "" {
		return bestBehind
	}
	return best
}
