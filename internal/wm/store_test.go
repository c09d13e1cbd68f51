package wm

import (
	"errors"
	"fmt"
	"testing"
)

type fakeSurface struct {
	z      int
	active bool
	scroll int
	zSets  int
}

func (f *fakeSurface) SetZIndex(z int)       { f.z = z; f.zSets++ }
func (f *fakeSurface) SetActive(active bool) { f.active = active }
func (f *fakeSurface) ScrollTop() int        { return f.scroll }
func (f *fakeSurface) SetScrollTop(o int)    { f.scroll = o }

type fakeNav struct {
	location string
	title    string
	replaces int
	titles   int
	err      error
	// onReplace runs during Replace, simulating a transition that resets
	// scroll positions.
	onReplace func()
}

func (n *fakeNav) Location() string { return n.location }

func (n *fakeNav) Replace(route string) error {
	n.replaces++
	if n.onReplace != nil {
		n.onReplace()
	}
	if n.err != nil {
		return n.err
	}
	n.location = route
	return nil
}

func (n *fakeNav) SetTitle(title string) {
	n.title = title
	n.titles++
}

func entry(id string) Entry {
	return Entry{ID: id, Title: "Title " + id, Route: "/" + id}
}

func TestAddFocusesAndAssignsZ(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Add(entry("b"))

	if got := s.FocusedID(); got != "b" {
		t.Fatalf("focused = %q, want b", got)
	}
	za, _ := s.ZIndex("a")
	zb, _ := s.ZIndex("b")
	if za != 101 || zb != 102 {
		t.Errorf("z = (%d, %d), want (101, 102)", za, zb)
	}
	if s.Counter() != 102 {
		t.Errorf("counter = %d, want 102", s.Counter())
	}
}

func TestAddDuplicateIDFocusesExisting(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Add(entry("b"))
	s.Add(Entry{ID: "a", Title: "other"})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.FocusedID() != "a" {
		t.Errorf("focused = %q, want a", s.FocusedID())
	}
	w, _ := s.Get("a")
	if w.Title != "Title a" {
		t.Errorf("title overwritten: %q", w.Title)
	}
}

func TestAddGeneratesID(t *testing.T) {
	s := New()
	id := s.Add(Entry{Title: "x"})
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, ok := s.Get(id); !ok {
		t.Errorf("window %q not found", id)
	}
}

func TestIDsStayUnique(t *testing.T) {
	s := New()
	ops := []struct {
		add bool
		id  string
	}{
		{true, "a"}, {true, "b"}, {true, "a"}, {false, "b"},
		{true, "c"}, {true, "b"}, {true, "c"}, {false, "a"}, {true, "a"},
	}
	for _, op := range ops {
		if op.add {
			s.Add(entry(op.id))
		} else {
			s.Remove(op.id)
		}
		seen := map[string]bool{}
		for _, w := range s.Windows() {
			if seen[w.ID] {
				t.Fatalf("duplicate id %q after %+v", w.ID, op)
			}
			seen[w.ID] = true
		}
	}
}

func TestRemoveFocusedFocusesNextHighest(t *testing.T) {
	tests := []struct {
		name   string
		open   []string
		focus  []string
		remove string
		want   string
	}{
		{
			name:   "last opened",
			open:   []string{"a", "b", "c"},
			remove: "c",
			want:   "b",
		},
		{
			name:   "after refocus",
			open:   []string{"a", "b", "c"},
			focus:  []string{"a"},
			remove: "a",
			want:   "c",
		},
		{
			name:   "middle of stack",
			open:   []string{"a", "b", "c"},
			focus:  []string{"b", "a"},
			remove: "a",
			want:   "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, id := range tt.open {
				s.Add(entry(id))
			}
			for _, id := range tt.focus {
				s.Focus(id)
			}
			s.Remove(tt.remove)
			if got := s.FocusedID(); got != tt.want {
				t.Errorf("focused = %q, want %q", got, tt.want)
			}
			top, _ := s.Topmost()
			if top.ID != tt.want {
				t.Errorf("topmost = %q, want %q", top.ID, tt.want)
			}
		})
	}
}

func TestRemoveUnfocusedKeepsFocus(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Add(entry("b"))
	counter := s.Counter()

	s.Remove("a")
	if s.FocusedID() != "b" {
		t.Errorf("focused = %q, want b", s.FocusedID())
	}
	if s.Counter() != counter {
		t.Errorf("counter changed: %d -> %d", counter, s.Counter())
	}
}

func TestRemoveLastResetsCounter(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Add(entry("b"))
	s.Focus("a")
	s.Remove("a")
	s.Remove("b")

	if s.Counter() != BaseZIndex {
		t.Fatalf("counter = %d, want %d", s.Counter(), BaseZIndex)
	}
	if s.FocusedID() != "" {
		t.Errorf("focused = %q, want none", s.FocusedID())
	}

	s.Add(entry("c"))
	if z, _ := s.ZIndex("c"); z != 101 {
		t.Errorf("first z after reset = %d, want 101", z)
	}
}

func TestRemoveRecomputesCounter(t *testing.T) {
	s := New()
	s.Initialize([]Entry{entry("a"), entry("b"), entry("c")})
	// c holds the counter maximum (103) but is not focused.
	s.Remove("c")
	if s.Counter() != 102 {
		t.Errorf("counter = %d, want 102", s.Counter())
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Remove("missing")
	if s.Len() != 1 || s.FocusedID() != "a" {
		t.Errorf("state changed: len=%d focused=%q", s.Len(), s.FocusedID())
	}
}

func TestFocusIsIdempotent(t *testing.T) {
	nav := &fakeNav{}
	s := New(WithNavigator(nav), WithSiteName("Site"))
	s.Add(entry("a"))
	s.Add(entry("b"))
	s.Focus("a")

	z, _ := s.ZIndex("a")
	titles := nav.titles
	replaces := nav.replaces

	s.Focus("a")
	if z2, _ := s.ZIndex("a"); z2 != z {
		t.Errorf("z changed: %d -> %d", z, z2)
	}
	if nav.titles != titles || nav.replaces != replaces {
		t.Errorf("navigator touched on repeat focus")
	}
}

func TestFocusUpdatesAddressAndTitle(t *testing.T) {
	nav := &fakeNav{location: "/"}
	s := New(WithNavigator(nav), WithSiteName("Jane Doe"))
	s.Add(Entry{ID: "about", Title: "About", Route: "/about"})

	if nav.location != "/about" {
		t.Errorf("location = %q, want /about", nav.location)
	}
	if nav.title != "About - Jane Doe" {
		t.Errorf("title = %q", nav.title)
	}

	// Same route already shown: title still synced, no history replacement.
	s.Add(Entry{ID: "about-2", Title: "About again", Route: "/about"})
	if nav.replaces != 1 {
		t.Errorf("replaces = %d, want 1", nav.replaces)
	}
	if nav.title != "About again - Jane Doe" {
		t.Errorf("title = %q", nav.title)
	}
}

func TestFocusEmptyTitleLeavesDocumentTitle(t *testing.T) {
	nav := &fakeNav{title: "before"}
	s := New(WithNavigator(nav))
	s.Add(Entry{ID: "x", Route: "/x"})
	if nav.title != "before" {
		t.Errorf("title = %q, want unchanged", nav.title)
	}
}

func TestFocusPreservesScroll(t *testing.T) {
	a, b := &fakeSurface{}, &fakeSurface{}
	nav := &fakeNav{}
	nav.onReplace = func() {
		a.scroll, b.scroll = 0, 0
	}
	s := New(WithNavigator(nav))
	s.Add(entry("a"))
	s.Add(entry("b"))
	s.Attach("a", a)
	s.Attach("b", b)
	a.scroll, b.scroll = 7, 3

	s.Focus("a")
	if a.scroll != 7 || b.scroll != 3 {
		t.Errorf("scroll = (%d, %d), want (7, 3)", a.scroll, b.scroll)
	}
}

func TestFocusNavigationFailureIsLogged(t *testing.T) {
	a := &fakeSurface{}
	nav := &fakeNav{err: errors.New("boom")}
	nav.onReplace = func() { a.scroll = 0 }
	s := New(WithNavigator(nav), WithSiteName("S"))
	s.Add(entry("a"))
	s.Attach("a", a)
	a.scroll = 4
	s.Add(entry("b"))

	if s.FocusedID() != "b" {
		t.Errorf("focused = %q, want b", s.FocusedID())
	}
	if a.scroll != 4 {
		t.Errorf("scroll not restored: %d", a.scroll)
	}
	if nav.title != "Title b - S" {
		t.Errorf("title = %q", nav.title)
	}
}

func TestAlertBlocksFocus(t *testing.T) {
	nav := &fakeNav{}
	s := New(WithNavigator(nav))
	s.Add(entry("a"))
	s.Add(Entry{ID: "alert", Title: "Quit?", Style: StyleAlert})

	za, _ := s.ZIndex("a")
	zAlert, _ := s.ZIndex("alert")
	title := nav.title

	s.Focus("a")
	if s.FocusedID() != "alert" {
		t.Errorf("focused = %q, want alert", s.FocusedID())
	}
	if z, _ := s.ZIndex("a"); z != za {
		t.Errorf("z of a changed: %d -> %d", za, z)
	}
	if z, _ := s.ZIndex("alert"); z != zAlert {
		t.Errorf("z of alert changed")
	}
	if nav.title != title {
		t.Errorf("title changed to %q", nav.title)
	}

	s.Remove("alert")
	if s.FocusedID() != "a" {
		t.Errorf("focused after alert closed = %q, want a", s.FocusedID())
	}
}

func TestAddWhileAlertOpenStacksBelow(t *testing.T) {
	s := New()
	s.Add(Entry{ID: "alert", Style: StyleAlert})
	s.Add(entry("late"))

	if s.FocusedID() != "alert" {
		t.Fatalf("focused = %q, want alert", s.FocusedID())
	}
	top, _ := s.Topmost()
	if top.ID != "alert" {
		t.Errorf("topmost = %q, want alert", top.ID)
	}
	s.Remove("alert")
	if s.FocusedID() != "late" {
		t.Errorf("focused = %q, want late", s.FocusedID())
	}
}

func TestFocusedHasMaxZ(t *testing.T) {
	s := New()
	for i := range 5 {
		s.Add(entry(fmt.Sprint(i)))
	}
	for _, id := range []string{"2", "0", "4", "2", "1"} {
		s.Focus(id)
		fz, _ := s.ZIndex(s.FocusedID())
		for _, w := range s.Windows() {
			if z, _ := s.ZIndex(w.ID); z > fz {
				t.Fatalf("window %s z=%d above focused %s z=%d", w.ID, z, s.FocusedID(), fz)
			}
		}
	}
}

func TestDefocusAll(t *testing.T) {
	s := New()
	a := &fakeSurface{}
	s.Add(entry("a"))
	s.Attach("a", a)
	if !a.active {
		t.Fatal("expected attached focused surface to be active")
	}
	z, _ := s.ZIndex("a")

	s.DefocusAll()
	if s.FocusedID() != "" || a.active {
		t.Errorf("still focused: %q active=%v", s.FocusedID(), a.active)
	}
	if z2, _ := s.ZIndex("a"); z2 != z {
		t.Errorf("z changed by defocus")
	}
}

func TestUpdateCannotOverrideStyle(t *testing.T) {
	s := New()
	s.Add(Entry{ID: "alert", Style: StyleAlert})
	s.Update("alert", Patch{Title: Ptr("renamed"), CurrentPosition: &Point{X: 3, Y: 4}})

	w, _ := s.Get("alert")
	if !w.IsAlert() {
		t.Error("style lost on update")
	}
	if w.Title != "renamed" || w.CurrentPosition == nil || w.CurrentPosition.X != 3 {
		t.Errorf("patch not applied: %+v", w)
	}
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func() { calls++ })
	s.Update("missing", Patch{Title: Ptr("x")})
	if calls != 0 {
		t.Errorf("listeners notified %d times", calls)
	}
}

func TestInitializeAssignsBaselineZ(t *testing.T) {
	s := New()
	existing := &fakeSurface{}
	s.Attach("b", existing)

	s.Initialize([]Entry{entry("a"), entry("b"), entry("a"), entry("c")})
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	for id, want := range map[string]int{"a": 101, "b": 102, "c": 103} {
		if z, _ := s.ZIndex(id); z != want {
			t.Errorf("z(%s) = %d, want %d", id, z, want)
		}
	}
	if s.Counter() != 103 {
		t.Errorf("counter = %d, want 103", s.Counter())
	}
	if existing.z != 102 {
		t.Errorf("attached surface z = %d, want 102", existing.z)
	}

	s.Focus("a")
	if z, _ := s.ZIndex("a"); z != 104 {
		t.Errorf("z after focus = %d, want 104", z)
	}
}

func TestInitializeClearsFocus(t *testing.T) {
	s := New()
	surface := &fakeSurface{}
	s.Add(entry("a"))
	s.Attach("a", surface)
	if !surface.active {
		t.Fatal("a should be active before initialize")
	}

	s.Initialize([]Entry{entry("a"), entry("b")})
	if s.FocusedID() != "" {
		t.Errorf("focused = %q, want none", s.FocusedID())
	}
	if surface.active {
		t.Error("surface still marked active")
	}

	s.Focus("a")
	za, _ := s.ZIndex("a")
	zb, _ := s.ZIndex("b")
	if s.FocusedID() != "a" || za <= zb {
		t.Errorf("focused = %q z(a) = %d z(b) = %d, want a above b", s.FocusedID(), za, zb)
	}
	if !surface.active || surface.z != za {
		t.Errorf("surface = %+v, want active at z %d", surface, za)
	}
}

func TestInitializeForgetsClosedSurfaces(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Add(entry("b"))
	gone := &fakeSurface{scroll: 7}
	kept := &fakeSurface{}
	s.Attach("a", gone)
	s.Attach("b", kept)

	s.Initialize([]Entry{entry("b")})
	if _, ok := s.surfaces["a"]; ok {
		t.Error("surface of a window no longer open is still registered")
	}
	if _, ok := s.surfaces["b"]; !ok {
		t.Error("surface of b was dropped")
	}

	nav := &fakeNav{location: "/", onReplace: func() { gone.scroll = 0 }}
	s.SetNavigator(nav)
	s.Focus("b")
	if gone.zSets != 1 || gone.scroll != 0 {
		t.Errorf("forgotten surface touched after initialize: %+v", gone)
	}
}

func TestAttachAppliesStateAndFlushDropsMissing(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	if !s.Pending("a") {
		t.Fatal("expected pending visual state before attach")
	}

	s.Flush()
	if s.Pending("a") {
		t.Error("pending state should be abandoned after flush")
	}

	surface := &fakeSurface{}
	detach := s.Attach("a", surface)
	if surface.z != 101 || !surface.active {
		t.Errorf("surface = %+v, want z 101 active", surface)
	}

	detach()
	s.Add(entry("b"))
	if surface.active != true {
		t.Error("detached surface should not receive updates")
	}
}

func TestSnapshotOrderAndAlerts(t *testing.T) {
	s := New()
	s.Add(Entry{ID: "a", Title: "A", Route: "/a", CurrentPosition: &Point{X: 1, Y: 2}})
	s.Add(Entry{ID: "b", Title: "B", Route: "/b", Icon: "b.png"})
	s.Focus("a")
	s.Add(Entry{ID: "alert", Style: StyleAlert})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(snap))
	}
	if snap[0].ID != "b" || snap[1].ID != "a" {
		t.Errorf("order = %s,%s want b,a", snap[0].ID, snap[1].ID)
	}
	if snap[1].CurrentPosition == nil || snap[1].CurrentPosition.Y != 2 {
		t.Errorf("position lost: %+v", snap[1])
	}

	restored := New()
	entries := make([]Entry, len(snap))
	for i, p := range snap {
		entries[i] = p.Entry()
	}
	restored.Initialize(entries)
	top, _ := restored.Topmost()
	if top.ID != "a" {
		t.Errorf("restored topmost = %q, want a", top.ID)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.Add(entry("a"))
	s.Reset()
	if s.Len() != 0 || s.Counter() != BaseZIndex || s.FocusedID() != "" {
		t.Errorf("reset left state: len=%d counter=%d focused=%q", s.Len(), s.Counter(), s.FocusedID())
	}
}

func TestDocumentTitle(t *testing.T) {
	if got := DocumentTitle("Gallery", "Jane"); got != "Gallery - Jane" {
		t.Errorf("got %q", got)
	}
	if got := DocumentTitle("Gallery", ""); got != "Gallery" {
		t.Errorf("got %q", got)
	}
}
