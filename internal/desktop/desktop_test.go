package desktop

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/contact"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/wm"
)

const (
	testWidth  = 120
	testHeight = 40
)

func testLibrary(t *testing.T) *content.Library {
	t.Helper()
	dir := filepath.Join(t.TempDir(), content.PortfolioDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	posts := map[string]string{
		"alpha.md": "---\ntitle: Alpha\ndate: 2024-05-01\npublished: true\n---\nalpha body\n",
		"beta.md":  "---\ntitle: Beta\ndate: 2023-02-01\npublished: true\n---\nbeta body\n",
	}
	for name, body := range posts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	lib, err := content.NewLibrary(filepath.Dir(dir), nil)
	if err != nil {
		t.Fatal(err)
	}
	return lib
}

func newTestDesktop(t *testing.T, opts ...Option) *Desktop {
	t.Helper()
	d := New(testLibrary(t), opts...)
	d.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	d.Update(layoutLoadedMsg{})
	return d
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "ctrl+j":
		return tea.KeyPressMsg{Code: 'j', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func typeText(d *Desktop, s string) {
	for _, r := range s {
		d.Update(key(string(r)))
	}
}

func click(d *Desktop, x, y int) tea.Cmd {
	_, cmd := d.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft})
	return cmd
}

// runCmd executes cmd and any batched commands it returns, collecting the
// resulting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// screenPos returns the screen position of the top left corner of id.
func screenPos(t *testing.T, d *Desktop, id string) (int, int, wm.Size) {
	t.Helper()
	e, ok := d.store.Get(id)
	if !ok {
		t.Fatalf("window %q not open", id)
	}
	pos, size := positionOf(e), sizeOf(e)
	area := d.area()
	return area.X + pos.X, area.Y + pos.Y, size
}

func TestStartOpensHome(t *testing.T) {
	d := newTestDesktop(t)

	if got := d.store.FocusedID(); got != "home" {
		t.Fatalf("focused = %q, want home", got)
	}
	if got := d.Location(); got != "/home" {
		t.Errorf("location = %q, want /home", got)
	}
	if got, want := d.Title(), wm.DocumentTitle("Home", config.SiteName); got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
}

func TestOpenRouteCascadesAndFocuses(t *testing.T) {
	d := newTestDesktop(t)

	if err := d.OpenRoute("/about"); err != nil {
		t.Fatal(err)
	}
	hx, hy, _ := screenPos(t, d, "home")
	ax, ay, _ := screenPos(t, d, "about")
	if hx == ax && hy == ay {
		t.Error("second window should be cascaded")
	}
	if d.store.FocusedID() != "about" || d.Location() != "/about" {
		t.Errorf("focused = %q at %q", d.store.FocusedID(), d.Location())
	}

	if err := d.OpenRoute("/home/"); err != nil {
		t.Fatal(err)
	}
	if d.store.Len() != 2 {
		t.Errorf("reopening must not duplicate, got %d windows", d.store.Len())
	}
	if d.store.FocusedID() != "home" {
		t.Errorf("focused = %q, want home", d.store.FocusedID())
	}
}

func TestOpenUnknownRouteNotifies(t *testing.T) {
	d := newTestDesktop(t)

	err := d.OpenRoute("/nope/deeper")
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(d.Notifications) != 1 || d.Notifications[0].Type != "error" {
		t.Errorf("notifications = %+v", d.Notifications)
	}
}

func TestKeysOpenAndCycle(t *testing.T) {
	d := newTestDesktop(t)

	d.Update(key("3"))
	if d.store.FocusedID() != "portfolio" {
		t.Fatalf("focused = %q, want portfolio", d.store.FocusedID())
	}
	d.Update(key("tab"))
	if d.store.FocusedID() != "home" {
		t.Errorf("tab should wrap to home, got %q", d.store.FocusedID())
	}
	d.Update(key("esc"))
	if d.store.FocusedID() != "" {
		t.Errorf("esc should defocus, got %q", d.store.FocusedID())
	}
	d.Update(key("x"))
	if d.store.Len() != 2 {
		t.Error("close without focus must not close anything")
	}
}

func TestCloseButton(t *testing.T) {
	d := newTestDesktop(t)
	d.Render()

	x, y, size := screenPos(t, d, "home")
	e, _ := d.store.Get("home")
	var closeX int
	for _, b := range titleButtons(e, size.Width) {
		if b.action == "close" {
			closeX = x + b.start
		}
	}
	click(d, closeX, y)

	if d.store.Len() != 0 {
		t.Errorf("home should be closed, %d windows open", d.store.Len())
	}
	if len(d.views) != 0 {
		t.Errorf("view should be torn down, %d left", len(d.views))
	}
	if d.scope.Total() != 0 {
		t.Errorf("listeners leaked: %d", d.scope.Total())
	}
}

func TestDragMovesWindowInsideDesktop(t *testing.T) {
	d := newTestDesktop(t)
	x, y, size := screenPos(t, d, "home")

	click(d, x+3, y)
	if d.Interacting() {
		t.Error("press alone must not start the gesture")
	}
	d.Update(tea.MouseMotionMsg{X: 500, Y: 500, Button: tea.MouseLeft})
	if !d.Interacting() {
		t.Error("motion should start the drag")
	}
	d.Update(tea.MouseReleaseMsg{X: 500, Y: 500, Button: tea.MouseLeft})
	if d.Interacting() {
		t.Error("release should end the drag")
	}

	area := d.area()
	e, _ := d.store.Get("home")
	want := wm.Point{X: area.Width - size.Width, Y: area.Height - size.Height}
	if got := positionOf(e); got != want {
		t.Errorf("position = %+v, want %+v", got, want)
	}

	d.Update(tea.MouseMotionMsg{X: 0, Y: 0})
	e, _ = d.store.Get("home")
	if positionOf(e) != want {
		t.Error("motion after release must not move the window")
	}
}

type recordingSound struct {
	effects []string
}

func (s *recordingSound) Play(effect string) { s.effects = append(s.effects, effect) }

func TestDragPlaysSounds(t *testing.T) {
	sound := &recordingSound{}
	d := newTestDesktop(t, WithSound(sound))
	x, y, size := screenPos(t, d, "home")

	click(d, x+3, y)
	d.Update(tea.MouseReleaseMsg{X: x + 3, Y: y, Button: tea.MouseLeft})
	if len(sound.effects) != 0 {
		t.Fatalf("click without movement played %v", sound.effects)
	}

	click(d, x+3, y)
	d.Update(tea.MouseMotionMsg{X: x + 10, Y: y + 2, Button: tea.MouseLeft})
	d.Update(tea.MouseMotionMsg{X: x + 12, Y: y + 3, Button: tea.MouseLeft})
	d.Update(tea.MouseReleaseMsg{X: x + 12, Y: y + 3, Button: tea.MouseLeft})
	want := []string{SoundDragStart, SoundDragEnd}
	if strings.Join(sound.effects, ",") != strings.Join(want, ",") {
		t.Errorf("effects = %v, want %v", sound.effects, want)
	}

	// Resizing stays silent.
	x, y, size = screenPos(t, d, "home")
	cx, cy := x+size.Width-1, y+size.Height-1
	click(d, cx, cy)
	d.Update(tea.MouseMotionMsg{X: cx + 2, Y: cy + 1, Button: tea.MouseLeft})
	d.Update(tea.MouseReleaseMsg{X: cx + 2, Y: cy + 1, Button: tea.MouseLeft})
	if len(sound.effects) != 2 {
		t.Errorf("resize played sounds: %v", sound.effects)
	}
}

func TestBellWritesBEL(t *testing.T) {
	var buf strings.Builder
	Bell{W: &buf}.Play(SoundDragEnd)
	Bell{}.Play(SoundDragEnd)
	if buf.String() != "\a" {
		t.Errorf("bell wrote %q", buf.String())
	}
}

func TestRightButtonDoesNotDrag(t *testing.T) {
	d := newTestDesktop(t)
	x, y, _ := screenPos(t, d, "home")
	before, _ := d.store.Get("home")

	d.Update(tea.MouseClickMsg{X: x + 3, Y: y, Button: tea.MouseRight})
	d.Update(tea.MouseMotionMsg{X: x + 20, Y: y + 5, Button: tea.MouseRight})
	d.Update(tea.MouseReleaseMsg{X: x + 20, Y: y + 5, Button: tea.MouseRight})

	after, _ := d.store.Get("home")
	if positionOf(before) != positionOf(after) {
		t.Errorf("moved from %+v to %+v", positionOf(before), positionOf(after))
	}
}

func TestResizeCorner(t *testing.T) {
	d := newTestDesktop(t)
	x, y, size := screenPos(t, d, "home")
	cx, cy := x+size.Width-1, y+size.Height-1

	click(d, cx, cy)
	d.Update(tea.MouseMotionMsg{X: cx + 5, Y: cy + 2, Button: tea.MouseLeft})
	d.Update(tea.MouseReleaseMsg{X: cx + 5, Y: cy + 2, Button: tea.MouseLeft})

	e, _ := d.store.Get("home")
	want := wm.Size{Width: size.Width + 5, Height: size.Height + 2}
	if got := sizeOf(e); got != want {
		t.Errorf("size = %+v, want %+v", got, want)
	}
}

func TestTerminalShrinkReclampsWindows(t *testing.T) {
	d := newTestDesktop(t)
	d.store.Update("home", wm.Patch{CurrentPosition: &wm.Point{X: 60, Y: 20}})
	d.Render()

	d.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	e, _ := d.store.Get("home")
	pos, size := positionOf(e), sizeOf(e)
	area := d.area()
	if pos.X+size.Width > area.Width || pos.Y+size.Height > area.Height {
		t.Errorf("window at %+v size %+v overflows %dx%d", pos, size, area.Width, area.Height)
	}
}

func TestMinimizeAndRestoreFromDock(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("2"))
	x, y, size := screenPos(t, d, "about")
	e, _ := d.store.Get("about")

	for _, b := range titleButtons(e, size.Width) {
		if b.action == "minimize" {
			click(d, x+b.start, y)
		}
	}
	e, _ = d.store.Get("about")
	if !e.Minimized {
		t.Fatal("about should be minimized")
	}
	if d.store.FocusedID() != "home" {
		t.Errorf("focus should fall back to home, got %q", d.store.FocusedID())
	}

	for _, item := range d.dockItems() {
		if item.id == "about" {
			click(d, item.start, d.Height-1)
		}
	}
	e, _ = d.store.Get("about")
	if e.Minimized || d.store.FocusedID() != "about" {
		t.Errorf("about should be restored and focused, minimized=%v focused=%q", e.Minimized, d.store.FocusedID())
	}
}

func TestQuitAlertIsModal(t *testing.T) {
	d := newTestDesktop(t)

	d.Update(key("q"))
	if !d.store.AlertOpen() || d.store.FocusedID() != quitAlertID {
		t.Fatalf("quit alert should be focused, got %q", d.store.FocusedID())
	}

	x, y, _ := screenPos(t, d, "home")
	click(d, x+1, y+1)
	if d.store.FocusedID() != quitAlertID {
		t.Errorf("click behind the alert took focus: %q", d.store.FocusedID())
	}
	d.Update(key("3"))
	if _, ok := d.store.Get("portfolio"); ok {
		t.Error("desktop keys must be blocked while the alert is open")
	}

	d.Update(key("n"))
	if d.store.AlertOpen() {
		t.Fatal("n should dismiss the alert")
	}
	if d.store.FocusedID() != "home" {
		t.Errorf("focus should return to home, got %q", d.store.FocusedID())
	}

	d.Update(key("q"))
	cmd := d.handleKey(key("y"))
	if cmd == nil {
		t.Fatal("confirm should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("confirm should produce a quit message")
	}
}

func TestPortfolioSelectAndOpen(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("3"))
	d.Render()

	d.Update(key("down"))
	d.Update(key("enter"))

	if got := d.store.FocusedID(); got != "portfolio/beta" {
		t.Errorf("focused = %q, want portfolio/beta", got)
	}
	if got := d.Location(); got != "/portfolio/beta" {
		t.Errorf("location = %q", got)
	}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []contact.Email
}

func (m *recordingMailer) Send(_ context.Context, e contact.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func TestContactFormSubmits(t *testing.T) {
	mailer := &recordingMailer{}
	svc := contact.NewService(contact.WithMailer(mailer, "site@example.com", "me@example.com"))
	d := newTestDesktop(t, WithContact(svc))

	d.Update(key("5"))
	v := d.viewFor("contact")
	if v == nil || v.form == nil {
		t.Fatal("contact window should have a form")
	}

	typeText(d, "Ada qx")
	d.Update(key("down"))
	typeText(d, "ada@example.com")
	d.Update(key("down"))
	typeText(d, "Hello 12345")
	d.Update(key("down"))
	d.Update(key("enter"))
	if !v.form.newsletter {
		t.Error("enter on the checkbox should toggle it")
	}
	if d.store.Len() != 2 {
		t.Errorf("typed keys leaked to the desktop: %d windows", d.store.Len())
	}

	d.Update(key("down"))
	_, cmd := d.Update(key("enter"))
	if !v.form.sending {
		t.Fatal("form should be sending")
	}
	for _, msg := range runCmd(cmd) {
		d.Update(msg)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	if got := mailer.sent[0].ReplyTo; got != "ada@example.com" {
		t.Errorf("reply-to = %q", got)
	}
	if !strings.Contains(mailer.sent[0].Text, "Newsletter: Yes") {
		t.Errorf("text = %q", mailer.sent[0].Text)
	}
	if v.form.sending || v.form.name.Value() != "" || v.form.status != msgSent {
		t.Errorf("form should be reset with a success status: %+v", v.form)
	}
}

func TestContactFormValidatesLocally(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("5"))
	v := d.viewFor("contact")
	v.form.setFocus(fieldSubmit)

	_, cmd := d.Update(key("enter"))
	if len(runCmd(cmd)) != 0 {
		t.Error("invalid form must not be submitted")
	}
	if v.form.status != contact.MsgMissingFields || !v.form.statusErr {
		t.Errorf("status = %q", v.form.status)
	}
}

func TestContactFormEditsMidField(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("5"))
	v := d.viewFor("contact")
	windows := d.store.Len()

	typeText(d, "Ada")
	d.Update(key("left"))
	d.Update(key("left"))
	d.Update(key("backspace"))
	typeText(d, "E")
	if got := v.form.name.Value(); got != "Eda" {
		t.Errorf("name = %q, want Eda", got)
	}

	d.Update(key("down"))
	d.Update(key("down"))
	typeText(d, "hi jk")
	d.Update(key("ctrl+j"))
	typeText(d, "there")
	if got := v.form.message.Value(); got != "hi jk\nthere" {
		t.Errorf("message = %q", got)
	}
	if v.form.focus != fieldMessage {
		t.Errorf("focus = %d, want message", v.form.focus)
	}
	if d.store.Len() != windows {
		t.Errorf("typed keys leaked to the desktop: %d windows", d.store.Len())
	}

	d.Update(key("enter"))
	if v.form.focus != fieldNewsletter || v.form.editing() {
		t.Errorf("enter should leave the message field, focus = %d", v.form.focus)
	}
}

type memLayouts struct {
	saved map[string][]wm.Persisted
	saves int
}

func (m *memLayouts) Save(_ context.Context, profile string, windows []wm.Persisted) error {
	m.saves++
	m.saved[profile] = windows
	return nil
}

func (m *memLayouts) Load(_ context.Context, profile string) ([]wm.Persisted, error) {
	return m.saved[profile], nil
}

func TestLayoutRestore(t *testing.T) {
	store := &memLayouts{saved: map[string][]wm.Persisted{
		"ada": {
			{ID: "home", Title: "Home", Route: "/home", Minimized: true},
			{ID: "about", Title: "About", Route: "/about",
				CurrentSize: &wm.Size{Width: 40, Height: 10}, CurrentPosition: &wm.Point{X: 5, Y: 4}},
			{ID: "gone", Title: "Gone", Route: "/nope/nope"},
		},
	}}
	d := New(testLibrary(t), WithLayouts(store, "ada"))
	d.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	d.Update(d.loadLayoutCmd()())

	if d.store.Len() != 2 {
		t.Fatalf("restored %d windows, want 2", d.store.Len())
	}
	about, _ := d.store.Get("about")
	if positionOf(about) != (wm.Point{X: 5, Y: 4}) || sizeOf(about) != (wm.Size{Width: 40, Height: 10}) {
		t.Errorf("about restored at %+v size %+v", positionOf(about), sizeOf(about))
	}
	home, _ := d.store.Get("home")
	if !home.Minimized {
		t.Error("home should stay minimized")
	}
	if d.store.FocusedID() != "about" || d.Location() != "/about" {
		t.Errorf("focused = %q at %q", d.store.FocusedID(), d.Location())
	}
}

func TestLayoutSaveIsDebounced(t *testing.T) {
	store := &memLayouts{saved: map[string][]wm.Persisted{}}
	d := New(testLibrary(t), WithLayouts(store, "ada"))
	d.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	d.Update(d.loadLayoutCmd()())

	d.Update(key("2"))
	stale := d.layoutGen
	d.Update(key("3"))
	if d.layoutGen == stale {
		t.Fatal("every change should bump the save generation")
	}

	_, cmd := d.Update(saveLayoutMsg{gen: stale})
	if len(runCmd(cmd)) != 0 || store.saves != 0 {
		t.Fatal("stale save must be skipped")
	}

	_, cmd = d.Update(saveLayoutMsg{gen: d.layoutGen})
	for _, msg := range runCmd(cmd) {
		d.Update(msg)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	var ids []string
	for _, p := range store.saved["ada"] {
		ids = append(ids, p.ID)
	}
	if got := strings.Join(ids, ","); got != "home,about,portfolio" {
		t.Errorf("saved %q, want bottom to top home,about,portfolio", got)
	}
}

func TestRenderAppliesPendingVisuals(t *testing.T) {
	d := newTestDesktop(t)
	d.Render()

	e, _ := d.resolver.Resolve("/about")
	d.place(&e)
	d.store.Add(e)
	if !d.store.Pending("about") {
		t.Fatal("visual state should wait for the first render")
	}

	out := ansi.Strip(d.Render())
	if d.store.Pending("about") {
		t.Error("render should flush pending visuals")
	}
	v := d.views["about"]
	z, _ := d.store.ZIndex("about")
	if v == nil || v.z != z || !v.active {
		t.Errorf("view = %+v, want z %d active", v, z)
	}
	if home := d.views["home"]; home.active {
		t.Error("home should be inactive")
	}

	for _, want := range []string{config.SiteName, "About", "/about", "Portfolio"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame misses %q", want)
		}
	}
}

func TestScrollSurvivesFocusChange(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("2"))
	d.Render()

	d.views["home"].SetScrollTop(2)
	d.Update(key("tab"))
	if got := d.views["home"].ScrollTop(); got != 2 {
		t.Errorf("scroll = %d, want 2", got)
	}
}

func TestContentReloadClampsSelection(t *testing.T) {
	d := newTestDesktop(t)
	d.Update(key("3"))
	d.Render()
	d.Update(key("down"))

	v := d.viewFor("portfolio")
	if v.selected != 1 {
		t.Fatalf("selected = %d, want 1", v.selected)
	}

	if err := os.Remove(filepath.Join(d.library.Root(), content.PortfolioDir, "beta.md")); err != nil {
		t.Fatal(err)
	}
	if err := d.library.Reload(); err != nil {
		t.Fatal(err)
	}
	d.Update(ContentReloadedMsg{})

	if v.selected != 0 {
		t.Errorf("selected = %d after reload, want 0", v.selected)
	}
	if len(d.Notifications) == 0 || d.Notifications[len(d.Notifications)-1].Message != "Content updated" {
		t.Errorf("notifications = %+v", d.Notifications)
	}
}
