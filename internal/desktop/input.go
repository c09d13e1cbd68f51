package desktop

import (
	tea "charm.land/bubbletea/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/wm"
)

const wheelStep = 3

func toButton(b tea.MouseButton) drag.Button {
	switch b {
	case tea.MouseLeft:
		return drag.ButtonPrimary
	case tea.MouseMiddle:
		return drag.ButtonMiddle
	case tea.MouseRight:
		return drag.ButtonSecondary
	default:
		return drag.ButtonNone
	}
}

func toEvent(m tea.Mouse) drag.Event {
	return drag.Event{X: m.X, Y: m.Y, Button: toButton(m.Button)}
}

// findClickedWindow returns the topmost visible window containing (x, y).
func (d *Desktop) findClickedWindow(x, y int) *windowView {
	area := d.area()
	stacked := d.store.Stacked()
	for i := len(stacked) - 1; i >= 0; i-- {
		e := stacked[i]
		if e.Minimized {
			continue
		}
		v := d.viewFor(e.ID)
		if v == nil {
			continue
		}
		b := v.Bounds()
		left, top := area.X+b.X, area.Y+b.Y
		if x >= left && x < left+b.Width && y >= top && y < top+b.Height {
			return v
		}
	}
	return nil
}

func (d *Desktop) handleMouseClick(msg tea.MouseClickMsg) tea.Cmd {
	m := msg.Mouse()
	ev := toEvent(m)

	if m.Y >= d.Height-config.DockHeight {
		if ev.Button == drag.ButtonPrimary {
			for _, item := range d.dockItems() {
				if m.X >= item.start && m.X < item.end {
					d.activateDockItem(item)
					break
				}
			}
		}
		return nil
	}
	if m.Y < config.AddressBarHeight {
		return nil
	}

	v := d.findClickedWindow(m.X, m.Y)
	if v == nil {
		if !d.store.AlertOpen() {
			d.store.DefocusAll()
		}
		return nil
	}
	e, _ := v.entry()
	if d.store.AlertOpen() && !e.IsAlert() {
		return nil
	}
	d.store.Focus(e.ID)
	if ev.Button != drag.ButtonPrimary {
		return nil
	}

	area := d.area()
	b := v.Bounds()
	relX, relY := m.X-area.X-b.X, m.Y-area.Y-b.Y

	if relY == 0 {
		for _, btn := range titleButtons(e, b.Width) {
			if relX >= btn.start && relX < btn.end {
				switch btn.action {
				case "close":
					d.CloseWindow(e.ID)
				case "minimize":
					d.MinimizeWindow(e.ID)
				}
				return nil
			}
		}
		v.drag.Press(ev)
		return nil
	}
	if e.Resizable && relY == b.Height-1 && relX == b.Width-1 {
		v.resize.Press(ev)
		return nil
	}
	return d.clickContent(v, relY-1)
}

// clickContent handles a primary click on row of the window body.
func (d *Desktop) clickContent(v *windowView, row int) tea.Cmd {
	if row < 0 {
		return nil
	}
	line := row + v.scroll
	switch v.kind() {
	case content.KindPortfolio:
		posts := d.library.Posts()
		if line >= len(posts) {
			return nil
		}
		if line == v.selected {
			_ = d.OpenRoute("/portfolio/" + posts[line].ID)
			return nil
		}
		v.selected = line
	case content.KindContact:
		if v.form == nil || v.form.sending {
			return nil
		}
		if field, ok := v.form.fieldAt(line); ok {
			v.form.setFocus(field)
			if field == fieldNewsletter || field == fieldSubmit {
				return d.activateForm(v)
			}
		}
	}
	return nil
}

func (d *Desktop) handleMouseMotion(msg tea.MouseMotionMsg) {
	if d.scope.Listeners(drag.PointerMove) == 0 {
		return
	}
	d.scope.Dispatch(drag.PointerMove, toEvent(msg.Mouse()))
}

func (d *Desktop) handleMouseRelease(msg tea.MouseReleaseMsg) {
	d.scope.Dispatch(drag.PointerUp, toEvent(msg.Mouse()))
}

func (d *Desktop) handleMouseWheel(msg tea.MouseWheelMsg) {
	m := msg.Mouse()
	v := d.findClickedWindow(m.X, m.Y)
	if v == nil {
		return
	}
	delta := wheelStep
	if m.Button == tea.MouseWheelUp {
		delta = -wheelStep
	}
	if v.kind() == content.KindPortfolio {
		v.selected = max(v.selected+sign(delta), 0)
		return
	}
	v.SetScrollTop(v.scroll + delta)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func (d *Desktop) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if d.store.AlertOpen() {
		alert, ok := d.store.Focused()
		if !ok || !alert.IsAlert() {
			for _, e := range d.store.Windows() {
				if e.IsAlert() {
					alert = e
					break
				}
			}
		}
		switch d.keys.Action("alert", key) {
		case "confirm":
			return d.confirmAlert(alert.ID)
		case "cancel":
			d.CloseWindow(alert.ID)
		}
		return nil
	}

	focused, hasFocus := d.store.Focused()
	var v *windowView
	if hasFocus {
		v = d.viewFor(focused.ID)
	}

	if v != nil && v.form != nil && v.form.editing() && d.formTakes(msg) {
		v.form.update(msg)
		return nil
	}

	if v != nil {
		if action := d.keys.Action("window", key); action != "" {
			return d.windowAction(v, focused, action)
		}
	}

	switch action := d.keys.Action("desktop", key); action {
	case "next_window":
		d.CycleWindows(1)
	case "prev_window":
		d.CycleWindows(-1)
	case "close_window":
		if hasFocus {
			d.CloseWindow(focused.ID)
		}
	case "defocus":
		d.store.DefocusAll()
	case "open_home", "open_about", "open_portfolio", "open_gallery", "open_contact":
		for _, l := range launchers {
			if action == "open_"+l.id {
				_ = d.OpenRoute(l.route)
			}
		}
	case "quit":
		d.RequestQuit()
	}
	return nil
}

// formTakes reports whether a key pressed in a contact field belongs to the
// field. Typed text always does. The registry keeps desktop keys and the
// keys that move between fields.
func (d *Desktop) formTakes(msg tea.KeyPressMsg) bool {
	if msg.Text != "" && msg.Mod&(tea.ModCtrl|tea.ModAlt) == 0 {
		return true
	}
	key := msg.String()
	switch d.keys.Action("window", key) {
	case "scroll_up", "scroll_down", "open_item":
		return false
	}
	return d.keys.Action("desktop", key) == ""
}

// windowAction applies a window section key action to the focused window.
func (d *Desktop) windowAction(v *windowView, e wm.Entry, action string) tea.Cmd {
	kind := v.kind()
	page := max(sizeOf(e).Height-2, 1)

	switch action {
	case "scroll_up", "scroll_down":
		delta := 1
		if action == "scroll_up" {
			delta = -1
		}
		switch {
		case kind == content.KindPortfolio:
			v.selected = max(v.selected+delta, 0)
		case kind == content.KindContact && v.form != nil:
			v.form.move(delta)
		default:
			v.SetScrollTop(v.scroll + delta)
		}
	case "page_up":
		v.SetScrollTop(v.scroll - page)
	case "page_down":
		v.SetScrollTop(v.scroll + page)
	case "prev_item", "next_item":
		delta := 1
		if action == "prev_item" {
			delta = -1
		}
		switch kind {
		case content.KindGallery:
			view, _ := e.Component.(content.View)
			v.page = max(0, min(v.page+delta, d.pageCount(view.Key)-1))
			v.scroll = 0
		case content.KindPortfolio:
			v.selected = max(v.selected+delta, 0)
		}
	case "open_item":
		switch kind {
		case content.KindPortfolio:
			posts := d.library.Posts()
			if v.selected < len(posts) {
				_ = d.OpenRoute("/portfolio/" + posts[v.selected].ID)
			}
		case content.KindContact:
			if v.form != nil {
				return d.activateForm(v)
			}
		}
	}
	return nil
}
