package desktop

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/wm"
)

const quitAlertID = "alert/quit"

// OpenRoute resolves route and opens its window, or focuses it when it is
// already open.
func (d *Desktop) OpenRoute(route string) error {
	e, err := d.resolver.Resolve(route)
	if err != nil {
		d.ShowNotification(fmt.Sprintf("Nothing at %s", content.NormalizeRoute(route)), "error", config.NotificationDuration)
		return err
	}
	d.open(e)
	return nil
}

func (d *Desktop) open(e wm.Entry) string {
	if existing, ok := d.store.Get(e.ID); ok {
		if existing.Minimized {
			d.store.Update(e.ID, wm.Patch{Minimized: wm.Ptr(false)})
		}
		d.store.Focus(e.ID)
		return e.ID
	}
	d.place(&e)
	return d.store.Add(e)
}

// place gives a new window a size that fits the desktop and a cascaded
// position. Alerts are centered.
func (d *Desktop) place(e *wm.Entry) {
	area := d.area()
	size := sizeOf(*e)
	if area.Width > 0 && area.Height > 0 {
		size.Width = min(size.Width, area.Width)
		size.Height = min(size.Height, area.Height)
	}
	e.CurrentSize = &size

	if e.CurrentPosition != nil {
		return
	}

	var pos wm.Point
	if e.IsAlert() {
		pos = wm.Point{X: (area.Width - size.Width) / 2, Y: (area.Height - size.Height) / 2}
	} else {
		step := d.store.Len() % 8
		pos = wm.Point{X: 2 + step*2*config.CascadeStep, Y: 1 + step*config.CascadeStep}
	}
	pos.X = drag.Clamp(pos.X, 0, area.Width-size.Width)
	pos.Y = drag.Clamp(pos.Y, 0, area.Height-size.Height)
	e.CurrentPosition = &pos
	e.XYOrigin = &wm.Point{X: pos.X, Y: pos.Y}
}

// CloseWindow closes id and tears down its view.
func (d *Desktop) CloseWindow(id string) {
	if v, ok := d.views[id]; ok {
		v.destroy()
		delete(d.views, id)
	}
	d.store.Remove(id)
}

// MinimizeWindow hides id in the dock. Focus moves to the topmost window
// still on screen.
func (d *Desktop) MinimizeWindow(id string) {
	e, ok := d.store.Get(id)
	if !ok || e.IsAlert() {
		return
	}
	d.store.Update(id, wm.Patch{Minimized: wm.Ptr(true)})
	if d.store.FocusedID() != id {
		return
	}
	d.store.DefocusAll()
	stacked := d.store.Stacked()
	for i := len(stacked) - 1; i >= 0; i-- {
		if !stacked[i].Minimized {
			d.store.Focus(stacked[i].ID)
			return
		}
	}
}

// RestoreWindow brings a minimized window back and focuses it.
func (d *Desktop) RestoreWindow(id string) {
	d.store.Update(id, wm.Patch{Minimized: wm.Ptr(false)})
	d.store.Focus(id)
}

// CycleWindows moves focus through the visible windows in opening order.
func (d *Desktop) CycleWindows(delta int) {
	var visible []string
	for _, e := range d.store.Windows() {
		if !e.Minimized {
			visible = append(visible, e.ID)
		}
	}
	if len(visible) == 0 {
		return
	}
	current := -1
	for i, id := range visible {
		if id == d.store.FocusedID() {
			current = i
			break
		}
	}
	var next int
	switch {
	case current < 0 && delta < 0:
		next = len(visible) - 1
	case current < 0:
		next = 0
	default:
		next = (current + delta + len(visible)) % len(visible)
	}
	d.store.Focus(visible[next])
}

// RequestQuit opens the leave confirmation.
func (d *Desktop) RequestQuit() {
	d.open(content.QuitAlert())
}

// confirmAlert handles "yes" on the open alert.
func (d *Desktop) confirmAlert(id string) tea.Cmd {
	if id == quitAlertID {
		d.CloseWindow(id)
		return d.quitCmd()
	}
	d.CloseWindow(id)
	return nil
}

// quitCmd saves the layout right away and ends the program.
func (d *Desktop) quitCmd() tea.Cmd {
	if d.layouts == nil || !d.ready {
		return tea.Quit
	}
	return tea.Sequence(d.saveLayoutCmd(), tea.Quit)
}
