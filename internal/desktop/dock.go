package desktop

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/deskfolio/deskfolio/internal/config"
)

// launchers are the fixed dock entries, in key order 1 to 5.
var launchers = []struct {
	label string
	id    string
	route string
}{
	{"Home", "home", "/home"},
	{"About", "about", "/about"},
	{"Portfolio", "portfolio", "/portfolio"},
	{"Gallery", "gallery", "/gallery"},
	{"Contact", "contact", "/contact"},
}

type dockItem struct {
	label     string
	id        string
	route     string // empty for windows without a launcher
	open      bool
	minimized bool
	start     int
	end       int
}

// dockItems lists launchers followed by minimized windows that have no
// launcher, with their screen columns.
func (d *Desktop) dockItems() []dockItem {
	var items []dockItem
	known := make(map[string]bool, len(launchers))
	for _, l := range launchers {
		known[l.id] = true
		item := dockItem{label: l.label, id: l.id, route: l.route}
		if e, ok := d.store.Get(l.id); ok {
			item.open = true
			item.minimized = e.Minimized
		}
		items = append(items, item)
	}
	for _, e := range d.store.Windows() {
		if e.Minimized && !known[e.ID] {
			items = append(items, dockItem{label: e.Title, id: e.ID, open: true, minimized: true})
		}
	}

	sep := ansi.StringWidth(config.GetDockSeparator())
	x := 1
	for i := range items {
		if i > 0 {
			x += sep
		}
		items[i].start = x
		x += ansi.StringWidth(items[i].label)
		items[i].end = x
	}
	return items
}

// activateDockItem opens, focuses or restores the window of a dock entry.
func (d *Desktop) activateDockItem(item dockItem) {
	if e, ok := d.store.Get(item.id); ok {
		if e.Minimized {
			d.RestoreWindow(item.id)
			return
		}
		if d.store.FocusedID() == item.id {
			d.MinimizeWindow(item.id)
			return
		}
		d.store.Focus(item.id)
		return
	}
	if item.route != "" {
		_ = d.OpenRoute(item.route)
	}
}
