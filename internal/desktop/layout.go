package desktop

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/wm"
)

const layoutTimeout = 5 * time.Second

// LayoutStore persists window layouts per profile.
type LayoutStore interface {
	Save(ctx context.Context, profile string, windows []wm.Persisted) error
	Load(ctx context.Context, profile string) ([]wm.Persisted, error)
}

type layoutLoadedMsg struct {
	windows []wm.Persisted
	err     error
}

type saveLayoutMsg struct {
	gen int
}

type layoutSavedMsg struct {
	err error
}

func (d *Desktop) loadLayoutCmd() tea.Cmd {
	if d.layouts == nil {
		return func() tea.Msg { return layoutLoadedMsg{} }
	}
	store, profile := d.layouts, d.profile
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), layoutTimeout)
		defer cancel()
		windows, err := store.Load(ctx, profile)
		return layoutLoadedMsg{windows: windows, err: err}
	}
}

// restoreLayout reopens the saved windows. Routes that no longer resolve
// are dropped. An empty desktop gets the home window.
func (d *Desktop) restoreLayout(msg layoutLoadedMsg) {
	if msg.err != nil {
		d.logger.Warn("failed to load layout", "profile", d.profile, "err", msg.err)
	}

	entries := make([]wm.Entry, 0, len(msg.windows))
	for _, p := range msg.windows {
		e, err := d.resolver.Resolve(p.Route)
		if err != nil && p.ID != "" {
			// Posts with a custom route resolve through their id.
			e, err = d.resolver.Resolve("/" + p.ID)
		}
		if err != nil {
			d.logger.Debug("dropping saved window", "id", p.ID, "route", p.Route, "err", err)
			continue
		}
		saved := p.Entry()
		if saved.CurrentSize != nil {
			e.CurrentSize = saved.CurrentSize
		}
		if saved.CurrentPosition != nil {
			e.CurrentPosition = saved.CurrentPosition
			e.XYOrigin = &wm.Point{X: saved.CurrentPosition.X, Y: saved.CurrentPosition.Y}
		}
		e.Minimized = saved.Minimized
		entries = append(entries, e)
	}
	d.store.Initialize(entries)
	d.ready = true

	stacked := d.store.Stacked()
	for i := len(stacked) - 1; i >= 0; i-- {
		if !stacked[i].Minimized {
			d.store.Focus(stacked[i].ID)
			break
		}
	}
	if len(entries) == 0 {
		_ = d.OpenRoute(d.homeRoute)
	}
	if d.initialRoute != "" {
		_ = d.OpenRoute(d.initialRoute)
	}

	d.syncViews()
	d.scope.Dispatch(drag.Resize, drag.Event{Button: drag.ButtonNone})
}

func (d *Desktop) markLayoutDirty() {
	if d.ready {
		d.layoutDirty = true
	}
}

// scheduleLayoutSave debounces saves: only the last change inside the delay
// is written.
func (d *Desktop) scheduleLayoutSave() tea.Cmd {
	if !d.layoutDirty || d.layouts == nil {
		return nil
	}
	d.layoutDirty = false
	d.layoutGen++
	gen := d.layoutGen
	return tea.Tick(config.LayoutSaveDelay, func(time.Time) tea.Msg {
		return saveLayoutMsg{gen: gen}
	})
}

func (d *Desktop) saveLayoutCmd() tea.Cmd {
	snapshot := d.store.Snapshot()
	store, profile := d.layouts, d.profile
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), layoutTimeout)
		defer cancel()
		return layoutSavedMsg{err: store.Save(ctx, profile, snapshot)}
	}
}
