package content

import (
	"fmt"
	"strings"

	"github.com/deskfolio/deskfolio/internal/wm"
)

// Kind is the renderer a window needs.
type Kind int

const (
	KindPage Kind = iota
	KindPortfolio
	KindPost
	KindGallery
	KindContact
	KindAlert
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindPortfolio:
		return "portfolio"
	case KindPost:
		return "post"
	case KindGallery:
		return "gallery"
	case KindContact:
		return "contact"
	case KindAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// View is the component stored on window entries.
type View struct {
	Kind Kind
	// Key is the page or post id, or the gallery folder filter.
	Key string
	// Message is the body of an alert.
	Message string
}

// Default window sizes per kind, in cells.
var defaultSizes = map[Kind]wm.Size{
	KindPage:      {Width: 60, Height: 18},
	KindPortfolio: {Width: 52, Height: 20},
	KindPost:      {Width: 72, Height: 22},
	KindGallery:   {Width: 64, Height: 20},
	KindContact:   {Width: 54, Height: 14},
	KindAlert:     {Width: 40, Height: 7},
}

var minSize = wm.Size{Width: 20, Height: 5}

// builtinPages resolve even when the content tree lacks them; the desktop
// renders a placeholder body.
var builtinPages = map[string]string{
	"home":  "Home",
	"about": "About",
}

// Resolver turns routes into window entries.
type Resolver struct {
	lib *Library
}

// NewResolver returns a resolver over lib.
func NewResolver(lib *Library) *Resolver {
	return &Resolver{lib: lib}
}

// NormalizeRoute cleans a route: leading slash, no trailing slash, "/"
// becomes "/home".
func NormalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if route == "/" || route == "" {
		return "/home"
	}
	return route
}

// Resolve builds the entry for route.
func (r *Resolver) Resolve(route string) (wm.Entry, error) {
	route = NormalizeRoute(route)
	parts := strings.Split(strings.TrimPrefix(route, "/"), "/")

	switch parts[0] {
	case "portfolio":
		if len(parts) == 1 {
			return newEntry("portfolio", "Portfolio", route, "portfolio", View{Kind: KindPortfolio}), nil
		}
		return r.post(parts[1])
	case "gallery":
		folder := strings.Join(parts[1:], "/")
		title := "Gallery"
		id := "gallery"
		if folder != "" {
			title = "Gallery: " + folder
			id = "gallery/" + folder
		}
		return newEntry(id, title, route, "gallery", View{Kind: KindGallery, Key: folder}), nil
	case "contact":
		return newEntry("contact", "Contact", route, "contact", View{Kind: KindContact}), nil
	}

	if len(parts) == 1 {
		return r.page(parts[0], route)
	}
	return wm.Entry{}, fmt.Errorf("route %q: %w", route, ErrNotFound)
}

func (r *Resolver) page(id, route string) (wm.Entry, error) {
	doc, err := r.lib.Page(id)
	if err != nil {
		title, ok := builtinPages[id]
		if !ok {
			return wm.Entry{}, fmt.Errorf("route %q: %w", route, ErrNotFound)
		}
		return newEntry(id, title, route, id, View{Kind: KindPage, Key: id}), nil
	}
	title := doc.Meta.Title
	if title == "" {
		title = strings.ToUpper(id[:1]) + id[1:]
	}
	e := newEntry(id, title, route, doc.Meta.Icon, View{Kind: KindPage, Key: id})
	applyMeta(&e, doc.Meta)
	return e, nil
}

func (r *Resolver) post(id string) (wm.Entry, error) {
	doc, err := r.lib.Post(id)
	if err != nil {
		return wm.Entry{}, err
	}
	title := doc.Meta.Title
	if title == "" {
		title = id
	}
	e := newEntry("portfolio/"+id, title, doc.Route(), doc.Meta.Icon, View{Kind: KindPost, Key: id})
	e.Date = doc.Meta.Date
	e.Medium = doc.Meta.Medium
	e.Categories = doc.Meta.Categories
	e.Published = doc.Meta.Published
	applyMeta(&e, doc.Meta)
	return e, nil
}

func applyMeta(e *wm.Entry, m Meta) {
	if m.Width > 0 && m.Height > 0 {
		e.DefaultSize = &wm.Size{Width: m.Width, Height: m.Height}
	}
	if m.Resizable != nil {
		e.Resizable = *m.Resizable
	}
}

func newEntry(id, title, route, icon string, view View) wm.Entry {
	size := defaultSizes[view.Kind]
	minimum := minSize
	return wm.Entry{
		ID:          id,
		Title:       title,
		Route:       route,
		Icon:        icon,
		Component:   view,
		DefaultSize: &size,
		MinSize:     &minimum,
		Resizable:   view.Kind != KindAlert,
	}
}

// QuitAlert is the modal shown before leaving the desktop.
func QuitAlert() wm.Entry {
	return Alert("alert/quit", "Leave desktop?", "Close every window and exit? (y/n)")
}

// Alert builds a modal window.
func Alert(id, title, message string) wm.Entry {
	e := newEntry(id, title, "", "alert", View{Kind: KindAlert, Message: message})
	e.Style = wm.StyleAlert
	return e
}
