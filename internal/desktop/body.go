package desktop

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/content"
	"github.com/deskfolio/deskfolio/internal/gallery"
	"github.com/deskfolio/deskfolio/internal/theme"
	"github.com/deskfolio/deskfolio/internal/wm"
)

var placeholders = map[string]string{
	"home": "# Welcome\n\nThis is a desktop. Open windows from the dock below, " +
		"or press **1** to **5**. Drag a window by its title bar, resize it from " +
		"the bottom right corner, and press **q** to leave.",
	"about": "# About\n\nNothing here yet.",
}

// bodyLines renders the content of a window for a width x height box.
// Only list views look at height, to keep the selection visible.
func (d *Desktop) bodyLines(v *windowView, e wm.Entry, width, height int) []string {
	view, _ := e.Component.(content.View)

	switch view.Kind {
	case content.KindPost:
		return d.postLines(view.Key, width)
	case content.KindPortfolio:
		return d.portfolioLines(v, width, height)
	case content.KindGallery:
		return d.galleryLines(v, view.Key, width)
	case content.KindContact:
		if v.form == nil {
			v.form = newContactForm()
		}
		return v.form.lines(width)
	case content.KindAlert:
		return alertLines(view.Message, width)
	default:
		return d.pageLines(view.Key, width)
	}
}

func (d *Desktop) markdown(id, md string, width int) []string {
	return strings.Split(d.renderer.Render(id, d.library.Version(), md, width), "\n")
}

func (d *Desktop) pageLines(key string, width int) []string {
	doc, err := d.library.Page(key)
	if err != nil {
		md, ok := placeholders[key]
		if !ok {
			md = "This page is empty."
		}
		return d.markdown("builtin/"+key, md, width)
	}
	return d.markdown("page/"+key, doc.Body, width)
}

func (d *Desktop) postLines(id string, width int) []string {
	doc, err := d.library.Post(id)
	if err != nil {
		return []string{lipgloss.NewStyle().Foreground(theme.Muted()).Render("This post is no longer available.")}
	}

	meta := []string{}
	if date := content.FormatDate(doc.Meta.Date); date != "" {
		meta = append(meta, date)
	}
	if doc.Meta.Medium != "" {
		meta = append(meta, doc.Meta.Medium)
	}
	if len(doc.Meta.Categories) > 0 {
		meta = append(meta, strings.Join(doc.Meta.Categories, ", "))
	}

	var out []string
	if len(meta) > 0 {
		line := strings.Join(meta, " · ")
		out = append(out, " "+lipgloss.NewStyle().Foreground(theme.Muted()).Render(ansi.Truncate(line, max(width-1, 1), "…")))
	}
	return append(out, d.markdown("post/"+id, doc.Body, width)...)
}

func (d *Desktop) portfolioLines(v *windowView, width, height int) []string {
	posts := d.library.Posts()
	if len(posts) == 0 {
		return []string{lipgloss.NewStyle().Foreground(theme.Muted()).Render("No posts yet.")}
	}
	v.selected = max(0, min(v.selected, len(posts)-1))
	if height > 0 {
		if v.selected < v.scroll {
			v.scroll = v.selected
		} else if v.selected >= v.scroll+height {
			v.scroll = v.selected - height + 1
		}
	}

	normal := lipgloss.NewStyle().Foreground(theme.WindowFg())
	selected := lipgloss.NewStyle().Foreground(theme.Accent()).Bold(true)
	muted := lipgloss.NewStyle().Foreground(theme.Muted())

	out := make([]string, 0, len(posts))
	for i, doc := range posts {
		title := doc.Meta.Title
		if title == "" {
			title = doc.ID
		}
		year := content.Year(doc.Meta.Date)
		titleWidth := max(width-ansi.StringWidth(year)-3, 1)
		title = ansi.Truncate(title, titleWidth, "…")
		gap := strings.Repeat(" ", max(width-ansi.StringWidth(title)-ansi.StringWidth(year)-2, 1))

		if i == v.selected {
			out = append(out, selected.Render("> "+title)+gap+muted.Render(year))
		} else {
			out = append(out, normal.Render("  "+title)+gap+muted.Render(year))
		}
	}
	return out
}

func (d *Desktop) galleryLines(v *windowView, folder string, width int) []string {
	muted := lipgloss.NewStyle().Foreground(theme.Muted())
	if d.gallery == nil {
		return []string{muted.Render("Gallery unavailable.")}
	}

	q := gallery.Query{Page: v.page + 1, PageSize: config.DefaultGalleryPageSize, Folder: folder}.Normalize()
	page := d.gallery.Query(q)
	pages := max((page.Total+q.PageSize-1)/q.PageSize, 1)
	if v.page >= pages {
		v.page = pages - 1
		q.Page = pages
		page = d.gallery.Query(q)
	}
	if page.Total == 0 {
		return []string{muted.Render("No images.")}
	}

	out := []string{muted.Render(fmt.Sprintf("%d images · page %d of %d", page.Total, q.Page, pages)), ""}
	for _, img := range page.Images {
		dims := ""
		if img.Width > 0 && img.Height > 0 {
			dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		name := ansi.Truncate(img.Filename, max(width-len(dims)-3, 1), "…")
		gap := strings.Repeat(" ", max(width-ansi.StringWidth(name)-len(dims)-2, 1))
		out = append(out, "  "+name+gap+muted.Render(dims))
	}
	if len(page.Folders) > 1 && folder == "" {
		out = append(out, "", muted.Render(ansi.Truncate("Folders: "+strings.Join(page.Folders, " "), width, "…")))
	}
	return out
}

func alertLines(message string, width int) []string {
	text := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(message)
	buttons := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Accent()).Bold(true).
		Render("[y] Yes   [n] No")
	return append(strings.Split(text, "\n"), "", buttons)
}

// pageCount returns the number of gallery pages for a folder filter.
func (d *Desktop) pageCount(folder string) int {
	if d.gallery == nil {
		return 1
	}
	q := gallery.Query{PageSize: config.DefaultGalleryPageSize, Folder: folder}.Normalize()
	total := d.gallery.Query(q).Total
	return max((total+q.PageSize-1)/q.PageSize, 1)
}
