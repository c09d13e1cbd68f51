package desktop

import (
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/deskfolio/deskfolio/internal/config"
	"github.com/deskfolio/deskfolio/internal/drag"
	"github.com/deskfolio/deskfolio/internal/theme"
	"github.com/deskfolio/deskfolio/internal/wm"
)

const (
	zWallpaper    = 0
	zChrome       = 1 << 20
	zNotification = zChrome + 1
)

// GetCanvas composes the wallpaper, the windows bottom to top, the address
// bar, the dock and notifications.
func (d *Desktop) GetCanvas() *lipgloss.Canvas {
	canvas := lipgloss.NewCanvas(d.Width, d.Height)
	d.syncViews()

	area := d.area()
	layers := []*lipgloss.Layer{d.renderWallpaper(area)}

	for _, e := range d.store.Stacked() {
		if e.Minimized {
			continue
		}
		if v := d.viewFor(e.ID); v != nil {
			layers = append(layers, d.renderWindow(v, e, area))
		}
	}

	layers = append(layers, d.renderAddressBar(), d.renderDock())
	layers = append(layers, d.renderNotifications()...)

	for _, layer := range layers {
		canvas.Compose(layer)
	}
	return canvas
}

// Render draws one frame and then lets the store apply visual updates that
// were waiting for their window to be drawn.
func (d *Desktop) Render() string {
	if d.Width <= 0 || d.Height <= 0 {
		return ""
	}
	out := lipgloss.Sprint(d.GetCanvas().Render())
	d.store.Flush()
	return out
}

func (d *Desktop) View() tea.View {
	var view tea.View
	view.SetContent(d.Render())
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	view.WindowTitle = d.address.title
	return view
}

func (d *Desktop) renderWallpaper(area drag.Rect) *lipgloss.Layer {
	text := config.SiteName
	if d.store.Len() == 0 {
		text += "\n\npress 1-5 or use the dock to open a window"
	}
	wall := lipgloss.NewStyle().
		Width(area.Width).
		Height(area.Height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Background(theme.DesktopBg()).
		Foreground(theme.DesktopFg()).
		Render(text)
	return lipgloss.NewLayer(wall).X(area.X).Y(area.Y).Z(zWallpaper).ID("wallpaper")
}

func (d *Desktop) renderWindow(v *windowView, e wm.Entry, area drag.Rect) *lipgloss.Layer {
	b := v.Bounds()
	width, height := max(b.Width, 4), max(b.Height, 3)
	innerW, innerH := width-2, height-2

	var borderColor color.Color
	switch {
	case e.IsAlert():
		borderColor = theme.BorderAlert()
	case v.active:
		borderColor = theme.BorderActive()
	default:
		borderColor = theme.BorderInactive()
	}

	lines := d.bodyLines(v, e, innerW, innerH)
	v.lines = len(lines)
	v.scroll = max(0, min(v.scroll, len(lines)-innerH))

	body := make([]string, innerH)
	for i := range body {
		if n := v.scroll + i; n < len(lines) {
			body[i] = ansi.Truncate(lines[n], innerW, "")
		}
	}

	box := lipgloss.NewStyle().
		Align(lipgloss.Left).
		AlignVertical(lipgloss.Top).
		Border(config.GetBorderForStyle()).
		BorderTop(false).
		BorderForeground(borderColor).
		Foreground(theme.WindowFg()).
		Width(width).
		Height(height - 1)

	rendered := addToBorder(box.Render(strings.Join(body, "\n")), borderColor, e, width, v.active)
	return lipgloss.NewLayer(rendered).
		X(area.X + b.X).
		Y(area.Y + b.Y).
		Z(max(v.z, zWallpaper+1)).
		ID(e.ID)
}

// titleButton is a clickable span of the title row, relative to the
// window's left edge.
type titleButton struct {
	label  string
	action string
	start  int
	end    int
}

// titleButtons lays out the buttons at the right end of the title row.
func titleButtons(e wm.Entry, width int) []titleButton {
	labels := []titleButton{}
	if !e.IsAlert() {
		labels = append(labels, titleButton{label: config.GetWindowButtonMinimize(), action: "minimize"})
	}
	labels = append(labels, titleButton{label: config.GetWindowButtonClose(), action: "close"})

	total := 0
	for _, b := range labels {
		total += ansi.StringWidth(b.label)
	}
	if total+2 > width-2 {
		return nil
	}
	x := width - 1 - total
	for i := range labels {
		labels[i].start = x
		x += ansi.StringWidth(labels[i].label)
		labels[i].end = x
	}
	return labels
}

// addToBorder replaces the box's missing top border with a title line and
// its bottom right corner with the resize handle.
func addToBorder(content string, c color.Color, e wm.Entry, width int, active bool) string {
	border := config.GetBorderForStyle()
	inner := max(width-2, 0)
	borderStyle := lipgloss.NewStyle().Foreground(c)
	buttonStyle := lipgloss.NewStyle().Background(c).Foreground(theme.TitleFg())

	var buttons string
	buttonsWidth := 0
	for _, b := range titleButtons(e, width) {
		buttons += buttonStyle.Render(b.label)
		buttonsWidth += ansi.StringWidth(b.label)
	}

	title := ""
	if titleMax := inner - buttonsWidth - 3; titleMax > 0 && e.Title != "" {
		title = " " + ansi.Truncate(e.Title, titleMax, "…") + " "
	}
	fill := max(inner-1-ansi.StringWidth(title)-buttonsWidth, 0)

	top := borderStyle.Render(border.TopLeft+border.Top) +
		lipgloss.NewStyle().Foreground(c).Bold(active).Render(title) +
		borderStyle.Render(strings.Repeat(border.Top, fill)) +
		buttons +
		borderStyle.Render(border.TopRight)

	corner := border.BottomRight
	if e.Resizable {
		corner = config.GetResizeHandle()
	}
	bottom := borderStyle.Render(border.BottomLeft + strings.Repeat(border.Bottom, inner) + corner)

	lines := strings.Split(content, "\n")
	if len(lines) > 0 {
		lines[len(lines)-1] = bottom
	}
	return top + "\n" + strings.Join(lines, "\n")
}

func (d *Desktop) renderAddressBar() *lipgloss.Layer {
	bg := theme.AddressBarBg()
	base := lipgloss.NewStyle().Background(bg).Foreground(theme.AddressBarFg())
	route := lipgloss.NewStyle().Background(bg).Foreground(theme.AddressBarRoute())

	left := base.Bold(true).Render(" "+config.SiteName) + base.Render(config.GetDockSeparator()) + route.Render(d.address.location)
	right := base.Render(d.address.title + " ")

	gap := d.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(d.Width-lipgloss.Width(left), 0)
	}
	bar := ansi.Truncate(left+base.Render(strings.Repeat(" ", gap))+right, d.Width, "")
	return lipgloss.NewLayer(bar).X(0).Y(0).Z(zChrome).ID("addressbar")
}

func (d *Desktop) renderDock() *lipgloss.Layer {
	bg := theme.DockBg()
	base := lipgloss.NewStyle().Background(bg).Foreground(theme.DockFg())
	open := lipgloss.NewStyle().Background(bg).Foreground(theme.DockHighlight()).Bold(true)
	dimmed := lipgloss.NewStyle().Background(bg).Foreground(theme.DockDimmed())

	var b strings.Builder
	b.WriteString(base.Render(" "))
	items := d.dockItems()
	for i, item := range items {
		if i > 0 {
			b.WriteString(dimmed.Render(config.GetDockSeparator()))
		}
		switch {
		case item.minimized:
			b.WriteString(dimmed.Render(item.label))
		case item.open:
			b.WriteString(open.Render(item.label))
		default:
			b.WriteString(base.Render(item.label))
		}
	}
	left := b.String()

	var status []string
	if !config.HideStats {
		if s := d.stats.String(); s != "" {
			status = append(status, s)
		}
	}
	if !config.HideClock {
		status = append(status, d.now.Format("15:04"))
	}
	right := dimmed.Render(strings.Join(status, config.GetDockSeparator()) + " ")

	gap := d.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(d.Width-lipgloss.Width(left), 0)
	}
	dock := ansi.Truncate(left+base.Render(strings.Repeat(" ", gap))+right, d.Width, "")
	return lipgloss.NewLayer(dock).X(0).Y(max(d.Height-config.DockHeight, 0)).Z(zChrome).ID("dock")
}

func (d *Desktop) renderNotifications() []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	for i, n := range d.Notifications {
		bg := theme.NotificationInfo()
		if n.Type == "error" {
			bg = theme.NotificationError()
		}
		text := lipgloss.NewStyle().
			Background(bg).
			Foreground(theme.TitleFg()).
			Padding(0, 1).
			Render(ansi.Truncate(n.Message, max(d.Width-4, 1), "…"))
		x := max(d.Width-lipgloss.Width(text)-1, 0)
		layers = append(layers, lipgloss.NewLayer(text).
			X(x).
			Y(config.AddressBarHeight+i).
			Z(zNotification))
	}
	return layers
}
