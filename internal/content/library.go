package content

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"charm.land/log/v2"
)

// ErrNotFound is returned when a page or post does not exist.
var ErrNotFound = errors.New("not found")

// Directories under the content root.
const (
	PagesDir     = "pages"
	PortfolioDir = "portfolio"
)

// Document is one markdown file.
type Document struct {
	ID   string
	Meta Meta
	Body string
}

// Route returns the route of a portfolio post, defaulting to
// /portfolio/{id}.
func (d Document) Route() string {
	if d.Meta.Route != "" {
		return d.Meta.Route
	}
	return "/portfolio/" + d.ID
}

// PostMeta is the metadata of a post as served by the API.
type PostMeta struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Route       string   `json:"route"`
	Date        string   `json:"date,omitempty"`
	Medium      string   `json:"medium,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Published   bool     `json:"published"`
	Icon        string   `json:"icon,omitempty"`
	DefaultSize *Size    `json:"defaultSize,omitempty"`
}

// Size mirrors the window size hint of a post.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PostMeta projects the document for the API.
func (d Document) PostMeta() PostMeta {
	pm := PostMeta{
		ID:         d.ID,
		Title:      d.Meta.Title,
		Route:      d.Route(),
		Date:       d.Meta.Date,
		Medium:     d.Meta.Medium,
		Categories: d.Meta.Categories,
		Published:  d.Meta.Published,
		Icon:       d.Meta.Icon,
	}
	if d.Meta.Width > 0 && d.Meta.Height > 0 {
		pm.DefaultSize = &Size{Width: d.Meta.Width, Height: d.Meta.Height}
	}
	return pm
}

// Library holds the parsed content tree. It is safe for concurrent use and
// can be reloaded while in use.
type Library struct {
	root   string
	logger *log.Logger

	mu      sync.RWMutex
	pages   map[string]Document
	posts   map[string]Document
	ordered []Document // published posts, newest first
	version int
}

// NewLibrary loads the content under root. A missing root yields an empty
// library.
func NewLibrary(root string, logger *log.Logger) (*Library, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &Library{root: root, logger: logger}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Root returns the content directory.
func (l *Library) Root() string {
	return l.root
}

// Reload re-reads every document. Files that fail to parse are logged and
// skipped; the previous content stays in place if the directory cannot be
// read at all.
func (l *Library) Reload() error {
	pages, err := l.loadDir(PagesDir)
	if err != nil {
		return err
	}
	posts, err := l.loadDir(PortfolioDir)
	if err != nil {
		return err
	}

	var ordered []Document
	for _, p := range posts {
		if p.Meta.Published {
			ordered = append(ordered, p)
		}
	}
	slices.SortStableFunc(ordered, func(a, b Document) int {
		if c := parseDate(b.Meta.Date).Compare(parseDate(a.Meta.Date)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	l.mu.Lock()
	l.pages = pages
	l.posts = posts
	l.ordered = ordered
	l.version++
	l.mu.Unlock()

	l.logger.Debug("content loaded", "pages", len(pages), "posts", len(posts), "published", len(ordered))
	return nil
}

func (l *Library) loadDir(sub string) (map[string]Document, error) {
	docs := make(map[string]Document)
	dir := filepath.Join(l.root, sub)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return docs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".md" {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		// #nosec G304 - content files come from the configured content dir
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("skipping unreadable document", "file", name, "err", err)
			continue
		}
		meta, body, err := ParseFrontMatter(data)
		if err != nil {
			l.logger.Warn("skipping document", "file", name, "err", err)
			continue
		}
		docs[id] = Document{ID: id, Meta: meta, Body: body}
	}
	return docs, nil
}

// Version increases with every reload.
func (l *Library) Version() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Posts returns published posts, newest first. Posts without a date sort as
// 1970-01-01.
func (l *Library) Posts() []Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.ordered)
}

// Post returns a post by id, published or not.
func (l *Library) Post(id string) (Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.posts[id]
	if !ok {
		return Document{}, fmt.Errorf("post %q: %w", id, ErrNotFound)
	}
	return d, nil
}

// Page returns a page by id.
func (l *Library) Page(id string) (Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.pages[id]
	if !ok {
		return Document{}, fmt.Errorf("page %q: %w", id, ErrNotFound)
	}
	return d, nil
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006/01/02",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseDate parses the front matter date formats. Unknown or empty dates
// are the Unix epoch.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// FormatDate renders a date in the medium style, e.g. "Mar 4, 2024". Dates
// that cannot be parsed are returned unchanged.
func FormatDate(s string) string {
	t := parseDate(s)
	if t.Equal(time.Unix(0, 0)) && s != "1970-01-01" {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// Year returns the four digit year of a date, or "" if it cannot be parsed.
func Year(s string) string {
	t := parseDate(s)
	if t.Equal(time.Unix(0, 0)) && s != "1970-01-01" {
		return ""
	}
	return t.Format("2006")
}
