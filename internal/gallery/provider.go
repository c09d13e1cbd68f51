package gallery

import (
	"errors"
	"io"
	"strings"
	"sync"

	"charm.land/log/v2"

	"github.com/deskfolio/deskfolio/internal/config"
)

// Query selects one page of the gallery.
type Query struct {
	Page     int
	PageSize int
	// Folder filters on the full folder when it contains a slash, otherwise
	// on the top level folder.
	Folder string
}

// Normalize applies the defaults and the page size cap.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = config.DefaultGalleryPageSize
	}
	q.PageSize = min(q.PageSize, config.MaxGalleryPageSize)
	return q
}

// Page is a query result, shaped like the /api/gallery response.
type Page struct {
	Images        []Image  `json:"images"`
	Total         int      `json:"total"`
	Page          int      `json:"page"`
	PageSize      int      `json:"pageSize"`
	HasMore       bool     `json:"hasMore"`
	Folders       []string `json:"folders"`
	ParentFolders []string `json:"parentFolders"`
}

// Provider serves gallery data from a generated index, falling back to a
// live scan of the image root.
type Provider struct {
	root      string
	indexPath string
	logger    *log.Logger

	mu     sync.RWMutex
	images []Image
}

// NewProvider loads the gallery. It never fails: when neither the index nor
// the image root can be read the gallery is empty and the error is logged.
func NewProvider(root, indexPath string, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Provider{root: root, indexPath: indexPath, logger: logger}
	p.Reload()
	return p
}

// NewStaticProvider serves a fixed image list.
func NewStaticProvider(images []Image) *Provider {
	return &Provider{logger: log.New(io.Discard), images: images}
}

// Root returns the image directory.
func (p *Provider) Root() string {
	return p.root
}

// Reload re-reads the index or rescans the image root.
func (p *Provider) Reload() {
	images, err := p.load()
	if err != nil {
		p.logger.Error("failed to load gallery", "err", err)
		images = nil
	}
	p.mu.Lock()
	p.images = images
	p.mu.Unlock()
	p.logger.Debug("gallery loaded", "images", len(images))
}

func (p *Provider) load() ([]Image, error) {
	if p.indexPath != "" {
		images, err := LoadIndex(p.indexPath)
		if err == nil {
			return images, nil
		}
		if !errors.Is(err, ErrNoIndex) {
			p.logger.Warn("ignoring gallery index", "path", p.indexPath, "err", err)
		}
	}
	if p.root == "" {
		return nil, ErrNoIndex
	}
	return Scan(p.root)
}

// Len returns the number of images.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.images)
}

// Query returns one page of images. Folder lists always cover the whole
// gallery, not just the filtered set.
func (p *Provider) Query(q Query) Page {
	q = q.Normalize()

	p.mu.RLock()
	defer p.mu.RUnlock()

	filtered := p.images
	if q.Folder != "" {
		filtered = nil
		full := strings.Contains(q.Folder, "/")
		for _, img := range p.images {
			if (full && img.Folder == q.Folder) || (!full && img.ParentFolder == q.Folder) {
				filtered = append(filtered, img)
			}
		}
	}

	// Compare page numbers, not offsets: a huge page would overflow.
	pages := (len(filtered) + q.PageSize - 1) / q.PageSize
	images := []Image{}
	if q.Page <= pages {
		start := (q.Page - 1) * q.PageSize
		images = append(images, filtered[start:min(start+q.PageSize, len(filtered))]...)
	}

	return Page{
		Images:        images,
		Total:         len(filtered),
		Page:          q.Page,
		PageSize:      q.PageSize,
		HasMore:       q.Page < pages,
		Folders:       unique(p.images, func(i Image) string { return i.Folder }),
		ParentFolders: unique(p.images, func(i Image) string { return i.ParentFolder }),
	}
}

// unique returns the distinct non-empty values in first-seen order.
func unique(images []Image, field func(Image) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, img := range images {
		v := field(img)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
