// Package gallery indexes the image tree served under /img and answers
// paginated gallery queries.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // gif decoder
	_ "image/jpeg" // jpeg decoder
	_ "image/png"  // png decoder
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // bmp decoder
	_ "golang.org/x/image/tiff" // tiff decoder
	_ "golang.org/x/image/webp" // webp decoder
)

// Image is one entry of the gallery index.
type Image struct {
	Path         string `json:"path"`
	Alt          string `json:"alt"`
	Filename     string `json:"filename"`
	Folder       string `json:"folder,omitempty"`
	ParentFolder string `json:"parentFolder,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Index is the on-disk gallery.json document.
type Index struct {
	Images []Image `json:"images"`
}

var imagePattern = regexp.MustCompile(`(?i)\.(avif|gif|heif|jpeg|jpg|png|tiff|webp|svg)$`)

// IsImage reports whether name has a gallery image extension.
func IsImage(name string) bool {
	return imagePattern.MatchString(name)
}

// Scan walks root and returns every image below it, sorted by path.
func Scan(root string) ([]Image, error) {
	var images []Image
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImage(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		img := newImage(filepath.ToSlash(rel))
		img.Width, img.Height = dimensions(p)
		images = append(images, img)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	slices.SortFunc(images, func(a, b Image) int {
		return strings.Compare(a.Path, b.Path)
	})
	return images, nil
}

// newImage builds the index entry for a slash separated path relative to
// the image root.
func newImage(rel string) Image {
	filename := path.Base(rel)
	alt, _, _ := strings.Cut(filename, ".")

	img := Image{
		Path:     "/img/" + rel,
		Alt:      alt,
		Filename: filename,
		Folder:   "/",
	}
	if dir := path.Dir(rel); dir != "." {
		img.Folder = "/" + dir
		img.ParentFolder, _, _ = strings.Cut(dir, "/")
	}
	return img
}

// dimensions decodes the image header. Formats without a registered decoder
// (avif, heif, svg) report zero.
func dimensions(p string) (int, int) {
	// #nosec G304 - paths come from walking the configured gallery dir
	f, err := os.Open(p)
	if err != nil {
		return 0, 0
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// Generate scans root and writes the index to out.
func Generate(root, out string) (int, error) {
	images, err := Scan(root)
	if err != nil {
		return 0, err
	}
	if images == nil {
		images = []Image{}
	}
	data, err := json.MarshalIndent(Index{Images: images}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode gallery index: %w", err)
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o600); err != nil {
		return 0, fmt.Errorf("failed to write gallery index: %w", err)
	}
	return len(images), nil
}

// ErrNoIndex is returned when the index file does not exist.
var ErrNoIndex = errors.New("gallery index not found")

// LoadIndex reads a gallery.json file.
func LoadIndex(p string) ([]Image, error) {
	// #nosec G304 - index path is user configuration
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse gallery index: %w", err)
	}
	return idx.Images, nil
}
