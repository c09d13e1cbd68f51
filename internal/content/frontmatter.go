// Package content loads the markdown pages and portfolio posts that back
// desktop windows, and resolves routes to window entries.
package content

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the YAML front matter of a page or post.
type Meta struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Medium     string   `yaml:"medium"`
	Categories []string `yaml:"categories"`
	Published  bool     `yaml:"published"`
	Icon       string   `yaml:"icon"`
	Route      string   `yaml:"route"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Resizable  *bool    `yaml:"resizable"`
	Style      string   `yaml:"style"`
}

var delimiter = []byte("---")

// ParseFrontMatter splits a markdown document into its front matter and
// body. Documents without front matter return a zero Meta and the whole
// input as body.
func ParseFrontMatter(data []byte) (Meta, string, error) {
	var meta Meta

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	rest, ok := cutLine(data)
	if !ok || !bytes.Equal(bytes.TrimSpace(rest.line), delimiter) {
		return meta, string(data), nil
	}

	var header []byte
	for {
		next, ok := cutLine(rest.remainder)
		if !ok {
			return meta, "", fmt.Errorf("front matter not terminated")
		}
		if bytes.Equal(bytes.TrimSpace(next.line), delimiter) {
			rest = next
			break
		}
		header = append(header, next.line...)
		header = append(header, '\n')
		rest = next
	}

	if err := yaml.Unmarshal(header, &meta); err != nil {
		return meta, "", fmt.Errorf("invalid front matter: %w", err)
	}
	return meta, string(bytes.TrimLeft(rest.remainder, "\r\n")), nil
}

type lineCut struct {
	line      []byte
	remainder []byte
}

// cutLine returns the first line of data. ok is false when data is empty.
func cutLine(data []byte) (lineCut, bool) {
	if len(data) == 0 {
		return lineCut{}, false
	}
	line, remainder, _ := bytes.Cut(data, []byte("\n"))
	return lineCut{line: bytes.TrimSuffix(line, []byte("\r")), remainder: remainder}, true
}
