// Package doctemplates serves static legal document templates (RTI
// applications, notices, complaints). Bodies are Markdown in an embedded YAML
// catalog and are rendered to HTML once, at load time, with goldmark.
package doctemplates

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var catalogYAML []byte

// ErrNotFound is returned for unknown template ids.
var ErrNotFound = errors.New("document template not found")

// Summary is the catalog listing entry.
type Summary struct {
	ID          string `json:"id"          yaml:"id"`
	Title       string `json:"title"       yaml:"title"`
	Category    string `json:"category"    yaml:"category"`
	Description string `json:"description" yaml:"description"`
}

// Template is a full document template.
type Template struct {
	Summary  `yaml:",inline"`
	Markdown string `json:"markdown" yaml:"body"`
	HTML     string `json:"html"     yaml:"-"`
}

// Catalog is an immutable, concurrency-safe set of templates.
type Catalog struct {
	items []Template
	byID  map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) { return Parse(catalogYAML) }

// Parse builds a catalog from YAML and renders every body to HTML. Raw HTML
// in bodies is escaped.
func Parse(raw []byte) (*Catalog, error) {
	var f struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("document templates: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	c := &Catalog{byID: make(map[string]int, len(f.Templates))}
	for _, t := range f.Templates {
		if t.ID == "" || t.Title == "" {
			return nil, errors.New("document templates: id and title are required")
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("document templates: duplicate id %q", t.ID)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(t.Markdown), &buf); err != nil {
			return nil, fmt.Errorf("document template %s: %w", t.ID, err)
		}
		t.HTML = buf.String()
		c.byID[t.ID] = len(c.items)
		c.items = append(c.items, t)
	}
	return c, nil
}

// List returns summaries in catalog order, optionally filtered by category.
func (c *Catalog) List(category string) []Summary {
	out := make([]Summary, 0, len(c.items))
	for _, t := range c.items {
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t.Summary)
	}
	return out
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	return c.items[i], nil
}
