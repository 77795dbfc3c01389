// Package prompt turns validated form input into model instructions.
//
// Templates live in an embedded YAML catalog. Each entry carries a system
// block (static legal policy) and a user block (the citizen's facts); both are
// Go text/template bodies executed with missingkey=error so an unresolved
// placeholder fails rendering instead of reaching the model as "<no value>".
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// NotProvided fills optional fields the citizen left out.
const NotProvided = "Not provided"

var (
	ErrUnknownTemplate = errors.New("unknown prompt template")
	ErrRender          = errors.New("prompt render failed")
)

// Prompt is a rendered instruction pair.
type Prompt struct {
	System string
	User   string
}

// RenderContext carries request-scoped values that are not form fields.
type RenderContext struct {
	// Language is a BCP 47 tag (en, hi, mr). Empty means English.
	Language string
	// Provisions are statutory excerpts retrieved for the request.
	Provisions []string
}

type entry struct {
	ID       string   `yaml:"id"`
	Optional []string `yaml:"optional"`
	System   string   `yaml:"system"`
	User     string   `yaml:"user"`

	system *template.Template
	user   *template.Template
}

type catalogFile struct {
	Templates []*entry `yaml:"templates"`
}

// Catalog is the parsed set of templates.
type Catalog struct {
	byID map[string]*entry
	ids  []string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// MustLoad is Load that panics; the catalog is compiled into the binary.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from YAML.
func Parse(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("prompt catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]*entry, len(f.Templates))}
	for _, e := range f.Templates {
		if e.ID == "" {
			return nil, errors.New("prompt catalog: template without id")
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("prompt catalog: duplicate template %q", e.ID)
		}
		var err error
		if e.system, err = compile(e.ID+".system", e.System); err != nil {
			return nil, err
		}
		if e.user, err = compile(e.ID+".user", e.User); err != nil {
			return nil, err
		}
		c.byID[e.ID] = e
		c.ids = append(c.ids, e.ID)
	}
	return c, nil
}

func compile(name, body string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("prompt catalog %s: %w", name, err)
	}
	return t, nil
}

// IDs returns the template ids in catalog order.
func (c *Catalog) IDs() []string { return append([]string(nil), c.ids...) }

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Render executes template id against input.
func (c *Catalog) Render(id string, input map[string]any, rc RenderContext) (Prompt, error) {
	e, ok := c.byID[id]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}

	fields := make(map[string]any, len(input)+len(e.Optional))
	for _, k := range e.Optional {
		fields[k] = NotProvided
	}
	for k, v := range input {
		if items, ok := v.([]any); ok {
			v = joinList(items)
		}
		fields[k] = v
	}

	data := struct {
		Input      map[string]any
		Language   string
		Provisions []string
	}{fields, LanguageName(rc.Language), rc.Provisions}

	var sys, usr strings.Builder
	if err := e.system.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("%w: %s: %v", ErrRender, id, err)
	}
	if err := e.user.Execute(&usr, data); err != nil {
		return Prompt{}, fmt.Errorf("%w: %s: %v", ErrRender, id, err)
	}
	return Prompt{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(usr.String()),
	}, nil
}

// LanguageName returns the English name of a BCP 47 tag, falling back to
// English for empty or unparseable tags.
func LanguageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil || tag == "" {
		return "English"
	}
	base, _ := t.Base()
	name := display.English.Languages().Name(language.Make(base.String()))
	if name == "" {
		return "English"
	}
	return name
}

func joinList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprint(it))
	}
	return strings.Join(parts, ", ")
}
