// Package catalog describes the profile templates a scholar can choose from.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Layout is the page arrangement a template uses.
type Layout string

const (
	LayoutSingleColumn Layout = "single-column"
	LayoutTwoColumn    Layout = "two-column"
	LayoutSidebar      Layout = "sidebar"
)

func (l Layout) valid() bool {
	switch l {
	case LayoutSingleColumn, LayoutTwoColumn, LayoutSidebar:
		return true
	}
	return false
}

// Template is one catalog entry.
type Template struct {
	ID          profile.Template `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description" json:"description"`
	Preview     string           `yaml:"preview" json:"preview"`
	Sections    []string         `yaml:"sections" json:"sections"`
	ColorScheme string           `yaml:"colorScheme" json:"colorScheme"`
	Layout      Layout           `yaml:"layout" json:"layout"`
}

type document struct {
	Templates []Template `yaml:"templates"`
}

// Catalog is a validated, ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[profile.Template]int
}

// Load parses the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates a YAML catalog. Every profile template must
// be described exactly once.
func Parse(data []byte) (*Catalog, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode template catalog: %w", err)
	}

	c := &Catalog{byID: make(map[profile.Template]int, len(doc.Templates))}
	for i, tmpl := range doc.Templates {
		id, err := profile.ParseTemplate(string(tmpl.ID))
		if err != nil || id != tmpl.ID {
			return nil, apperrors.WithMetadata(apperrors.CodeTemplateIDInvalid,
				fmt.Sprintf("template %d: unknown id %q", i+1, tmpl.ID),
				map[string]string{"id": string(tmpl.ID)},
			)
		}
		if _, dup := c.byID[id]; dup {
			return nil, apperrors.WithMetadata(apperrors.CodeTemplateIDConflict,
				fmt.Sprintf("template %q is listed twice", id),
				map[string]string{"id": string(id)},
			)
		}
		tmpl.Name = strings.TrimSpace(tmpl.Name)
		if tmpl.Name == "" {
			return nil, fmt.Errorf("template %q: name is required", id)
		}
		if !tmpl.Layout.valid() {
			return nil, fmt.Errorf("template %q: unknown layout %q", id, tmpl.Layout)
		}
		if len(tmpl.Sections) == 0 {
			return nil, fmt.Errorf("template %q: at least one section is required", id)
		}
		c.byID[id] = len(c.templates)
		c.templates = append(c.templates, tmpl)
	}
	for _, id := range profile.Templates {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("template %q is missing from the catalog", id)
		}
	}
	return c, nil
}

// All returns the templates in catalog order.
func (c *Catalog) All() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns the entry for id.
func (c *Catalog) Get(id profile.Template) (Template, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[idx], true
}

// Has reports whether the template shows section.
func (t Template) Has(section string) bool {
	for _, s := range t.Sections {
		if s == section {
			return true
		}
	}
	return false
}
