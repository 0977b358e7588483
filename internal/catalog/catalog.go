// Package catalog holds the descriptive content of each analytics module:
// names, accents and the pre-insight panel shown before the first upload.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"bizai/internal/core"
)

//go:embed modules.yaml
var modulesYAML []byte

// ErrUnknownModule is returned for slugs that are not in the catalog.
var ErrUnknownModule = errors.New("unknown module")

// UploadCard is the call to action on the pre-insight panel.
type UploadCard struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Entry describes one module.
type Entry struct {
	Slug          core.Module `yaml:"slug"`
	Name          string      `yaml:"name"`
	Title         string      `yaml:"title"`
	LoadedTitle   string      `yaml:"loaded_title"`
	Tagline       string      `yaml:"tagline"`
	Accent        string      `yaml:"accent"`
	Bullets       []string    `yaml:"bullets"`
	LockedMetrics []string    `yaml:"locked_metrics"`
	CSVColumns    []string    `yaml:"csv_columns"`
	Upload        UploadCard  `yaml:"upload"`
}

// HeadingFor returns the page heading: the loaded title once data is shown.
func (e Entry) HeadingFor(loaded bool) string {
	if loaded && e.LoadedTitle != "" {
		return e.LoadedTitle
	}
	return e.Title
}

// Path is the module page URL.
func (e Entry) Path() string { return "/modules/" + e.Slug.String() }

// Catalog is an ordered, read-only set of module entries.
type Catalog struct {
	entries []Entry
	bySlug  map[core.Module]Entry
}

type document struct {
	Modules []Entry `yaml:"modules"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{bySlug: make(map[core.Module]Entry, len(doc.Modules))}
	for _, e := range doc.Modules {
		if !e.Slug.IsValid() {
			return nil, fmt.Errorf("catalog entry %q: %w", e.Slug, ErrUnknownModule)
		}
		if _, dup := c.bySlug[e.Slug]; dup {
			return nil, fmt.Errorf("catalog entry %q defined twice", e.Slug)
		}
		if e.Title == "" || e.Accent == "" {
			return nil, fmt.Errorf("catalog entry %q: title and accent are required", e.Slug)
		}
		c.entries = append(c.entries, e)
		c.bySlug[e.Slug] = e
	}
	for _, m := range core.Modules() {
		if _, ok := c.bySlug[m]; !ok {
			return nil, fmt.Errorf("catalog is missing module %q", m)
		}
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(modulesYAML)
}

// MustDefault is Default for program start-up.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the entry for m.
func (c *Catalog) Get(m core.Module) (Entry, error) {
	e, ok := c.bySlug[m]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownModule, m)
	}
	return e, nil
}

// All returns the entries in navigation order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of modules.
func (c *Catalog) Len() int { return len(c.entries) }
