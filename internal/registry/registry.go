// Package registry resolves template slugs to the repositories they
// are scaffolded from. The catalog ships embedded in the binary and
// can be swapped for a user-maintained file at startup.
package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"

	"github.com/betterde/fabr/internal/schemas"
)

//go:embed templates.json
var defaultCatalog []byte

// ErrNotFound reports a slug with no matching template.
var ErrNotFound = errors.New("template not found")

// Template describes one entry of the catalog.
type Template struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
	Repo string `json:"repo" yaml:"repo"`
}

// Registry is the validated, immutable template catalog. It is loaded
// once at process start and passed to every consumer explicitly.
type Registry struct {
	Templates []Template `json:"templates" yaml:"templates"`
}

// Default parses the embedded catalog.
func Default() (*Registry, error) {
	r, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return r, nil
}

// Load reads a registry document from path. Comments and trailing
// commas are tolerated.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return r, nil
}

// Parse validates a registry document and decodes it. Any shape
// violation is an error: a catalog that cannot resolve templates is
// useless, so callers treat failures as fatal.
func Parse(data []byte) (*Registry, error) {
	clean := jsonc.ToJSON(data)
	if err := schemas.Validate(schemas.Registry, clean); err != nil {
		return nil, err
	}
	var r Registry
	if err := json.Unmarshal(clean, &r); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	// Slug uniqueness cannot be expressed in the schema.
	seen := make(map[string]struct{}, len(r.Templates))
	for _, t := range r.Templates {
		if _, dup := seen[t.Slug]; dup {
			return nil, fmt.Errorf("duplicate template slug %q", t.Slug)
		}
		seen[t.Slug] = struct{}{}
	}
	return &r, nil
}

// Find returns the first template whose slug matches exactly.
func (r *Registry) Find(slug string) (Template, error) {
	for _, t := range r.Templates {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%q: %w", slug, ErrNotFound)
}
