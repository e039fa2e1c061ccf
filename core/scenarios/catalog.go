// Package scenarios provides the static catalog of deliberation scenarios and
// the presentation themes offered alongside them.
package scenarios

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/satyavak/courtroom-core/core/courtroom"
)

//go:embed catalog.json
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid scenario catalog")

type OpeningStatement struct {
	Speaker  courtroom.Speaker `json:"speaker"`
	Dialogue string            `json:"dialogue"`
}

// Turn returns the opening statement as the first turn of a hearing.
func (s OpeningStatement) Turn() courtroom.Turn {
	return courtroom.Turn{Speaker: s.Speaker, Dialogue: s.Dialogue}
}

type Scenario struct {
	Key              string           `json:"key"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	OpeningStatement OpeningStatement `json:"openingStatement"`
}

// Validate checks the fields the engine relies on.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("scenario key is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("scenario %q: title is required", s.Key)
	}
	if !s.OpeningStatement.Speaker.IsAdvocate() {
		return fmt.Errorf("scenario %q: opening speaker %q is not an advocate", s.Key, s.OpeningStatement.Speaker)
	}
	if strings.TrimSpace(s.OpeningStatement.Dialogue) == "" {
		return fmt.Errorf("scenario %q: opening dialogue is required", s.Key)
	}
	return nil
}

// Theme is a presentation setting. The engine only stores its key.
type Theme struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is read-only once loaded.
type Catalog struct {
	scenarios []Scenario
	themes    []Theme
}

type catalogFile struct {
	Scenarios []Scenario `json:"scenarios"`
	Themes    []Theme    `json:"themes"`
}

// Default returns the catalog bundled with the module.
func Default() *Catalog {
	catalog, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("bundled scenario catalog: %v", err))
	}
	return catalog
}

// Load reads a JSON catalog. The first theme listed is the default one.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidCatalog, err)
	}

	return New(file.Scenarios, file.Themes)
}

// New builds a catalog from in-memory entries.
func New(scenarios []Scenario, themes []Theme) (*Catalog, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios", ErrInvalidCatalog)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("%w: no themes", ErrInvalidCatalog)
	}

	seen := map[string]struct{}{}
	for _, scenario := range scenarios {
		if err := scenario.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if _, ok := seen[scenario.Key]; ok {
			return nil, fmt.Errorf("%w: duplicate scenario key %q", ErrInvalidCatalog, scenario.Key)
		}
		seen[scenario.Key] = struct{}{}
	}

	seenThemes := map[string]struct{}{}
	for _, theme := range themes {
		if strings.TrimSpace(theme.Key) == "" {
			return nil, fmt.Errorf("%w: theme key is required", ErrInvalidCatalog)
		}
		if _, ok := seenThemes[theme.Key]; ok {
			return nil, fmt.Errorf("%w: duplicate theme key %q", ErrInvalidCatalog, theme.Key)
		}
		seenThemes[theme.Key] = struct{}{}
	}

	return &Catalog{scenarios: slices.Clone(scenarios), themes: slices.Clone(themes)}, nil
}

func (c *Catalog) Scenarios() []Scenario { return slices.Clone(c.scenarios) }
func (c *Catalog) Themes() []Theme       { return slices.Clone(c.themes) }
func (c *Catalog) DefaultTheme() string  { return c.themes[0].Key }

func (c *Catalog) Scenario(key string) (Scenario, bool) {
	i := slices.IndexFunc(c.scenarios, func(s Scenario) bool { return s.Key == key })
	if i < 0 {
		return Scenario{}, false
	}
	return c.scenarios[i], true
}

func (c *Catalog) Theme(key string) (Theme, bool) {
	i := slices.IndexFunc(c.themes, func(t Theme) bool { return t.Key == key })
	if i < 0 {
		return Theme{}, false
	}
	return c.themes[i], true
}
