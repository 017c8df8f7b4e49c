// Package catalog holds the selector, indicator and path table the checkout
// scenarios are written against. The table ships embedded and can be partially
// overridden from a YAML file so markup changes on the target site do not need
// a rebuild.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Lookup errors
var (
	ErrUnknownSelector  = errors.New("unknown selector")
	ErrUnknownIndicator = errors.New("unknown indicator set")
	ErrUnknownPath      = errors.New("unknown path")
	ErrUnknownValue     = errors.New("unknown value")
)

// Catalog maps logical names onto site specific selectors, text fragments and paths
type Catalog struct {
	Selectors     map[string]string   `yaml:"selectors"`
	IndicatorSets map[string][]string `yaml:"indicators"`
	Paths         map[string]string   `yaml:"paths"`
	Values        map[string]string   `yaml:"values"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog document
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c.init()
	for key, sel := range c.Selectors {
		c.Selectors[key] = Normalize(sel)
	}
	return c, nil
}

// Load reads a catalog file and merges it over the embedded default.
// An empty path returns the default.
func Load(path string) (*Catalog, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base.Merge(override)
	return base, nil
}

func (c *Catalog) init() {
	if c.Selectors == nil {
		c.Selectors = make(map[string]string)
	}
	if c.IndicatorSets == nil {
		c.IndicatorSets = make(map[string][]string)
	}
	if c.Paths == nil {
		c.Paths = make(map[string]string)
	}
	if c.Values == nil {
		c.Values = make(map[string]string)
	}
}

// Merge copies every entry of other over c. Indicator lists are replaced, not appended.
func (c *Catalog) Merge(other *Catalog) {
	c.init()
	for k, v := range other.Selectors {
		c.Selectors[k] = v
	}
	for k, v := range other.IndicatorSets {
		c.IndicatorSets[k] = append([]string(nil), v...)
	}
	for k, v := range other.Paths {
		c.Paths[k] = v
	}
	for k, v := range other.Values {
		c.Values[k] = v
	}
}

// Selector returns the selector registered under key
func (c *Catalog) Selector(key string) (string, error) {
	sel, ok := c.Selectors[key]
	if !ok || sel == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownSelector, key)
	}
	return sel, nil
}

// Indicators returns the text fragments registered under key
func (c *Catalog) Indicators(key string) ([]string, error) {
	list, ok := c.IndicatorSets[key]
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, key)
	}
	return list, nil
}

// Path returns the site relative path registered under key
func (c *Catalog) Path(key string) (string, error) {
	p, ok := c.Paths[key]
	if !ok || p == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownPath, key)
	}
	return p, nil
}

// Value returns a scenario input value registered under key
func (c *Catalog) Value(key string) (string, error) {
	v, ok := c.Values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownValue, key)
	}
	return v, nil
}

// SelectorKeys lists selector names in sorted order
func (c *Catalog) SelectorKeys() []string {
	keys := make([]string, 0, len(c.Selectors))
	for k := range c.Selectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize prefixes bare XPath expressions so the browser engine does not
// mistake "(//div)[1]" for a CSS selector.
func Normalize(sel string) string {
	sel = strings.TrimSpace(sel)
	switch {
	case sel == "":
		return sel
	case strings.HasPrefix(sel, "xpath=") || strings.HasPrefix(sel, "css=") || strings.HasPrefix(sel, "text="):
		return sel
	case strings.HasPrefix(sel, "/") || strings.HasPrefix(sel, "(/") || strings.HasPrefix(sel, ".."):
		return "xpath=" + sel
	default:
		return sel
	}
}
