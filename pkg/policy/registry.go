package policy

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

// ErrUnknownPolicy is returned by Lookup for names that were never registered
var ErrUnknownPolicy = errors.New("unknown policy")

// Definition describes a policy declaratively, as found in config files
type Definition struct {
	Name             string  `yaml:"name" json:"name"`
	Description      string  `yaml:"description,omitempty" json:"description,omitempty"`
	Pattern          string  `yaml:"pattern" json:"pattern"`
	FirstOnly        bool    `yaml:"first_only,omitempty" json:"first_only,omitempty"`
	HeaderRuleLength float64 `yaml:"header_rule_length,omitempty" json:"header_rule_length,omitempty"`
}

// Validate checks that the definition can be built
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("policy definition without name")
	}
	if d.HeaderRuleLength < 0 {
		return fmt.Errorf("policy %s: negative header rule length", d.Name)
	}
	if _, err := regexp.Compile(d.pattern()); err != nil {
		return fmt.Errorf("policy %s: invalid pattern: %w", d.Name, err)
	}
	return nil
}

func (d Definition) pattern() string {
	if d.Pattern == "" {
		return DefaultCaptionPattern
	}
	return d.Pattern
}

// Build creates a fresh policy and the reconstructor overrides it needs
func (d Definition) Build() (Policy, []table.Option, error) {
	c, err := NewCaption(d.Name, d.pattern())
	if err != nil {
		return nil, nil, err
	}
	var p Policy = c
	if d.FirstOnly {
		p = FirstOnly(p)
	}
	var opts []table.Option
	if d.HeaderRuleLength > 0 {
		opts = append(opts, table.WithHeaderRuleLength(d.HeaderRuleLength))
	}
	return p, opts, nil
}

// Presets are the built-in policies
var Presets = []Definition{
	{
		Name:        "caption",
		Description: "every section introduced by a \"Table\" caption is a table",
		Pattern:     DefaultCaptionPattern,
	},
	{
		Name:             "lpc",
		Description:      "LPC microcontroller datasheets: only the first captioned table",
		Pattern:          DefaultCaptionPattern,
		FirstOnly:        true,
		HeaderRuleLength: 383,
	},
}

// Registry maps policy names to definitions
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns a registry holding the presets
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition)}
	for _, d := range Presets {
		r.defs[d.Name] = d
	}
	return r
}

// Register adds or replaces a definition
func (r *Registry) Register(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[d.Name] = d
	return nil
}

// Lookup builds the named policy
func (r *Registry) Lookup(name string) (Policy, []table.Option, error) {
	d, ok := r.Definition(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
	return d.Build()
}

// Definition returns the named definition
func (r *Registry) Definition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Definitions returns all definitions sorted by name
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// ParseDefinitions reads a YAML list of policy definitions
func ParseDefinitions(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := yaml.UnmarshalStrict(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse policy definitions: %w", err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

var defaultRegistry = NewRegistry()

// Lookup builds a policy from the default registry
func Lookup(name string) (Policy, []table.Option, error) {
	return defaultRegistry.Lookup(name)
}

// Register adds a definition to the default registry
func Register(d Definition) error {
	return defaultRegistry.Register(d)
}

// Definitions lists the default registry
func Definitions() []Definition {
	return defaultRegistry.Definitions()
}
