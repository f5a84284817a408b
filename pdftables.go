// Package pdftables reconstructs tables from PDF datasheets. Pages are
// flattened into positioned shapes, cut into sections by a policy and each
// section is rebuilt into a grid of header and body cells.
package pdftables

import (
	"context"

	"go.uber.org/zap"

	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
	"github.com/pyhub-apps/pdftables-golang/pkg/layout"
	"github.com/pyhub-apps/pdftables-golang/pkg/policy"
	"github.com/pyhub-apps/pdftables-golang/pkg/segment"
	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

// Re-export types for the public API
type (
	Result     = engine.Result
	Summary    = engine.Summary
	Table      = table.Table
	Section    = segment.Section
	Shape      = shape.Shape
	Page       = layout.Page
	PageSource = layout.PageSource
	Document   = layout.Document
	Policy     = policy.Policy
)

// Re-export errors
var (
	ErrInvalidTable        = table.ErrInvalidTable
	ErrOrphanCell          = table.ErrOrphanCell
	ErrUnknownPolicy       = policy.ErrUnknownPolicy
	ErrUnterminatedSection = segment.ErrUnterminatedSection
	ErrStopped             = engine.ErrStopped
)

// DefaultPolicy is used when Options.Policy is empty
const DefaultPolicy = "caption"

// Options configures an extraction
type Options struct {
	Policy   string           // registered policy name
	Registry *policy.Registry // nil uses the built-in presets
	Layout   layout.Options   // PDF reading settings
	Table    []table.Option   // applied after the policy's own overrides
	Logger   *zap.Logger
}

// DefaultOptions returns the caption policy with default reading settings
func DefaultOptions() Options {
	return Options{Policy: DefaultPolicy, Layout: layout.DefaultOptions()}
}

// NewEngine builds an engine with a fresh instance of the named policy
func NewEngine(o Options) (*engine.Engine, error) {
	name := o.Policy
	if name == "" {
		name = DefaultPolicy
	}
	lookup := policy.Lookup
	if o.Registry != nil {
		lookup = o.Registry.Lookup
	}
	p, policyOpts, err := lookup(name)
	if err != nil {
		return nil, err
	}

	to := table.DefaultOptions()
	for _, opt := range append(policyOpts, o.Table...) {
		opt(&to)
	}
	return engine.New(p, engine.WithLogger(o.Logger), engine.WithReconstructor(to)), nil
}

// Open opens a PDF file as a page source
func Open(path string, opts layout.Options) (*Document, error) {
	return layout.OpenFile(path, opts)
}

// Extract runs one extraction over src and collects the results
func Extract(ctx context.Context, src PageSource, o Options) ([]Result, Summary, error) {
	e, err := NewEngine(o)
	if err != nil {
		return nil, Summary{}, err
	}
	return e.Extract(ctx, src)
}

// ExtractFile opens path and extracts its tables
func ExtractFile(ctx context.Context, path string, o Options) ([]Result, Summary, error) {
	e, err := NewEngine(o)
	if err != nil {
		return nil, Summary{}, err
	}
	doc, err := Open(path, o.Layout)
	if err != nil {
		return nil, Summary{}, err
	}
	defer doc.Close()
	return e.Extract(ctx, doc)
}
