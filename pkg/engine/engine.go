// Package engine runs the extraction pipeline: pages are flattened into
// shapes, put in reading order, segmented into sections and each closed
// section is reconstructed into a table.
package engine

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdftables-golang/pkg/layout"
	"github.com/pyhub-apps/pdftables-golang/pkg/policy"
	"github.com/pyhub-apps/pdftables-golang/pkg/segment"
	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

// ErrStopped is returned by an emit callback to end a run early without
// reporting a failure
var ErrStopped = errors.New("stopped")

// Result is the outcome for one processed section. Exactly one of Table
// and Err is set.
type Result struct {
	Run     uuid.UUID
	Section *segment.Section
	Table   *table.Table
	Err     error
}

// Summary counts what a run did
type Summary struct {
	Run          uuid.UUID
	Pages        int
	Sections     int
	Tables       int
	Failed       int
	Skipped      int
	Rejected     int // malformed leaves dropped during flattening
	Unterminated int // sections still open at the end of input
	Stopped      bool
	Shapes       segment.Stats
}

// Engine wires a policy to a reconstructor. An engine holds no per-run
// state, but policies may, so use a fresh policy per run.
type Engine struct {
	policy        policy.Policy
	reconstructor *table.Reconstructor
	logger        *zap.Logger
	maxLineWidth  float64
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReconstructor sets the table reconstruction options
func WithReconstructor(opts table.Options) Option {
	return func(e *Engine) {
		e.reconstructor = table.NewWithOptions(opts)
	}
}

// WithMaxLineWidth sets the line thickness threshold for tracing and
// reconstruction
func WithMaxLineWidth(width float64) Option {
	return func(e *Engine) {
		e.maxLineWidth = width
	}
}

// New creates an engine for the given policy
func New(p policy.Policy, opts ...Option) *Engine {
	e := &Engine{
		policy:        p,
		reconstructor: table.New(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxLineWidth > 0 {
		ro := e.reconstructor.Options()
		ro.MaxLineWidth = e.maxLineWidth
		e.reconstructor = table.NewWithOptions(ro)
	} else {
		e.maxLineWidth = e.reconstructor.Options().MaxLineWidth
	}
	return e
}

// Run reads every page from src and calls emit for each processed section
// in document order. Reconstruction failures are reported through
// Result.Err and do not stop the run. Errors from src are returned as is;
// an error from emit ends the run and is returned unless it is ErrStopped.
func (e *Engine) Run(ctx context.Context, src layout.PageSource, emit func(Result) error) (sum Summary, err error) {
	sum.Run = uuid.New()
	log := e.logger.With(zap.String("run", sum.Run.String()), zap.String("policy", e.policy.Name()))
	seg := segment.New(e.policy, log)
	seg.SetMaxLineWidth(e.maxLineWidth)

	defer func() { sum.Shapes = seg.Stats() }()

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		page, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, err
		}
		sum.Pages++

		shapes, rejected := layout.FlattenPage(page)
		for _, rerr := range rejected {
			log.Warn("dropping malformed shape", zap.Int("page", page.Number), zap.Error(rerr))
		}
		sum.Rejected += len(rejected)
		shape.SortReadingOrder(shapes)
		log.Debug("page", zap.Int("page", page.Number), zap.Int("shapes", len(shapes)))

		for _, sec := range seg.Feed(page.Number, shapes) {
			stop, err := e.handle(sec, &sum, log, emit)
			if err != nil || stop {
				return sum, err
			}
		}
	}

	sec, err := seg.Finish()
	switch {
	case errors.Is(err, segment.ErrUnterminatedSection):
		sum.Unterminated++
	case err != nil:
		return sum, err
	}
	if sec != nil {
		if _, err := e.handle(sec, &sum, log, emit); err != nil {
			return sum, err
		}
	}
	log.Info("run complete",
		zap.Int("pages", sum.Pages),
		zap.Int("tables", sum.Tables),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// handle asks the policy about a closed section and reconstructs it
func (e *Engine) handle(sec *segment.Section, sum *Summary, log *zap.Logger, emit func(Result) error) (stop bool, err error) {
	sum.Sections++
	log = log.With(zap.Int("section", sec.Index), zap.Int("start_page", sec.StartPage))

	switch d := e.policy.SectionClosed(sec); d {
	case policy.Skip:
		sum.Skipped++
		log.Info("section skipped by policy")
		return false, nil
	case policy.Stop:
		sum.Skipped++
		sum.Stopped = true
		log.Info("policy stopped the run")
		return true, nil
	}

	res := Result{Run: sum.Run, Section: sec}
	res.Table, res.Err = e.reconstructor.Reconstruct(sec.Shapes)
	if res.Err != nil {
		sum.Failed++
		log.Error("table reconstruction failed", zap.Error(res.Err))
	} else {
		sum.Tables++
		log.Info("table reconstructed",
			zap.String("title", res.Table.Title),
			zap.Int("columns", res.Table.NumCols()),
			zap.Int("rows", len(res.Table.Rows)),
		)
	}

	if err := emit(res); err != nil {
		if errors.Is(err, ErrStopped) {
			sum.Stopped = true
			return true, nil
		}
		return true, err
	}
	return false, nil
}

// Extract runs the engine and collects every result
func (e *Engine) Extract(ctx context.Context, src layout.PageSource) ([]Result, Summary, error) {
	var results []Result
	sum, err := e.Run(ctx, src, func(r Result) error {
		results = append(results, r)
		return nil
	})
	return results, sum, err
}
