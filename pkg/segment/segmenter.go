package segment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// Segmenter drives Step over whole pages and keeps the state between them
type Segmenter struct {
	predicates   Predicates
	logger       *zap.Logger
	maxLineWidth float64

	state   State
	started bool
}

// New creates a segmenter. A nil logger discards output.
func New(p Predicates, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{predicates: p, logger: logger, maxLineWidth: shape.DefaultMaxLineWidth}
}

// SetMaxLineWidth changes the threshold used in shape trace lines
func (s *Segmenter) SetMaxLineWidth(w float64) {
	s.maxLineWidth = w
}

// Feed segments one page of shapes in reading order and returns the
// sections it closed
func (s *Segmenter) Feed(page int, shapes []shape.Shape) []*Section {
	if s.started {
		s.state = PageBreak(s.state)
	}
	s.started = true
	s.state.Page = page

	var closed []*Section
	for _, b := range shapes {
		wasInside := s.state.Inside
		var sec *Section
		s.state, sec = Step(s.state, b, s.predicates)

		if ce := s.logger.Check(zap.DebugLevel, "shape"); ce != nil {
			ce.Write(
				zap.Int("page", page),
				zap.Stringer("shape", describer{b, s.maxLineWidth}),
				zap.Bool("inside", s.state.Inside),
			)
		}
		if sec != nil {
			s.logger.Info("section end",
				zap.Int("section", sec.Index),
				zap.Int("start_page", sec.StartPage),
				zap.Int("end_page", sec.EndPage),
				zap.Int("shapes", len(sec.Shapes)),
			)
			closed = append(closed, sec)
		}
		if s.state.Inside && (!wasInside || sec != nil) {
			s.logger.Info("section start", zap.Int("page", page), zap.String("boundary", b.Text))
		}
	}
	return closed
}

// Finish flushes a section still open at the end of input. The returned
// error wraps ErrUnterminatedSection when a section had to be flushed.
func (s *Segmenter) Finish() (*Section, error) {
	var sec *Section
	s.state, sec = Flush(s.state)
	if sec == nil {
		return nil, nil
	}
	s.logger.Warn("section not terminated before end of input",
		zap.Int("section", sec.Index),
		zap.Int("start_page", sec.StartPage),
		zap.Int("shapes", len(sec.Shapes)),
	)
	return sec, fmt.Errorf("section %d from page %d: %w", sec.Index, sec.StartPage, ErrUnterminatedSection)
}

// Stats returns the shape counters so far
func (s *Segmenter) Stats() Stats {
	return s.state.Stats
}

// Inside reports whether a section is open
func (s *Segmenter) Inside() bool {
	return s.state.Inside
}

type describer struct {
	s     shape.Shape
	width float64
}

func (d describer) String() string {
	return d.s.Describe(d.width)
}
