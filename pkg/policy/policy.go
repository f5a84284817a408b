// Package policy holds the document specific rules that decide where
// sections begin and end and which closed sections become tables.
package policy

import (
	"fmt"
	"regexp"

	"github.com/pyhub-apps/pdftables-golang/pkg/segment"
	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
)

// Disposition tells the engine what to do with a closed section
type Disposition int

const (
	// Process reconstructs the section
	Process Disposition = iota
	// Skip drops the section and continues
	Skip
	// Stop drops the section and ends the run
	Stop
)

func (d Disposition) String() string {
	switch d {
	case Process:
		return "process"
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("disposition(%d)", int(d))
}

// Policy supplies the section predicates for one document family and
// decides what happens to each closed section. Policies may keep state
// across calls and are used for a single run.
type Policy interface {
	segment.Predicates
	SectionClosed(sec *segment.Section) Disposition
	Name() string
}

// DefaultCaptionPattern matches table captions such as "Table 12. Pin description"
const DefaultCaptionPattern = `^\s*Table\b`

// Caption starts a section at every caption text and ends the open one
// there, so each caption owns everything up to the next caption
type Caption struct {
	Label   string
	Pattern *regexp.Regexp
}

// NewCaption compiles a caption policy
func NewCaption(label, pattern string) (*Caption, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid caption pattern %q: %w", pattern, err)
	}
	return &Caption{Label: label, Pattern: re}, nil
}

func (c *Caption) isCaption(s shape.Shape) bool {
	return s.IsText() && c.Pattern.MatchString(s.Text)
}

// SectionStart returns Before for caption text
func (c *Caption) SectionStart(s shape.Shape) segment.Boundary {
	if c.isCaption(s) {
		return segment.Before
	}
	return segment.NoBoundary
}

// SectionEnd returns Before for the next caption text
func (c *Caption) SectionEnd(s shape.Shape) segment.Boundary {
	return c.SectionStart(s)
}

// SectionClosed processes every section
func (c *Caption) SectionClosed(*segment.Section) Disposition {
	return Process
}

// Name returns the policy label
func (c *Caption) Name() string {
	return c.Label
}

type firstOnly struct {
	Policy
	closed int
}

// FirstOnly wraps a policy so that only the first closed section is
// processed; the run stops at the second one
func FirstOnly(p Policy) Policy {
	return &firstOnly{Policy: p}
}

func (f *firstOnly) SectionClosed(sec *segment.Section) Disposition {
	f.closed++
	if f.closed > 1 {
		return Stop
	}
	return f.Policy.SectionClosed(sec)
}
