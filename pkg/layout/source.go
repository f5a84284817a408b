package layout

import (
	"context"
	"io"
)

// PageSource yields page layouts in document order. Next returns io.EOF
// once every page has been produced. A source is not restartable.
type PageSource interface {
	Next(ctx context.Context) (*Page, error)
}

// StaticSource serves pages that are already in memory
type StaticSource struct {
	pages []*Page
	next  int
}

// NewStaticSource creates a source over the given pages
func NewStaticSource(pages ...*Page) *StaticSource {
	return &StaticSource{pages: pages}
}

// Next returns the next page or io.EOF
func (s *StaticSource) Next(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.pages) {
		return nil, io.EOF
	}
	p := s.pages[s.next]
	s.next++
	return p, nil
}
