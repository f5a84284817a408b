package layout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/sync/errgroup"
)

// Options configures OpenFile
type Options struct {
	Backend   Backend // text backend, BackendAuto by default
	Password  string
	Workers   int // parallel page builders, 1 when unset
	ReadAhead int // pages built per window, Workers when unset
	Build     BuildOptions
}

// DefaultOptions returns the options used by OpenFile when none are given
func DefaultOptions() Options {
	return Options{
		Backend:   BackendAuto,
		Workers:   1,
		ReadAhead: 1,
		Build:     DefaultBuildOptions(),
	}
}

// Document is a PDF file opened as a PageSource. Page geometry and graphics
// come from pdfcpu, text from the configured text backend.
type Document struct {
	path string
	ctx  *model.Context
	text textBackend
	opts Options

	// mu serialises raw decoding; neither pdfcpu's context nor the text
	// readers are safe for concurrent use
	mu       sync.Mutex
	fallback textBackend

	next    int
	pending []*Page
}

// OpenFile opens and validates a PDF file
func OpenFile(path string, opts Options) (*Document, error) {
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ReadAhead < 1 {
		opts.ReadAhead = opts.Workers
	}
	if opts.Build == (BuildOptions{}) {
		opts.Build = DefaultBuildOptions()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	text, err := openTextBackend(opts.Backend, path, opts.Password)
	if err != nil {
		return nil, err
	}

	return &Document{path: path, ctx: ctx, text: text, opts: opts}, nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// TextBackend reports which library produces the text runs
func (d *Document) TextBackend() Backend {
	return d.text.Name()
}

// Next builds and returns the next page. Up to ReadAhead pages are built at
// once by Workers goroutines; pages are still returned in order.
func (d *Document) Next(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.pending) == 0 {
		if d.next >= d.PageCount() {
			return nil, io.EOF
		}
		if err := d.fill(ctx); err != nil {
			return nil, err
		}
	}
	p := d.pending[0]
	d.pending = d.pending[1:]
	return p, nil
}

func (d *Document) fill(ctx context.Context) error {
	first := d.next + 1
	last := min(d.next+d.opts.ReadAhead, d.PageCount())
	window := make([]*Page, last-first+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i := first; i <= last; i++ {
		pageNumber := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := d.buildPage(pageNumber)
			if err != nil {
				return err
			}
			window[pageNumber-first] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	d.next = last
	d.pending = window
	return nil
}

// buildPage decodes one page under the lock and assembles its layout tree
func (d *Document) buildPage(pageNumber int) (*Page, error) {
	width, height, content, glyphs, err := d.decodePage(pageNumber)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNumber, err)
	}

	graphics := CollectGraphics(content)
	graphics = FilterPageBorder(DeduplicateGraphics(graphics), width, height)

	root := NewGroup(KindGroup)
	if len(graphics) > 0 {
		root.Add(NewGroup(KindFigure, graphics...))
	}
	for _, box := range BuildTextBoxes(glyphs, d.opts.Build) {
		root.Add(box)
	}

	return &Page{Number: pageNumber, Width: width, Height: height, Root: root}, nil
}

func (d *Document) decodePage(pageNumber int) (width, height float64, content []byte, glyphs []Glyph, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pageDict, _, attrs, err := d.ctx.PageDict(pageNumber, false)
	if err != nil {
		return 0, 0, nil, nil, fmt.Errorf("failed to get page dict: %w", err)
	}

	// Default US Letter size
	width, height = 612, 792
	if attrs != nil && attrs.MediaBox != nil {
		width = attrs.MediaBox.Width()
		height = attrs.MediaBox.Height()
	}

	content, err = d.contentStream(pageDict)
	if err != nil {
		return 0, 0, nil, nil, err
	}

	glyphs, err = d.text.Glyphs(pageNumber)
	if err != nil && d.opts.Backend == BackendAuto && d.text.Name() != BackendDslipak {
		glyphs, err = d.fallbackGlyphs(pageNumber)
	}
	if err != nil {
		return 0, 0, nil, nil, err
	}
	return width, height, content, glyphs, nil
}

// fallbackGlyphs retries a page the primary reader could not decode
func (d *Document) fallbackGlyphs(pageNumber int) ([]Glyph, error) {
	if d.fallback == nil {
		fb, err := openDslipak(d.path, d.opts.Password)
		if err != nil {
			return nil, err
		}
		d.fallback = fb
	}
	return d.fallback.Glyphs(pageNumber)
}

// contentStream returns the decoded and concatenated page content streams
func (d *Document) contentStream(pageDict types.Dict) ([]byte, error) {
	contents := pageDict["Contents"]
	if contents == nil {
		return nil, nil
	}

	var refs []types.IndirectRef
	switch v := contents.(type) {
	case *types.IndirectRef:
		refs = append(refs, *v)
	case types.IndirectRef:
		refs = append(refs, v)
	case types.Array:
		for _, item := range v {
			switch ref := item.(type) {
			case *types.IndirectRef:
				refs = append(refs, *ref)
			case types.IndirectRef:
				refs = append(refs, ref)
			}
		}
	}

	var combined []byte
	for _, ref := range refs {
		stream, _, err := d.ctx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference content: %w", err)
		}
		if stream == nil {
			continue
		}
		if len(stream.Content) == 0 {
			if err := stream.Decode(); err != nil {
				return nil, fmt.Errorf("failed to decode stream: %w", err)
			}
		}
		combined = append(combined, stream.Content...)
		combined = append(combined, '\n')
	}
	return combined, nil
}

// Close releases the underlying readers
func (d *Document) Close() error {
	var err error
	if d.text != nil {
		err = d.text.Close()
	}
	if d.fallback != nil {
		if ferr := d.fallback.Close(); err == nil {
			err = ferr
		}
	}
	d.ctx = nil
	d.pending = nil
	return err
}
