package layout

import (
	"fmt"
	"io"
	"os"

	gopdf "github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"
)

// Backend names a text extraction library
type Backend string

const (
	BackendAuto       Backend = "auto"
	BackendLedongthuc Backend = "ledongthuc"
	BackendDslipak    Backend = "dslipak"
)

// textBackend reads the positioned text of one page at a time.
// Implementations are not safe for concurrent use.
type textBackend interface {
	Name() Backend
	NumPage() int
	Glyphs(pageNumber int) ([]Glyph, error)
	Close() error
}

func openTextBackend(b Backend, path, password string) (textBackend, error) {
	switch b {
	case BackendLedongthuc:
		return openLedongthuc(path, password)
	case BackendDslipak:
		return openDslipak(path, password)
	case BackendAuto, "":
		tb, err := openLedongthuc(path, password)
		if err == nil {
			return tb, nil
		}
		fallback, ferr := openDslipak(path, password)
		if ferr != nil {
			return nil, fmt.Errorf("no text backend could open %s: %w", path, err)
		}
		return fallback, nil
	}
	return nil, fmt.Errorf("unknown text backend %q", b)
}

type ledongthucBackend struct {
	file   io.Closer
	reader *lpdf.Reader
}

func openLedongthuc(path, password string) (*ledongthucBackend, error) {
	if password == "" {
		f, r, err := lpdf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
		}
		return &ledongthucBackend{file: f, reader: r}, nil
	}

	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	r, err := lpdf.NewReaderEncrypted(f, size, passwordOnce(password))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &ledongthucBackend{file: f, reader: r}, nil
}

func (b *ledongthucBackend) Name() Backend { return BackendLedongthuc }

func (b *ledongthucBackend) NumPage() int { return b.reader.NumPage() }

func (b *ledongthucBackend) Glyphs(pageNumber int) (glyphs []Glyph, err error) {
	page := b.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", pageNumber)
	}
	// The reader panics on malformed content streams
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("failed to decode page %d text: %v", pageNumber, r)
		}
	}()

	content := page.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{Font: t.Font, Size: t.FontSize, X: t.X, Y: t.Y, W: t.W, S: t.S})
	}
	return glyphs, nil
}

func (b *ledongthucBackend) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}

type dslipakBackend struct {
	file   io.Closer
	reader *gopdf.Reader
}

func openDslipak(path, password string) (*dslipakBackend, error) {
	f, size, err := openSized(path)
	if err != nil {
		return nil, err
	}
	var r *gopdf.Reader
	if password == "" {
		r, err = gopdf.NewReader(f, size)
	} else {
		r, err = gopdf.NewReaderEncrypted(f, size, passwordOnce(password))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &dslipakBackend{file: f, reader: r}, nil
}

func (b *dslipakBackend) Name() Backend { return BackendDslipak }

func (b *dslipakBackend) NumPage() int { return b.reader.NumPage() }

func (b *dslipakBackend) Glyphs(pageNumber int) (glyphs []Glyph, err error) {
	page := b.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", pageNumber)
	}
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("failed to decode page %d text: %v", pageNumber, r)
		}
	}()

	content := page.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{Font: t.Font, Size: t.FontSize, X: t.X, Y: t.Y, W: t.W, S: t.S})
	}
	return glyphs, nil
}

func (b *dslipakBackend) Close() error {
	return b.file.Close()
}

func openSized(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return f, fi.Size(), nil
}

// passwordOnce offers the password a single time; the readers keep asking
// until the callback returns "".
func passwordOnce(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}
