package schematic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the canonical schematic file extension
const Extension = ".kicad_sch"

var (
	// ErrNotFound is returned when the schematic path does not exist
	ErrNotFound = errors.New("file not found")
	// ErrFormatMismatch is returned when the path is not a schematic file
	ErrFormatMismatch = errors.New("unexpected file type")
)

// ValidateFile checks that path exists and carries the expected extension
// (case-insensitive). It returns the absolute path.
func ValidateFile(path, ext string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if got := filepath.Ext(abs); !strings.EqualFold(got, ext) {
		return "", fmt.Errorf("%w: expected %s file, got %q: %s", ErrFormatMismatch, ext, got, path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrFormatMismatch, path)
	}

	return abs, nil
}

// ParseFile validates, reads and parses a KiCad schematic file
func ParseFile(path string, opts ...Option) (*Document, error) {
	p, err := NewParser(path, opts...)
	if err != nil {
		return nil, err
	}
	return p.Document()
}

// Parser reads one schematic file on first use and keeps the result for
// its lifetime. A Parser is meant for one call chain; it is not safe for
// concurrent use. Construct a new Parser to pick up file changes.
type Parser struct {
	path string
	opts []Option
	doc  *Document
}

// NewParser validates path. No file content is read until the first query.
func NewParser(path string, opts ...Option) (*Parser, error) {
	abs, err := ValidateFile(path, Extension)
	if err != nil {
		return nil, err
	}
	return &Parser{path: abs, opts: opts}, nil
}

// Path returns the absolute schematic path
func (p *Parser) Path() string {
	return p.path
}

// Document returns the parsed document, reading the file on first call
func (p *Parser) Document() (*Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}

	file, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p.path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file, p.opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.path, err)
	}
	doc.Path = p.path

	p.doc = doc
	return doc, nil
}

// Components returns all placed components
func (p *Parser) Components() ([]Component, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return doc.Components, nil
}

// Labels returns the deduplicated net labels
func (p *Parser) Labels() ([]Label, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return doc.Labels, nil
}

// Sheets returns the hierarchical sheet references
func (p *Parser) Sheets() ([]Sheet, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return doc.Sheets, nil
}

// TitleBlock returns the title block, zero-valued when absent
func (p *Parser) TitleBlock() (TitleBlock, error) {
	doc, err := p.Document()
	if err != nil {
		return TitleBlock{}, err
	}
	return doc.TitleBlock, nil
}

// ComponentByReference looks up a component by reference designator
func (p *Parser) ComponentByReference(ref string) (Component, bool, error) {
	doc, err := p.Document()
	if err != nil {
		return Component{}, false, err
	}
	c, ok := doc.ComponentByReference(ref)
	return c, ok, nil
}

// SearchComponents matches reference, value and library id against pattern
func (p *Parser) SearchComponents(pattern string) ([]Component, error) {
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	return doc.SearchComponents(pattern)
}
