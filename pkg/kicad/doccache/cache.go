// Package doccache keeps recently parsed schematic documents in memory so
// repeated queries against the same file skip the parse.
package doccache

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/schematic"
)

// DefaultSize is the number of documents kept when New is given size <= 0
const DefaultSize = 32

// stamp identifies one version of a file on disk
type stamp struct {
	size    int64
	modTime int64
}

type entry struct {
	stamp stamp
	doc   *schematic.Document
}

// Cache maps absolute schematic paths to their last parsed Document. An
// entry is reused only while the file size and modification time are
// unchanged. Safe for concurrent use; cached documents must not be modified.
type Cache struct {
	docs   *lru.Cache[string, entry]
	opts   []schematic.Option
	logger *slog.Logger
}

// New creates a cache holding up to size documents. opts are passed to
// every parse.
func New(size int, logger *slog.Logger, opts ...schematic.Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	docs, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}

	return &Cache{docs: docs, opts: opts, logger: logger}, nil
}

// Load returns the parsed document for path, parsing it when it is not
// cached or has changed on disk since it was cached.
func (c *Cache) Load(path string) (*schematic.Document, error) {
	abs, err := schematic.ValidateFile(path, schematic.Extension)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	st := stamp{size: info.Size(), modTime: info.ModTime().UnixNano()}

	if cached, ok := c.docs.Get(abs); ok {
		if cached.stamp == st {
			return cached.doc, nil
		}
		c.logger.Debug("schematic changed on disk, re-reading", "path", abs)
	}

	doc, err := schematic.ParseFile(abs, c.opts...)
	if err != nil {
		return nil, err
	}

	c.docs.Add(abs, entry{stamp: st, doc: doc})
	return doc, nil
}

// Forget drops the cached document for path, if any
func (c *Cache) Forget(path string) {
	if abs, err := schematic.ValidateFile(path, schematic.Extension); err == nil {
		c.docs.Remove(abs)
	}
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	return c.docs.Len()
}
