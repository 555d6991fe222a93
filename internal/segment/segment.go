// Package segment defines the shared segmenter contract (C4's registry) and
// the types both the line segmenter (internal/segment/linesegmenter) and the
// tree-sitter segmenter (internal/segment/treesitter) produce.
package segment

import (
	"sort"
	"sync"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/model"
)

// Options bounds a segmentation run. MaxTokens is optional; zero means no
// token bound is enforced.
type Options struct {
	MaxChunkSize int // line bound, default 50
	MinChunkSize int // line bound, default 10
	MaxTokens    int // token bound, 0 = unbounded
	Merge        bool
	// LengthFunc counts tokens in text. Required whenever MaxTokens > 0.
	LengthFunc func(text string) (int, error)
}

// DefaultOptions returns the spec's default line/token bounds.
func DefaultOptions() Options {
	return Options{
		MaxChunkSize: 50,
		MinChunkSize: 10,
		Merge:        true,
	}
}

// Segmenter produces CodeSegments from source text. Invalid returns true
// only for segmenters that can detect unsound input (tree-sitter); the line
// segmenter never reports invalid.
type Segmenter interface {
	// Segment splits text into CodeSegments, in non-decreasing start-line
	// order, skipping whitespace-only regions.
	Segment(text string, opts Options) ([]model.CodeSegment, error)
	// Invalid parses text and reports whether it is syntactically unsound
	// (e.g. an ERROR node). Segmenters that cannot detect this (the line
	// segmenter) always return false.
	Invalid(text string) bool
}

// Factory builds a Segmenter for one registered extension.
type Factory func() Segmenter

// Registry is C4: an extension -> Factory map populated at startup by
// language modules, first-registration-wins.
type Registry struct {
	mu   sync.RWMutex
	exts map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exts: make(map[string]Factory)}
}

// Register binds ext (including the leading dot, e.g. ".go") to factory.
// If ext is already bound, Register is a no-op: first registration wins.
func (r *Registry) Register(ext string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.exts[ext]; exists {
		return
	}
	r.exts[ext] = factory
}

// Get returns a fresh Segmenter for ext, or UnsupportedExtension if no
// language module has registered it.
func (r *Registry) Get(ext string) (Segmenter, error) {
	r.mu.RLock()
	factory, ok := r.exts[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, cverrors.UnsupportedExtension(ext)
	}
	return factory(), nil
}

// SupportedExtensions returns the set of bound extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.exts))
	for ext := range r.exts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
