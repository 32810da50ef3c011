package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/cache"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/render"
	"github.com/google/uuid"
)

// MiniBookOutput is one imposed sheet
type MiniBookOutput struct {
	ID         string
	Data       []byte
	Layout     *imposition.SignatureLayout
	Placements []imposition.Placement // nil when served from cache
	FromCache  bool
}

// MiniBook imposes source documents with a signature layout, caching the
// serialized sheets when a cache is configured.
type MiniBook struct {
	validator *Validator
	imposer   *imposition.Imposer
	cache     cache.Cache
	newID     func() string
}

// NewMiniBook creates the imposition component. A nil layout selects the
// built-in minibook; a nil cache disables caching.
func NewMiniBook(validator *Validator, layout *imposition.SignatureLayout, c cache.Cache) (*MiniBook, error) {
	imposer, err := imposition.NewImposer(layout, render.NewRenderer())
	if err != nil {
		return nil, fmt.Errorf("failed to create imposer: %w", err)
	}

	return &MiniBook{
		validator: validator,
		imposer:   imposer,
		cache:     c,
		newID:     uuid.NewString,
	}, nil
}

// Layout returns the active signature layout
func (m *MiniBook) Layout() *imposition.SignatureLayout {
	return m.imposer.Layout()
}

// ReadSource loads a source document from disk after the file checks
func (m *MiniBook) ReadSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := m.validator.ValidateFileInfo(path, info); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Impose produces the serialized sheet for source.
func (m *MiniBook) Impose(ctx context.Context, source []byte) (*MiniBookOutput, error) {
	if err := m.validator.ValidateBytes(source); err != nil {
		return nil, err
	}

	id := m.newID()
	layout := m.Layout()

	var key string
	if m.cache != nil {
		key = cache.Key(source, layout.Digest())
		data, ok, err := m.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[%s] cache lookup failed: %v", id, err)
		}
		if ok {
			return &MiniBookOutput{ID: id, Data: data, Layout: layout, FromCache: true}, nil
		}
	}

	doc, err := render.OpenBytes(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var buf bytes.Buffer
	result, err := m.imposer.ImposeTo(&buf, doc)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Put(ctx, key, buf.Bytes()); err != nil {
			log.Printf("[%s] cache store failed: %v", id, err)
		}
	}

	return &MiniBookOutput{
		ID:         id,
		Data:       buf.Bytes(),
		Layout:     layout,
		Placements: result.Placements,
	}, nil
}

// Plan computes the placements for source without drawing.
func (m *MiniBook) Plan(source []byte) ([]imposition.Placement, error) {
	if err := m.validator.ValidateBytes(source); err != nil {
		return nil, err
	}

	doc, err := render.OpenBytes(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return m.imposer.Plan(doc)
}

// CacheStats returns the cache counters, or nil without a cache
func (m *MiniBook) CacheStats() *cache.Stats {
	if m.cache == nil {
		return nil
	}
	stats := m.cache.Stats()
	return &stats
}

// Close releases the cache backend
func (m *MiniBook) Close() error {
	if m.cache == nil {
		return nil
	}
	return m.cache.Close()
}
