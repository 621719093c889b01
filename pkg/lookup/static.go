package lookup

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Loader produces the full set of lookup data, keyed by lookup name.
type Loader func(ctx context.Context) (map[string]map[string]any, error)

// StaticService is an in-memory Service. RefreshAll replaces the data with
// whatever the loader returns.
type StaticService struct {
	mu     sync.RWMutex
	data   map[string]map[string]any
	loader Loader
}

// NewStaticService returns a service holding data. loader may be nil.
func NewStaticService(data map[string]map[string]any, loader Loader) *StaticService {
	s := &StaticService{data: make(map[string]map[string]any, len(data)), loader: loader}
	for name, value := range data {
		s.data[name] = value
	}
	return s
}

// NewFileService returns a service that loads path on refresh.
func NewFileService(path string) *StaticService {
	return NewStaticService(nil, func(context.Context) (map[string]map[string]any, error) {
		return LoadFile(path)
	})
}

// Members wraps items in the shape GetByName returns.
func Members(items ...any) map[string]any {
	if items == nil {
		items = []any{}
	}
	return map[string]any{"members": map[string]any{"members": items}}
}

// GetByName implements Service.
func (s *StaticService) GetByName(name string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[name]
	return value, ok
}

// HasAnyLoaded implements Service.
func (s *StaticService) HasAnyLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data) > 0
}

// Set registers data under name.
func (s *StaticService) Set(name string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
}

// RefreshAll implements Service. Without a loader it keeps the current data.
func (s *StaticService) RefreshAll(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	data, err := s.loader(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]map[string]any, len(data))
	for name, value := range data {
		s.data[name] = value
	}
	return nil
}

// LoadFile reads a lookup document: a mapping from lookup name to lookup
// data. The format follows the extension as for schema files.
func LoadFile(path string) (map[string]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lookup: read %s: %w", path, err)
	}
	var out map[string]map[string]any
	if err := schema.Unmarshal(raw, schema.FormatFromPath(path), &out); err != nil {
		return nil, fmt.Errorf("lookup: parse %s: %w", path, err)
	}
	return out, nil
}
