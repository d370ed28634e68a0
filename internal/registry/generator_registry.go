package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/generators"
)

// ColumnRegistry maps custom column type names to their implementation.
type ColumnRegistry struct {
	mu         sync.RWMutex
	generators map[string]generators.Generator
}

func NewColumnRegistry() *ColumnRegistry {
	return &ColumnRegistry{
		generators: make(map[string]generators.Generator),
	}
}

func (r *ColumnRegistry) Register(name string, gen generators.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = gen
}

func (r *ColumnRegistry) Get(name string) (generators.Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: column type not found: %s", domain.ErrConfiguration, name)
	}
	return gen, nil
}

func (r *ColumnRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[name]
	return ok
}

func (r *ColumnRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DefaultColumnRegistry() *ColumnRegistry {
	r := NewColumnRegistry()
	r.Register("const", &generators.ConstGenerator{})
	r.Register("uuid4", &generators.UUID4Generator{})
	r.Register("uniform_int", &generators.UniformIntGenerator{})
	r.Register("uniform_float", &generators.UniformFloatGenerator{})
	r.Register("normal", &generators.NormalGenerator{})
	r.Register("choice", &generators.ChoiceGenerator{})
	r.Register("datetime", &generators.DateTimeGenerator{})
	return r
}
