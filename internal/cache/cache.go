package cache

import (
	"errors"

	"github.com/mmrzaf/dbfaker/internal/hashing"
	"github.com/mmrzaf/dbfaker/internal/logging"
	"github.com/mmrzaf/dbfaker/internal/provider"
)

// MaxRetries bounds how often a disabled value is re-drawn.
const MaxRetries = 10000

// Kind discriminates what produced a cached value.
type Kind string

const (
	KindProperty Kind = "p"
	KindMethod   Kind = "m"
	KindCustom   Kind = "c"
)

// Modes selects the generation mode wrappers. *provider.Faker satisfies it.
type Modes interface {
	Plain() provider.Source
	Unique() provider.Source
	Optional(p float64) provider.Source
}

type Request struct {
	Kind          Kind
	Name          string
	Args          []any
	Original      any
	Unique        bool
	Optional      bool
	Probability   float64
	Deterministic bool
	Disabled      *DisabledSet
}

// Key is the cache discriminator for a request.
func (r Request) Key() string {
	key := string(r.Kind) + ":" + r.Name
	if r.Kind != KindProperty {
		key += ":" + hashing.CanonicalArgs(r.Args)
	}
	return key
}

type Stats struct {
	Hits      int64
	Misses    int64
	Exhausted int64
}

// Cache maps (rule, original value) to a generated value for one run.
type Cache struct {
	modes   Modes
	logger  *logging.Logger
	entries map[string]map[string]any
	stats   Stats
}

func New(modes Modes, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cache{
		modes:   modes,
		logger:  logger,
		entries: make(map[string]map[string]any),
	}
}

// Generate returns a fake value for req, reusing the cached one for a
// deterministic request whose original was seen before. gen is the
// underlying provider call.
func (c *Cache) Generate(req Request, gen provider.Func) (any, error) {
	key := req.Key()
	original := Text(req.Original)
	cacheable := req.Deterministic && !IsBlank(req.Original)

	if cacheable {
		// A stored nil (an empty optional draw) is a miss.
		if v, ok := c.entries[key][original]; ok && v != nil && !req.Disabled.Contains(v) {
			c.stats.Hits++
			return v, nil
		}
	}
	c.stats.Misses++

	src := c.modes.Plain()
	switch {
	case req.Unique:
		src = c.modes.Unique()
	case req.Optional:
		src = c.modes.Optional(req.Probability)
	}

	var (
		v   any
		err error
		i   int
	)
	for {
		v, err = src.Draw(key, gen)
		if err != nil {
			if !errors.Is(err, provider.ErrUniqueOverflow) {
				return nil, err
			}
			c.logger.Warnw("cache.unique_exhausted", map[string]any{"rule": key, "error": err.Error()})
			break
		}
		i++
		if !req.Disabled.Contains(v) || i >= MaxRetries {
			break
		}
	}
	if req.Disabled.Contains(v) {
		c.stats.Exhausted++
		c.logger.Warnw("cache.retries_exhausted", map[string]any{
			"rule":     key,
			"retries":  MaxRetries,
			"value":    Text(v),
			"original": original,
		})
	}

	if cacheable {
		bucket, ok := c.entries[key]
		if !ok {
			bucket = make(map[string]any)
			c.entries[key] = bucket
		}
		bucket[original] = v
	}
	return v, nil
}

func (c *Cache) Stats() Stats { return c.stats }
