package column

import (
	"fmt"

	"github.com/mmrzaf/dbfaker/internal/cache"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/logging"
	"github.com/mmrzaf/dbfaker/internal/provider"
	"github.com/mmrzaf/dbfaker/internal/registry"
)

// Type keywords.
const (
	TypeEmpty          = "empty"
	TypeHostname       = "hostname"
	TypeMD5Password    = "md5password"
	TypeSHA1Password   = "sha1password"
	TypeSHA256Password = "sha256password"
	TypeMethod         = "method"
	TypeProperty       = "property"

	// Long names accepted for configs written for the original tool.
	typeSimpleFakerMethod   = "simpleFakerMethod"
	typeSimpleFakerPropname = "simpleFakerPropname"
)

// Rule produces the fake replacement for one column.
type Rule interface {
	Name() string
	Type() string
	Options() Options
	// Disabled holds the values this column must not receive. It is
	// seeded from existing data for unique columns.
	Disabled() *cache.DisabledSet
	FakeValue(original any) (any, error)
}

// Env carries the per-run collaborators every rule draws from.
type Env struct {
	Faker    *provider.Faker
	Cache    *cache.Cache
	Registry *registry.ColumnRegistry
}

func NewEnv(f *provider.Faker, reg *registry.ColumnRegistry, logger *logging.Logger) *Env {
	if reg == nil {
		reg = registry.DefaultColumnRegistry()
	}
	return &Env{
		Faker:    f,
		Cache:    cache.New(f, logger),
		Registry: reg,
	}
}

type base struct {
	name     string
	typ      string
	opts     Options
	disabled *cache.DisabledSet
	env      *Env
}

func newBase(name, typ string, opts Options, env *Env) base {
	return base{
		name:     name,
		typ:      typ,
		opts:     opts,
		disabled: cache.NewDisabledSet(),
		env:      env,
	}
}

func (b *base) Name() string                  { return b.name }
func (b *base) Type() string                  { return b.typ }
func (b *base) Options() Options              { return b.opts }
func (b *base) Disabled() *cache.DisabledSet { return b.disabled }

// fake applies the preserve-empty short circuit and the modifier pipeline
// around a variant generator.
func (b *base) fake(original any, gen func(original any) (any, error)) (any, error) {
	if b.opts.PreserveEmpty && cache.IsBlank(original) {
		return original, nil
	}
	v, err := gen(original)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", b.name, err)
	}
	return ApplyModifiers(b.opts.Modifiers, v)
}

func (b *base) request(kind cache.Kind, name string, args []any, original any) cache.Request {
	return cache.Request{
		Kind:          kind,
		Name:          name,
		Args:          args,
		Original:      original,
		Unique:        b.opts.Unique,
		Optional:      b.opts.Optional,
		Probability:   b.opts.Probability,
		Deterministic: b.opts.Deterministic,
		Disabled:      b.disabled,
	}
}

func (b *base) property(name string) (provider.Func, error) {
	gen, err := b.env.Faker.Property(name)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", b.name, err)
	}
	return gen, nil
}

func configErr(column, format string, a ...any) error {
	return fmt.Errorf("%w: column %s: %s", domain.ErrConfiguration, column, fmt.Sprintf(format, a...))
}
