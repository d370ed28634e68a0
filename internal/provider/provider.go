package provider

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/mmrzaf/dbfaker/internal/domain"
)

// MaxUniqueRetries bounds how many times the unique source re-draws a
// value it has already produced for the same scope.
const MaxUniqueRetries = 10000

// ErrUniqueOverflow is returned alongside the last drawn value when the
// unique source could not find an unseen value.
var ErrUniqueOverflow = errors.New("maximum retries reached without finding a unique value")

// Func produces one value.
type Func func() (any, error)

// Source draws values from a Func under a generation mode.
type Source interface {
	Draw(scope string, gen Func) (any, error)
}

// Faker is the per-run value provider. It owns the random source, so two
// runs with the same seed and the same inputs produce the same values.
type Faker struct {
	caps *Capabilities
	rng  *rand.Rand
	seed int64
	seen map[string]map[string]struct{}
}

func New(caps *Capabilities, seed int64) *Faker {
	if caps == nil {
		caps = NewCapabilities()
	}
	rng := rand.New(rand.NewSource(seed))
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
	return &Faker{
		caps: caps,
		rng:  rng,
		seed: seed,
		seen: make(map[string]map[string]struct{}),
	}
}

func (f *Faker) Seed() int64                 { return f.seed }
func (f *Faker) Rand() *rand.Rand            { return f.rng }
func (f *Faker) Capabilities() *Capabilities { return f.caps }

// Property returns a generator bound to a zero-argument accessor.
func (f *Faker) Property(name string) (Func, error) {
	fn, ok := f.caps.property(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown faker property %q", domain.ErrConfiguration, name)
	}
	return func() (v any, err error) {
		defer recoverProvider(name, &err)
		return fn(f.rng), nil
	}, nil
}

// Method returns a generator bound to a method and its literal arguments.
func (f *Faker) Method(name string, args []any) (Func, error) {
	fn, ok := f.caps.method(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown faker method %q", domain.ErrConfiguration, name)
	}
	frozen := append([]any(nil), args...)
	return func() (v any, err error) {
		defer recoverProvider(name, &err)
		return fn(f.rng, frozen)
	}, nil
}

// faker/v4 panics on a few internal errors instead of returning them.
func recoverProvider(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("faker %s: %v", name, r)
	}
}

func (f *Faker) Plain() Source { return plainSource{} }

// Unique never returns a value twice for the same scope during the run,
// up to MaxUniqueRetries draws.
func (f *Faker) Unique() Source { return uniqueSource{f: f} }

// Optional returns nil with probability p without calling the generator.
func (f *Faker) Optional(p float64) Source { return optionalSource{f: f, p: p} }

// ResetUnique forgets every value produced in unique mode.
func (f *Faker) ResetUnique() {
	f.seen = make(map[string]map[string]struct{})
}

type plainSource struct{}

func (plainSource) Draw(_ string, gen Func) (any, error) { return gen() }

type optionalSource struct {
	f *Faker
	p float64
}

func (s optionalSource) Draw(_ string, gen Func) (any, error) {
	if s.f.rng.Float64() < s.p {
		return nil, nil
	}
	return gen()
}

type uniqueSource struct {
	f *Faker
}

func (s uniqueSource) Draw(scope string, gen Func) (any, error) {
	seen, ok := s.f.seen[scope]
	if !ok {
		seen = make(map[string]struct{})
		s.f.seen[scope] = seen
	}
	var (
		v   any
		err error
	)
	for i := 0; i < MaxUniqueRetries; i++ {
		v, err = gen()
		if err != nil {
			return nil, err
		}
		k := fmt.Sprintf("%T:%v", v, v)
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			return v, nil
		}
	}
	return v, fmt.Errorf("%w (scope %s)", ErrUniqueOverflow, scope)
}
