package generators

import (
	"fmt"
	"math/rand"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/spf13/cast"
)

// Params are the column options left after the common rule options are
// removed, e.g. {min: 1, max: 10} for uniform_int.
type Params map[string]any

// Generator is a custom column implementation selected by its registered
// type name.
type Generator interface {
	Validate(params Params) error
	Generate(rng *rand.Rand, params Params) (any, error)
}

func paramError(gen, format string, a ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrConfiguration, gen, fmt.Sprintf(format, a...))
}

func requireParams(gen string, params Params, names ...string) error {
	for _, n := range names {
		if _, ok := params[n]; !ok {
			return paramError(gen, "requires '%s' param", n)
		}
	}
	return nil
}

func floatParam(gen string, params Params, name string) (float64, error) {
	v, err := cast.ToFloat64E(params[name])
	if err != nil {
		return 0, paramError(gen, "'%s' must be a number: %v", name, err)
	}
	return v, nil
}

func int64Param(gen string, params Params, name string) (int64, error) {
	v, err := cast.ToInt64E(params[name])
	if err != nil {
		return 0, paramError(gen, "'%s' must be an integer: %v", name, err)
	}
	return v, nil
}

func listParam(gen string, params Params, name string) ([]any, error) {
	v, ok := params[name].([]any)
	if !ok {
		return nil, paramError(gen, "'%s' must be a list", name)
	}
	return v, nil
}
