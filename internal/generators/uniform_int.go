package generators

import (
	"math/rand"
)

// UniformIntGenerator draws from [min, max).
type UniformIntGenerator struct{}

func (g *UniformIntGenerator) Validate(params Params) error {
	_, _, err := g.bounds(params)
	return err
}

func (g *UniformIntGenerator) bounds(params Params) (int64, int64, error) {
	if err := requireParams("uniform_int", params, "min", "max"); err != nil {
		return 0, 0, err
	}
	min, err := int64Param("uniform_int", params, "min")
	if err != nil {
		return 0, 0, err
	}
	max, err := int64Param("uniform_int", params, "max")
	if err != nil {
		return 0, 0, err
	}
	if max <= min {
		return 0, 0, paramError("uniform_int", "max (%d) must be greater than min (%d)", max, min)
	}
	return min, max, nil
}

func (g *UniformIntGenerator) Generate(rng *rand.Rand, params Params) (any, error) {
	min, max, err := g.bounds(params)
	if err != nil {
		return nil, err
	}
	return min + rng.Int63n(max-min), nil
}
