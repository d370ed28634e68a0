package generators

import (
	"math"
	"math/rand"
)

// UniformFloatGenerator draws from [min, max), optionally rounded to
// 'decimals' places.
type UniformFloatGenerator struct{}

func (g *UniformFloatGenerator) Validate(params Params) error {
	_, _, err := g.bounds(params)
	return err
}

func (g *UniformFloatGenerator) bounds(params Params) (float64, float64, error) {
	if err := requireParams("uniform_float", params, "min", "max"); err != nil {
		return 0, 0, err
	}
	min, err := floatParam("uniform_float", params, "min")
	if err != nil {
		return 0, 0, err
	}
	max, err := floatParam("uniform_float", params, "max")
	if err != nil {
		return 0, 0, err
	}
	if max < min {
		return 0, 0, paramError("uniform_float", "max (%v) must not be less than min (%v)", max, min)
	}
	return min, max, nil
}

func (g *UniformFloatGenerator) Generate(rng *rand.Rand, params Params) (any, error) {
	min, max, err := g.bounds(params)
	if err != nil {
		return nil, err
	}
	v := min + rng.Float64()*(max-min)
	if _, ok := params["decimals"]; ok {
		d, err := int64Param("uniform_float", params, "decimals")
		if err != nil {
			return nil, err
		}
		scale := math.Pow10(int(d))
		v = math.Round(v*scale) / scale
	}
	return v, nil
}
