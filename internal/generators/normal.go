package generators

import (
	"math/rand"
)

type NormalGenerator struct{}

func (g *NormalGenerator) Validate(params Params) error {
	if err := requireParams("normal", params, "mean", "std"); err != nil {
		return err
	}
	std, err := floatParam("normal", params, "std")
	if err != nil {
		return err
	}
	if std < 0 {
		return paramError("normal", "'std' must not be negative")
	}
	_, err = floatParam("normal", params, "mean")
	return err
}

func (g *NormalGenerator) Generate(rng *rand.Rand, params Params) (any, error) {
	if err := g.Validate(params); err != nil {
		return nil, err
	}
	mean, _ := floatParam("normal", params, "mean")
	std, _ := floatParam("normal", params, "std")
	return rng.NormFloat64()*std + mean, nil
}
