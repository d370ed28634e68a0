package generators

import (
	"math/rand"

	"github.com/spf13/cast"
)

// ChoiceGenerator picks one of 'values', weighted by the optional
// 'weights' list.
type ChoiceGenerator struct{}

func (g *ChoiceGenerator) Validate(params Params) error {
	_, _, err := g.parse(params)
	return err
}

func (g *ChoiceGenerator) parse(params Params) ([]any, []float64, error) {
	if err := requireParams("choice", params, "values"); err != nil {
		return nil, nil, err
	}
	values, err := listParam("choice", params, "values")
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, paramError("choice", "'values' cannot be empty")
	}
	if _, hasWeights := params["weights"]; !hasWeights {
		return values, nil, nil
	}

	rawWeights, err := listParam("choice", params, "weights")
	if err != nil {
		return nil, nil, err
	}
	if len(rawWeights) != len(values) {
		return nil, nil, paramError("choice", "'weights' and 'values' must have the same length")
	}
	weights := make([]float64, len(rawWeights))
	total := 0.0
	for i, w := range rawWeights {
		f, err := cast.ToFloat64E(w)
		if err != nil || f < 0 {
			return nil, nil, paramError("choice", "invalid weight: %v", w)
		}
		weights[i] = f
		total += f
	}
	if total == 0 {
		return nil, nil, paramError("choice", "total weight is zero")
	}
	return values, weights, nil
}

func (g *ChoiceGenerator) Generate(rng *rand.Rand, params Params) (any, error) {
	values, weights, err := g.parse(params)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		return values[rng.Intn(len(values))], nil
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumWeight := 0.0
	for i, w := range weights {
		cumWeight += w
		if r < cumWeight {
			return values[i], nil
		}
	}
	return values[len(values)-1], nil
}
