package generators

import "math/rand"

// ConstGenerator writes the configured value to every row.
type ConstGenerator struct{}

func (g *ConstGenerator) Validate(params Params) error {
	return requireParams("const", params, "value")
}

func (g *ConstGenerator) Generate(_ *rand.Rand, params Params) (any, error) {
	if err := g.Validate(params); err != nil {
		return nil, err
	}
	return params["value"], nil
}
