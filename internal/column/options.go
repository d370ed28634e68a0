package column

import (
	"fmt"

	"github.com/mmrzaf/dbfaker/internal/config"
)

// Options are the settings shared by every column variant.
type Options struct {
	Unique        bool     `json:"unique" yaml:"unique"`
	Optional      bool     `json:"optional" yaml:"optional"`
	Probability   float64  `json:"probability" yaml:"probability"`
	PreserveEmpty bool     `json:"preserveEmpty" yaml:"preserveEmpty"`
	Deterministic bool     `json:"deterministic" yaml:"deterministic"`
	Modifiers     []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

const DefaultProbability = 0.5

var optionKeys = map[string]struct{}{
	"type":            {},
	"unique":          {},
	"optional":        {},
	"probability":     {},
	"preserveEmpty":   {},
	"deterministic":   {},
	"modifiers":       {},
	"password":        {},
	"fakerMethod":     {},
	"fakerMethodArgs": {},
	"fakerPropname":   {},
}

func defaultOptions() map[string]any {
	return map[string]any{
		"unique":        false,
		"optional":      false,
		"probability":   DefaultProbability,
		"preserveEmpty": true,
		"deterministic": true,
		"modifiers":     []any{},
	}
}

// passwordDefaults always regenerate, even for empty originals.
func passwordDefaults() map[string]any {
	d := defaultOptions()
	d["password"] = passwordRandom
	d["preserveEmpty"] = false
	d["deterministic"] = false
	return d
}

func parseOptions(name string, cfg *config.Tree) (Options, error) {
	var (
		o   Options
		err error
	)
	if o.Unique, err = cfg.Bool("unique"); err != nil {
		return o, err
	}
	if o.Optional, err = cfg.Bool("optional"); err != nil {
		return o, err
	}
	if v, _ := cfg.Get("probability"); v == nil {
		o.Probability = DefaultProbability
	} else if o.Probability, err = cfg.Float("probability"); err != nil {
		return o, err
	}
	if o.Probability < 0 || o.Probability > 1 {
		return o, configErr(name, "probability must be between 0 and 1, got %v", o.Probability)
	}
	if o.PreserveEmpty, err = cfg.Bool("preserveEmpty"); err != nil {
		return o, err
	}
	if o.Deterministic, err = cfg.Bool("deterministic"); err != nil {
		return o, err
	}
	if o.Modifiers, err = cfg.StringSlice("modifiers"); err != nil {
		return o, err
	}
	if err := validateModifiers(o.Modifiers); err != nil {
		return o, fmt.Errorf("column %s: %w", name, err)
	}
	return o, nil
}

// customParams returns the keys that are not common options.
func customParams(cfg *config.Tree) map[string]any {
	out := make(map[string]any)
	for k, v := range cfg.Map() {
		if _, reserved := optionKeys[k]; !reserved {
			out[k] = v
		}
	}
	return out
}
