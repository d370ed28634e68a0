package column

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mmrzaf/dbfaker/internal/cache"
	"github.com/mmrzaf/dbfaker/internal/domain"
)

const (
	ModifierNoSpaces = "nospaces"
	ModifierString   = "string"
)

// ApplyModifiers runs each named transform over v in order.
func ApplyModifiers(modifiers []string, v any) (any, error) {
	var err error
	for _, m := range modifiers {
		if v, err = applyModifier(m, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func applyModifier(modifier string, v any) (any, error) {
	switch modifier {
	case ModifierNoSpaces:
		if v == nil {
			return nil, nil
		}
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, cache.Text(v)), nil
	case ModifierString:
		if v == nil {
			return nil, nil
		}
		return cache.Text(v), nil
	default:
		return nil, unknownModifier(modifier)
	}
}

func unknownModifier(modifier string) error {
	return fmt.Errorf("%w: %w: %q", domain.ErrConfiguration, domain.ErrUnknownModifier, modifier)
}

func validateModifiers(modifiers []string) error {
	for _, m := range modifiers {
		switch m {
		case ModifierNoSpaces, ModifierString:
		default:
			return unknownModifier(m)
		}
	}
	return nil
}
