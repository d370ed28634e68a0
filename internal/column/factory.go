package column

import (
	"strings"

	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/generators"
)

// New builds the rule for one column from its config entry, which is a
// type string or a mapping with a "type" key.
//
// The type may carry a "|mod|mod" suffix, or be a structured call
// ({method: [args]}) or chain ([{method: [args]}, "|mods"]). The base
// type resolves to a keyword, then a registered custom type, and
// otherwise names a provider property.
func New(name string, raw any, env *Env) (Rule, error) {
	cfg, err := columnConfig(name, raw)
	if err != nil {
		return nil, err
	}
	typeVal, err := cfg.Get("type")
	if err != nil {
		return nil, configErr(name, "type is not configured")
	}

	overrides := cfg.Map()
	modifiers, err := cfg.StringSlice("modifiers")
	if err != nil && cfg.Has("modifiers") {
		return nil, err
	}

	var baseType string
	switch t := typeVal.(type) {
	case string:
		var suffix []string
		baseType, suffix = splitModifiers(t)
		modifiers = append(modifiers, suffix...)
	case *config.Tree:
		method, args, err := parseCall(name, t)
		if err != nil {
			return nil, err
		}
		baseType = TypeMethod
		overrides["fakerMethod"] = method
		overrides["fakerMethodArgs"] = args
	case []any:
		method, args, suffix, err := parseChain(name, t)
		if err != nil {
			return nil, err
		}
		baseType = TypeMethod
		overrides["fakerMethod"] = method
		overrides["fakerMethodArgs"] = args
		modifiers = append(modifiers, suffix...)
	default:
		return nil, configErr(name, "type must be a string, a call mapping or a call chain, got %T", typeVal)
	}
	if !hasText(baseType) {
		return nil, configErr(name, "type is empty")
	}

	mods := make([]any, len(modifiers))
	for i, m := range modifiers {
		mods[i] = m
	}
	overrides["modifiers"] = mods
	overrides["type"] = baseType

	return build(name, baseType, overrides, env)
}

func columnConfig(name string, raw any) (*config.Tree, error) {
	switch v := raw.(type) {
	case string:
		return config.NewTree(map[string]any{"type": v}), nil
	case *config.Tree:
		return v, nil
	case map[string]any:
		return config.NewTree(v), nil
	default:
		return nil, configErr(name, "column config must be a type string or a mapping, got %T", raw)
	}
}

// splitModifiers splits "type|mod1| mod2" into the base type and the
// trimmed, non-empty modifier names.
func splitModifiers(t string) (string, []string) {
	base, suffix, found := strings.Cut(t, "|")
	if !found {
		return strings.TrimSpace(t), nil
	}
	var mods []string
	for _, m := range strings.Split(suffix, "|") {
		if m = strings.TrimSpace(m); m != "" {
			mods = append(mods, m)
		}
	}
	return strings.TrimSpace(base), mods
}

func parseCall(name string, call *config.Tree) (string, []any, error) {
	if call.Len() != 1 {
		return "", nil, configErr(name, "call must have exactly one method, got %d keys", call.Len())
	}
	method := call.Keys()[0]
	raw, _ := call.Get(method)
	switch args := raw.(type) {
	case nil:
		return method, []any{}, nil
	case []any:
		for _, a := range args {
			if _, nested := a.(*config.Tree); nested {
				return "", nil, configErr(name, "arguments of %s must be literals", method)
			}
		}
		return method, args, nil
	case *config.Tree:
		return "", nil, configErr(name, "arguments of %s must be a list", method)
	default:
		return method, []any{args}, nil
	}
}

func parseChain(name string, chain []any) (string, []any, []string, error) {
	if len(chain) != 2 {
		return "", nil, nil, configErr(name, "call chain must have 2 elements (call, modifiers), got %d", len(chain))
	}
	call, ok := chain[0].(*config.Tree)
	if !ok {
		return "", nil, nil, configErr(name, "first chain element must be a call mapping, got %T", chain[0])
	}
	suffix, ok := chain[1].(string)
	if !ok || !strings.HasPrefix(strings.TrimSpace(suffix), "|") {
		return "", nil, nil, configErr(name, "second chain element must be a modifier string starting with '|'")
	}
	method, args, err := parseCall(name, call)
	if err != nil {
		return "", nil, nil, err
	}
	_, mods := splitModifiers(strings.TrimSpace(suffix))
	return method, args, mods, nil
}

func build(name, baseType string, overrides map[string]any, env *Env) (Rule, error) {
	cfg := config.NewTree(overrides)

	switch baseType {
	case TypeEmpty:
		opts, err := parseOptions(name, cfg.WithDefaults(defaultOptions()))
		if err != nil {
			return nil, err
		}
		return &EmptyColumn{base: newBase(name, TypeEmpty, opts, env)}, nil

	case TypeHostname:
		opts, err := parseOptions(name, cfg.WithDefaults(defaultOptions()))
		if err != nil {
			return nil, err
		}
		return &HostnameColumn{base: newBase(name, TypeHostname, opts, env)}, nil

	case TypeMD5Password, TypeSHA1Password, TypeSHA256Password:
		withDefaults := cfg.WithDefaults(passwordDefaults())
		opts, err := parseOptions(name, withDefaults)
		if err != nil {
			return nil, err
		}
		password, err := withDefaults.String("password")
		if err != nil {
			return nil, err
		}
		return &PasswordColumn{
			base:     newBase(name, baseType, opts, env),
			password: password,
			digest:   passwordDigests[baseType],
		}, nil

	case TypeMethod, typeSimpleFakerMethod:
		return buildMethod(name, cfg, env)

	case TypeProperty, typeSimpleFakerPropname:
		propname, _ := cfg.String("fakerPropname")
		return buildProperty(name, propname, cfg, env)
	}

	if env.Registry != nil && env.Registry.Has(baseType) {
		return buildCustom(name, baseType, cfg, env)
	}
	return buildProperty(name, baseType, cfg, env)
}

func buildMethod(name string, cfg *config.Tree, env *Env) (Rule, error) {
	withDefaults := cfg.WithDefaults(defaultOptions())
	opts, err := parseOptions(name, withDefaults)
	if err != nil {
		return nil, err
	}
	method, _ := withDefaults.String("fakerMethod")
	if !hasText(method) {
		return nil, configErr(name, "fakerMethod is not configured")
	}
	if !env.Faker.Capabilities().HasMethod(method) {
		return nil, configErr(name, "invalid fakerMethod %q", method)
	}
	var args []any
	if raw, err := withDefaults.Get("fakerMethodArgs"); err == nil && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			list = []any{raw}
		}
		args = list
	}
	return &MethodColumn{base: newBase(name, TypeMethod, opts, env), method: method, args: args}, nil
}

func buildProperty(name, propname string, cfg *config.Tree, env *Env) (Rule, error) {
	opts, err := parseOptions(name, cfg.WithDefaults(defaultOptions()))
	if err != nil {
		return nil, err
	}
	if !hasText(propname) {
		return nil, configErr(name, "fakerPropname is not configured")
	}
	if !env.Faker.Capabilities().HasProperty(propname) {
		return nil, configErr(name, "invalid fakerPropname %q", propname)
	}
	return &PropertyColumn{base: newBase(name, TypeProperty, opts, env), propname: propname}, nil
}

func buildCustom(name, typ string, cfg *config.Tree, env *Env) (Rule, error) {
	opts, err := parseOptions(name, cfg.WithDefaults(defaultOptions()))
	if err != nil {
		return nil, err
	}
	gen, err := env.Registry.Get(typ)
	if err != nil {
		return nil, err
	}
	params := generators.Params(customParams(cfg))
	if err := gen.Validate(params); err != nil {
		return nil, configErr(name, "%v", err)
	}
	return &CustomColumn{base: newBase(name, typ, opts, env), gen: gen, params: params}, nil
}
