package column

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mmrzaf/dbfaker/internal/config"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/provider"
)

type blankDomains struct{}

func (blankDomains) Name() string { return "blank-domains" }
func (blankDomains) Properties() map[string]provider.PropertyFunc {
	return map[string]provider.PropertyFunc{
		"domainName": func(*rand.Rand) any { return "   " },
	}
}
func (blankDomains) Methods() map[string]provider.MethodFunc { return nil }

func testEnv(exts ...provider.Extension) *Env {
	return NewEnv(provider.New(provider.NewCapabilities(exts...), 42), nil, nil)
}

func mustRule(t *testing.T, name string, raw any, env *Env) Rule {
	t.Helper()
	r, err := New(name, raw, env)
	if err != nil {
		t.Fatalf("New(%s): %v", name, err)
	}
	return r
}

func mustParse(t *testing.T, src string) *config.Tree {
	t.Helper()
	tree, err := config.ParseYAML([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestDeterministicColumnReusesValueForSameOriginal(t *testing.T) {
	r := mustRule(t, "name", "name", testEnv())
	a, err := r.FakeValue("John Smith")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.FakeValue("John Smith")
	if a != b {
		t.Fatalf("expected identical fake values, got %v and %v", a, b)
	}
	if a == "John Smith" {
		t.Fatal("expected original to be replaced")
	}
}

func TestPreserveEmptyReturnsOriginal(t *testing.T) {
	env := testEnv()
	for _, raw := range []any{
		"email",
		mustParse(t, "type: email\nunique: true\ndeterministic: false\n"),
		"uuid4",
	} {
		r := mustRule(t, "c", raw, env)
		for _, original := range []any{"", "   ", nil} {
			got, err := r.FakeValue(original)
			if err != nil {
				t.Fatal(err)
			}
			if got != original {
				t.Fatalf("%v: expected original %q preserved, got %v", raw, original, got)
			}
		}
	}
}

func TestModifiers(t *testing.T) {
	got, err := ApplyModifiers([]string{ModifierNoSpaces}, "foo bar")
	if err != nil || got != "foobar" {
		t.Fatalf("expected foobar, got %v (%v)", got, err)
	}
	got, _ = ApplyModifiers([]string{ModifierString}, 42)
	if got != "42" {
		t.Fatalf("expected string cast, got %#v", got)
	}
	if got, _ := ApplyModifiers([]string{ModifierString, ModifierNoSpaces}, nil); got != nil {
		t.Fatalf("nil must stay nil, got %#v", got)
	}
	_, err = ApplyModifiers([]string{"shout"}, "x")
	if !errors.Is(err, domain.ErrUnknownModifier) || !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected unknown modifier error, got %v", err)
	}
}

func TestUnknownModifierFailsConstruction(t *testing.T) {
	_, err := New("c", "name|shout", testEnv())
	if !errors.Is(err, domain.ErrUnknownModifier) {
		t.Fatalf("expected ErrUnknownModifier, got %v", err)
	}
}

func TestTypeSuffixModifiersAreMerged(t *testing.T) {
	r := mustRule(t, "c", mustParse(t, "type: \"sentence| nospaces ||string\"\nmodifiers: [string]\n"), testEnv())
	if r.Type() != TypeProperty {
		t.Fatalf("expected property rule, got %s", r.Type())
	}
	if got := r.Options().Modifiers; !reflect.DeepEqual(got, []string{"string", "nospaces", "string"}) {
		t.Fatalf("unexpected modifiers %v", got)
	}
	v, err := r.FakeValue("some text")
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(v.(string), " \t\n") {
		t.Fatalf("expected whitespace removed, got %q", v)
	}
}

func TestStructuredCallAndChain(t *testing.T) {
	env := testEnv()

	call := mustRule(t, "age", mustParse(t, "type: {numberBetween: [18, 18]}\n"), env)
	mc, ok := call.(*MethodColumn)
	if !ok {
		t.Fatalf("expected MethodColumn, got %T", call)
	}
	if method, args := mc.Method(); method != "numberBetween" || len(args) != 2 {
		t.Fatalf("unexpected call %s %v", method, args)
	}
	if v, _ := call.FakeValue("40"); v != 18 {
		t.Fatalf("expected 18, got %v", v)
	}

	chain := mustRule(t, "age", mustParse(t, "type: [{numberBetween: [7, 7]}, \"|string\"]\n"), env)
	if got := chain.Options().Modifiers; !reflect.DeepEqual(got, []string{"string"}) {
		t.Fatalf("unexpected chain modifiers %v", got)
	}
	if v, _ := chain.FakeValue("40"); v != "7" {
		t.Fatalf("expected \"7\", got %#v", v)
	}

	stringForm := mustRule(t, "age", mustParse(t, "type: \"method|string\"\nfakerMethod: numberBetween\nfakerMethodArgs: [7, 7]\n"), env)
	if v, _ := stringForm.FakeValue("40"); v != "7" {
		t.Fatalf("string form must match chain form, got %#v", v)
	}
}

func TestMalformedStructuredTypes(t *testing.T) {
	env := testEnv()
	bad := []string{
		"type: [{numberBetween: [1, 2]}]\n",
		"type: [{numberBetween: [1, 2]}, \"|string\", \"|nospaces\"]\n",
		"type: [\"numberBetween\", \"|string\"]\n",
		"type: [{numberBetween: [1, 2]}, \"string\"]\n",
		"type: {numberBetween: [1, 2], randomNumber: [3]}\n",
		"type: {numberBetween: {min: 1}}\n",
		"type: 42\n",
		"unique: true\n",
	}
	for _, src := range bad {
		if _, err := New("c", mustParse(t, src), env); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("%q: expected ErrConfiguration, got %v", src, err)
		}
	}
	if _, err := New("c", 3.14, env); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for scalar config, got %v", err)
	}
}

func TestInvalidAccessorNamesFailConstruction(t *testing.T) {
	env := testEnv()
	if _, err := New("c", "favouriteColour", env); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown property, got %v", err)
	}
	if _, err := New("c", mustParse(t, "type: {teleport: []}\n"), env); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown method, got %v", err)
	}
	if _, err := New("c", mustParse(t, "type: method\n"), env); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for missing fakerMethod, got %v", err)
	}
}

func TestCustomTypeResolvesThroughRegistry(t *testing.T) {
	r := mustRule(t, "status", mustParse(t, "type: choice\nvalues: [active]\ndeterministic: false\n"), testEnv())
	if _, ok := r.(*CustomColumn); !ok {
		t.Fatalf("expected CustomColumn, got %T", r)
	}
	if r.Type() != "choice" {
		t.Fatalf("expected type choice, got %s", r.Type())
	}
	if v, _ := r.FakeValue("inactive"); v != "active" {
		t.Fatalf("expected active, got %v", v)
	}
	if _, err := New("status", mustParse(t, "type: choice\n"), testEnv()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected param validation error, got %v", err)
	}
}

func TestEmptyColumn(t *testing.T) {
	r := mustRule(t, "notes", "empty", testEnv())
	if v, _ := r.FakeValue("secret notes"); v != nil {
		t.Fatalf("expected nil, got %v", v)
	}
}

func TestPasswordColumn(t *testing.T) {
	env := testEnv()
	literal := mustRule(t, "pw", mustParse(t, "type: md5password\npassword: secret\n"), env)
	if o := literal.Options(); o.PreserveEmpty || o.Deterministic {
		t.Fatalf("password defaults must disable preserveEmpty and deterministic, got %+v", o)
	}
	for _, original := range []any{"hunter2", ""} {
		v, err := literal.FakeValue(original)
		if err != nil {
			t.Fatal(err)
		}
		if v != "5ebe2294ecd0e0f08eab7690d2a6ee69" {
			t.Fatalf("expected md5(secret), got %v", v)
		}
	}
	if misses := env.Cache.Stats().Misses; misses != 0 {
		t.Fatalf("literal password must not reach the provider, misses=%d", misses)
	}

	random := mustRule(t, "pw", "sha256password", env)
	v, err := random.FakeValue("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if s := v.(string); len(s) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", s)
	}
}

func TestHostnameColumn(t *testing.T) {
	r := mustRule(t, "host", "hostname", testEnv())
	v, err := r.FakeValue("db01.internal.example")
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.(string)
	if !ok || strings.Count(s, ".") < 2 {
		t.Fatalf("expected <prefix>.<domain>, got %#v", v)
	}
	again, _ := r.FakeValue("db01.internal.example")
	domainOf := func(h string) string {
		labels := strings.Split(h, ".")
		return strings.Join(labels[len(labels)-2:], ".")
	}
	if domainOf(s) != domainOf(again.(string)) {
		t.Fatalf("expected the deterministic domain to repeat: %q vs %q", s, again)
	}
}

func TestHostnameBlankDomainYieldsNil(t *testing.T) {
	r := mustRule(t, "host", "hostname", testEnv(blankDomains{}))
	for i := 0; i < 10; i++ {
		v, err := r.FakeValue("web.example.com")
		if err != nil {
			t.Fatal(err)
		}
		if v != nil {
			t.Fatalf("expected nil for blank domain, got %#v", v)
		}
	}
}

func TestUUID4Column(t *testing.T) {
	r := mustRule(t, "external_id", "uuid4", testEnv())
	if _, ok := r.(*CustomColumn); !ok {
		t.Fatalf("expected CustomColumn, got %T", r)
	}
	original := "6f1c0b9e-0000-0000-0000-000000000001"
	v, err := r.FakeValue(original)
	if err != nil {
		t.Fatal(err)
	}
	u, err := uuid.Parse(v.(string))
	if err != nil || u.Version() != 4 || u.Variant() != uuid.RFC4122 {
		t.Fatalf("expected a v4 uuid, got %v (%v)", v, err)
	}
	if v == original {
		t.Fatal("expected original to be replaced")
	}
	if again, _ := r.FakeValue(original); again != v {
		t.Fatalf("expected the same uuid for the same original, got %v and %v", v, again)
	}
	if other, _ := r.FakeValue("another-id"); other == v {
		t.Fatalf("expected a different uuid for a different original, got %v", other)
	}

	replay, _ := mustRule(t, "external_id", "uuid4", testEnv()).FakeValue(original)
	if replay != v {
		t.Fatalf("expected the same seed to reproduce %v, got %v", v, replay)
	}
}
