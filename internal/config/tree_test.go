package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mmrzaf/dbfaker/internal/domain"
)

func sampleTree() *Tree {
	return NewTree(map[string]any{
		"connection": map[string]any{
			"driver": "sqlite",
			"port":   "5432",
		},
		"faker": map[string]any{
			"seed": 7,
			"tables": map[string]any{
				"users": map[string]any{"key": "id"},
			},
		},
	})
}

func TestTreeGetDottedPath(t *testing.T) {
	tree := sampleTree()
	v, err := tree.String("connection.driver")
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if v != "sqlite" {
		t.Fatalf("expected sqlite, got %q", v)
	}
	port, err := tree.Int("connection.port")
	if err != nil || port != 5432 {
		t.Fatalf("expected port 5432, got %d (%v)", port, err)
	}
	sub, err := tree.Sub("faker.tables.users")
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if k, _ := sub.String("key"); k != "id" {
		t.Fatalf("expected key id, got %q", k)
	}
}

func TestTreeMissingPathIsConfigurationError(t *testing.T) {
	tree := sampleTree()
	for _, path := range []string{"nope", "connection.nope", "connection.driver.deeper"} {
		if _, err := tree.Get(path); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("Get(%q): expected ErrConfiguration, got %v", path, err)
		}
	}
	if tree.Has("faker.nope") {
		t.Fatal("Has should be false for missing path")
	}
	if _, err := tree.Sub("connection.driver"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Sub on scalar: expected ErrConfiguration, got %v", err)
	}
}

func TestTreeWithDefaultsDeepMerge(t *testing.T) {
	tree := sampleTree().WithDefaults(map[string]any{
		"connection": map[string]any{
			"driver": "mysql",
			"host":   "localhost",
		},
		"extra": true,
	})
	if d, _ := tree.String("connection.driver"); d != "sqlite" {
		t.Fatalf("config value must win over default, got %q", d)
	}
	if h, _ := tree.String("connection.host"); h != "localhost" {
		t.Fatalf("expected default host, got %q", h)
	}
	if b, _ := tree.Bool("extra"); !b {
		t.Fatal("expected default extra=true")
	}
	if s, _ := tree.Int("faker.seed"); s != 7 {
		t.Fatalf("expected seed preserved, got %d", s)
	}
}

func TestTreeIsReadOnly(t *testing.T) {
	tree := sampleTree()
	if err := tree.Set("connection.driver", "pgsql"); !errors.Is(err, domain.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}

	m := tree.Map()
	m["connection"].(map[string]any)["driver"] = "pgsql"
	if d, _ := tree.String("connection.driver"); d != "sqlite" {
		t.Fatalf("Map must be a copy, tree changed to %q", d)
	}
}

func TestTreeTypedGetterConversionError(t *testing.T) {
	tree := NewTree(map[string]any{"n": "abc", "list": []any{"a", map[string]any{"x": 1}}})
	if _, err := tree.Int("n"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := tree.StringSlice("list"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for nested list item, got %v", err)
	}
}

func TestParseYAMLPreservesKeyOrder(t *testing.T) {
	src := []byte(`
faker:
  tables:
    zebra:
      key: id
      columns:
        surname: lastName
        email: {type: email, unique: true}
        age: {type: [{numberBetween: [1, 99]}, "|string"]}
    alpha:
      key: [tenant, id]
`)
	tree, err := ParseYAML(src)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	tables, err := tree.Sub("faker.tables")
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if got := tables.Keys(); !reflect.DeepEqual(got, []string{"zebra", "alpha"}) {
		t.Fatalf("unexpected table order %v", got)
	}
	cols, _ := tables.Sub("zebra.columns")
	if got := cols.Keys(); !reflect.DeepEqual(got, []string{"surname", "email", "age"}) {
		t.Fatalf("unexpected column order %v", got)
	}
	unique, err := cols.Bool("email.unique")
	if err != nil || !unique {
		t.Fatalf("expected email.unique=true, got %v (%v)", unique, err)
	}
	key, err := tables.StringSlice("alpha.key")
	if err != nil || !reflect.DeepEqual(key, []string{"tenant", "id"}) {
		t.Fatalf("unexpected key %v (%v)", key, err)
	}
	typ, _ := cols.Get("age.type")
	chain, ok := typ.([]any)
	if !ok || len(chain) != 2 {
		t.Fatalf("expected two-element chain, got %#v", typ)
	}
	if _, ok := chain[0].(*Tree); !ok {
		t.Fatalf("expected call mapping as *Tree, got %T", chain[0])
	}
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(p); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadFileRootMustBeMapping(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("- a\n- b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(p); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
