package provider

import (
	"math/rand"
	"sort"
)

// PropertyFunc is a zero-argument accessor.
type PropertyFunc func(r *rand.Rand) any

// MethodFunc is an accessor taking literal arguments from the config.
type MethodFunc func(r *rand.Rand, args []any) (any, error)

// Extension contributes extra accessors. Names exposed by an extension
// take precedence over built-ins with the same name.
type Extension interface {
	Name() string
	Properties() map[string]PropertyFunc
	Methods() map[string]MethodFunc
}

// Capabilities is the static table of accessor names a column rule may
// reference. It is built once per run.
type Capabilities struct {
	properties map[string]PropertyFunc
	methods    map[string]MethodFunc
	extensions []string
}

func NewCapabilities(exts ...Extension) *Capabilities {
	c := &Capabilities{
		properties: make(map[string]PropertyFunc, len(builtinProperties)),
		methods:    make(map[string]MethodFunc, len(builtinMethods)),
	}
	for name, fn := range builtinProperties {
		c.properties[name] = fn
	}
	for name, fn := range builtinMethods {
		c.methods[name] = fn
	}
	for _, ext := range exts {
		if ext == nil {
			continue
		}
		c.extensions = append(c.extensions, ext.Name())
		for name, fn := range ext.Properties() {
			c.properties[name] = fn
		}
		for name, fn := range ext.Methods() {
			c.methods[name] = fn
		}
	}
	return c
}

func (c *Capabilities) HasProperty(name string) bool {
	_, ok := c.properties[name]
	return ok
}

func (c *Capabilities) HasMethod(name string) bool {
	_, ok := c.methods[name]
	return ok
}

func (c *Capabilities) property(name string) (PropertyFunc, bool) {
	fn, ok := c.properties[name]
	return fn, ok
}

func (c *Capabilities) method(name string) (MethodFunc, bool) {
	fn, ok := c.methods[name]
	return fn, ok
}

func (c *Capabilities) Properties() []string { return sortedKeys(c.properties) }
func (c *Capabilities) Methods() []string    { return sortedKeys(c.methods) }

// Extensions lists registered extension names in registration order.
func (c *Capabilities) Extensions() []string {
	return append([]string(nil), c.extensions...)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
