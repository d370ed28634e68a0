package column

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/cache"
	"github.com/mmrzaf/dbfaker/internal/generators"
)

// EmptyColumn nulls the column.
type EmptyColumn struct{ base }

func (c *EmptyColumn) FakeValue(original any) (any, error) {
	return c.fake(original, func(any) (any, error) { return nil, nil })
}

// HostnameColumn builds "<prefix>.<domain>" where the prefix is a random
// IPv4 address or domain word and the domain is derived from the original.
type HostnameColumn struct{ base }

const hostnameIPProbability = 0.5

func (c *HostnameColumn) FakeValue(original any) (any, error) {
	return c.fake(original, c.generate)
}

func (c *HostnameColumn) generate(original any) (any, error) {
	prefix, err := c.prefix()
	if err != nil {
		return nil, err
	}
	domainGen, err := c.property("domainName")
	if err != nil {
		return nil, err
	}
	req := c.request(cache.KindProperty, "domainName", nil, original)
	req.Disabled = nil
	domain, err := c.env.Cache.Generate(req, domainGen)
	if err != nil {
		return nil, err
	}
	if cache.IsBlank(domain) {
		return nil, nil
	}
	return prefix + "." + cache.Text(domain), nil
}

func (c *HostnameColumn) prefix() (string, error) {
	ipGen, err := c.property("ipv4")
	if err != nil {
		return "", err
	}
	ip, err := c.env.Cache.Generate(cache.Request{
		Kind:        cache.KindProperty,
		Name:        "ipv4",
		Optional:    true,
		Probability: hostnameIPProbability,
	}, ipGen)
	if err != nil {
		return "", err
	}
	if ip != nil {
		return cache.Text(ip), nil
	}

	wordGen, err := c.property("domainWord")
	if err != nil {
		return "", err
	}
	word, err := c.env.Cache.Generate(cache.Request{Kind: cache.KindProperty, Name: "domainWord"}, wordGen)
	if err != nil {
		return "", err
	}
	return cache.Text(word), nil
}

// Digest is a one-way transform applied to a password plaintext.
type Digest func(plaintext string) string

func MD5Digest(p string) string {
	sum := md5.Sum([]byte(p))
	return hex.EncodeToString(sum[:])
}

func SHA1Digest(p string) string {
	sum := sha1.Sum([]byte(p))
	return hex.EncodeToString(sum[:])
}

func SHA256Digest(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}

var passwordDigests = map[string]Digest{
	TypeMD5Password:    MD5Digest,
	TypeSHA1Password:   SHA1Digest,
	TypeSHA256Password: SHA256Digest,
}

const passwordRandom = "random"

// PasswordColumn writes the digest of a fixed or generated plaintext.
type PasswordColumn struct {
	base
	password string
	digest   Digest
}

func (c *PasswordColumn) FakeValue(original any) (any, error) {
	return c.fake(original, func(original any) (any, error) {
		plain, err := passwordPlaintext(&c.base, c.password, original)
		if err != nil {
			return nil, err
		}
		return c.digest(plain), nil
	})
}

// passwordPlaintext returns the configured literal, or a generated
// password when the literal is "random".
func passwordPlaintext(b *base, literal string, original any) (string, error) {
	if literal != passwordRandom {
		return literal, nil
	}
	gen, err := b.property("password")
	if err != nil {
		return "", err
	}
	req := b.request(cache.KindProperty, "password", nil, original)
	req.Disabled = nil
	v, err := b.env.Cache.Generate(req, gen)
	if err != nil {
		return "", err
	}
	return cache.Text(v), nil
}

// PropertyColumn draws from a zero-argument provider accessor.
type PropertyColumn struct {
	base
	propname string
}

func (c *PropertyColumn) FakeValue(original any) (any, error) {
	return c.fake(original, func(original any) (any, error) {
		gen, err := c.property(c.propname)
		if err != nil {
			return nil, err
		}
		return c.env.Cache.Generate(c.request(cache.KindProperty, c.propname, nil, original), gen)
	})
}

func (c *PropertyColumn) Propname() string { return c.propname }

// MethodColumn calls a provider method with literal arguments.
type MethodColumn struct {
	base
	method string
	args   []any
}

func (c *MethodColumn) FakeValue(original any) (any, error) {
	return c.fake(original, func(original any) (any, error) {
		gen, err := c.env.Faker.Method(c.method, c.args)
		if err != nil {
			return nil, err
		}
		return c.env.Cache.Generate(c.request(cache.KindMethod, c.method, c.args, original), gen)
	})
}

func (c *MethodColumn) Method() (string, []any) { return c.method, append([]any(nil), c.args...) }

// CustomColumn delegates to a registered generator.
type CustomColumn struct {
	base
	gen    generators.Generator
	params generators.Params
}

func (c *CustomColumn) FakeValue(original any) (any, error) {
	return c.fake(original, func(original any) (any, error) {
		gen := func() (any, error) { return c.gen.Generate(c.env.Faker.Rand(), c.params) }
		args := []any{map[string]any(c.params)}
		return c.env.Cache.Generate(c.request(cache.KindCustom, c.typ, args, original), gen)
	})
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }
