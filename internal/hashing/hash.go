package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

type mapper interface {
	Map() map[string]any
}

// CanonicalArgs serializes a literal argument list into a stable string.
// Map keys are emitted in sorted order, so equal argument lists always
// produce equal strings.
func CanonicalArgs(args []any) string {
	if len(args) == 0 {
		return "[]"
	}
	data, err := json.Marshal(canonicalize(args))
	if err != nil {
		return fmt.Sprintf("%#v", args)
	}
	return string(data)
}

func canonicalize(v any) any {
	switch val := v.(type) {
	case mapper:
		return canonicalizeParams(val.Map())
	case map[string]any:
		return canonicalizeParams(val)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = canonicalize(val[i])
		}
		return out
	case []byte:
		return string(val)
	default:
		return val
	}
}

func canonicalizeParams(params map[string]any) map[string]any {
	result := make(map[string]any, len(params))
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result[k] = canonicalize(params[k])
	}
	return result
}

type runConfigHashPayload struct {
	Config map[string]any `json:"config"`
	Driver string         `json:"driver"`
	Target string         `json:"target"`
	Seed   int64          `json:"seed"`
}

// HashRunConfig fingerprints the faker section of a config together with
// the connection target and the seed. Secrets must be stripped by the
// caller before the target string is passed in.
func HashRunConfig(fakerConfig map[string]any, driver, target string, seed int64) (string, error) {
	p := runConfigHashPayload{
		Config: canonicalizeParams(fakerConfig),
		Driver: driver,
		Target: target,
		Seed:   seed,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
