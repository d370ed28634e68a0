package generators

import (
	"math/rand"

	"github.com/google/uuid"
)

// UUID4Generator backs the uuid4 column type. The random bits come from
// the run's seeded source, so a seeded run rewrites ids identically.
type UUID4Generator struct{}

func (g *UUID4Generator) Validate(Params) error { return nil }

func (g *UUID4Generator) Generate(rng *rand.Rand, _ Params) (any, error) {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	u, err := uuid.FromBytes(b[:])
	if err != nil {
		return nil, err
	}
	return u.String(), nil
}
