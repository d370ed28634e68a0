package generators

import (
	"math/rand"
	"time"

	"github.com/mmrzaf/dbfaker/internal/timeutil"
	"github.com/spf13/cast"
)

// DateTimeGenerator draws a timestamp between 'start' and 'end' (both
// accept "now", absolute dates or offsets like "-2y"). With 'format' set
// the value is rendered using that Go layout.
type DateTimeGenerator struct {
	// Now is overridable in tests.
	Now func() time.Time
}

func (g *DateTimeGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

func (g *DateTimeGenerator) Validate(params Params) error {
	_, _, err := g.window(params)
	return err
}

func (g *DateTimeGenerator) window(params Params) (time.Time, time.Time, error) {
	start, end := "-1y", "now"
	if v, ok := params["start"]; ok {
		start = cast.ToString(v)
	}
	if v, ok := params["end"]; ok {
		end = cast.ToString(v)
	}
	from, to, err := timeutil.ParseRange(start, end, g.now())
	if err != nil {
		return time.Time{}, time.Time{}, paramError("datetime", "%v", err)
	}
	return from, to, nil
}

func (g *DateTimeGenerator) Generate(rng *rand.Rand, params Params) (any, error) {
	from, to, err := g.window(params)
	if err != nil {
		return nil, err
	}
	ts := from
	if span := to.Unix() - from.Unix(); span > 0 {
		ts = time.Unix(from.Unix()+rng.Int63n(span+1), 0).UTC()
	}
	if layout, ok := params["format"]; ok {
		return ts.Format(cast.ToString(layout)), nil
	}
	return ts, nil
}
