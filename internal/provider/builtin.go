package provider

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/mmrzaf/dbfaker/internal/domain"
	"github.com/mmrzaf/dbfaker/internal/timeutil"
	"github.com/spf13/cast"
)

var safeEmailDomains = []string{"example.com", "example.org", "example.net"}

var builtinProperties = map[string]PropertyFunc{
	"name":            func(*rand.Rand) any { return faker.Name() },
	"firstName":       func(*rand.Rand) any { return faker.FirstName() },
	"firstNameMale":   func(*rand.Rand) any { return faker.FirstNameMale() },
	"firstNameFemale": func(*rand.Rand) any { return faker.FirstNameFemale() },
	"lastName":        func(*rand.Rand) any { return faker.LastName() },
	"titleMale":       func(*rand.Rand) any { return faker.TitleMale() },
	"titleFemale":     func(*rand.Rand) any { return faker.TitleFemale() },
	"gender":          func(*rand.Rand) any { return faker.Gender() },

	"email": func(*rand.Rand) any { return faker.Email() },
	"safeEmail": func(r *rand.Rand) any {
		local, _, _ := strings.Cut(faker.Email(), "@")
		return local + "@" + safeEmailDomains[r.Intn(len(safeEmailDomains))]
	},
	"userName":   func(*rand.Rand) any { return faker.Username() },
	"username":   func(*rand.Rand) any { return faker.Username() },
	"password":   func(*rand.Rand) any { return faker.Password() },
	"domainName": func(*rand.Rand) any { return faker.DomainName() },
	"domainWord": func(*rand.Rand) any {
		word, _, _ := strings.Cut(faker.DomainName(), ".")
		return word
	},
	"url":        func(*rand.Rand) any { return faker.URL() },
	"ipv4":       func(*rand.Rand) any { return faker.IPv4() },
	"ipv6":       func(*rand.Rand) any { return faker.IPv6() },
	"macAddress": func(*rand.Rand) any { return faker.MacAddress() },
	"jwt":        func(*rand.Rand) any { return faker.Jwt() },

	"phoneNumber":         func(*rand.Rand) any { return faker.Phonenumber() },
	"e164PhoneNumber":     func(*rand.Rand) any { return faker.E164PhoneNumber() },
	"tollFreePhoneNumber": func(*rand.Rand) any { return faker.TollFreePhoneNumber() },

	"creditCardNumber":   func(*rand.Rand) any { return faker.CCNumber() },
	"creditCardType":     func(*rand.Rand) any { return faker.CCType() },
	"currencyCode":       func(*rand.Rand) any { return faker.Currency() },
	"amountWithCurrency": func(*rand.Rand) any { return faker.AmountWithCurrency() },

	"word":      func(*rand.Rand) any { return faker.Word() },
	"sentence":  func(*rand.Rand) any { return faker.Sentence() },
	"paragraph": func(*rand.Rand) any { return faker.Paragraph() },
	"text":      func(*rand.Rand) any { return faker.Paragraph() },

	"uuid": func(r *rand.Rand) any { return randomUUID(r) },

	"date":       func(*rand.Rand) any { return faker.Date() },
	"time":       func(*rand.Rand) any { return faker.TimeString() },
	"dateTime":   func(*rand.Rand) any { return faker.Timestamp() },
	"unixTime":   func(*rand.Rand) any { return faker.UnixTime() },
	"monthName":  func(*rand.Rand) any { return faker.MonthName() },
	"year":       func(*rand.Rand) any { return faker.YearString() },
	"dayOfWeek":  func(*rand.Rand) any { return faker.DayOfWeek() },
	"dayOfMonth": func(*rand.Rand) any { return faker.DayOfMonth() },
	"century":    func(*rand.Rand) any { return faker.Century() },
	"timezone":   func(*rand.Rand) any { return faker.Timezone() },

	"latitude":      func(*rand.Rand) any { return faker.Latitude() },
	"longitude":     func(*rand.Rand) any { return faker.Longitude() },
	"address":       func(*rand.Rand) any { return formatAddress(faker.GetRealAddress()) },
	"streetAddress": func(*rand.Rand) any { return faker.GetRealAddress().Address },
	"city":          func(*rand.Rand) any { return faker.GetRealAddress().City },
	"state":         func(*rand.Rand) any { return faker.GetRealAddress().State },
	"postcode":      func(*rand.Rand) any { return faker.GetRealAddress().PostalCode },
}

var builtinMethods = map[string]MethodFunc{
	"numberBetween":   numberBetween,
	"randomInt":       randomInt,
	"randomNumber":    randomNumber,
	"randomFloat":     randomFloat,
	"randomElement":   randomElement,
	"words":           words,
	"sentences":       sentences,
	"lexify":          lexify,
	"numerify":        numerify,
	"bothify":         bothify,
	"dateTimeBetween": dateTimeBetween,
}

func formatAddress(a faker.RealAddress) string {
	return fmt.Sprintf("%s, %s, %s %s", a.Address, a.City, a.State, a.PostalCode)
}

func randomUUID(r *rand.Rand) string {
	b := make([]byte, 16)
	r.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

func argError(method string, format string, a ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrConfiguration, method, fmt.Sprintf(format, a...))
}

func maxArgs(method string, args []any, n int) error {
	if len(args) > n {
		return argError(method, "takes at most %d arguments, got %d", n, len(args))
	}
	return nil
}

func intArg(method string, args []any, i, def int) (int, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	v, err := cast.ToIntE(args[i])
	if err != nil {
		return 0, argError(method, "argument %d: %v", i+1, err)
	}
	return v, nil
}

func floatArg(method string, args []any, i int, def float64) (float64, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	v, err := cast.ToFloat64E(args[i])
	if err != nil {
		return 0, argError(method, "argument %d: %v", i+1, err)
	}
	return v, nil
}

func stringArg(method string, args []any, i int, def string) (string, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	v, err := cast.ToStringE(args[i])
	if err != nil {
		return "", argError(method, "argument %d: %v", i+1, err)
	}
	return v, nil
}

func numberBetween(r *rand.Rand, args []any) (any, error) {
	if err := maxArgs("numberBetween", args, 2); err != nil {
		return nil, err
	}
	lo, err := intArg("numberBetween", args, 0, 0)
	if err != nil {
		return nil, err
	}
	hi, err := intArg("numberBetween", args, 1, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.Intn(hi-lo+1), nil
}

// randomInt delegates to faker.RandomInt, which materializes the whole
// range, so it is capped.
const maxRandomIntSpan = 1_000_000

func randomInt(_ *rand.Rand, args []any) (any, error) {
	if len(args) != 2 {
		return nil, argError("randomInt", "takes exactly 2 arguments (min, max), got %d", len(args))
	}
	lo, err := intArg("randomInt", args, 0, 0)
	if err != nil {
		return nil, err
	}
	hi, err := intArg("randomInt", args, 1, 0)
	if err != nil {
		return nil, err
	}
	if hi < lo || hi-lo > maxRandomIntSpan {
		return nil, argError("randomInt", "range [%d, %d] is invalid or wider than %d, use numberBetween", lo, hi, maxRandomIntSpan)
	}
	out, err := faker.RandomInt(lo, hi, 1)
	if err != nil {
		return nil, argError("randomInt", "%v", err)
	}
	return out[0], nil
}

func randomNumber(r *rand.Rand, args []any) (any, error) {
	if err := maxArgs("randomNumber", args, 2); err != nil {
		return nil, err
	}
	digits, err := intArg("randomNumber", args, 0, 0)
	if err != nil {
		return nil, err
	}
	if digits < 0 || digits > 18 {
		return nil, argError("randomNumber", "digits must be between 0 and 18, got %d", digits)
	}
	if digits == 0 {
		digits = 1 + r.Intn(9)
	}
	strict := false
	if len(args) > 1 {
		strict, err = cast.ToBoolE(args[1])
		if err != nil {
			return nil, argError("randomNumber", "argument 2: %v", err)
		}
	}
	hi := int64(math.Pow10(digits))
	if strict {
		lo := int64(math.Pow10(digits - 1))
		return lo + r.Int63n(hi-lo), nil
	}
	return r.Int63n(hi), nil
}

func randomFloat(r *rand.Rand, args []any) (any, error) {
	if err := maxArgs("randomFloat", args, 3); err != nil {
		return nil, err
	}
	decimals, err := intArg("randomFloat", args, 0, -1)
	if err != nil {
		return nil, err
	}
	lo, err := floatArg("randomFloat", args, 1, 0)
	if err != nil {
		return nil, err
	}
	hi, err := floatArg("randomFloat", args, 2, float64(math.MaxInt32))
	if err != nil {
		return nil, err
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if decimals < 0 {
		decimals = r.Intn(6)
	}
	v := lo + r.Float64()*(hi-lo)
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale, nil
}

func randomElement(r *rand.Rand, args []any) (any, error) {
	elements := args
	if len(args) == 1 {
		if list, ok := args[0].([]any); ok {
			elements = list
		}
	}
	if len(elements) == 0 {
		return nil, argError("randomElement", "needs at least one element")
	}
	return elements[r.Intn(len(elements))], nil
}

func words(_ *rand.Rand, args []any) (any, error) {
	return repeatJoin("words", args, func() string { return faker.Word() })
}

func sentences(_ *rand.Rand, args []any) (any, error) {
	return repeatJoin("sentences", args, func() string { return faker.Sentence() })
}

func repeatJoin(method string, args []any, gen func() string) (any, error) {
	if err := maxArgs(method, args, 1); err != nil {
		return nil, err
	}
	n, err := intArg(method, args, 0, 3)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, argError(method, "count must be positive, got %d", n)
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = gen()
	}
	return strings.Join(parts, " "), nil
}

const (
	letters = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
)

func replacePattern(r *rand.Rand, pattern string, letter, digit bool) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, c := range pattern {
		switch {
		case c == '?' && letter:
			b.WriteByte(letters[r.Intn(len(letters))])
		case c == '#' && digit:
			b.WriteByte(digits[r.Intn(len(digits))])
		case c == '*' && letter && digit:
			if r.Intn(2) == 0 {
				b.WriteByte(letters[r.Intn(len(letters))])
			} else {
				b.WriteByte(digits[r.Intn(len(digits))])
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func patternMethod(method, def string, letter, digit bool) MethodFunc {
	return func(r *rand.Rand, args []any) (any, error) {
		if err := maxArgs(method, args, 1); err != nil {
			return nil, err
		}
		pattern, err := stringArg(method, args, 0, def)
		if err != nil {
			return nil, err
		}
		return replacePattern(r, pattern, letter, digit), nil
	}
}

var (
	lexify   = patternMethod("lexify", "????", true, false)
	numerify = patternMethod("numerify", "###", false, true)
	bothify  = patternMethod("bothify", "## ??", true, true)
)

func dateTimeBetween(r *rand.Rand, args []any) (any, error) {
	if err := maxArgs("dateTimeBetween", args, 2); err != nil {
		return nil, err
	}
	start, err := stringArg("dateTimeBetween", args, 0, "-30y")
	if err != nil {
		return nil, err
	}
	end, err := stringArg("dateTimeBetween", args, 1, "now")
	if err != nil {
		return nil, err
	}
	from, to, err := timeutil.ParseRange(start, end, time.Now().UTC())
	if err != nil {
		return nil, argError("dateTimeBetween", "%v", err)
	}
	span := to.Unix() - from.Unix()
	if span <= 0 {
		return from, nil
	}
	return time.Unix(from.Unix()+r.Int63n(span+1), 0).UTC(), nil
}
