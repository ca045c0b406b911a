package gradeboard

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Aggregate derives one [DerivedEntity] per entity in ds, preserving order.
//
// ScoreAverage is the arithmetic mean of the entity's coerced score values,
// or 0 when no value survives coercion. Outcome is [OutcomePassed] iff the
// average is >= threshold.
//
// Coercion: JSON numbers are used as-is; strings are trimmed and parsed as
// floats. Anything else (null, booleans, objects, arrays, empty or
// non-numeric strings) and any non-finite result is excluded from both the
// sum and the count rather than poisoning the average.
//
// Aggregate is pure and total: it never fails and never retains its input.
// Values are summed in sorted key order so repeated calls produce
// bit-identical averages.
func Aggregate(ds Dataset, threshold float64) []DerivedEntity {
	out := make([]DerivedEntity, len(ds))
	for i, e := range ds {
		avg := scoreAverage(e.Scores)
		out[i] = DerivedEntity{
			ID:           e.ID,
			Name:         e.Name,
			ScoreAverage: avg,
			Outcome:      Classify(avg, threshold),
			Attributes:   e.Attributes,
		}
	}
	return out
}

// Classify maps an average to an [Outcome] against threshold.
func Classify(average, threshold float64) Outcome {
	if average >= threshold {
		return OutcomePassed
	}
	return OutcomeFailed
}

// scoreAverage returns the mean of the numeric values in scores.
func scoreAverage(scores map[string]any) float64 {
	if len(scores) == 0 {
		return 0
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, 0, len(keys))
	var sum float64
	for _, k := range keys {
		v := coerceScore(scores[k])
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
		sum += v
	}
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}

	// the plain sum overflowed; every finite value divided by n sums to a
	// finite mean
	sum = 0
	for _, v := range values {
		sum += v / n
	}
	return sum
}

// coerceScore converts a decoded JSON value to a float, or NaN when the
// value is not a finite number.
func coerceScore(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		f = parsed
	case int:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN()
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		f = parsed
	default:
		return math.NaN()
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}
