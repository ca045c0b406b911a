package gradeboard

import (
	"math"
	"strconv"
	"strings"
)

// Color is a display color in #rrggbb form.
type Color string

// ChartSeries is a positional triple of labels, values, and colors consumed
// by a charting widget. Index i of each slice describes the same entity or
// category; all three slices always have the same length.
type ChartSeries struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []Color   `json:"colors"`
}

// Len returns the number of points in the series.
func (s ChartSeries) Len() int {
	return len(s.Labels)
}

// OutcomeColors assigns one fixed color per [Outcome].
type OutcomeColors struct {
	Passed Color
	Failed Color
}

// For returns the color for o.
func (c OutcomeColors) For(o Outcome) Color {
	if o == OutcomePassed {
		return c.Passed
	}
	return c.Failed
}

// DefaultOutcomeColors are green for passed and red for failed.
var DefaultOutcomeColors = OutcomeColors{
	Passed: "#28a745",
	Failed: "#dc3545",
}

// Palette is a fixed, ordered list of colors. Index i maps to
// Palette[i mod len(Palette)], so the same input always gets the same colors.
type Palette []Color

// At returns the color for index i. An empty palette yields gray.
func (p Palette) At(i int) Color {
	if len(p) == 0 {
		return "#6c757d"
	}
	n := len(p)
	return p[((i%n)+n)%n]
}

// DefaultPalette is used for series without a semantic color mapping.
var DefaultPalette = Palette{
	"#007bff", "#6610f2", "#e83e8c", "#fd7e14", "#ffc107",
	"#20c997", "#17a2b8", "#6f42c1", "#28a745", "#dc3545",
}

// averageLabel is the single category of per-entity series.
const averageLabel = "Average"

// PerEntitySeries returns one single-category series per entity: the
// category is "Average", the value is the entity's ScoreAverage, and the
// color follows its outcome.
func PerEntitySeries(entities []DerivedEntity, colors OutcomeColors) []ChartSeries {
	out := make([]ChartSeries, len(entities))
	for i, e := range entities {
		out[i] = ChartSeries{
			Title:  e.Name,
			Labels: []string{averageLabel},
			Values: []float64{e.ScoreAverage},
			Colors: []Color{colors.For(e.Outcome)},
		}
	}
	return out
}

// ComparativeSeries returns one series across all entities in dataset
// order: labels are names, values are averages, colors follow outcomes.
func ComparativeSeries(entities []DerivedEntity, colors OutcomeColors) ChartSeries {
	s := ChartSeries{
		Title:  "Averages",
		Labels: make([]string, len(entities)),
		Values: make([]float64, len(entities)),
		Colors: make([]Color, len(entities)),
	}
	for i, e := range entities {
		s.Labels[i] = e.Name
		s.Values[i] = e.ScoreAverage
		s.Colors[i] = colors.For(e.Outcome)
	}
	return s
}

// IdentifierSeries charts entity identifiers: labels are IDs, values are
// the IDs read as numbers (0 when not a finite number), colors come from
// palette by position.
func IdentifierSeries(entities []DerivedEntity, palette Palette) ChartSeries {
	s := ChartSeries{
		Title:  "Identifiers",
		Labels: make([]string, len(entities)),
		Values: make([]float64, len(entities)),
		Colors: make([]Color, len(entities)),
	}
	for i, e := range entities {
		s.Labels[i] = e.ID
		v, err := strconv.ParseFloat(strings.TrimSpace(e.ID), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			s.Values[i] = v
		}
		s.Colors[i] = palette.At(i)
	}
	return s
}

// Category is one bucket of a [Partition].
type Category struct {
	// Value is the raw key an entity must produce to fall in this bucket.
	Value string

	// Label is the display label of the bucket.
	Label string

	// Color is the bucket color.
	Color Color
}

// Partition groups entities into known categories.
//
// Key returns the category key of an entity and false when the entity has
// no usable value. Keys that match no [Category] are excluded from every
// bucket.
type Partition struct {
	Title      string
	Categories []Category
	Key        func(DerivedEntity) (string, bool)
}

// FieldPartition partitions entities on an attribute addressed by a dot
// path, for example "sexo" with categories M and F.
func FieldPartition(title, field string, categories ...Category) Partition {
	parts := strings.Split(field, ".")
	return Partition{
		Title:      title,
		Categories: categories,
		Key: func(e DerivedEntity) (string, bool) {
			v, ok := lookupPath(e.Attributes, parts)
			if !ok {
				return "", false
			}
			return scalarString(v)
		},
	}
}

// OutcomePartition partitions entities by outcome into a passed and a
// failed bucket.
func OutcomePartition(colors OutcomeColors) Partition {
	return Partition{
		Title: "Outcomes",
		Categories: []Category{
			{Value: string(OutcomePassed), Label: "Passed", Color: colors.Passed},
			{Value: string(OutcomeFailed), Label: "Failed", Color: colors.Failed},
		},
		Key: func(e DerivedEntity) (string, bool) {
			return string(e.Outcome), e.Outcome != ""
		},
	}
}

// CategoricalSeries counts entities per category of p. Buckets follow the
// declared category order and keep zero counts; entities with a missing or
// unknown key are left out, so the bucket total is the number of entities
// that matched a known category.
func CategoricalSeries(entities []DerivedEntity, p Partition) ChartSeries {
	index := make(map[string]int, len(p.Categories))
	s := ChartSeries{
		Title:  p.Title,
		Labels: make([]string, len(p.Categories)),
		Values: make([]float64, len(p.Categories)),
		Colors: make([]Color, len(p.Categories)),
	}
	for i, c := range p.Categories {
		if _, dup := index[c.Value]; !dup {
			index[c.Value] = i
		}
		s.Labels[i] = c.Label
		s.Colors[i] = c.Color
	}

	if p.Key == nil {
		return s
	}
	for _, e := range entities {
		key, ok := p.Key(e)
		if !ok {
			continue
		}
		if i, known := index[key]; known {
			s.Values[i]++
		}
	}
	return s
}
