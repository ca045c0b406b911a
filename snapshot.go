package gradeboard

import "time"

// Snapshot is everything the dashboard renders for one source after a
// refresh: the derived entities and every chart projection.
//
// Snapshots are rebuilt from the latest dataset on every refresh and on
// every threshold change; they own no state of their own.
type Snapshot struct {
	// Source is the source name.
	Source string

	// URL is the endpoint the dataset came from.
	URL string

	// Threshold is the pass threshold the entities were classified with.
	Threshold float64

	// Entities are the derived entities in dataset order.
	Entities []DerivedEntity

	// PerEntity holds one single-bar series per entity.
	PerEntity []ChartSeries

	// Comparative compares all entity averages in one series.
	Comparative ChartSeries

	// Outcomes counts passed and failed entities.
	Outcomes ChartSeries

	// Distribution is the categorical distribution, nil when the source has
	// no partition.
	Distribution *ChartSeries

	// Identifiers charts the entity IDs with palette colors.
	Identifiers ChartSeries

	// Passed and Failed count entities per outcome.
	Passed int
	Failed int

	// UpdatedAt is when the snapshot was built.
	UpdatedAt time.Time
}

// BuildSnapshot aggregates ds with the source's threshold and projects the
// result into every chart series the source is configured for.
func BuildSnapshot(src Source, ds Dataset, at time.Time) Snapshot {
	entities := Aggregate(ds, src.threshold)

	snap := Snapshot{
		Source:      src.name,
		URL:         src.url,
		Threshold:   src.threshold,
		Entities:    entities,
		PerEntity:   PerEntitySeries(entities, src.colors),
		Comparative: ComparativeSeries(entities, src.colors),
		Outcomes:    CategoricalSeries(entities, OutcomePartition(src.colors)),
		Identifiers: IdentifierSeries(entities, src.palette),
		UpdatedAt:   at,
	}

	if p, ok := src.Partition(); ok {
		dist := CategoricalSeries(entities, p)
		snap.Distribution = &dist
	}

	for _, e := range entities {
		if e.Outcome == OutcomePassed {
			snap.Passed++
		} else {
			snap.Failed++
		}
	}

	return snap
}
