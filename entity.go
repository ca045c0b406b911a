package gradeboard

// RawEntity is one record returned by a source, such as a student with
// per-assignment scores or a staff member with contact and categorical fields.
//
// RawEntity values are produced by [Fetcher.Fetch] and are treated as
// immutable once received. Each successful refresh supersedes the whole
// [Dataset]; entities are never merged or patched.
type RawEntity struct {
	// ID is the record identifier, rendered as a string.
	ID string

	// Name is the display name.
	Name string

	// Scores is the assessment mapping from item key to raw value.
	// Values keep their decoded JSON type; see [Aggregate] for coercion.
	// Nil when the record has no assessment mapping.
	Scores map[string]any

	// Attributes is the complete decoded JSON object, used by partitions
	// that group on fields outside the grade domain.
	Attributes map[string]any
}

// Dataset is an ordered sequence of [RawEntity] in server response order.
type Dataset []RawEntity

// Outcome is the binary classification of an entity against a threshold.
type Outcome string

const (
	// OutcomePassed means the entity's average reached the threshold.
	OutcomePassed Outcome = "passed"

	// OutcomeFailed means the entity's average fell below the threshold.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// DerivedEntity is a [RawEntity] with its computed statistic and outcome.
//
// DerivedEntity is recomputed from the current dataset on every refresh and
// is never cached across refreshes.
type DerivedEntity struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	ScoreAverage float64        `json:"score_average"`
	Outcome      Outcome        `json:"outcome"`
	Attributes   map[string]any `json:"-"`
}
