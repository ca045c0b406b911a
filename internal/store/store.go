package store

import "time"

// Series is the storage representation of a chart series.
type Series struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

// Entity is the storage representation of a derived entity.
type Entity struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ScoreAverage float64 `json:"score_average"`
	Outcome      string  `json:"outcome"`
}

// Snapshot is the latest rendered state of one source, optimized for JSON
// serialization (used by the REST API and SSE). It is decoupled from the
// root package's types to allow independent evolution.
type Snapshot struct {
	// Source is the source name; snapshots are keyed by it.
	Source string `json:"source"`

	// URL is the endpoint the dataset came from.
	URL string `json:"url"`

	// Threshold is the pass threshold used for classification.
	Threshold float64 `json:"threshold"`

	Entities     []Entity `json:"entities"`
	PerEntity    []Series `json:"per_entity"`
	Comparative  Series   `json:"comparative"`
	Outcomes     Series   `json:"outcomes"`
	Distribution *Series  `json:"distribution,omitempty"`
	Identifiers  Series   `json:"identifiers"`

	Passed int `json:"passed"`
	Failed int `json:"failed"`

	// UpdatedAt is when the snapshot was built.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing and subscribing to snapshots.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update stores a snapshot and notifies all subscribers.
	// Snapshots are keyed by Source, so later updates replace earlier ones.
	Update(snap Snapshot)

	// GetAll returns the latest snapshot of every source in the order the
	// sources first reported.
	GetAll() []Snapshot

	// Get returns the latest snapshot of one source.
	Get(source string) (Snapshot, bool)

	// Subscribe returns a channel that receives snapshot updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
