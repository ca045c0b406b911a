// Package gradeboard provides an embeddable, live grade dashboard: it polls
// JSON endpoints that list entities with assessment scores, classifies each
// entity as passed or failed against a threshold, and serves the resulting
// charts in real time.
//
// # Quick Start
//
//	alumnos, _ := gradeboard.NewSource("alumnos", "https://example.com/apiAlumnos.php", 7,
//	    gradeboard.WithFields(gradeboard.Fields{Name: "nombre", Scores: "practicas"}),
//	)
//	b, _ := gradeboard.New(gradeboard.WithSource(alumnos))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Start(ctx) // blocks until context is cancelled
//
// # Engine
//
// The engine is usable without the dashboard:
//
//   - [Fetcher] retrieves one [Dataset] and reports failures as
//     [*NetworkError], [*HTTPStatusError] or [*ParseError]
//   - [Poller] refreshes a [Source] on an interval and never delivers a
//     dataset after [Poller.Stop] returns
//   - [Aggregate] derives the score average and [Outcome] of every entity
//   - [PerEntitySeries], [ComparativeSeries], [CategoricalSeries] and
//     [IdentifierSeries] project derived entities into [ChartSeries]
//
// Score values that are not numbers (null, booleans, non-numeric strings)
// are excluded from the average. An entity without numeric scores averages 0.
//
// # Architecture
//
//   - internal/poller: generic refresh loop and pooled HTTP client
//   - internal/store: in-memory snapshots with pub/sub for live updates
//   - internal/server: REST API, Server-Sent Events and metrics endpoint
//   - internal/metrics: Prometheus refresh and classification metrics
//   - dashboard: embedded web UI assets
//
// The internal packages are not part of the public API.
package gradeboard
