// Package store provides storage and pub/sub functionality for source snapshots.
//
// This package is internal to GradeBoard and holds the latest snapshot of
// every source in memory. It implements a publish-subscribe pattern so the
// dashboard receives each new snapshot in real time.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Snapshot]: JSON representation of one source's charts
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers miss updates rather than block refreshes).
package store
