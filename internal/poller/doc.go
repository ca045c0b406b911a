// Package poller provides the refresh loop and HTTP client used by GradeBoard.
//
// This package is internal to GradeBoard. It knows nothing about grades or
// charts: [Poller] drives any fetch function on a fixed cadence and hands
// each successful value to a callback, and [Client] performs the GET
// requests the root package decodes into datasets.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Poller]: Start/Stop lifecycle around one periodic fetch loop
//   - [Clock]: ticker source, replaceable in tests
//
// Users of the gradeboard library should not need to interact with this
// package directly.
package poller
