// Package store keeps benchmark history in SQLite.
//
// A run is one invocation of `quadbench run`; each timed form within it is a
// measurement. Runs whose suites share a fingerprint were timed under the
// same method, repetition count and integrand, so their elapsed times are
// comparable.
//
// # Ordering
//
// Runs are listed newest first by started_at, then by id. Run IDs are
// UUIDv7, so the id tiebreak also follows creation order. Measurements are
// returned in seq order, which is the order the forms were timed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
