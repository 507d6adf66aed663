// Package persist makes the cart survive process restarts without the user
// noticing.
//
// The Adapter mirrors the cart state wholesale on every change and
// rehydrates it on startup. Two failure philosophies apply:
//
//   - Rehydrate fails soft: a missing key, corrupt snapshot, or any read
//     error yields the canonical empty cart. Startup is never blocked and the
//     error is never surfaced to the user.
//   - Persist is best-effort and at-least-once: a write failure is logged by
//     the caller and never rolls back the in-memory transition.
//
// The storage key is shared across tabs/processes of the same session with
// no locking: the snapshot is monotonically replaced wholesale, so the last
// full-object write wins.
//
// Snapshots store the derived total, but rehydration treats it as
// reconstructible: the total is recomputed and overwritten when it disagrees
// with the item list, guarding against version skew in stored data.
//
// Backends: SQLite (WAL, embedded schema), Redis (shared storage across
// processes), and an in-memory map (tests, ephemeral mode).
package persist
