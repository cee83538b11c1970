// Package trail records every decision Warden makes for a session.
//
// A trail is the explanation behind a session's current state: which action
// was asked for, how it was classified, what the engine decided and which
// prerequisites were missing. Records are written asynchronously by the
// recorder package, persisted by a storage backend and removed either when
// the session starts a new cycle or when they outlive the retention period.
//
// Subpackages:
//
//   - storage: SQLite and in-memory backends
//   - recorder: bounded asynchronous writer
//   - retention: age-based pruning on a cron schedule
package trail
