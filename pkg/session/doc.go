// Package session owns the durable per-session workflow state and its
// lifecycle.
//
// # Overview
//
// A State records whether the entry gate fired, the resolved tier, the
// executed prerequisite steps, an append-only violation log and the number of
// requests seen. The decision engine only proposes the next State; the
// Manager is the single writer of durable state.
//
// # Backends
//
// Three Store implementations are provided:
//
//   - FileStore: one JSON document per session, replaced atomically (default)
//   - SQLiteStore: one row per session in a SQLite database
//   - MemoryStore: in-process map, used by tests and embedded hosts
//
// All backends serialize State as JSON. Unknown fields are ignored on read and
// missing optional fields take their zero values. FileStore escapes session
// ids into file names, so any non-empty id is valid, including ones with a
// leading dot or a path separator.
//
// # Lifecycle
//
//	mgr := session.NewManager(store,
//	    session.WithMaxViolations(50),
//	    session.WithFaultHook(func(op, id string, err error) {
//	        collector.RecordStorageFault(op)
//	    }),
//	)
//	st, err := mgr.BeginSession(ctx, "abc")   // new interaction cycle
//	st, err = mgr.LoadOrInit(ctx, "abc")      // before each decision
//	err = mgr.Apply(ctx, next)                // after each decision
//
// BeginSession discards the previous cycle: the gate flag, the tier, the
// executed steps and the violation log all start over.
//
// # Faults
//
// A read failure never grants access: LoadOrInit falls back to a fresh
// initial state and records a storage-read-failed violation. LoadOrInitAt
// stamps that violation with the time of the request being decided. A write
// failure is returned as *StorageFault:
//
//	if err := mgr.Apply(ctx, next); err != nil {
//	    var fault *session.StorageFault
//	    if errors.As(err, &fault) {
//	        // fault.Op is "save" or "delete"; nothing was persisted
//	    }
//	}
//
// # Thread Safety
//
// Manager.WithLock serializes work on one session within the process. The
// stores are safe for concurrent use; FileStore relies on atomic renames for
// readers in other processes.
package session
