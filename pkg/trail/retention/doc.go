// Package retention prunes trail records and stale session state.
//
// Trails are normally cleared when a session starts a new cycle. Sessions
// that are abandoned never reset, so the Pruner removes trail records older
// than the retention period and, when a session store is attached, session
// state untouched for longer than its stale threshold.
//
// The Scheduler runs the Pruner on a cron expression:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    Retention:     7 * 24 * time.Hour,
//	    PruneSchedule: "0 3 * * *",
//	}, logger)
//	scheduler := retention.NewScheduler(pruner, logger)
//	if err := scheduler.Start(ctx); err != nil {
//	    return err
//	}
//	defer scheduler.Stop()
//
// An empty PruneSchedule leaves the scheduler idle; Prune can still be
// called directly (as "warden trail prune" does).
package retention
