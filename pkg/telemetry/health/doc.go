// Package health provides liveness and readiness endpoints for long-running
// Warden processes.
//
// Components register a CheckFunc under a name. Readiness runs every check
// concurrently, each bounded by the checker's timeout, and reports
// "degraded" when any check fails:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("catalog", func(ctx context.Context) error {
//	    if holder.Current() == nil {
//	        return errors.New("no tier catalog loaded")
//	    }
//	    return nil
//	})
//	mux.Handle("/healthz", checker.LivenessHandler())
//	mux.Handle("/readyz", checker.ReadinessHandler())
package health
