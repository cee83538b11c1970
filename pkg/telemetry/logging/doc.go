// Package logging builds the structured loggers used across Warden.
//
// Loggers are plain *slog.Logger values. The handler chain adds the session
// id and the active trace and span ids from the context, and optionally masks
// secrets in attribute values before they are written.
//
// Hook commands speak to their host over stdout and stderr, so logs go to a
// file (or are discarded) rather than to the terminal:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    File:   ".warden/warden.log",
//	    Redact: true,
//	})
//	defer logger.Shutdown()
//
//	ctx = logging.WithSession(ctx, "abc")
//	logger.InfoContext(ctx, "decision", "outcome", "block")  // includes session_id
package logging
