package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/warden/pkg/gatekeeper"
	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/session"
)

// Exit codes understood by the host.
const (
	ExitAllow = 0
	ExitFault = 1
	ExitBlock = 2
)

// Handler answers hook events with a Gatekeeper.
type Handler struct {
	gk         *gatekeeper.Gatekeeper
	translator *Translator
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a handler.
func NewHandler(gk *gatekeeper.Gatekeeper, translator *Translator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gk:         gk,
		translator: translator,
		logger:     logger.With("component", "hook"),
		now:        time.Now,
	}
}

// Check handles a PreToolUse event read from in. Block explanations and
// fault messages go to stderr; the return value is the process exit code.
//
// A request that cannot be decided fails safe: read-class requests exit with
// ExitFault, which the host lets proceed, and everything else, including an
// unreadable event, exits with ExitBlock.
func (h *Handler) Check(ctx context.Context, in io.Reader, stderr io.Writer) int {
	ev, err := ParseEvent(in)
	if err != nil {
		return h.fault(stderr, "unreadable hook event", err, true)
	}

	sessionID := h.translator.SessionID(ev)
	req := h.translator.Request(ev, h.now().UTC())

	verdict, err := h.gk.Check(ctx, sessionID, req)
	if err != nil {
		class := verdict.Decision.Class
		if class == "" {
			class = h.gk.Rules().Classify(req.Kind)
		}
		block := verdict.Decision.Outcome == policy.OutcomeBlock || class != policy.ClassRead
		return h.fault(stderr, "decision could not be persisted", err, block)
	}

	d := verdict.Decision
	switch {
	case d.Allowed():
		return ExitAllow
	case verdict.Advisory:
		writeBlock(stderr, "[WARN] ADVISORY: "+d.Reason, d.Explanation, d.Missing)
		return ExitAllow
	default:
		writeBlock(stderr, "[ERROR] BLOCKED: "+d.Reason, d.Explanation, d.Missing)
		return ExitBlock
	}
}

// CheckUnavailable answers a PreToolUse event when no Handler could be built,
// for instance because the configuration is invalid. The request is
// classified with the default rules and fails safe as in Check.
func CheckUnavailable(in io.Reader, stderr io.Writer, cause error) int {
	block := true
	if ev, err := ParseEvent(in); err == nil {
		kind := NewTranslator(nil, "").Kind(ev.ToolName)
		block = policy.DefaultRules().Classify(kind) != policy.ClassRead
	}
	return writeFault(stderr, "warden is unavailable", cause, block)
}

// Reset handles a UserPromptSubmit event: the session starts a new cycle.
func (h *Handler) Reset(ctx context.Context, in io.Reader, stderr io.Writer) int {
	ev, err := ParseEvent(in)
	if err != nil && !errors.Is(err, ErrEmptyEvent) {
		return h.fault(stderr, "unreadable hook event", err, false)
	}
	if ev == nil {
		ev = &Event{}
	}

	if _, err := h.gk.Begin(ctx, h.translator.SessionID(ev)); err != nil {
		return h.fault(stderr, "session could not be reset", err, false)
	}
	return ExitAllow
}

func (h *Handler) fault(stderr io.Writer, msg string, err error, block bool) int {
	h.logger.Error(msg, "error", err, "blocked", block)
	return writeFault(stderr, msg, err, block)
}

// writeFault reports a fault on stderr. Blocking faults exit with ExitBlock
// and say so, so operators can tell them from policy blocks.
func writeFault(stderr io.Writer, msg string, err error, block bool) int {
	var fault *session.StorageFault
	if errors.As(err, &fault) {
		fmt.Fprintf(stderr, "[FAULT] warden: %s (%s %s): %v\n", msg, fault.Op, fault.SessionID, fault.Cause)
	} else {
		fmt.Fprintf(stderr, "[FAULT] warden: %s: %v\n", msg, err)
	}
	if block {
		fmt.Fprintln(stderr, "Action blocked until warden can decide it.")
		return ExitBlock
	}
	return ExitFault
}

func writeBlock(w io.Writer, title, explanation string, missing []string) {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if explanation != "" {
		b.WriteString("\n")
		b.WriteString(explanation)
		b.WriteString("\n")
	}
	if len(missing) > 0 {
		b.WriteString("\nMissing:\n")
		for _, m := range missing {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
	}
	io.WriteString(w, b.String())
}
