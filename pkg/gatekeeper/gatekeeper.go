package gatekeeper

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/session"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
	"mercator-hq/warden/pkg/telemetry/tracing"
	"mercator-hq/warden/pkg/tier"
	"mercator-hq/warden/pkg/trail"
)

// KindScore is the trail kind used for side-channel score supply.
const KindScore = "score"

// Recorder receives trail records. *recorder.Recorder implements it.
type Recorder interface {
	Record(record *trail.Record) error
}

// Verdict is the outcome of a Check.
type Verdict struct {
	Decision policy.Decision

	// Advisory is set when the decision is a block that enforcement mode
	// reports without enforcing.
	Advisory bool

	// State is the session state after the decision.
	State *session.State
}

// Proceed reports whether the host should let the action run.
func (v Verdict) Proceed() bool {
	return v.Decision.Allowed() || v.Advisory
}

// Gatekeeper applies the policy engine to sessions.
type Gatekeeper struct {
	manager  *session.Manager
	catalog  *tier.Holder
	rules    policy.Rules
	advisory bool

	trail   Recorder
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatekeeper) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithAdvisory reports blocks without enforcing them.
func WithAdvisory(advisory bool) Option {
	return func(g *Gatekeeper) { g.advisory = advisory }
}

// WithTrail records every decision to rec.
func WithTrail(rec Recorder) Option {
	return func(g *Gatekeeper) { g.trail = rec }
}

// WithMetrics reports decisions to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(g *Gatekeeper) { g.metrics = collector }
}

// WithTracer traces decisions.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(g *Gatekeeper) { g.tracer = tracer }
}

// WithClock overrides the request time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gatekeeper) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a Gatekeeper. A nil holder behaves as an unavailable catalog.
func New(manager *session.Manager, catalog *tier.Holder, rules policy.Rules, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		manager: manager,
		catalog: catalog,
		rules:   rules,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gatekeeper")
	if g.tracer == nil {
		g.tracer = tracing.Noop()
	}
	return g
}

// Rules returns the rules the gatekeeper applies.
func (g *Gatekeeper) Rules() policy.Rules {
	return g.rules
}

func (g *Gatekeeper) currentCatalog() *tier.Catalog {
	if g.catalog == nil {
		return nil
	}
	return g.catalog.Current()
}

// Advisory reports whether blocks are currently reported without being
// enforced, either by configuration or by the catalog's enforcement block.
func (g *Gatekeeper) Advisory() bool {
	return g.advisory || g.currentCatalog().Enforcement().Advisory()
}

// Check decides req for a session and persists the outcome. The returned
// error is non-nil only for storage faults or an empty session id; a block
// is a Verdict.
func (g *Gatekeeper) Check(ctx context.Context, sessionID string, req policy.Request) (Verdict, error) {
	ctx = logging.WithSession(ctx, sessionID)
	ctx, span := g.tracer.Start(ctx, "gatekeeper.check", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	tracing.SetRequestAttributes(span, sessionID, req.Kind, req.Identifier, req.Tool)

	if req.At.IsZero() {
		req.At = g.now().UTC()
	}

	var verdict Verdict
	start := time.Now()

	err := g.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := g.manager.LoadOrInitAt(ctx, sessionID, req.At)
		if err != nil {
			return err
		}

		catalog := g.currentCatalog()
		result := policy.Decide(req, state, g.rules, catalog)

		verdict = Verdict{
			Decision: result.Decision,
			Advisory: result.Decision.Outcome == policy.OutcomeBlock && g.Advisory(),
			State:    result.Next,
		}

		if err := g.manager.Apply(ctx, result.Next); err != nil {
			verdict.State = state
			return err
		}

		g.reportViolations(result.Next, req.At)
		return nil
	})

	d := verdict.Decision
	if err != nil {
		tracing.SetError(span, err)
		g.logger.ErrorContext(ctx, "decision could not be persisted",
			"action", req.Action(),
			"outcome", d.Outcome,
			"error", err,
		)
		return verdict, err
	}

	tierName := ""
	var actions int64
	if verdict.State != nil {
		tierName = verdict.State.ResolvedTier
		actions = verdict.State.ActionCount
	}
	tracing.SetDecisionAttributes(span, string(d.Outcome), d.Reason, d.Rule, tierName, d.Missing, verdict.Advisory)
	g.metrics.RecordDecision(string(d.Outcome), d.Reason, string(d.Class), tierName, verdict.Advisory, time.Since(start))

	g.record(&trail.Record{
		SessionID:   sessionID,
		Time:        req.At,
		Tool:        req.Tool,
		Kind:        req.Kind,
		Identifier:  req.Identifier,
		Score:       req.Score,
		Class:       string(d.Class),
		Outcome:     string(d.Outcome),
		Rule:        d.Rule,
		Reason:      d.Reason,
		Missing:     d.Missing,
		Explanation: d.Explanation,
		Category:    string(d.Category),
		Advisory:    verdict.Advisory,
		Tier:        tierName,
		ActionCount: actions,
	})

	switch {
	case d.Outcome != policy.OutcomeBlock:
		g.logger.DebugContext(ctx, "action allowed",
			"action", req.Action(),
			"outcome", d.Outcome,
			"rule", d.Rule,
			"step", d.Step,
			"tier", tierName,
		)
	case verdict.Advisory:
		g.logger.WarnContext(ctx, "action would be blocked (advisory)",
			"action", req.Action(),
			"reason", d.Reason,
			"missing", d.Missing,
			"tier", tierName,
		)
	default:
		g.logger.InfoContext(ctx, "action blocked",
			"action", req.Action(),
			"reason", d.Reason,
			"missing", d.Missing,
			"category", d.Category,
			"tier", tierName,
		)
	}

	return verdict, nil
}

// SupplyScore records a complexity score delivered outside of a step
// invocation and persists the result.
func (g *Gatekeeper) SupplyScore(ctx context.Context, sessionID string, score float64) (*session.State, error) {
	ctx = logging.WithSession(ctx, sessionID)
	ctx, span := g.tracer.Start(ctx, "gatekeeper.score")
	defer span.End()

	at := g.now().UTC()
	var next *session.State

	err := g.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := g.manager.LoadOrInitAt(ctx, sessionID, at)
		if err != nil {
			return err
		}
		next = policy.RecordScore(state, score, g.rules, g.currentCatalog(), at)
		if err := g.manager.Apply(ctx, next); err != nil {
			return err
		}
		g.reportViolations(next, at)
		return nil
	})
	if err != nil {
		tracing.SetError(span, err)
		return next, err
	}

	g.record(&trail.Record{
		SessionID:   sessionID,
		Time:        at,
		Kind:        KindScore,
		Score:       &score,
		Class:       string(policy.ClassOrchestrate),
		Outcome:     string(policy.OutcomeAllowAndRecord),
		Rule:        policy.RuleTierResolution,
		Tier:        next.ResolvedTier,
		ActionCount: next.ActionCount,
	})

	g.logger.InfoContext(ctx, "complexity score supplied",
		"score", score,
		"tier", next.ResolvedTier,
	)
	return next, nil
}

// Begin starts a new cycle for the session.
func (g *Gatekeeper) Begin(ctx context.Context, sessionID string) (*session.State, error) {
	ctx = logging.WithSession(ctx, sessionID)
	ctx, span := g.tracer.Start(ctx, "gatekeeper.begin")
	defer span.End()

	var state *session.State
	err := g.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = g.manager.BeginSession(ctx, sessionID)
		return err
	})
	if err != nil {
		tracing.SetError(span, err)
		return state, err
	}

	g.logger.InfoContext(ctx, "session cycle started")
	return state, nil
}

// State returns the session's persisted state without modifying it, or nil
// when the session has never been seen.
func (g *Gatekeeper) State(ctx context.Context, sessionID string) (*session.State, error) {
	if sessionID == "" {
		return nil, session.ErrEmptySessionID
	}
	return g.manager.Store().Load(ctx, sessionID)
}

// reportViolations counts the violations added at time at.
func (g *Gatekeeper) reportViolations(state *session.State, at time.Time) {
	for i := len(state.Violations) - 1; i >= 0; i-- {
		v := state.Violations[i]
		if !v.At.Equal(at) {
			break
		}
		g.metrics.RecordViolation(v.Kind, string(v.Category))
	}
}

func (g *Gatekeeper) record(rec *trail.Record) {
	if g.trail == nil {
		return
	}
	if err := g.trail.Record(rec); err != nil {
		g.logger.Warn("trail record not queued", "error", err)
	}
}
