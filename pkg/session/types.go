package session

import "time"

// DefaultMaxViolations caps the violation log kept in a State.
const DefaultMaxViolations = 50

// Category distinguishes expected policy blocks from faults.
type Category string

const (
	// CategoryPolicy marks a policy working as intended.
	CategoryPolicy Category = "policy"

	// CategoryConfiguration marks a misconfigured catalog or rules.
	CategoryConfiguration Category = "configuration"

	// CategoryStorage marks an unreadable or unwritable state store.
	CategoryStorage Category = "storage"
)

// Violation is a recorded blocked or anomalous decision.
type Violation struct {
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"`
	Category Category  `json:"category"`
	Action   string    `json:"action,omitempty"`
	Missing  []string  `json:"missing,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// State is the persisted progress of one session's interaction cycle.
type State struct {
	SessionID       string      `json:"session_id"`
	GatePassed      bool        `json:"gate_passed"`
	ResolvedTier    string      `json:"resolved_tier,omitempty"`
	ComplexityScore *float64    `json:"complexity_score,omitempty"`
	ExecutedSteps   []string    `json:"executed_steps"`
	Violations      []Violation `json:"violations"`
	ActionCount     int64       `json:"action_count"`
}

// New returns the initial state for a session.
func New(sessionID string) *State {
	return &State{
		SessionID:     sessionID,
		ExecutedSteps: []string{},
		Violations:    []Violation{},
	}
}

// HasTier reports whether a tier has been resolved.
func (s *State) HasTier() bool {
	return s.ResolvedTier != ""
}

// HasStep reports whether step has been executed.
func (s *State) HasStep(step string) bool {
	for _, executed := range s.ExecutedSteps {
		if executed == step {
			return true
		}
	}
	return false
}

// AddStep records step as executed. It returns false if it already was.
func (s *State) AddStep(step string) bool {
	if s.HasStep(step) {
		return false
	}
	s.ExecutedSteps = append(s.ExecutedSteps, step)
	return true
}

// AddViolation appends v, dropping the oldest entries beyond max.
func (s *State) AddViolation(v Violation, max int) {
	s.Violations = append(s.Violations, v)
	s.trimViolations(max)
}

func (s *State) trimViolations(max int) {
	if max > 0 && len(s.Violations) > max {
		kept := make([]Violation, max)
		copy(kept, s.Violations[len(s.Violations)-max:])
		s.Violations = kept
	}
}

// normalize fills nil collections so decoded and fresh states compare equal.
func (s *State) normalize() {
	if s.ExecutedSteps == nil {
		s.ExecutedSteps = []string{}
	}
	if s.Violations == nil {
		s.Violations = []Violation{}
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cp := *s
	if s.ComplexityScore != nil {
		score := *s.ComplexityScore
		cp.ComplexityScore = &score
	}
	cp.ExecutedSteps = append([]string{}, s.ExecutedSteps...)
	cp.Violations = make([]Violation, len(s.Violations))
	for i, v := range s.Violations {
		if v.Missing != nil {
			v.Missing = append([]string{}, v.Missing...)
		}
		cp.Violations[i] = v
	}
	return &cp
}
