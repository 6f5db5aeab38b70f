package pipeline

import (
	"github.com/veigalabs/tonesentry/internal/scorer"
)

// Action is the single moderation outcome for one message. A message never
// produces more than one warning.
type Action int

const (
	ActionNone Action = iota
	ActionThreat
	ActionCoercive
	ActionAbusive
)

func (a Action) String() string {
	switch a {
	case ActionThreat:
		return "threat"
	case ActionCoercive:
		return "coercive"
	case ActionAbusive:
		return "abusive"
	default:
		return "none"
	}
}

// Flags are the lexical and similarity detector outputs computed before the
// category scorer runs.
type Flags struct {
	Abusive        bool
	ExplicitThreat bool
	ImplicitThreat bool
}

type Thresholds struct {
	Aggression        float64
	Harassment        float64
	Threat            float64
	CoerciveAuthority float64
	Condescension     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Aggression:        0.5,
		Harassment:        0.5,
		Threat:            0.5,
		CoerciveAuthority: 0.5,
		Condescension:     0.3,
	}
}

// Input is everything the decision engine needs for one message. Deciding the
// same Input twice always yields the same Action.
type Input struct {
	Text           string
	LegalJustified bool
	Flags          Flags
	Assessment     scorer.Assessment
	HasAssessment  bool
}

type rule struct {
	name    string
	matches func(Input) (Action, bool)
}

// Engine evaluates a fixed, ordered rule list. The first rule that matches
// decides the message; later rules are never consulted.
type Engine struct {
	thresholds Thresholds
	reasonable func(text string, modelScore float64) bool
	rules      []rule
}

func NewEngine(thresholds Thresholds, reasonable func(string, float64) bool) *Engine {
	if reasonable == nil {
		reasonable = scorer.IsReasonableResponse
	}
	e := &Engine{
		thresholds: thresholds,
		reasonable: reasonable,
	}
	e.rules = []rule{
		{name: "legal_justification", matches: e.legalJustification},
		{name: "explicit_threat", matches: e.explicitThreat},
		{name: "implicit_threat", matches: e.implicitThreat},
		{name: "no_signal", matches: e.noSignal},
		{name: "threat_category", matches: e.threatCategory},
		{name: "coercive_category", matches: e.coerciveCategory},
		{name: "abusive_category", matches: e.abusiveCategory},
	}
	return e
}

// Decide runs the rule list in priority order and returns the terminal action.
func (e *Engine) Decide(in Input) Action {
	for _, r := range e.rules {
		if action, ok := r.matches(in); ok {
			return action
		}
	}
	return ActionNone
}

func (e *Engine) legalJustification(in Input) (Action, bool) {
	if in.LegalJustified {
		return ActionNone, true
	}
	return ActionNone, false
}

func (e *Engine) explicitThreat(in Input) (Action, bool) {
	if in.Flags.ExplicitThreat {
		return ActionThreat, true
	}
	return ActionNone, false
}

func (e *Engine) implicitThreat(in Input) (Action, bool) {
	if in.Flags.ImplicitThreat {
		return ActionThreat, true
	}
	return ActionNone, false
}

func (e *Engine) noSignal(in Input) (Action, bool) {
	if !in.Flags.Abusive && (!in.HasAssessment || len(in.Assessment.Scores) == 0) {
		return ActionNone, true
	}
	return ActionNone, false
}

func (e *Engine) threatCategory(in Input) (Action, bool) {
	if in.HasAssessment && in.Assessment.Scores[scorer.CategoryThreat] >= e.thresholds.Threat {
		return ActionThreat, true
	}
	return ActionNone, false
}

func (e *Engine) coerciveCategory(in Input) (Action, bool) {
	if !in.HasAssessment {
		return ActionNone, false
	}
	score := in.Assessment.Scores[scorer.CategoryCoerciveAuthority]
	if score < e.thresholds.CoerciveAuthority {
		return ActionNone, false
	}
	if e.reasonable(in.Text, score) {
		return ActionNone, false
	}
	return ActionCoercive, true
}

func (e *Engine) abusiveCategory(in Input) (Action, bool) {
	if in.Flags.Abusive {
		return ActionAbusive, true
	}
	if !in.HasAssessment {
		return ActionNone, false
	}
	scores := in.Assessment.Scores
	if scores[scorer.CategoryAggression] >= e.thresholds.Aggression ||
		scores[scorer.CategoryHarassment] >= e.thresholds.Harassment ||
		scores[scorer.CategoryCondescension] >= e.thresholds.Condescension {
		return ActionAbusive, true
	}
	return ActionNone, false
}
