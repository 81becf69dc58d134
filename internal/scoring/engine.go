package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/kingrea/threadkeeper/internal/obligation"
)

const (
	// readyProgress is the fulfillment level at which a dependency counts as met.
	readyProgress = 0.8

	stalenessStep        = 0.1
	unfulfilledSalience  = 0.3
	freshnessWindowHours = 24.0
	overusedFreshness    = 0.5
	neutralTension       = 0.5
	relevanceBase        = 0.5
	relevancePerPerson   = 0.2
	relevanceNarrative   = 0.3
)

// Score is the ephemeral result of scoring one obligation.
type Score struct {
	ObligationID          string  `json:"obligation_id"`
	TotalScore            float64 `json:"total_score"`
	UrgencyScore          float64 `json:"urgency_score"`
	SalienceScore         float64 `json:"salience_score"`
	FreshnessScore        float64 `json:"freshness_score"`
	TensionBalanceScore   float64 `json:"tension_balance_score"`
	DependencyScore       float64 `json:"dependency_score"`
	ContextRelevanceScore float64 `json:"context_relevance_score"`
	Justification         string  `json:"justification"`
}

// Lookup resolves a dependency id to its obligation.
type Lookup func(id string) (obligation.Obligation, bool)

// Engine scores obligations. The zero value is ready to use.
type Engine struct{}

// Score computes every component for o and the weighted total.
func (Engine) Score(o obligation.Obligation, ctx Context, settings Settings, lookup Lookup, now time.Time) Score {
	s := Score{
		ObligationID:          o.ID,
		UrgencyScore:          UrgencyComponent(o, ctx.CurrentChapter),
		SalienceScore:         SalienceComponent(o),
		FreshnessScore:        FreshnessComponent(o, now, settings.OverusePenaltyThreshold),
		TensionBalanceScore:   TensionComponent(o, ctx.TensionLevel, settings.TensionBalanceTarget),
		DependencyScore:       DependencyComponent(o, lookup),
		ContextRelevanceScore: ContextComponent(o, ctx),
	}
	w := settings.Weights
	s.TotalScore = w.Urgency*s.UrgencyScore +
		w.Salience*s.SalienceScore +
		w.Freshness*s.FreshnessScore +
		w.TensionBalance*s.TensionBalanceScore +
		w.Dependency*s.DependencyScore +
		w.ContextRelevance*s.ContextRelevanceScore
	s.Justification = justify(s)
	return s
}

// UrgencyComponent scales the tier's base score by 0.1 per chapter since
// introduction, capped at 1.
func UrgencyComponent(o obligation.Obligation, currentChapter uint32) float64 {
	multiplier := 1 + stalenessStep*float64(o.ChaptersSinceIntroduced(currentChapter))
	return math.Min(o.Urgency.BaseScore()*multiplier, 1)
}

// SalienceComponent adds the manual boost to a bonus for unfinished work.
func SalienceComponent(o obligation.Obligation) float64 {
	boost := obligation.Clamp(o.SalienceBoost, 0, 1)
	return obligation.Clamp(boost+unfulfilledSalience*(1-o.FulfillmentProgress), 0, 1)
}

// FreshnessComponent is 1 for never-surfaced obligations and otherwise grows
// back over a day, halved once the obligation is overused.
func FreshnessComponent(o obligation.Obligation, now time.Time, overuseThreshold uint32) float64 {
	if o.LastInjection == nil {
		return 1
	}
	hours := now.Sub(*o.LastInjection).Hours()
	if hours < 0 {
		hours = 0
	}
	penalty := 1.0
	if o.InjectionCount > overuseThreshold {
		penalty = overusedFreshness
	}
	return math.Min(hours/freshnessWindowHours, 1) * penalty
}

// TensionComponent rewards obligations that pull the story back toward the
// target: when the obligation and the current tension sit on opposite sides
// of the target it scores by closeness, otherwise it is neutral.
func TensionComponent(o obligation.Obligation, currentTension, target float64) float64 {
	offset := o.TensionVector - target
	drift := currentTension - target
	if sign(offset)*sign(drift) < 0 {
		return obligation.Clamp(1-math.Abs(offset), 0, 1)
	}
	return neutralTension
}

// DependencyComponent is the share of prerequisites at or above 80%
// fulfillment. Ids missing from the store count as satisfied.
func DependencyComponent(o obligation.Obligation, lookup Lookup) float64 {
	if len(o.Dependencies) == 0 {
		return 1
	}
	satisfied := 0
	for _, id := range o.Dependencies {
		if lookup == nil {
			satisfied++
			continue
		}
		dep, ok := lookup(id)
		if !ok || dep.FulfillmentProgress >= readyProgress {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(o.Dependencies))
}

// ContextComponent measures overlap with the recent cast and narrative text.
func ContextComponent(o obligation.Obligation, ctx Context) float64 {
	score := relevanceBase
	for _, name := range o.CharactersInvolved {
		if ctx.hasCharacter(name) {
			score += relevancePerPerson
		}
	}
	score += relevanceNarrative * overlapFraction(ctx.NarrativeContext, o.Content)
	return obligation.Clamp(score, 0, 1)
}

func justify(s Score) string {
	var reasons []string
	if s.UrgencyScore > 0.8 {
		reasons = append(reasons, "High urgency")
	}
	if s.SalienceScore > 0.7 {
		reasons = append(reasons, "Strong salience")
	}
	if s.FreshnessScore > 0.8 {
		reasons = append(reasons, "Fresh")
	} else if s.FreshnessScore < 0.3 {
		reasons = append(reasons, "Overused recently")
	}
	if s.TensionBalanceScore > 0.7 {
		reasons = append(reasons, "Helps balance tension")
	}
	if s.DependencyScore < 0.5 {
		reasons = append(reasons, "Blocked by dependencies")
	}
	if s.ContextRelevanceScore > 0.7 {
		reasons = append(reasons, "Highly relevant to current context")
	}
	if len(reasons) == 0 {
		return "Balanced priority"
	}
	return strings.Join(reasons, ", ")
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
