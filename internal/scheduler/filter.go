package scheduler

import (
	"fmt"

	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scoring"
)

const minContextRelevance = 0.3

// SkipReasonCode enumerates why the contextual filter dropped a candidate.
type SkipReasonCode string

const (
	SkipReasonLowRelevance SkipReasonCode = "low-relevance"
	SkipReasonOverused     SkipReasonCode = "overused"
)

// SkipReason explains why a candidate was excluded from a selection.
type SkipReason struct {
	Reason SkipReasonCode `json:"reason"`
	Detail string         `json:"detail"`
}

// FilterCandidates drops candidates with context relevance below 0.3 and
// overused candidates that are not critical. Kept candidates retain order.
func FilterCandidates(scored []scoring.Score, lookup scoring.Lookup, overuseThreshold uint32) ([]scoring.Score, map[string]SkipReason) {
	kept := make([]scoring.Score, 0, len(scored))
	var skipped map[string]SkipReason
	skip := func(id string, reason SkipReason) {
		if skipped == nil {
			skipped = make(map[string]SkipReason)
		}
		skipped[id] = reason
	}
	for _, s := range scored {
		if s.ContextRelevanceScore < minContextRelevance {
			skip(s.ObligationID, SkipReason{
				Reason: SkipReasonLowRelevance,
				Detail: fmt.Sprintf("context relevance %.2f below %.2f", s.ContextRelevanceScore, minContextRelevance),
			})
			continue
		}
		if o, ok := lookup(s.ObligationID); ok && o.InjectionCount > overuseThreshold && o.Urgency != obligation.UrgencyCritical {
			skip(s.ObligationID, SkipReason{
				Reason: SkipReasonOverused,
				Detail: fmt.Sprintf("surfaced %d times, limit %d", o.InjectionCount, overuseThreshold),
			})
			continue
		}
		kept = append(kept, s)
	}
	return kept, skipped
}
