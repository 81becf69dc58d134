package scheduler

import (
	"sort"

	"github.com/kingrea/threadkeeper/internal/metrics"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scoring"
)

// AddObligation inserts o, replacing any obligation with the same id.
func (s *Scheduler) AddObligation(o obligation.Obligation) {
	s.store.Add(o)
}

// RemoveObligation deletes and returns the obligation.
func (s *Scheduler) RemoveObligation(id string) (obligation.Obligation, bool) {
	return s.store.Remove(id)
}

// UpdateObligation mutates the obligation in place. A mutate error leaves the
// obligation unchanged and is returned as is.
func (s *Scheduler) UpdateObligation(id string, mutate func(*obligation.Obligation) error) (bool, error) {
	return s.store.Update(id, mutate)
}

// PatchObligation applies an optional-field patch.
func (s *Scheduler) PatchObligation(id string, p obligation.Patch) bool {
	return s.store.Apply(id, p)
}

// UpdateFulfillmentProgress sets progress clamped to [0,1]. Fully resolved
// obligations stay in the pool until removed.
func (s *Scheduler) UpdateFulfillmentProgress(id string, progress float64) bool {
	ok, _ := s.store.Update(id, func(o *obligation.Obligation) error {
		o.FulfillmentProgress = obligation.Clamp(progress, 0, 1)
		return nil
	})
	return ok
}

// GetObligation returns a copy of one obligation.
func (s *Scheduler) GetObligation(id string) (obligation.Obligation, bool) {
	return s.store.Get(id)
}

// GetAllObligations returns a copy of the pool keyed by id.
func (s *Scheduler) GetAllObligations() map[string]obligation.Obligation {
	return s.store.All()
}

// GetStaleObligations lists obligations introduced more than threshold
// chapters before the current chapter, ordered by id.
func (s *Scheduler) GetStaleObligations(threshold uint32) []obligation.Obligation {
	chapter := s.context.CurrentChapter
	return s.filterPool(func(o obligation.Obligation) bool {
		return metrics.IsStale(o, chapter, threshold)
	})
}

// GetOverusedObligations lists obligations surfaced more than threshold
// times, ordered by id.
func (s *Scheduler) GetOverusedObligations(threshold uint32) []obligation.Obligation {
	return s.filterPool(func(o obligation.Obligation) bool {
		return metrics.IsOverused(o, threshold)
	})
}

// ResetInjectionStats zeroes injection counters and clears the history.
func (s *Scheduler) ResetInjectionStats() {
	s.history = nil
	s.store.ResetInjections()
	s.logInfo("reset: injection stats cleared for %d obligations", s.store.Len())
}

// Metrics returns the latest snapshot.
func (s *Scheduler) Metrics() metrics.Metrics {
	return s.metrics
}

// Settings returns the current settings, including tuned weights.
func (s *Scheduler) Settings() scoring.Settings {
	return s.settings
}

// SetSettings replaces the settings and refreshes metrics against the new
// thresholds.
func (s *Scheduler) SetSettings(settings scoring.Settings) {
	s.settings = settings
	s.refreshMetrics()
}

// Context returns the cached narrative context.
func (s *Scheduler) Context() scoring.Context {
	return s.context
}

// History returns a copy of the recorded selections, oldest first.
func (s *Scheduler) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	for i, entry := range s.history {
		out[i] = HistoryEntry{At: entry.At, ObligationIDs: append([]string(nil), entry.ObligationIDs...)}
	}
	return out
}

func (s *Scheduler) filterPool(keep func(obligation.Obligation) bool) []obligation.Obligation {
	var out []obligation.Obligation
	for _, o := range s.store.All() {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
