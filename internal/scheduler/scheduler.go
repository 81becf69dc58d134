package scheduler

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kingrea/threadkeeper/internal/metrics"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scoring"
)

const (
	// DefaultHistoryLimit is how many selection entries are kept by default.
	DefaultHistoryLimit = 256

	// ConfiguredMax asks Select for settings.MaxObligationsPerSelection.
	// Any negative count does the same.
	ConfiguredMax = -1
)

// HistoryEntry records one selection pass.
type HistoryEntry struct {
	At            time.Time `json:"at"`
	ObligationIDs []string  `json:"obligation_ids"`
}

// Selection is the outcome of a pass.
type Selection struct {
	Scores     []scoring.Score       `json:"scores"`
	Skipped    map[string]SkipReason `json:"skipped,omitempty"`
	SelectedAt time.Time             `json:"selected_at"`
	Duration   time.Duration         `json:"duration_ns"`
}

// IDs returns the selected obligation ids in rank order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Scores))
	for i, score := range s.Scores {
		ids[i] = score.ObligationID
	}
	return ids
}

// Scheduler owns the obligation store, the current context and settings, and
// the selection history.
type Scheduler struct {
	store    *obligation.Store
	engine   scoring.Engine
	settings scoring.Settings
	context  scoring.Context
	history  []HistoryEntry
	metrics  metrics.Metrics

	historyLimit int
	now          func() time.Time
	logger       Logger
	recorder     *metrics.Recorder
}

// New builds a scheduler with an empty pool.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        obligation.NewStore(),
		settings:     scoring.DefaultSettings(),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.store.OnChange(s.refreshMetrics)
	s.refreshMetrics()
	return s
}

// UpdateContext replaces the cached narrative context. With adaptive
// weighting enabled the weights are retuned immediately.
func (s *Scheduler) UpdateContext(chapter uint32, recentCharacters []string, tensionLevel float64, narrative string) {
	s.context = scoring.NewContext(chapter, recentCharacters, tensionLevel, narrative)
	s.logInfo("context: chapter %d, tension %.2f, %d recent characters", chapter, tensionLevel, len(s.context.RecentCharacters))
	if s.settings.EnableAdaptiveWeighting {
		s.tuneWeights()
	}
	s.refreshMetrics()
}

// SelectObligations runs a selection pass and returns the ranked scores.
// A negative maxCount uses the configured per-selection maximum; zero
// selects nothing.
func (s *Scheduler) SelectObligations(maxCount int) []scoring.Score {
	return s.Select(maxCount).Scores
}

// Select runs a selection pass: score, sort, resolve dependencies, filter,
// truncate, then mark the survivors as injected. Weights are whatever the
// last UpdateContext tuned them to.
func (s *Scheduler) Select(maxCount int) Selection {
	started := s.now()
	scored := s.scoreAll(started)
	if s.settings.EnableDependencyResolution {
		scored = ResolveDependencies(scored, s.dependenciesOf)
	}
	var skipped map[string]SkipReason
	if s.settings.EnableContextualFiltering {
		scored, skipped = FilterCandidates(scored, s.store.Get, s.settings.OverusePenaltyThreshold)
	}

	limit := maxCount
	if limit < 0 {
		limit = max(s.settings.MaxObligationsPerSelection, 0)
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	result := Selection{Scores: scored, Skipped: skipped, SelectedAt: started}
	ids := result.IDs()
	s.store.MarkInjected(ids, started)
	s.appendHistory(HistoryEntry{At: started, ObligationIDs: ids})

	result.Duration = s.now().Sub(started)
	s.refreshMetrics()
	s.metrics.LastSelectionDuration = result.Duration
	s.recorder.RecordSelection(context.Background(), len(ids), result.Duration, skipCounts(skipped))
	s.logInfo("select: %d of %d obligations [%s], %d filtered", len(ids), s.store.Len(), strings.Join(ids, ", "), len(skipped))
	for id, reason := range skipped {
		s.logInfo("select: skipped %s (%s: %s)", id, reason.Reason, reason.Detail)
	}
	return result
}

func (s *Scheduler) scoreAll(now time.Time) []scoring.Score {
	all := s.store.All()
	lookup := func(id string) (obligation.Obligation, bool) {
		o, ok := all[id]
		return o, ok
	}
	scored := make([]scoring.Score, 0, len(all))
	for _, o := range all {
		scored = append(scored, s.engine.Score(o, s.context, s.settings, lookup, now))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].TotalScore != scored[j].TotalScore {
			return scored[i].TotalScore > scored[j].TotalScore
		}
		return scored[i].ObligationID < scored[j].ObligationID
	})
	return scored
}

func (s *Scheduler) dependenciesOf(id string) []string {
	o, ok := s.store.Get(id)
	if !ok {
		return nil
	}
	return o.Dependencies
}

func (s *Scheduler) tuneWeights() {
	before := s.settings.Weights
	if before.Sum() == 0 {
		s.logWarn("weights: all weights are zero, skipping normalization")
	}
	critical := 0
	for _, o := range s.store.All() {
		if o.Urgency == obligation.UrgencyCritical {
			critical++
		}
	}
	s.settings.Weights = Tune(before, critical, s.context.TensionLevel, s.settings.TensionBalanceTarget)
	if s.settings.Weights != before {
		w := s.settings.Weights
		s.logInfo("weights: urgency %.3f salience %.3f freshness %.3f tension %.3f dependency %.3f context %.3f",
			w.Urgency, w.Salience, w.Freshness, w.TensionBalance, w.Dependency, w.ContextRelevance)
	}
}

func (s *Scheduler) appendHistory(entry HistoryEntry) {
	s.history = append(s.history, entry)
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]HistoryEntry(nil), s.history[over:]...)
	}
}

func (s *Scheduler) refreshMetrics() {
	last := s.metrics.LastSelectionDuration
	s.metrics = metrics.Compute(s.store.All(), metrics.Thresholds{
		CurrentChapter: s.context.CurrentChapter,
		Staleness:      s.settings.StalenessPenaltyThreshold,
		Overuse:        s.settings.OverusePenaltyThreshold,
	})
	s.metrics.LastSelectionDuration = last
}

func skipCounts(skipped map[string]SkipReason) map[string]int {
	if len(skipped) == 0 {
		return nil
	}
	counts := make(map[string]int, 2)
	for _, reason := range skipped {
		counts[string(reason.Reason)]++
	}
	return counts
}

func (s *Scheduler) logInfo(format string, args ...any) {
	if s.logger != nil {
		s.logger.Info(format, args...)
	}
}

func (s *Scheduler) logWarn(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(format, args...)
	}
}
