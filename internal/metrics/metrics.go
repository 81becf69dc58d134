package metrics

import (
	"time"

	"github.com/kingrea/threadkeeper/internal/obligation"
)

const (
	negativeTension = -0.1
	positiveTension = 0.1
)

// Thresholds are the fairness limits the snapshot is computed against.
type Thresholds struct {
	CurrentChapter uint32
	// Staleness is measured in chapters since introduction.
	Staleness uint32
	// Overuse is an injection count; counts above it are overused.
	Overuse uint32
}

// TensionDistribution holds the fraction of obligations by tension sign.
type TensionDistribution struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Metrics is a recomputed snapshot of the pool.
type Metrics struct {
	TotalObligations         int                         `json:"total_obligations"`
	ByCategory               map[obligation.Category]int `json:"by_category"`
	ByUrgency                map[obligation.Urgency]int  `json:"by_urgency"`
	AverageInjectionCount    float64                     `json:"average_injection_count"`
	AverageFulfillment       float64                     `json:"average_fulfillment"`
	StaleCount               int                         `json:"stale_count"`
	OverusedCount            int                         `json:"overused_count"`
	TensionDistribution      TensionDistribution         `json:"tension_distribution"`
	DependencyChainLengthMax int                         `json:"dependency_chain_length_max"`
	LastSelectionDuration    time.Duration               `json:"last_selection_duration_ns"`
}

// Compute builds a snapshot from the given obligations. LastSelectionDuration
// is left zero; the scheduler carries it across recomputations.
func Compute(items map[string]obligation.Obligation, th Thresholds) Metrics {
	m := Metrics{
		TotalObligations: len(items),
		ByCategory:       make(map[obligation.Category]int),
		ByUrgency:        make(map[obligation.Urgency]int),
	}
	if len(items) == 0 {
		return m
	}
	var injections, fulfillment float64
	var negative, neutral, positive int
	for _, o := range items {
		m.ByCategory[o.Category]++
		m.ByUrgency[o.Urgency]++
		injections += float64(o.InjectionCount)
		fulfillment += o.FulfillmentProgress
		if IsStale(o, th.CurrentChapter, th.Staleness) {
			m.StaleCount++
		}
		if IsOverused(o, th.Overuse) {
			m.OverusedCount++
		}
		switch {
		case o.TensionVector < negativeTension:
			negative++
		case o.TensionVector > positiveTension:
			positive++
		default:
			neutral++
		}
	}
	total := float64(len(items))
	m.AverageInjectionCount = injections / total
	m.AverageFulfillment = fulfillment / total
	m.TensionDistribution = TensionDistribution{
		Negative: float64(negative) / total,
		Neutral:  float64(neutral) / total,
		Positive: float64(positive) / total,
	}
	m.DependencyChainLengthMax = MaxChainDepth(items)
	return m
}

// IsStale reports whether more than threshold chapters have passed since the
// obligation was introduced. Injected and never-injected obligations use the
// same test.
func IsStale(o obligation.Obligation, currentChapter, threshold uint32) bool {
	if o.Injected() {
		return o.ChaptersSinceIntroduced(currentChapter) > threshold
	}
	return o.ChaptersSinceIntroduced(currentChapter) > threshold
}

// IsOverused reports whether the obligation was surfaced more than threshold
// times.
func IsOverused(o obligation.Obligation, threshold uint32) bool {
	return o.InjectionCount > threshold
}

// MaxChainDepth returns the longest dependency chain in items. A chain of one
// obligation with no present dependencies has depth 1. Revisiting an id on
// the current path contributes 0, so cycles terminate.
func MaxChainDepth(items map[string]obligation.Obligation) int {
	w := depthWalker{items: items, onPath: map[string]bool{}, memo: map[string]int{}}
	best := 0
	for id := range items {
		if d, _ := w.depth(id); d > best {
			best = d
		}
	}
	return best
}

type depthWalker struct {
	items  map[string]obligation.Obligation
	onPath map[string]bool
	// memo only holds depths whose walk never touched a cycle guard, since
	// those are independent of where the walk started.
	memo map[string]int
}

func (w *depthWalker) depth(id string) (int, bool) {
	if w.onPath[id] {
		return 0, true
	}
	if d, ok := w.memo[id]; ok {
		return d, false
	}
	o, ok := w.items[id]
	if !ok {
		return 0, false
	}
	w.onPath[id] = true
	deepest, cyclic := 0, false
	for _, dep := range o.Dependencies {
		d, c := w.depth(dep)
		if d > deepest {
			deepest = d
		}
		cyclic = cyclic || c
	}
	delete(w.onPath, id)
	if !cyclic {
		w.memo[id] = 1 + deepest
	}
	return 1 + deepest, cyclic
}
