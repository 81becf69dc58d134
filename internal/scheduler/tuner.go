package scheduler

import (
	"math"

	"github.com/kingrea/threadkeeper/internal/scoring"
)

const (
	criticalPressureCount = 3
	urgencyBoost          = 1.2
	urgencyWeightCap      = 0.4
	tensionGapTrigger     = 0.5
	tensionBoost          = 1.3
	tensionWeightCap      = 0.3
)

// Tune adjusts weights for the current pool and renormalizes them. More than
// three critical obligations raise the urgency weight; a tension level far
// from target raises the tension balance weight. A zero sum is left as is.
func Tune(w scoring.Weights, criticalCount int, tensionLevel, target float64) scoring.Weights {
	if criticalCount > criticalPressureCount {
		w.Urgency = math.Min(w.Urgency*urgencyBoost, urgencyWeightCap)
	}
	if math.Abs(tensionLevel-target) > tensionGapTrigger {
		w.TensionBalance = math.Min(w.TensionBalance*tensionBoost, tensionWeightCap)
	}
	return w.Normalized()
}
