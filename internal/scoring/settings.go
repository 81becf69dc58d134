package scoring

// Weights scales each score component. After tuning they sum to 1.
type Weights struct {
	Urgency          float64 `yaml:"urgency" json:"urgency"`
	Salience         float64 `yaml:"salience" json:"salience"`
	Freshness        float64 `yaml:"freshness" json:"freshness"`
	TensionBalance   float64 `yaml:"tension_balance" json:"tension_balance"`
	Dependency       float64 `yaml:"dependency" json:"dependency"`
	ContextRelevance float64 `yaml:"context_relevance" json:"context_relevance"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		Urgency:          0.25,
		Salience:         0.20,
		Freshness:        0.15,
		TensionBalance:   0.15,
		Dependency:       0.15,
		ContextRelevance: 0.10,
	}
}

// Sum adds the six weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Salience + w.Freshness + w.TensionBalance + w.Dependency + w.ContextRelevance
}

// Normalized divides every weight by the sum. A zero sum returns w as is.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{
		Urgency:          w.Urgency / sum,
		Salience:         w.Salience / sum,
		Freshness:        w.Freshness / sum,
		TensionBalance:   w.TensionBalance / sum,
		Dependency:       w.Dependency / sum,
		ContextRelevance: w.ContextRelevance / sum,
	}
}

// Settings configures a scheduling pass.
type Settings struct {
	Weights Weights `yaml:"weights" json:"weights"`
	// StalenessPenaltyThreshold is measured in chapters since introduction.
	StalenessPenaltyThreshold uint32 `yaml:"staleness_penalty_threshold" json:"staleness_penalty_threshold"`
	// OverusePenaltyThreshold is an injection count; counts above it are overused.
	OverusePenaltyThreshold    uint32  `yaml:"overuse_penalty_threshold" json:"overuse_penalty_threshold"`
	TensionBalanceTarget       float64 `yaml:"tension_balance_target" json:"tension_balance_target"`
	MaxObligationsPerSelection int     `yaml:"max_obligations_per_selection" json:"max_obligations_per_selection"`
	EnableAdaptiveWeighting    bool    `yaml:"enable_adaptive_weighting" json:"enable_adaptive_weighting"`
	EnableDependencyResolution bool    `yaml:"enable_dependency_resolution" json:"enable_dependency_resolution"`
	EnableContextualFiltering  bool    `yaml:"enable_contextual_filtering" json:"enable_contextual_filtering"`
}

// DefaultSettings returns the stock configuration with every feature enabled.
func DefaultSettings() Settings {
	return Settings{
		Weights:                    DefaultWeights(),
		StalenessPenaltyThreshold:  5,
		OverusePenaltyThreshold:    3,
		TensionBalanceTarget:       0.0,
		MaxObligationsPerSelection: 3,
		EnableAdaptiveWeighting:    true,
		EnableDependencyResolution: true,
		EnableContextualFiltering:  true,
	}
}
