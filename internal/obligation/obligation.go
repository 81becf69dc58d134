package obligation

import (
	"fmt"
	"strings"
	"time"
)

// Category groups obligations by the kind of narrative work they represent.
type Category string

const (
	CategoryCharacterDevelopment Category = "character_development"
	CategoryPlotAdvancement      Category = "plot_advancement"
	CategoryWorldBuilding        Category = "world_building"
	CategoryEmotionalResolution  Category = "emotional_resolution"
	CategoryForeshadowing        Category = "foreshadowing"
	CategoryThematicExploration  Category = "thematic_exploration"
	CategoryDialoguePromise      Category = "dialogue_promise"
	CategorySettingDetail        Category = "setting_detail"
	CategoryConflictResolution   Category = "conflict_resolution"
	CategoryRelationshipDynamics Category = "relationship_dynamics"
)

// Categories lists every known category in declaration order.
var Categories = []Category{
	CategoryCharacterDevelopment,
	CategoryPlotAdvancement,
	CategoryWorldBuilding,
	CategoryEmotionalResolution,
	CategoryForeshadowing,
	CategoryThematicExploration,
	CategoryDialoguePromise,
	CategorySettingDetail,
	CategoryConflictResolution,
	CategoryRelationshipDynamics,
}

// ParseCategory resolves a category name case-insensitively. Hyphens and
// spaces are accepted in place of underscores.
func ParseCategory(value string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, c := range Categories {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("obligation: unknown category %q", value)
}

// Urgency is an ordered priority tier. Ordering comes from Rank, never from
// the string value.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Urgencies lists the tiers from lowest to highest.
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}

// ParseUrgency resolves an urgency tier case-insensitively.
func ParseUrgency(value string) (Urgency, error) {
	normalized := Urgency(strings.ToLower(strings.TrimSpace(value)))
	if normalized.Rank() == 0 {
		return "", fmt.Errorf("obligation: unknown urgency %q", value)
	}
	return normalized, nil
}

// Rank returns 1 for low through 4 for critical, and 0 for unknown values.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	default:
		return 0
	}
}

// Less reports whether u ranks below other.
func (u Urgency) Less(other Urgency) bool {
	return u.Rank() < other.Rank()
}

// BaseScore is the urgency component before staleness scaling.
func (u Urgency) BaseScore() float64 {
	switch u {
	case UrgencyCritical:
		return 1.0
	case UrgencyHigh:
		return 0.75
	case UrgencyMedium:
		return 0.5
	case UrgencyLow:
		return 0.25
	default:
		return 0
	}
}

// Obligation is a single pending narrative commitment.
type Obligation struct {
	ID                  string     `yaml:"id" json:"id"`
	Content             string     `yaml:"content" json:"content"`
	Category            Category   `yaml:"category" json:"category"`
	Urgency             Urgency    `yaml:"urgency" json:"urgency"`
	CreatedAt           time.Time  `yaml:"created_at" json:"created_at"`
	LastInjection       *time.Time `yaml:"last_injection,omitempty" json:"last_injection,omitempty"`
	InjectionCount      uint32     `yaml:"injection_count" json:"injection_count"`
	ChapterIntroduced   uint32     `yaml:"chapter_introduced" json:"chapter_introduced"`
	CharactersInvolved  []string   `yaml:"characters_involved,omitempty" json:"characters_involved,omitempty"`
	TensionVector       float64    `yaml:"tension_vector" json:"tension_vector"`
	SalienceBoost       float64    `yaml:"salience_boost" json:"salience_boost"`
	FulfillmentProgress float64    `yaml:"fulfillment_progress" json:"fulfillment_progress"`
	Dependencies        []string   `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (o Obligation) Clone() Obligation {
	out := o
	if o.LastInjection != nil {
		ts := *o.LastInjection
		out.LastInjection = &ts
	}
	if o.CharactersInvolved != nil {
		out.CharactersInvolved = append([]string(nil), o.CharactersInvolved...)
	}
	if o.Dependencies != nil {
		out.Dependencies = append([]string(nil), o.Dependencies...)
	}
	return out
}

// ChaptersSinceIntroduced returns how many chapters have passed since the
// obligation was introduced, saturating at zero.
func (o Obligation) ChaptersSinceIntroduced(currentChapter uint32) uint32 {
	if currentChapter <= o.ChapterIntroduced {
		return 0
	}
	return currentChapter - o.ChapterIntroduced
}

// Injected reports whether the obligation has been surfaced at least once.
func (o Obligation) Injected() bool {
	return o.LastInjection != nil
}

func (o *Obligation) clamp() {
	o.FulfillmentProgress = Clamp(o.FulfillmentProgress, 0, 1)
	o.SalienceBoost = Clamp(o.SalienceBoost, 0, 1)
	o.TensionVector = Clamp(o.TensionVector, -1, 1)
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
