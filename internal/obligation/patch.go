package obligation

// Patch carries optional field updates as data. Nil fields are left alone.
// InjectionCount is deliberately absent: it only moves through selection
// and ResetInjections.
type Patch struct {
	Content             *string   `yaml:"content,omitempty" json:"content,omitempty"`
	Category            *Category `yaml:"category,omitempty" json:"category,omitempty"`
	Urgency             *Urgency  `yaml:"urgency,omitempty" json:"urgency,omitempty"`
	ChapterIntroduced   *uint32   `yaml:"chapter_introduced,omitempty" json:"chapter_introduced,omitempty"`
	CharactersInvolved  []string  `yaml:"characters_involved,omitempty" json:"characters_involved,omitempty"`
	TensionVector       *float64  `yaml:"tension_vector,omitempty" json:"tension_vector,omitempty"`
	SalienceBoost       *float64  `yaml:"salience_boost,omitempty" json:"salience_boost,omitempty"`
	FulfillmentProgress *float64  `yaml:"fulfillment_progress,omitempty" json:"fulfillment_progress,omitempty"`
	Dependencies        []string  `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Content == nil && p.Category == nil && p.Urgency == nil &&
		p.ChapterIntroduced == nil && p.CharactersInvolved == nil &&
		p.TensionVector == nil && p.SalienceBoost == nil &&
		p.FulfillmentProgress == nil && p.Dependencies == nil
}

func (p Patch) apply(o *Obligation) {
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.Category != nil {
		o.Category = *p.Category
	}
	if p.Urgency != nil {
		o.Urgency = *p.Urgency
	}
	if p.ChapterIntroduced != nil {
		o.ChapterIntroduced = *p.ChapterIntroduced
	}
	if p.CharactersInvolved != nil {
		o.CharactersInvolved = append([]string(nil), p.CharactersInvolved...)
	}
	if p.TensionVector != nil {
		o.TensionVector = *p.TensionVector
	}
	if p.SalienceBoost != nil {
		o.SalienceBoost = *p.SalienceBoost
	}
	if p.FulfillmentProgress != nil {
		o.FulfillmentProgress = *p.FulfillmentProgress
	}
	if p.Dependencies != nil {
		o.Dependencies = append([]string(nil), p.Dependencies...)
	}
}
