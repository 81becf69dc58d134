package scoring

import "strings"

// MaxRecentCharacters bounds the recent character list kept in a Context.
const MaxRecentCharacters = 10

// Context is the caller-supplied snapshot of where the story currently is.
type Context struct {
	CurrentChapter uint32 `json:"current_chapter"`
	// RecentCharacters is ordered most recent first.
	RecentCharacters []string `json:"recent_characters"`
	TensionLevel     float64  `json:"tension_level"`
	NarrativeContext string   `json:"narrative_context"`
}

// NewContext builds a Context, trimming and deduplicating the character list
// and bounding it to MaxRecentCharacters.
func NewContext(chapter uint32, recentCharacters []string, tension float64, narrative string) Context {
	return Context{
		CurrentChapter:   chapter,
		RecentCharacters: boundCharacters(recentCharacters),
		TensionLevel:     tension,
		NarrativeContext: narrative,
	}
}

func boundCharacters(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, min(len(names), MaxRecentCharacters))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if len(out) == MaxRecentCharacters {
			break
		}
	}
	return out
}

func (c Context) hasCharacter(name string) bool {
	for _, recent := range c.RecentCharacters {
		if recent == name {
			return true
		}
	}
	return false
}
