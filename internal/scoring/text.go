package scoring

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// words case-folds text and splits it on anything that is not a letter or
// digit. A Caser carries state, so each call gets its own.
func words(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	folded := cases.Fold().String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// overlapFraction returns the share of narrative words that also occur in
// content. Repeated narrative words count each time. An empty narrative
// yields 0.
func overlapFraction(narrative, content string) float64 {
	narrativeWords := words(narrative)
	if len(narrativeWords) == 0 {
		return 0
	}
	contentSet := make(map[string]struct{})
	for _, w := range words(content) {
		contentSet[w] = struct{}{}
	}
	matched := 0
	for _, w := range narrativeWords {
		if _, ok := contentSet[w]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(narrativeWords))
}
