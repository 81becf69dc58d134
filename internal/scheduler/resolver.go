package scheduler

import "github.com/kingrea/threadkeeper/internal/scoring"

// ResolveDependencies reorders score-sorted candidates so that obligations
// whose prerequisites are already admitted come first. It makes one pass:
// a candidate is admitted when it has no dependencies or all of them were
// admitted earlier in the pass; everything else follows in score order.
//
// This is not a topological sort. A prerequisite that scores lower than its
// dependent is never admitted ahead of it, so chains longer than one hop can
// come out in dependency-incorrect order.
func ResolveDependencies(scored []scoring.Score, dependencies func(id string) []string) []scoring.Score {
	if len(scored) == 0 {
		return nil
	}
	admitted := make(map[string]struct{}, len(scored))
	resolved := make([]scoring.Score, 0, len(scored))
	var deferred []scoring.Score
	for _, s := range scored {
		if allAdmitted(dependencies(s.ObligationID), admitted) {
			admitted[s.ObligationID] = struct{}{}
			resolved = append(resolved, s)
			continue
		}
		deferred = append(deferred, s)
	}
	return append(resolved, deferred...)
}

func allAdmitted(deps []string, admitted map[string]struct{}) bool {
	for _, dep := range deps {
		if _, ok := admitted[dep]; !ok {
			return false
		}
	}
	return true
}
