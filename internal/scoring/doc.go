// Package scoring computes the six-factor weighted score the scheduler uses
// to rank obligations: urgency, salience, freshness, tension balance,
// dependency readiness and context relevance.
package scoring
