// Package obligation holds the narrative obligation model and the in-memory
// store that owns it. Obligations are pending commitments (an unresolved
// thread, a promised confrontation) that the scheduler surfaces over time.
package obligation
