// Package scheduler coordinates a selection pass over the obligation pool:
// it tunes weights against the current context, scores every obligation,
// admits ready work ahead of blocked work, drops low-relevance or overused
// candidates, and records what was surfaced. It performs no I/O of its own
// and is not safe for concurrent use.
package scheduler
