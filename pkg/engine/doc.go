// Package engine implements the workflows that sit on top of a
// provider.Provider. The Engine runs the plan workflow (one sequential
// planning call, a concurrent fan-out of dependent step calls, and an
// ordered fan-in), prompt chaining, and single prompt submission. Every run
// is tagged with a run ID that appears in logs and traces.
package engine
