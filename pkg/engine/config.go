package engine

import "go.uber.org/zap"

// Config holds configuration for the Engine.
type Config struct {
	// Logger receives workflow logs. Nil discards them.
	Logger *zap.Logger

	// StrictFanOut makes a failed step call abort the plan workflow. By
	// default a failed step degrades to an empty result in the aggregate.
	StrictFanOut bool
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
