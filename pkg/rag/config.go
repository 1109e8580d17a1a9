package rag

import "time"

const (
	DefaultMaxSubQuestions = 5
	DefaultTopK            = 4
	DefaultStageTimeout    = 60 * time.Second
)

// Config carries the pipeline knobs that must not be hard-coded: the
// sub-question bound, per-query top-k, and the timeout applied to each
// external call.
type Config struct {
	MaxSubQuestions int
	TopK            int
	StageTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSubQuestions: DefaultMaxSubQuestions,
		TopK:            DefaultTopK,
		StageTimeout:    DefaultStageTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxSubQuestions <= 0 {
		c.MaxSubQuestions = DefaultMaxSubQuestions
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = DefaultStageTimeout
	}
	return c
}
