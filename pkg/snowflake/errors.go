package snowflake

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("snowflake: invalid node identity")
	ErrClockRegression = errors.New("snowflake: clock moved backwards, refusing to generate id")
	ErrCancelled       = errors.New("snowflake: cancelled while waiting for next millisecond")
	ErrEpochOverflow   = errors.New("snowflake: time outside the range representable since epoch")
)

// ConfigError reports a node identity field outside its bit width.
type ConfigError struct {
	Field string
	Value int64
	Max   int64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("snowflake: %s %d can't be greater than %d or less than 0", e.Field, e.Value, e.Max)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ClockRegressionError reports a clock reading earlier than the last
// successful Generate. Both values are Unix milliseconds.
type ClockRegressionError struct {
	Last int64
	Now  int64
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("snowflake: clock moved backwards by %dms (last %d, now %d)", e.Last-e.Now, e.Last, e.Now)
}

func (e *ClockRegressionError) Unwrap() error { return ErrClockRegression }

// CancelledError reports that the caller's context ended while it waited for
// the sequence space of Timestamp (Unix ms) to roll over. It matches both
// ErrCancelled and the context's own error.
type CancelledError struct {
	Timestamp int64
	Err       error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("snowflake: cancelled waiting past %d: %v", e.Timestamp, e.Err)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Err} }
