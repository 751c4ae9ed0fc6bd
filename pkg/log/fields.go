package log

import "time"

// Well-known field keys.
const (
	ComponentKey = "component"
	OperationKey = "operation"
	ErrorKey     = "error"
	RunIDKey     = "run_id"
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

func Str(key, value string) Field              { return Field{Key: key, Value: value} }
func Int(key string, value int) Field          { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field      { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field    { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field        { return Field{Key: key, Value: value} }
func Dur(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Any(key string, value interface{}) Field  { return Field{Key: key, Value: value} }

// Err returns a field under ErrorKey.
func Err(err error) Field { return Field{Key: ErrorKey, Value: err} }

// Component tags a logger with the subsystem that owns it.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Operation tags a log line with the operation in progress.
func Operation(name string) Field { return Field{Key: OperationKey, Value: name} }
