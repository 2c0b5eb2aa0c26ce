package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// QueueError represents an order channel failure
type QueueError struct {
	Op        string // Operation that failed ("send", "consume", "dial")
	Queue     string // Queue name
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *QueueError) Error() string {
	return e.Op + " " + e.Queue + ": " + e.Err.Error()
}

func (e *QueueError) IsRetriable() bool {
	return e.Retriable
}

func (e *QueueError) Unwrap() error {
	return e.Err
}

// NewQueueError creates a new retriable queue error
func NewQueueError(op, queue string, err error) *QueueError {
	return &QueueError{Op: op, Queue: queue, Err: err, Retriable: true}
}

// NewFatalQueueError creates a non-retriable queue error
func NewFatalQueueError(op, queue string, err error) *QueueError {
	return &QueueError{Op: op, Queue: queue, Err: err, Retriable: false}
}

// OrderDecodeError is returned when an order payload cannot be decoded.
// The payload is kept for logging; it is never retried.
type OrderDecodeError struct {
	Payload string
	Err     error
}

func (e *OrderDecodeError) Error() string {
	return "decode order " + quote(e.Payload) + ": " + e.Err.Error()
}

func (e *OrderDecodeError) IsRetriable() bool {
	return false
}

func (e *OrderDecodeError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnknownStock is returned when an order names a stock the ledger does not hold.
	ErrUnknownStock = errors.New("unknown stock")

	// ErrIndexOutOfRange is returned for a ledger index outside [0, Len).
	ErrIndexOutOfRange = errors.New("ledger index out of range")

	// ErrEmptyPayload is returned when decoding an empty order payload.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrUnknownBackend is returned when the configured queue or storage backend is not supported.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrChannelClosed is returned when sending on a closed order channel.
	ErrChannelClosed = errors.New("order channel closed")
)

func quote(s string) string {
	const max = 64
	if len(s) > max {
		s = s[:max] + "..."
	}
	return "\"" + s + "\""
}
