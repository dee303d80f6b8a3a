package services

// Outcome carries the result of a telemetry read or write that fails open.
// When Degraded is set, Value holds the documented fallback (zero count,
// false ack) and Cause holds the underlying error.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Cause    error
}

func healthy[T any](v T) Outcome[T] { return Outcome[T]{Value: v} }

func degraded[T any](fallback T, op string, cause error) Outcome[T] {
	fallbacksTotal.WithLabelValues(op).Inc()
	return Outcome[T]{Value: fallback, Degraded: true, Cause: cause}
}
