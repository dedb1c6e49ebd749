package core

type SignalStatus string

const (
	// SignalOK means the value was computed from data.
	SignalOK SignalStatus = "ok"
	// SignalEmpty means there was nothing to compute from.
	SignalEmpty SignalStatus = "empty"
	// SignalUnavailable means the computation failed or timed out.
	SignalUnavailable SignalStatus = "unavailable"
)

// Signal is the outcome of one analyzer. Only SignalOK carries a usable Value.
type Signal[T any] struct {
	Value  T
	Status SignalStatus
	Reason string
}

func Found[T any](v T) Signal[T] {
	return Signal[T]{Value: v, Status: SignalOK}
}

func Empty[T any](reason string) Signal[T] {
	return Signal[T]{Status: SignalEmpty, Reason: reason}
}

func Unavailable[T any](reason string) Signal[T] {
	return Signal[T]{Status: SignalUnavailable, Reason: reason}
}

func (s Signal[T]) OK() bool {
	return s.Status == SignalOK
}
