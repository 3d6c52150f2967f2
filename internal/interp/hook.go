package interp

// ExceptionHook propagates a thrown exception from the current frame.
type ExceptionHook interface {
	Throw(frame Frame, exception string) error
}

// ExceptionHookFunc adapts a function to ExceptionHook.
type ExceptionHookFunc func(frame Frame, exception string) error

func (f ExceptionHookFunc) Throw(frame Frame, exception string) error {
	return f(frame, exception)
}
