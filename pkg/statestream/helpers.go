package statestream

// Set returns an Updater that replaces the state with value.
func Set(value any) Updater {
	return func(any) any { return value }
}

// Value returns the current state of s as a T.
func Value[T any](s Stream) (T, bool) {
	v, ok := s.GetState().(T)
	return v, ok
}

// Reduce adapts a typed reducer to an Updater. If the current state is not
// a T, fn receives T's zero value.
func Reduce[T any](fn func(old T) T) Updater {
	return func(old any) any {
		v, _ := old.(T)
		return fn(v)
	}
}
