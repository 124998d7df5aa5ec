package utils

func PtrTo[T any](v T) *T {
	return &v
}

// ValueOr dereferences v, falling back to def for nil pointers.
func ValueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}

	return *v
}
