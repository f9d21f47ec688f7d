package utils

// Ptr returns a pointer to a copy of v. Optional song and user columns are pointers.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *v, or the zero value of T when v is nil.
func Deref[T any](v *T) (out T) {
	if v != nil {
		out = *v
	}
	return out
}
