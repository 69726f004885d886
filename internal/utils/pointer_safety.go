// Package utils holds small generic helpers for nullable values.
package utils

// Value dereferences v, returning the zero value for nil. Used when reading
// nullable columns.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}
