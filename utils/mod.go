// Package utils holds small generic helpers shared by the experiment packages.
package utils

// FindIndex returns the position of item in slice, or -1.
func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

type number interface {
	~int | ~int64 | ~float64
}

// Mean returns the arithmetic mean of values, 0 when empty.
func Mean[T number](values []T) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
