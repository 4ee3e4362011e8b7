package util

// Chunk splits xs into runs of at most n, preserving order.
func Chunk[T any](xs []T, n int) [][]T {
	if n <= 0 {
		n = 1
	}
	var out [][]T
	for len(xs) > n {
		out = append(out, xs[:n])
		xs = xs[n:]
	}
	if len(xs) > 0 {
		out = append(out, xs)
	}
	return out
}
