package bench

import "time"

// FLOPs returns the floating point operations of iterations products of
// two size x size matrices, counting one multiply and one add per term.
func FLOPs(size, iterations int) float64 {
	n := float64(size)
	return 2 * n * n * n * float64(iterations)
}

// GFLOPS converts a run into billions of floating point operations per
// second. A non-positive duration yields 0.
func GFLOPS(size, iterations int, d time.Duration) float64 {
	seconds := d.Seconds()
	if seconds <= 0 {
		return 0
	}
	return FLOPs(size, iterations) / (seconds * 1e9)
}
