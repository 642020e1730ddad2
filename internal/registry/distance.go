package registry

import "math"

// EuclideanDistance computes the L2 distance between two embedding vectors.
// Returns +Inf for mismatched or empty inputs so invalid comparisons can
// never win a nearest-neighbor scan.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Confidence converts a match distance to an integer percentage.
// The scale assumes same-identity distances cluster near 0.
func Confidence(distance float64) int {
	c := math.Round((1 - distance) * 100)
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return int(c)
}
