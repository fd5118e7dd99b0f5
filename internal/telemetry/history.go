package telemetry

// #region bounded-history

// PushBounded appends v and drops the oldest entries so the slice never
// exceeds capacity. A capacity of 0 or less keeps the slice empty.
func PushBounded[T any](s []T, v T, capacity int) []T {
	if capacity <= 0 {
		return s[:0]
	}
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

// Tail returns the last n entries of s (all of s when n >= len(s)).
func Tail[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// #endregion bounded-history

// #region averages

// Mean returns the arithmetic mean of vals, 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// RunningMean folds one new value into an existing mean over n prior values.
func RunningMean(prev float64, n int, v float64) float64 {
	if n <= 0 {
		return v
	}
	return (prev*float64(n) + v) / float64(n+1)
}

// #endregion averages
