package utils

import "math"

// BatchProgress returns the composite percentage for a sequential batch of
// total files of which done have finished. Emitted before and after each
// file this yields a non-decreasing series that reaches 100 only after the
// last file completes.
func BatchProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
