package course

import "math"

// Stats is the derived per-enrollment aggregate; recomputed on demand,
// never persisted.
type Stats struct {
	Total     int     `json:"total"`
	Green     int     `json:"green"`
	Yellow    int     `json:"yellow"`
	Red       int     `json:"red"`
	Grade     float64 `json:"grade"`
	Semaphore Status  `json:"semaphore"`
}

// ComputeStats derives the grade and semaphore from outcome counts.
//
// Branch order is load-bearing: a yellow ratio >= 0.6 forces grade 3.0 even
// when the proportional formula would yield less.
func ComputeStats(green, yellow, red int) Stats {
	total := green + yellow + red
	stats := Stats{
		Total:     total,
		Green:     green,
		Yellow:    yellow,
		Red:       red,
		Semaphore: StatusRed,
	}
	if total == 0 {
		return stats
	}

	yellowRatio := float64(yellow) / float64(total)

	switch {
	case green == total:
		stats.Grade = 5.0
	case yellowRatio >= 0.6:
		stats.Grade = 3.0
	default:
		stats.Grade = Round2(5.0 * float64(green) / float64(total))
	}

	switch {
	case green == total || stats.Grade >= 4.5:
		stats.Semaphore = StatusGreen
	case yellowRatio >= 0.6 || stats.Grade >= 3.0:
		stats.Semaphore = StatusYellow
	}
	return stats
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
