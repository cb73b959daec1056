package course

import "testing"

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name               string
		green, yellow, red int
		wantGrade          float64
		wantSemaphore      Status
	}{
		{name: "no results", wantGrade: 0.0, wantSemaphore: StatusRed},
		{name: "all green", green: 4, wantGrade: 5.0, wantSemaphore: StatusGreen},
		{name: "single green", green: 1, wantGrade: 5.0, wantSemaphore: StatusGreen},
		{name: "all red", red: 3, wantGrade: 0.0, wantSemaphore: StatusRed},
		{name: "all yellow", yellow: 5, wantGrade: 3.0, wantSemaphore: StatusYellow},

		// a yellow ratio >= 0.6 forces grade 3.0 even when the proportional
		// formula would yield less
		{name: "yellow ratio at threshold", green: 1, yellow: 3, red: 1, wantGrade: 3.0, wantSemaphore: StatusYellow},
		{name: "yellow ratio above threshold", yellow: 3, red: 2, wantGrade: 3.0, wantSemaphore: StatusYellow},
		{name: "yellow ratio below threshold", green: 1, yellow: 1, red: 2, wantGrade: 1.25, wantSemaphore: StatusRed},

		// proportional branch
		{name: "proportional rounding", green: 2, yellow: 0, red: 1, wantGrade: 3.33, wantSemaphore: StatusYellow},
		{name: "proportional high", green: 9, red: 1, wantGrade: 4.5, wantSemaphore: StatusGreen},
		{name: "proportional mid", green: 3, red: 2, wantGrade: 3.0, wantSemaphore: StatusYellow},
		{name: "proportional low", green: 1, red: 4, wantGrade: 1.0, wantSemaphore: StatusRed},
		{name: "just below green cutoff", green: 8, red: 1, wantGrade: 4.44, wantSemaphore: StatusYellow},
		{name: "just below yellow cutoff", green: 5, yellow: 1, red: 4, wantGrade: 2.5, wantSemaphore: StatusRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStats(tt.green, tt.yellow, tt.red)

			wantTotal := tt.green + tt.yellow + tt.red
			if stats.Total != wantTotal {
				t.Errorf("Total = %d, want %d", stats.Total, wantTotal)
			}
			if stats.Green != tt.green || stats.Yellow != tt.yellow || stats.Red != tt.red {
				t.Errorf("counts = (%d, %d, %d), want (%d, %d, %d)",
					stats.Green, stats.Yellow, stats.Red, tt.green, tt.yellow, tt.red)
			}
			if stats.Grade != tt.wantGrade {
				t.Errorf("Grade = %v, want %v", stats.Grade, tt.wantGrade)
			}
			if stats.Semaphore != tt.wantSemaphore {
				t.Errorf("Semaphore = %v, want %v", stats.Semaphore, tt.wantSemaphore)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		f    float64
		want float64
	}{
		{0, 0},
		{3.333333, 3.33},
		{0.125, 0.13}, // half away from zero
		{-0.125, -0.13},
		{4.4444, 4.44},
		{4.999, 5.0},
	}
	for _, tt := range tests {
		if got := Round2(tt.f); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.f, got, tt.want)
		}
	}
}
