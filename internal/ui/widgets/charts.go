package widgets

import (
	"math"
	"strings"
)

// Bar renders v in [0,1] as a fixed-width bar. Non-zero values get at least
// one cell.
func Bar(v float64, width int) string {
	if width <= 0 {
		return ""
	}
	v = clamp01(sanitize(v))

	fill := int(math.Round(v * float64(width)))

	if v > 0 && fill == 0 {
		fill = 1
	}
	if fill > width {
		fill = width
	}

	return strings.Repeat("█", fill) + strings.Repeat(" ", width-fill)
}

// Strip splits width cells across shares (fractions summing to ~1) and
// returns the cell count per share. The counts always sum to width. Every
// non-zero share gets a cell when width allows, otherwise the smallest
// shares drop out; rounding leftovers go to the largest shares.
func Strip(shares []float64, width int) []int {
	cells := make([]int, len(shares))
	if width <= 0 || len(shares) == 0 {
		return cells
	}

	var total float64
	for _, s := range shares {
		total += clamp01(sanitize(s))
	}
	if total == 0 {
		return cells
	}

	used := 0
	for i, s := range shares {
		s = clamp01(sanitize(s)) / total
		cells[i] = int(math.Floor(s * float64(width)))
		if s > 0 && cells[i] == 0 {
			cells[i] = 1
		}
		used += cells[i]
	}

	// hand out (or take back) the rounding difference, largest first
	for used != width {
		i := largest(shares, cells, used < width)
		if i < 0 {
			// every share is down to one cell
			i = smallest(shares, cells)
			cells[i] = 0
			used--
			continue
		}
		if used < width {
			cells[i]++
			used++
		} else {
			cells[i]--
			used--
		}
	}
	return cells
}

func largest(shares []float64, cells []int, grow bool) int {
	best := -1
	for i, s := range shares {
		if !grow && cells[i] <= 1 {
			continue
		}
		if best < 0 || s > shares[best] {
			best = i
		}
	}
	return best
}

func smallest(shares []float64, cells []int) int {
	best := -1
	for i, s := range shares {
		if cells[i] == 0 {
			continue
		}
		if best < 0 || s < shares[best] {
			best = i
		}
	}
	return best
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
