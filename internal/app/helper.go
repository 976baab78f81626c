// internal/app/helper.go
package app

import "strings"

// clamp clamps v into [min, max].
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// compute dynamic widths for the cost table based on available total width
func costColWidths(total int) (wName, wCPU, wMem, wCost, wShare, wBar int) {
	// fixed minimums (numbers and labels)
	minName, minCPU, minMem, minCost, minShare := 16, 7, 8, 8, 6

	base := minName + minCPU + minMem + minCost + minShare + 5 // gaps
	remain := total - base
	if remain < 6 {
		remain = 6
	}

	// favor the bar, give the name any remainder
	wBar = remain / 2
	extra := remain - wBar

	wName = minName + extra
	wCPU = minCPU
	wMem = minMem
	wCost = minCost
	wShare = minShare

	// sanity clamps
	wName = clamp(wName, 12, 40)
	wBar = clamp(wBar, 4, 30)
	return
}

// compute the two-column split for the chart and compliance panels;
// narrow terminals stack them instead
func panelWidths(total int) (left, right int, stacked bool) {
	if total < 96 {
		return total, total, true
	}
	left = total / 2
	right = total - left
	return left, right, false
}

// trunc cuts s to n cells, marking the cut with an ellipsis.
func trunc(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// pad left-aligns s in a column of n cells.
func pad(s string, n int) string {
	s = trunc(s, n)
	if w := len([]rune(s)); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// rpad right-aligns s in a column of n cells.
func rpad(s string, n int) string {
	s = trunc(s, n)
	if w := len([]rune(s)); w < n {
		return strings.Repeat(" ", n-w) + s
	}
	return s
}
