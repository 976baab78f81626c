package report

import (
	"math"
	"strconv"

	"github.com/kubechargeback/cbdash/internal/domain"
)

// Metrics are the headline numbers derived from one dataset.
type Metrics struct {
	TotalCost       float64
	ComplianceTotal int
	ComplianceScore string // integer percentage
	// CountMismatch is set when the summary counts disagree with the
	// number of items returned. The backend owns that contract.
	CountMismatch bool
}

func Derive(d domain.Dataset) Metrics {
	total := ComplianceTotal(d.Compliance.Summary)
	return Metrics{
		TotalCost:       TotalCost(d.Allocations),
		ComplianceTotal: total,
		ComplianceScore: ComplianceScore(d.Compliance.Summary),
		CountMismatch:   d.Compliance.Items != nil && total != len(d.Compliance.Items),
	}
}

func TotalCost(allocs []domain.Allocation) float64 {
	var sum float64
	for _, a := range allocs {
		sum += a.TotalCostUnits
	}
	return sum
}

func ComplianceTotal(s domain.ComplianceSummary) int {
	return s.OK + s.MissingRequests + s.MissingLimits + s.BothMissing
}

// ComplianceScore is "100" for an empty summary.
func ComplianceScore(s domain.ComplianceSummary) string {
	total := ComplianceTotal(s)
	if total == 0 {
		return "100"
	}
	pct := math.Round(float64(s.OK) / float64(total) * 100)
	return strconv.Itoa(int(pct))
}

// Share returns each allocation's fraction of the total cost, in input order.
func Share(allocs []domain.Allocation) []float64 {
	out := make([]float64, len(allocs))
	total := TotalCost(allocs)
	if total <= 0 {
		return out
	}
	for i, a := range allocs {
		out[i] = a.TotalCostUnits / total
	}
	return out
}
