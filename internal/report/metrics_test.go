package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kubechargeback/cbdash/internal/domain"
)

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		name string
		s    domain.ComplianceSummary
		want string
	}{
		{"empty summary", domain.ComplianceSummary{}, "100"},
		{"all ok", domain.ComplianceSummary{OK: 7}, "100"},
		{"none ok", domain.ComplianceSummary{MissingLimits: 3}, "0"},
		{"demo dataset", domain.ComplianceSummary{OK: 15, MissingRequests: 2, MissingLimits: 3, BothMissing: 1}, "71"},
		{"rounds half up", domain.ComplianceSummary{OK: 1, BothMissing: 1}, "50"},
		{"rounds up", domain.ComplianceSummary{OK: 2, MissingRequests: 1}, "67"},
		{"rounds down", domain.ComplianceSummary{OK: 1, MissingRequests: 2}, "33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComplianceScore(tt.s))
		})
	}
}

func TestTotalCostAndShare(t *testing.T) {
	allocs := []domain.Allocation{
		{GroupKey: "a", TotalCostUnits: 12.5},
		{GroupKey: "b", TotalCostUnits: 2.3},
		{GroupKey: "c", TotalCostUnits: 0.5},
	}
	assert.InDelta(t, 15.3, TotalCost(allocs), 1e-9)
	assert.Zero(t, TotalCost(nil))

	shares := Share(allocs)
	assert.Len(t, shares, 3)
	assert.InDelta(t, 12.5/15.3, shares[0], 1e-9)
	assert.InDelta(t, 1.0, shares[0]+shares[1]+shares[2], 1e-9)

	assert.Equal(t, []float64{0, 0}, Share([]domain.Allocation{{GroupKey: "x"}, {GroupKey: "y"}}))
}

func TestDerive(t *testing.T) {
	d := domain.Dataset{
		Allocations: []domain.Allocation{{TotalCostUnits: 1.25}, {TotalCostUnits: 0.75}},
		Compliance: domain.ComplianceReport{
			Summary: domain.ComplianceSummary{OK: 3, MissingLimits: 1},
			Items:   make([]domain.ComplianceItem, 4),
		},
	}
	m := Derive(d)
	assert.InDelta(t, 2.0, m.TotalCost, 1e-9)
	assert.Equal(t, 4, m.ComplianceTotal)
	assert.Equal(t, "75", m.ComplianceScore)
	assert.False(t, m.CountMismatch)

	d.Compliance.Items = d.Compliance.Items[:2]
	assert.True(t, Derive(d).CountMismatch)

	// a summary without an item list is not a mismatch
	d.Compliance.Items = nil
	assert.False(t, Derive(d).CountMismatch)

	empty := Derive(domain.Dataset{})
	assert.Equal(t, "100", empty.ComplianceScore)
	assert.Zero(t, empty.ComplianceTotal)
}
