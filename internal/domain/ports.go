package domain

import "context"

type GroupBy string

const (
	GroupByNamespace GroupBy = "namespace"
	GroupByApp       GroupBy = "app"
	GroupByTeam      GroupBy = "team"
)

// ReportsRepo is the read side of the reporting backend.
type ReportsRepo interface {
	Allocations(ctx context.Context, w Window, groupBy GroupBy) ([]Allocation, error)
	Compliance(ctx context.Context, w Window) (ComplianceReport, error)
	Alerts(ctx context.Context, limit int) ([]Alert, error)
	TopApps(ctx context.Context, w Window, limit int) ([]Allocation, error)
}
