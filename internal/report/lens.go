package report

import "github.com/kubechargeback/cbdash/internal/domain"

type Lens int

const (
	LensNone Lens = iota
	LensCompliance
	LensNamespace
	LensAllWorkloads
)

// Selection is the dashboard's view state. At most one of ComplianceFilter,
// NamespaceFilter and ShowAllWorkloads is active at a time.
type Selection struct {
	ComplianceFilter domain.ComplianceStatus // "" when unset
	NamespaceFilter  string
	ShowAllWorkloads bool
	ShowTopApps      bool
	ShowCostTable    bool
	ExpandedAlert    string
}

func (s Selection) Lens() Lens {
	switch {
	case s.NamespaceFilter != "":
		return LensNamespace
	case s.ComplianceFilter != "":
		return LensCompliance
	case s.ShowAllWorkloads:
		return LensAllWorkloads
	}
	return LensNone
}

// Valid reports whether the single-active-lens invariant holds.
func (s Selection) Valid() bool {
	n := 0
	if s.ComplianceFilter != "" {
		n++
	}
	if s.NamespaceFilter != "" {
		n++
	}
	if s.ShowAllWorkloads {
		n++
	}
	return n <= 1
}

// Event is a user action on the dashboard.
type Event interface{ isEvent() }

type (
	SelectCompliance   struct{ Status domain.ComplianceStatus }
	SelectNamespace    struct{ Namespace string }
	ToggleAllWorkloads struct{}
	ToggleTopApps      struct{}
	ToggleCostTable    struct{}
	ToggleAlert        struct{ ID string }
	ClearFilter        struct{}
)

func (SelectCompliance) isEvent()   {}
func (SelectNamespace) isEvent()    {}
func (ToggleAllWorkloads) isEvent() {}
func (ToggleTopApps) isEvent()      {}
func (ToggleCostTable) isEvent()    {}
func (ToggleAlert) isEvent()        {}
func (ClearFilter) isEvent()        {}

// Reduce applies ev to s. Selecting the active value again turns it off.
func Reduce(s Selection, ev Event) Selection {
	switch e := ev.(type) {
	case SelectCompliance:
		if e.Status == "" || s.ComplianceFilter == e.Status {
			s.ComplianceFilter = ""
			return s
		}
		s = clearLens(s)
		s.ComplianceFilter = e.Status

	case SelectNamespace:
		if e.Namespace == "" || s.NamespaceFilter == e.Namespace {
			s.NamespaceFilter = ""
			return s
		}
		s = clearLens(s)
		s.NamespaceFilter = e.Namespace
		s.ShowTopApps = false

	case ToggleAllWorkloads:
		if s.ShowAllWorkloads {
			s.ShowAllWorkloads = false
			return s
		}
		s = clearLens(s)
		s.ShowAllWorkloads = true

	case ToggleTopApps:
		s.ShowTopApps = !s.ShowTopApps

	case ToggleCostTable:
		s.ShowCostTable = !s.ShowCostTable

	case ToggleAlert:
		if s.ExpandedAlert == e.ID {
			s.ExpandedAlert = ""
		} else {
			s.ExpandedAlert = e.ID
		}

	case ClearFilter:
		s = clearLens(s)
	}
	return s
}

func clearLens(s Selection) Selection {
	s.ComplianceFilter = ""
	s.NamespaceFilter = ""
	s.ShowAllWorkloads = false
	return s
}

// Matches reports whether an item with status st belongs under filter f.
// Workloads missing both are listed under either single-missing filter.
func Matches(f, st domain.ComplianceStatus) bool {
	switch f {
	case domain.StatusMissingRequests:
		return st == domain.StatusMissingRequests || st == domain.StatusBothMissing
	case domain.StatusMissingLimits:
		return st == domain.StatusMissingLimits || st == domain.StatusBothMissing
	case domain.StatusBothMissing, domain.StatusOK:
		return st == f
	}
	return false
}

// FilterItems returns the workloads visible under s. The second result is
// false when no lens is active and the summary view applies instead.
func FilterItems(items []domain.ComplianceItem, s Selection) ([]domain.ComplianceItem, bool) {
	var keep func(domain.ComplianceItem) bool
	switch s.Lens() {
	case LensNamespace:
		keep = func(it domain.ComplianceItem) bool { return it.Namespace == s.NamespaceFilter }
	case LensCompliance:
		keep = func(it domain.ComplianceItem) bool { return Matches(s.ComplianceFilter, it.Status) }
	case LensAllWorkloads:
		keep = func(domain.ComplianceItem) bool { return true }
	default:
		return nil, false
	}

	out := make([]domain.ComplianceItem, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, true
}

// Title describes the active lens for the workload list header.
func (s Selection) Title() string {
	switch s.Lens() {
	case LensNamespace:
		return "Workloads in " + s.NamespaceFilter
	case LensCompliance:
		return StatusLabel(s.ComplianceFilter) + " Workloads"
	case LensAllWorkloads:
		return "All Workloads"
	}
	return "Compliance Summary"
}

func StatusLabel(st domain.ComplianceStatus) string {
	switch st {
	case domain.StatusOK:
		return "Healthy"
	case domain.StatusMissingRequests:
		return "Missing Requests"
	case domain.StatusMissingLimits:
		return "Missing Limits"
	case domain.StatusBothMissing:
		return "Both Missing"
	}
	return string(st)
}
