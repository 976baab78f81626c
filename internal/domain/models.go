package domain

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Allocation is a cost rollup for one grouping key (namespace or app).
type Allocation struct {
	GroupKey       string  `json:"groupKey"`
	TotalCostUnits float64 `json:"totalCostUnits"`
	CPUMcpu        int64   `json:"cpuMcpu"` // millicores
	MemMiB         int64   `json:"memMib"`
}

type ComplianceStatus string

const (
	StatusOK              ComplianceStatus = "OK"
	StatusMissingRequests ComplianceStatus = "MISSING_REQUESTS"
	StatusMissingLimits   ComplianceStatus = "MISSING_LIMITS"
	StatusBothMissing     ComplianceStatus = "BOTH_MISSING"
)

type ComplianceItem struct {
	Namespace string           `json:"namespace"`
	Kind      string           `json:"kind"` // Deployment, StatefulSet...
	Name      string           `json:"name"`
	Status    ComplianceStatus `json:"complianceStatus"`
}

type ComplianceSummary struct {
	OK              int `json:"ok"`
	MissingRequests int `json:"missingRequests"`
	MissingLimits   int `json:"missingLimits"`
	BothMissing     int `json:"bothMissing"`
}

type ComplianceReport struct {
	Summary ComplianceSummary `json:"summary"`
	Items   []ComplianceItem  `json:"items"`
}

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// Normalize maps the backend's short forms onto the known severities.
func (s Severity) Normalize() Severity {
	switch s {
	case "CRIT", "CRITICAL":
		return SeverityCritical
	case "WARN", "WARNING":
		return SeverityWarning
	}
	return s
}

// DetailsJSON is the alert payload as sent by the backend: a JSON document
// encoded inside a string. A bare object is accepted too.
type DetailsJSON string

func (d *DetailsJSON) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*d = ""
		return nil
	}
	if b[0] != '"' {
		*d = DetailsJSON(b)
		return nil
	}
	var s string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = DetailsJSON(s)
	return nil
}

// Timestamp accepts RFC 3339 and the zone-less ISO 8601 forms a database
// timestamp column renders as. Zone-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		t.Time = v
		return nil
	}
	for _, layout := range zonelessLayouts {
		if v, perr := time.ParseInLocation(layout, s, time.UTC); perr == nil {
			t.Time = v
			return nil
		}
	}
	return err
}

type Alert struct {
	ID         string      `json:"id"`
	Timestamp  Timestamp   `json:"timestamp"`
	Severity   Severity    `json:"severity"`
	BudgetName string      `json:"budgetName"`
	Message    string      `json:"message"`
	RawDetails DetailsJSON `json:"details,omitempty"`

	// Details is set once RawDetails passed schema validation.
	Details    *AlertDetails `json:"-"`
	DetailsErr error         `json:"-"`
}

type Offender struct {
	App            string  `json:"app" validate:"required"`
	CPUMcpu        int64   `json:"cpuMcpu" validate:"gte=0"`
	MemMiB         int64   `json:"memMib" validate:"gte=0"`
	TotalCostUnits float64 `json:"totalCostUnits" validate:"gte=0"`
}

type AlertDetails struct {
	CurrentCPUMcpu int64      `json:"currentCpuMcpu" validate:"gte=0"`
	CurrentMemMiB  int64      `json:"currentMemMib" validate:"gte=0"`
	LimitCPUMcpu   int64      `json:"limitCpuMcpu" validate:"gte=0"`
	LimitMemMiB    int64      `json:"limitMemMib" validate:"gte=0"`
	TopOffenders   []Offender `json:"topOffenders" validate:"dive"`
}

// Window is the reporting interval [From, To].
type Window struct {
	From time.Time
	To   time.Time
}

func Trailing(now time.Time, d time.Duration) Window {
	now = now.UTC()
	return Window{From: now.Add(-d), To: now}
}

// Dataset is one load cycle worth of reports.
type Dataset struct {
	Allocations []Allocation
	Compliance  ComplianceReport
	Alerts      []Alert
	TopApps     []Allocation
	Window      Window
}
