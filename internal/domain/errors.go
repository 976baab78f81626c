package domain

import "fmt"

type FetchErrorKind int

const (
	KindTransport FetchErrorKind = iota
	KindStatus
	KindDecode
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// FetchError reports why one report could not be loaded.
type FetchError struct {
	Report     string // allocations, compliance, alerts, top-apps
	Kind       FetchErrorKind
	StatusCode int // only for KindStatus
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: unexpected status %d", e.Report, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Report, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Report, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
