package report

import (
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/kubechargeback/cbdash/internal/domain"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

// ParseAlertDetails decodes and validates an alert's details payload.
// An empty payload yields (nil, nil).
func ParseAlertDetails(raw domain.DetailsJSON) (*domain.AlertDetails, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	var d domain.AlertDetails
	if err := json.UnmarshalFromString(s, &d); err != nil {
		return nil, errors.Wrap(err, "decode alert details")
	}
	if err := validate.Struct(&d); err != nil {
		return nil, errors.Wrap(err, "validate alert details")
	}
	return &d, nil
}

// AttachDetails parses every alert's payload in place and returns the alerts
// whose payload was rejected.
func AttachDetails(alerts []domain.Alert) []domain.Alert {
	var bad []domain.Alert
	for i := range alerts {
		a := &alerts[i]
		a.Severity = a.Severity.Normalize()
		a.Details, a.DetailsErr = ParseAlertDetails(a.RawDetails)
		if a.DetailsErr != nil {
			bad = append(bad, *a)
		}
	}
	return bad
}
