package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/report"
)

const (
	PathAllocations       = "/api/v1/reports/allocations"
	PathAllocationsExport = "/api/v1/reports/allocations/export" // CSV
	PathCompliance        = "/api/v1/reports/compliance"
	PathAlerts            = "/api/v1/reports/alerts"
	PathTopApps           = "/api/v1/reports/top-apps"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Option struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, e.g. for the kube service proxy.
	HTTPClient *http.Client
	Debug      bool
}

// Repo talks to the chargeback reporting API.
type Repo struct {
	c   *resty.Client
	log *zap.Logger
}

func New(o Option, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	var c *resty.Client
	if o.HTTPClient != nil {
		c = resty.NewWithClient(o.HTTPClient)
	} else {
		c = resty.New()
	}
	c.SetLogger(log.Sugar())
	c.SetHostURL(o.BaseURL).
		SetHeader("Accept", "application/json").
		SetDebug(o.Debug)
	if o.Timeout > 0 {
		c.SetTimeout(o.Timeout)
	}
	return &Repo{c: c, log: log}
}

func (r *Repo) Allocations(ctx context.Context, w domain.Window, groupBy domain.GroupBy) ([]domain.Allocation, error) {
	var out []domain.Allocation
	q := windowParams(w)
	q["groupBy"] = string(groupBy)
	if err := r.get(ctx, "allocations", PathAllocations, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Compliance(ctx context.Context, w domain.Window) (domain.ComplianceReport, error) {
	var out domain.ComplianceReport
	if err := r.get(ctx, "compliance", PathCompliance, windowParams(w), &out); err != nil {
		return domain.ComplianceReport{}, err
	}
	return out, nil
}

func (r *Repo) Alerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	q := map[string]string{"limit": strconv.Itoa(limit)}
	if err := r.get(ctx, "alerts", PathAlerts, q, &out); err != nil {
		return nil, err
	}
	for _, a := range report.AttachDetails(out) {
		r.log.Warn("alert details rejected", zap.String("alert", a.ID), zap.Error(a.DetailsErr))
	}
	return out, nil
}

func (r *Repo) TopApps(ctx context.Context, w domain.Window, limit int) ([]domain.Allocation, error) {
	var out []domain.Allocation
	q := windowParams(w)
	q["limit"] = strconv.Itoa(limit)
	if err := r.get(ctx, "top-apps", PathTopApps, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) get(ctx context.Context, name, path string, q map[string]string, into interface{}) error {
	res, err := r.c.R().
		SetContext(ctx).
		SetQueryParams(q).
		Get(path)
	if err != nil {
		return &domain.FetchError{Report: name, Kind: domain.KindTransport, Err: errors.Wrapf(err, "GET %s", path)}
	}
	if !res.IsSuccess() {
		return &domain.FetchError{Report: name, Kind: domain.KindStatus, StatusCode: res.StatusCode()}
	}
	if err := json.Unmarshal(res.Body(), into); err != nil {
		return &domain.FetchError{Report: name, Kind: domain.KindDecode, Err: errors.Wrapf(err, "decode %s", path)}
	}
	r.log.Debug("report fetched", zap.String("report", name), zap.Duration("took", res.Time()))
	return nil
}

func windowParams(w domain.Window) map[string]string {
	return map[string]string{
		"from": w.From.UTC().Format(time.RFC3339Nano),
		"to":   w.To.UTC().Format(time.RFC3339Nano),
	}
}
