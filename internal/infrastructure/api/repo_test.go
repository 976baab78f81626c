package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kubechargeback/cbdash/internal/demoserver"
	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/infrastructure/api"
	"github.com/kubechargeback/cbdash/internal/infrastructure/mock"
)

var _ domain.ReportsRepo = (*api.Repo)(nil)

func window() domain.Window {
	return domain.Trailing(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), 24*time.Hour)
}

func demoAPI(t *testing.T) *api.Repo {
	t.Helper()
	srv := httptest.NewServer(demoserver.New("", mock.New(), nil, false).Handler())
	t.Cleanup(srv.Close)
	return api.New(api.Option{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
}

func TestRepoAgainstDemoServer(t *testing.T) {
	repo := demoAPI(t)
	ctx := context.Background()
	w := window()

	allocs, err := repo.Allocations(ctx, w, domain.GroupByNamespace)
	require.NoError(t, err)
	require.Len(t, allocs, 3)
	assert.Equal(t, "kube-system", allocs[0].GroupKey)
	assert.EqualValues(t, 2000, allocs[0].CPUMcpu)

	comp, err := repo.Compliance(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, 15, comp.Summary.OK)
	assert.Len(t, comp.Items, 21)

	alerts, err := repo.Alerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	require.NotNil(t, alerts[0].Details, "details survive the string-encoded round trip")
	assert.Len(t, alerts[0].Details.TopOffenders, 3)

	top, err := repo.TopApps(ctx, w, 4)
	require.NoError(t, err)
	assert.Len(t, top, 4)
}

func TestRepoSendsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := api.New(api.Option{BaseURL: srv.URL}, nil)
	_, err := repo.TopApps(context.Background(), window(), 5)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, api.PathTopApps, got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, "2025-02-28T12:00:00Z", q.Get("from"))
	assert.Equal(t, "2025-03-01T12:00:00Z", q.Get("to"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestRepoErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathCompliance:
			w.WriteHeader(http.StatusInternalServerError)
		case api.PathAlerts:
			_, _ = w.Write([]byte(`{"not":"a list"`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()
	repo := api.New(api.Option{BaseURL: srv.URL}, nil)
	ctx := context.Background()

	_, err := repo.Compliance(ctx, window())
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.KindStatus, fe.Kind)
	assert.Equal(t, 500, fe.StatusCode)
	assert.Equal(t, "compliance", fe.Report)

	_, err = repo.Alerts(ctx, 10)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.KindDecode, fe.Kind)

	srv.Close()
	_, err = repo.Allocations(ctx, window(), domain.GroupByNamespace)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.KindTransport, fe.Kind)
}

func TestRepoRejectsBadDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"good","timestamp":"2025-03-01T11:00:00Z","severity":"CRIT","budgetName":"b","message":"m",
			 "details":"{\"currentCpuMcpu\":10,\"limitCpuMcpu\":5}"},
			{"id":"broken","timestamp":"2025-03-01 10:00:00.5","severity":"WARNING","budgetName":"b","message":"m",
			 "details":"{\"currentCpuMcpu\":"},
			{"id":"negative","timestamp":"2025-03-01T09:00:00Z","severity":"WARNING","budgetName":"b","message":"m",
			 "details":{"currentCpuMcpu":-1}}
		]`))
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	repo := api.New(api.Option{BaseURL: srv.URL}, zap.New(core))

	alerts, err := repo.Alerts(context.Background(), 10)
	require.NoError(t, err, "a bad payload does not fail the whole report")
	require.Len(t, alerts, 3)

	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	require.NotNil(t, alerts[0].Details)
	assert.EqualValues(t, 10, alerts[0].Details.CurrentCPUMcpu)

	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 5e8, time.UTC), alerts[1].Timestamp.Time)
	assert.Nil(t, alerts[1].Details)
	assert.Error(t, alerts[1].DetailsErr)
	assert.Nil(t, alerts[2].Details)
	assert.Error(t, alerts[2].DetailsErr)

	assert.Equal(t, 2, logs.FilterMessage("alert details rejected").Len())
}

func TestRepoHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	repo := api.New(api.Option{BaseURL: srv.URL}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := repo.Compliance(ctx, window())
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.KindTransport, fe.Kind)
}
