package loader

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kubechargeback/cbdash/internal/domain"
)

type Source int

const (
	SourceNone Source = iota
	SourceLive
	SourceDemo
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceDemo:
		return "demo"
	}
	return "none"
}

// Result is the outcome of one load cycle. Err is set whenever the live load
// failed, including when Data holds the demo dataset instead.
type Result struct {
	Data   domain.Dataset
	Source Source
	Err    error
}

func (r Result) OK() bool { return r.Err == nil && r.Source == SourceLive }

type Options struct {
	Window      time.Duration
	AlertsLimit int
	TopLimit    int
	Timeout     time.Duration
	// Fallback serves the demo dataset when the live load fails. Nil
	// disables the fallback.
	Fallback domain.ReportsRepo
	// Demo marks the primary repo itself as the demo dataset (--mock).
	Demo bool
}

type Loader struct {
	repo domain.ReportsRepo
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

func New(repo domain.ReportsRepo, opts Options, log *zap.Logger) *Loader {
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}
	if opts.AlertsLimit <= 0 {
		opts.AlertsLimit = 10
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{repo: repo, opts: opts, log: log, now: time.Now}
}

// Load fetches the four reports concurrently and waits for all of them.
// Any failure discards the whole batch.
func (l *Loader) Load(ctx context.Context) (domain.Dataset, error) {
	w := domain.Trailing(l.now(), l.opts.Window)
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}
	return fetchAll(ctx, l.repo, w, l.opts.AlertsLimit, l.opts.TopLimit, l.log)
}

// Run loads live data and falls back to the demo dataset when configured.
func (l *Loader) Run(ctx context.Context) Result {
	d, err := l.Load(ctx)
	if err == nil {
		src := SourceLive
		if l.opts.Demo {
			src = SourceDemo
		}
		return Result{Data: d, Source: src}
	}
	if l.opts.Fallback == nil || ctx.Err() != nil {
		return Result{Err: err}
	}

	l.log.Warn("live load failed, serving demo dataset", zap.Error(err))
	w := domain.Trailing(l.now(), l.opts.Window)
	demo, ferr := fetchAll(ctx, l.opts.Fallback, w, l.opts.AlertsLimit, l.opts.TopLimit, l.log)
	if ferr != nil {
		l.log.Error("demo dataset unavailable", zap.Error(ferr))
		return Result{Err: err}
	}
	return Result{Data: demo, Source: SourceDemo, Err: err}
}

func fetchAll(ctx context.Context, repo domain.ReportsRepo, w domain.Window, alertsLimit, topLimit int, log *zap.Logger) (domain.Dataset, error) {
	var (
		d domain.Dataset
		g errgroup.Group
	)
	d.Window = w

	// No WithContext: every request settles on its own so each failure is
	// logged, not just the first.
	g.Go(func() error {
		v, err := repo.Allocations(ctx, w, domain.GroupByNamespace)
		d.Allocations = v
		return logFailure(log, "allocations", err)
	})
	g.Go(func() error {
		v, err := repo.Compliance(ctx, w)
		d.Compliance = v
		return logFailure(log, "compliance", err)
	})
	g.Go(func() error {
		v, err := repo.Alerts(ctx, alertsLimit)
		d.Alerts = v
		return logFailure(log, "alerts", err)
	})
	g.Go(func() error {
		v, err := repo.TopApps(ctx, w, topLimit)
		d.TopApps = v
		return logFailure(log, "top-apps", err)
	})

	if err := g.Wait(); err != nil {
		return domain.Dataset{}, err
	}
	return d, nil
}

func logFailure(log *zap.Logger, report string, err error) error {
	if err == nil {
		return nil
	}
	log.Error("report request failed", zap.String("report", report), zap.Error(err))
	return err
}
