package jobs

import (
	"context"
	"time"

	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultAnalyticsRefreshSpec runs at the top of every fifteenth minute.
const DefaultAnalyticsRefreshSpec = "0 */15 * * * *"

const refreshTimeout = time.Minute

// AnalyticsRefresher recomputes a report and overwrites its cache entry.
type AnalyticsRefresher interface {
	Refresh(ctx context.Context, query queries.GetAnalyticsQuery) (services.Report, error)
}

// AnalyticsRefreshJob keeps the unfiltered analytics report cached.
type AnalyticsRefreshJob struct {
	refresher AnalyticsRefresher
	spec      string
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewAnalyticsRefreshJob uses a six field (seconds first) cron spec. An empty
// spec means DefaultAnalyticsRefreshSpec.
func NewAnalyticsRefreshJob(refresher AnalyticsRefresher, spec string, logger *zap.Logger) *AnalyticsRefreshJob {
	if spec == "" {
		spec = DefaultAnalyticsRefreshSpec
	}
	return &AnalyticsRefreshJob{
		refresher: refresher,
		spec:      spec,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With(zap.String("component", "analytics_refresh_job")),
	}
}

func (j *AnalyticsRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		_ = j.RunOnce(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("analytics refresh job started", zap.String("spec", j.spec))
	return nil
}

// Stop waits for a running refresh to finish.
func (j *AnalyticsRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("analytics refresh job stopped")
}

// RunOnce refreshes the unfiltered report as the system actor.
func (j *AnalyticsRefreshJob) RunOnce(ctx context.Context) error {
	query, err := queries.NewGetAnalyticsQuery(kernel.SystemActor(), nil, nil, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := j.refresher.Refresh(ctx, query)
	if err != nil {
		j.logger.Error("analytics refresh failed", zap.Error(err))
		return err
	}

	j.logger.Debug("analytics refreshed",
		zap.Int("currencies", len(report.Currencies)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
