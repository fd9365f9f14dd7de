// Package jobs holds the scheduled background work of the order service.
//
// Jobs are driven by github.com/robfig/cron/v3 with second precision specs
// and are started and stopped together through JobManager:
//
//	refresh := jobs.NewAnalyticsRefreshJob(analyticsHandler, cfg.AnalyticsRefreshSpec, logger)
//	manager := jobs.NewJobManager(logger, refresh)
//	if err := manager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//	defer manager.StopAll()
//
// AnalyticsRefreshJob recomputes the unfiltered analytics report and
// overwrites its cache entry. A failed refresh is logged and retried on the
// next tick; the cached report stays in place until its TTL expires.
package jobs
