package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher reloads the queue snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SnapshotRefresher runs Refresh on a cron schedule.
type SnapshotRefresher struct {
	cron      *cron.Cron
	refresher Refresher
	logger    *zap.Logger
	timeout   time.Duration
	spec      string
	stopOnce  sync.Once
}

// NewSnapshotRefresher validates spec and registers the refresh job. Specs use
// the standard five-field syntax or descriptors such as "@every 1m".
func NewSnapshotRefresher(spec string, refresher Refresher, timeout time.Duration, logger *zap.Logger) (*SnapshotRefresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	r := &SnapshotRefresher{
		cron:      cron.New(cron.WithLocation(time.UTC), cron.WithParser(parser)),
		refresher: refresher,
		logger:    logger,
		timeout:   timeout,
		spec:      spec,
	}
	r.cron.Schedule(schedule, cron.FuncJob(r.run))
	return r, nil
}

// Start begins running the schedule in the background.
func (r *SnapshotRefresher) Start() {
	r.cron.Start()
	r.logger.Info("snapshot refresher started", zap.String("schedule", r.spec))
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to expire.
func (r *SnapshotRefresher) Stop(ctx context.Context) {
	r.stopOnce.Do(func() {
		done := r.cron.Stop()
		select {
		case <-done.Done():
		case <-ctx.Done():
			r.logger.Warn("snapshot refresher stop timed out")
		}
	})
}

// RunNow performs one refresh synchronously.
func (r *SnapshotRefresher) RunNow() {
	r.run()
}

func (r *SnapshotRefresher) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.refresher.Refresh(ctx); err != nil {
		r.logger.Warn("snapshot refresh failed", zap.Error(err))
	}
}
