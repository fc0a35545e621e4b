package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-dashboard/internal/aggregate"
	"github.com/spec-kit/queue-dashboard/internal/config"
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/events"
	"github.com/spec-kit/queue-dashboard/internal/observability"
	"github.com/spec-kit/queue-dashboard/internal/repository"
	"github.com/spec-kit/queue-dashboard/internal/table"
	"github.com/spec-kit/queue-dashboard/internal/view"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

// Invalidator is implemented by sources that keep a cached snapshot.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// TableQuery is the caller-owned sort and page position for one table.
type TableQuery struct {
	Sort table.SortState
	Page table.PageState
}

// DashboardService reads snapshots and computes the dashboard views. It holds
// no per-request state; every call reads the source again.
type DashboardService struct {
	source      repository.QueueSource
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	opts        view.Options
	pageSize    int
	maxPageSize int
}

// DashboardDependencies groups the collaborators of DashboardService.
type DashboardDependencies struct {
	Source     repository.QueueSource
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewDashboardService builds the service. An unknown collation in cfg falls
// back to English.
func NewDashboardService(cfg config.ViewConfig, deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collation, err := table.ParseCollation(cfg.Collation)
	if err != nil {
		logger.Warn("unknown collation; using english", zap.String("collation", cfg.Collation))
		collation = table.CollationEnglish
	}
	pageSize := cfg.DefaultPageSize
	if pageSize < 1 {
		pageSize = table.DefaultPageSize
	}
	return &DashboardService{
		source:      deps.Source,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		opts:        view.Options{Collation: collation},
		pageSize:    pageSize,
		maxPageSize: max(cfg.MaxPageSize, pageSize),
	}
}

// Collation reports the string ordering used for text columns.
func (s *DashboardService) Collation() table.Collation {
	return s.opts.Collation
}

// DefaultPageSize is used when a request does not name a page size.
func (s *DashboardService) DefaultPageSize() int {
	return s.pageSize
}

// QueueTable returns one sorted page of queues.
func (s *DashboardService) QueueTable(ctx context.Context, q TableQuery) (view.Result[view.QueueRow], error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return view.Result[view.QueueRow]{}, err
	}
	defer s.observe("queues", time.Now())
	return view.QueueTable(queues, q.Sort, s.page(q.Page), s.opts), nil
}

// UserTable returns one sorted page of the aggregated users.
func (s *DashboardService) UserTable(ctx context.Context, q TableQuery) (view.Result[view.UserRow], error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return view.Result[view.UserRow]{}, err
	}
	defer s.observe("users", time.Now())
	return view.UserTable(queues, q.Sort, s.page(q.Page), s.opts), nil
}

// QueueRows returns the whole sorted queue table.
func (s *DashboardService) QueueRows(ctx context.Context, sort table.SortState) ([]view.QueueRow, error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("queues_export", time.Now())
	return view.QueueRows(queues, sort, s.opts), nil
}

// UserRows returns the whole sorted user table.
func (s *DashboardService) UserRows(ctx context.Context, sort table.SortState) ([]view.UserRow, error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer s.observe("users_export", time.Now())
	return view.UserRows(queues, sort, s.opts), nil
}

// QueueDetail returns a queue with its tickets in stored order.
func (s *DashboardService) QueueDetail(ctx context.Context, id string) (view.QueueDetail, error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return view.QueueDetail{}, err
	}
	detail, ok := view.FindQueue(queues, id)
	if !ok {
		return view.QueueDetail{}, apperrors.NewNotFound("queue", map[string]any{"id": id})
	}
	return detail, nil
}

// UserDetail returns a user with every ticket attributed to them.
func (s *DashboardService) UserDetail(ctx context.Context, userID string) (view.UserDetail, error) {
	queues, err := s.snapshot(ctx)
	if err != nil {
		return view.UserDetail{}, err
	}
	detail, ok := view.FindUser(queues, userID)
	if !ok {
		return view.UserDetail{}, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	return detail, nil
}

// Refresh drops any cached snapshot, reads the source again and publishes
// the outcome.
func (s *DashboardService) Refresh(ctx context.Context) error {
	start := time.Now()
	if inv, ok := s.source.(Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot cache invalidation failed", zap.Error(err))
		}
	}

	raw, err := s.source.Snapshot(ctx)
	if err != nil {
		s.publish(ctx, events.NewEvent(events.EventSnapshotFailed, events.SnapshotFailedPayload{Error: err.Error()}))
		return apperrors.NewUnavailable("queue snapshot unavailable", err)
	}
	queues, issues := domain.Sanitize(raw)
	s.logIssues(issues)

	tickets := 0
	for _, q := range queues {
		tickets += q.TicketCount()
	}
	s.publish(ctx, events.NewEvent(events.EventSnapshotRefreshed, events.SnapshotRefreshedPayload{
		Queues:   len(queues),
		Tickets:  tickets,
		Users:    aggregate.Aggregate(queues).Len(),
		Issues:   len(issues),
		Duration: time.Since(start),
	}))
	return nil
}

func (s *DashboardService) snapshot(ctx context.Context) ([]domain.Queue, error) {
	raw, err := s.source.Snapshot(ctx)
	if err != nil {
		s.logger.Error("read queue snapshot", zap.Error(err))
		return nil, apperrors.NewUnavailable("queue snapshot unavailable", err)
	}
	queues, issues := domain.Sanitize(raw)
	s.logIssues(issues)
	return queues, nil
}

func (s *DashboardService) logIssues(issues []domain.Issue) {
	for _, issue := range issues {
		s.logger.Debug("snapshot record issue",
			zap.String("queue_id", issue.QueueID),
			zap.String("ticket_id", issue.TicketID),
			zap.String("field", issue.Field),
			zap.String("rule", issue.Rule),
			zap.Bool("dropped", issue.Dropped))
	}
}

// page applies the service default and cap to a requested page size. The
// requested page number is left for Paginate to clamp.
func (s *DashboardService) page(p table.PageState) table.PageState {
	switch {
	case p.Size < 1:
		p.Size = s.pageSize
	case p.Size > s.maxPageSize:
		p.Size = s.maxPageSize
	}
	return p
}

func (s *DashboardService) observe(name string, start time.Time) {
	s.metrics.ObserveView(name, time.Since(start))
}

func (s *DashboardService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
