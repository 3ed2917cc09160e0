// Package core assembles trackcore for a process: configuration, logging,
// metrics, store selection and a Service exposing the time-tracking
// operations used by the command line.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"trackcore/pkg/domain"
	"trackcore/pkg/entities"
	"trackcore/pkg/model"
)

// Service runs time-tracking operations against a Registry.
type Service struct {
	registry *entities.Registry
	logger   *zap.Logger
	closeFn  func() error
	nowFn    func() time.Time
}

type serviceOptions struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	nowFn      func() time.Time
	modelOpts  []model.Option
}

// Option customises a Service.
type Option func(*serviceOptions)

// WithLogger sets the logger shared by the service and its models.
func WithLogger(l *zap.Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer sets where Prometheus collectors are registered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *serviceOptions) { o.registerer = reg }
}

// WithClock replaces the clock used to start and stop entries.
func WithClock(fn func() time.Time) Option {
	return func(o *serviceOptions) {
		if fn != nil {
			o.nowFn = fn
		}
	}
}

// WithModelOptions appends options passed to every model.
func WithModelOptions(opts ...model.Option) Option {
	return func(o *serviceOptions) { o.modelOpts = append(o.modelOpts, opts...) }
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{logger: zap.NewNop(), nowFn: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open builds a Service from cfg: it opens the configured backend and wires
// the load policy and metrics backend into every model.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	o := buildOptions(opts)
	recorder, err := NewRecorder(cfg.Metrics, o.registerer)
	if err != nil {
		return nil, err
	}
	stores, closeFn, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	modelOpts := append([]model.Option{
		model.WithLogger(o.logger),
		model.WithMetrics(recorder),
		model.WithLoadPolicy(cfg.LoadPolicy),
	}, o.modelOpts...)
	registry, err := entities.NewRegistry(stores, modelOpts...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	o.logger.Debug("storage opened", zap.String("driver", string(cfg.Storage)))
	return &Service{registry: registry, logger: o.logger, closeFn: closeFn, nowFn: o.nowFn}, nil
}

// NewService returns a Service over already opened stores.
func NewService(stores entities.Stores, opts ...Option) (*Service, error) {
	o := buildOptions(opts)
	registry, err := entities.NewRegistry(stores, append([]model.Option{model.WithLogger(o.logger)}, o.modelOpts...)...)
	if err != nil {
		return nil, err
	}
	return &Service{registry: registry, logger: o.logger, closeFn: func() error { return nil }, nowFn: o.nowFn}, nil
}

// Registry exposes the model registry.
func (s *Service) Registry() *entities.Registry { return s.registry }

// Close releases the storage backend.
func (s *Service) Close() error {
	return s.closeFn()
}

// CreateWorkspace stores a new workspace.
func (s *Service) CreateWorkspace(ctx context.Context, name string) (domain.Workspace, error) {
	ws := s.registry.NewWorkspace()
	if err := ws.SetName(ctx, name); err != nil {
		return domain.Workspace{}, err
	}
	return saved(ctx, s, ws.Model)
}

// CreateClient stores a new client in workspace.
func (s *Service) CreateClient(ctx context.Context, workspace domain.Identity, name string) (domain.Client, error) {
	c := s.registry.NewClient()
	if err := c.SetWorkspaceID(ctx, workspace); err != nil {
		return domain.Client{}, err
	}
	if err := c.SetName(ctx, name); err != nil {
		return domain.Client{}, err
	}
	return saved(ctx, s, c.Model)
}

// ProjectInput describes a project to create.
type ProjectInput struct {
	Workspace domain.Identity
	Client    domain.Identity
	Name      string
	Color     int
	Billable  bool
}

// CreateProject stores a new active project.
func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (domain.Project, error) {
	p := s.registry.NewProject()
	err := p.Mutate(ctx, func(r *domain.Project) {
		r.WorkspaceID = in.Workspace
		r.ClientID = in.Client
		r.Name = in.Name
		r.Color = in.Color
		r.Billable = in.Billable
	})
	if err != nil {
		return domain.Project{}, err
	}
	return saved(ctx, s, p.Model)
}

// CreateTag stores a new tag in workspace.
func (s *Service) CreateTag(ctx context.Context, workspace domain.Identity, name string) (domain.Tag, error) {
	t := s.registry.NewTag()
	if err := t.SetWorkspaceID(ctx, workspace); err != nil {
		return domain.Tag{}, err
	}
	if err := t.SetName(ctx, name); err != nil {
		return domain.Tag{}, err
	}
	return saved(ctx, s, t.Model)
}

// EntryInput describes a time entry to start.
type EntryInput struct {
	Workspace   domain.Identity
	Project     domain.Identity
	Description string
	Billable    bool
}

// StartEntry stores a running entry starting now.
func (s *Service) StartEntry(ctx context.Context, in EntryInput) (domain.TimeEntry, error) {
	e := s.registry.NewTimeEntry()
	start := s.nowFn()
	err := e.Mutate(ctx, func(r *domain.TimeEntry) {
		r.WorkspaceID = in.Workspace
		r.ProjectID = in.Project
		r.Description = in.Description
		r.Billable = in.Billable
		r.Start = start
	})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return saved(ctx, s, e.Model)
}

// StopEntry stops a running entry now. Stopping a stopped entry is an error.
func (s *Service) StopEntry(ctx context.Context, id domain.Identity) (domain.TimeEntry, error) {
	e := s.registry.TimeEntry(id)
	if err := e.Load(ctx); err != nil {
		return domain.TimeEntry{}, err
	}
	running, err := e.Running(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if !running {
		return domain.TimeEntry{}, fmt.Errorf("time entry %s already stopped", id)
	}
	stop := s.nowFn()
	if err := e.SetStop(ctx, &stop); err != nil {
		return domain.TimeEntry{}, err
	}
	return saved(ctx, s, e.Model)
}

// TagEntry links an existing entry to an existing tag.
func (s *Service) TagEntry(ctx context.Context, entry, tag domain.Identity) (domain.TimeEntryTag, error) {
	link := s.registry.NewTimeEntryTag()
	if err := link.SetTimeEntry(ctx, s.registry.TimeEntry(entry)); err != nil {
		return domain.TimeEntryTag{}, err
	}
	if err := link.SetTag(ctx, s.registry.Tag(tag)); err != nil {
		return domain.TimeEntryTag{}, err
	}
	return saved(ctx, s, link.Model)
}

// EntrySummary is a time entry with its related names resolved.
type EntrySummary struct {
	Entry     domain.TimeEntry
	Workspace string
	Project   string
	Duration  time.Duration
}

// DescribeEntry loads an entry and resolves its workspace and project through
// the entry's relations. Related records are loaded explicitly so the result
// does not depend on the configured load policy.
func (s *Service) DescribeEntry(ctx context.Context, id domain.Identity) (EntrySummary, error) {
	e := s.registry.TimeEntry(id)
	if err := e.Load(ctx); err != nil {
		return EntrySummary{}, err
	}
	rec, err := e.ToRecord(ctx)
	if err != nil {
		return EntrySummary{}, err
	}
	out := EntrySummary{Entry: rec, Duration: rec.Duration(s.nowFn())}
	ws, err := e.Workspace(ctx)
	if err != nil {
		return EntrySummary{}, err
	}
	if ws != nil {
		if err := ws.EnsureLoaded(ctx); err != nil {
			return EntrySummary{}, err
		}
		if out.Workspace, err = ws.Name(ctx); err != nil {
			return EntrySummary{}, err
		}
	}
	p, err := e.Project(ctx)
	if err != nil {
		return EntrySummary{}, err
	}
	if p != nil {
		if err := p.EnsureLoaded(ctx); err != nil {
			return EntrySummary{}, err
		}
		if out.Project, err = p.Name(ctx); err != nil {
			return EntrySummary{}, err
		}
	}
	return out, nil
}

// Show loads one record of any entity type.
func (s *Service) Show(ctx context.Context, entity domain.EntityType, id domain.Identity) (domain.Record, error) {
	switch domain.EntityType(strings.ToLower(string(entity))) {
	case domain.EntityWorkspace:
		return loaded(ctx, s.registry.Workspace(id).Model)
	case domain.EntityClient:
		return loaded(ctx, s.registry.Client(id).Model)
	case domain.EntityProject:
		return loaded(ctx, s.registry.Project(id).Model)
	case domain.EntityTag:
		return loaded(ctx, s.registry.Tag(id).Model)
	case domain.EntityTimeEntry:
		return loaded(ctx, s.registry.TimeEntry(id).Model)
	case domain.EntityTimeEntryTag:
		return loaded(ctx, s.registry.TimeEntryTag(id).Model)
	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
}

func loaded[R domain.Record](ctx context.Context, m *model.Model[R]) (domain.Record, error) {
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	rec, err := m.ToRecord(ctx)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func saved[R domain.Record](ctx context.Context, s *Service, m *model.Model[R]) (R, error) {
	if err := m.Save(ctx); err != nil {
		var verr domain.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Warn("save failed", zap.String("entity", string(m.Entity())), zap.Error(err))
		}
		var zero R
		return zero, err
	}
	s.logger.Info("record saved", zap.String("entity", string(m.Entity())), zap.Stringer("id", m.ID()))
	return m.ToRecord(ctx)
}
