// Package entities provides the concrete time-tracking models built on the
// generic model layer: one schema and one typed model per record type, plus
// the Registry that wires models to their stores and to each other.
package entities

import (
	"context"
	"errors"
	"fmt"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

// Stores bundles one store per record type.
type Stores struct {
	Workspaces    model.Store[domain.Workspace]
	Clients       model.Store[domain.Client]
	Projects      model.Store[domain.Project]
	Tags          model.Store[domain.Tag]
	TimeEntries   model.Store[domain.TimeEntry]
	TimeEntryTags model.Store[domain.TimeEntryTag]
}

func (s Stores) validate() error {
	var missing []error
	check := func(ok bool, entity domain.EntityType) {
		if !ok {
			missing = append(missing, fmt.Errorf("no store for %s", entity))
		}
	}
	check(s.Workspaces != nil, domain.EntityWorkspace)
	check(s.Clients != nil, domain.EntityClient)
	check(s.Projects != nil, domain.EntityProject)
	check(s.Tags != nil, domain.EntityTag)
	check(s.TimeEntries != nil, domain.EntityTimeEntry)
	check(s.TimeEntryTags != nil, domain.EntityTimeEntryTag)
	return errors.Join(missing...)
}

// Registry constructs models. It holds the stores and model options that
// would otherwise be looked up from process-wide state, and serves as the
// factory that relations use to build related models.
type Registry struct {
	stores Stores
	opts   []model.Option
}

// NewRegistry returns a registry over stores. Every store must be set.
func NewRegistry(stores Stores, opts ...model.Option) (*Registry, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	return &Registry{stores: stores, opts: opts}, nil
}

// Stores returns the store bundle the registry was built with.
func (r *Registry) Stores() Stores { return r.stores }

// Workspaces

// NewWorkspace returns an unbound workspace model.
func (r *Registry) NewWorkspace() *WorkspaceModel {
	return r.wrapWorkspace(model.New[domain.Workspace](WorkspaceSchema{}, r.stores.Workspaces, r.opts...))
}

// Workspace returns a lazily loaded workspace model for id.
func (r *Registry) Workspace(id domain.Identity) *WorkspaceModel {
	return r.wrapWorkspace(model.NewWithID[domain.Workspace](WorkspaceSchema{}, r.stores.Workspaces, id, r.opts...))
}

// WorkspaceFromRecord wraps an existing record.
func (r *Registry) WorkspaceFromRecord(rec domain.Workspace) *WorkspaceModel {
	return r.wrapWorkspace(model.FromRecord[domain.Workspace](WorkspaceSchema{}, r.stores.Workspaces, rec, r.opts...))
}

// WorkspaceExists reports whether a workspace with id is stored.
func (r *Registry) WorkspaceExists(ctx context.Context, id domain.Identity) (bool, error) {
	return exists(ctx, r.stores.Workspaces, id)
}

func (r *Registry) wrapWorkspace(m *model.Model[domain.Workspace]) *WorkspaceModel {
	return &WorkspaceModel{Model: m}
}

func (r *Registry) workspaceFactory(_ context.Context, id domain.Identity) (*WorkspaceModel, error) {
	return r.Workspace(id), nil
}

// Clients

// NewClient returns an unbound client model.
func (r *Registry) NewClient() *ClientModel {
	return r.wrapClient(model.New[domain.Client](ClientSchema{}, r.stores.Clients, r.opts...))
}

// Client returns a lazily loaded client model for id.
func (r *Registry) Client(id domain.Identity) *ClientModel {
	return r.wrapClient(model.NewWithID[domain.Client](ClientSchema{}, r.stores.Clients, id, r.opts...))
}

// ClientFromRecord wraps an existing record.
func (r *Registry) ClientFromRecord(rec domain.Client) *ClientModel {
	return r.wrapClient(model.FromRecord[domain.Client](ClientSchema{}, r.stores.Clients, rec, r.opts...))
}

// ClientExists reports whether a client with id is stored.
func (r *Registry) ClientExists(ctx context.Context, id domain.Identity) (bool, error) {
	return exists(ctx, r.stores.Clients, id)
}

func (r *Registry) wrapClient(m *model.Model[domain.Client]) *ClientModel {
	c := &ClientModel{Model: m}
	c.workspace = link(m, domain.ClientPropertyWorkspace, r.workspaceFactory, r.WorkspaceExists,
		clientWorkspaceID, func(rec *domain.Client, id domain.Identity) { rec.WorkspaceID = id })
	return c
}

func (r *Registry) clientFactory(_ context.Context, id domain.Identity) (*ClientModel, error) {
	return r.Client(id), nil
}

// Projects

// NewProject returns an unbound, active project model.
func (r *Registry) NewProject() *ProjectModel {
	return r.wrapProject(model.New[domain.Project](ProjectSchema{}, r.stores.Projects, r.opts...))
}

// Project returns a lazily loaded project model for id.
func (r *Registry) Project(id domain.Identity) *ProjectModel {
	return r.wrapProject(model.NewWithID[domain.Project](ProjectSchema{}, r.stores.Projects, id, r.opts...))
}

// ProjectFromRecord wraps an existing record.
func (r *Registry) ProjectFromRecord(rec domain.Project) *ProjectModel {
	return r.wrapProject(model.FromRecord[domain.Project](ProjectSchema{}, r.stores.Projects, rec, r.opts...))
}

// ProjectExists reports whether a project with id is stored.
func (r *Registry) ProjectExists(ctx context.Context, id domain.Identity) (bool, error) {
	return exists(ctx, r.stores.Projects, id)
}

func (r *Registry) wrapProject(m *model.Model[domain.Project]) *ProjectModel {
	p := &ProjectModel{Model: m}
	p.workspace = link(m, domain.ProjectPropertyWorkspace, r.workspaceFactory, r.WorkspaceExists,
		projectWorkspaceID, func(rec *domain.Project, id domain.Identity) { rec.WorkspaceID = id })
	p.client = link(m, domain.ProjectPropertyClient, r.clientFactory, r.ClientExists,
		projectClientID, func(rec *domain.Project, id domain.Identity) { rec.ClientID = id })
	return p
}

func (r *Registry) projectFactory(_ context.Context, id domain.Identity) (*ProjectModel, error) {
	return r.Project(id), nil
}

// Tags

// NewTag returns an unbound tag model.
func (r *Registry) NewTag() *TagModel {
	return r.wrapTag(model.New[domain.Tag](TagSchema{}, r.stores.Tags, r.opts...))
}

// Tag returns a lazily loaded tag model for id.
func (r *Registry) Tag(id domain.Identity) *TagModel {
	return r.wrapTag(model.NewWithID[domain.Tag](TagSchema{}, r.stores.Tags, id, r.opts...))
}

// TagFromRecord wraps an existing record.
func (r *Registry) TagFromRecord(rec domain.Tag) *TagModel {
	return r.wrapTag(model.FromRecord[domain.Tag](TagSchema{}, r.stores.Tags, rec, r.opts...))
}

// TagExists reports whether a tag with id is stored.
func (r *Registry) TagExists(ctx context.Context, id domain.Identity) (bool, error) {
	return exists(ctx, r.stores.Tags, id)
}

func (r *Registry) wrapTag(m *model.Model[domain.Tag]) *TagModel {
	t := &TagModel{Model: m}
	t.workspace = link(m, domain.TagPropertyWorkspace, r.workspaceFactory, r.WorkspaceExists,
		tagWorkspaceID, func(rec *domain.Tag, id domain.Identity) { rec.WorkspaceID = id })
	return t
}

func (r *Registry) tagFactory(_ context.Context, id domain.Identity) (*TagModel, error) {
	return r.Tag(id), nil
}

// Time entries

// NewTimeEntry returns an unbound time entry model.
func (r *Registry) NewTimeEntry() *TimeEntryModel {
	return r.wrapTimeEntry(model.New[domain.TimeEntry](TimeEntrySchema{}, r.stores.TimeEntries, r.opts...))
}

// TimeEntry returns a lazily loaded time entry model for id.
func (r *Registry) TimeEntry(id domain.Identity) *TimeEntryModel {
	return r.wrapTimeEntry(model.NewWithID[domain.TimeEntry](TimeEntrySchema{}, r.stores.TimeEntries, id, r.opts...))
}

// TimeEntryFromRecord wraps an existing record.
func (r *Registry) TimeEntryFromRecord(rec domain.TimeEntry) *TimeEntryModel {
	return r.wrapTimeEntry(model.FromRecord[domain.TimeEntry](TimeEntrySchema{}, r.stores.TimeEntries, rec, r.opts...))
}

// TimeEntryExists reports whether a time entry with id is stored.
func (r *Registry) TimeEntryExists(ctx context.Context, id domain.Identity) (bool, error) {
	return exists(ctx, r.stores.TimeEntries, id)
}

func (r *Registry) wrapTimeEntry(m *model.Model[domain.TimeEntry]) *TimeEntryModel {
	e := &TimeEntryModel{Model: m}
	e.workspace = link(m, domain.TimeEntryPropertyWorkspace, r.workspaceFactory, r.WorkspaceExists,
		timeEntryWorkspaceID, func(rec *domain.TimeEntry, id domain.Identity) { rec.WorkspaceID = id })
	e.project = link(m, domain.TimeEntryPropertyProject, r.projectFactory, r.ProjectExists,
		timeEntryProjectID, func(rec *domain.TimeEntry, id domain.Identity) { rec.ProjectID = id })
	return e
}

func (r *Registry) timeEntryFactory(_ context.Context, id domain.Identity) (*TimeEntryModel, error) {
	return r.TimeEntry(id), nil
}

// Time entry tags

// NewTimeEntryTag returns an unbound link model.
func (r *Registry) NewTimeEntryTag() *TimeEntryTagModel {
	return r.wrapTimeEntryTag(model.New[domain.TimeEntryTag](TimeEntryTagSchema{}, r.stores.TimeEntryTags, r.opts...))
}

// TimeEntryTag returns a lazily loaded link model for id.
func (r *Registry) TimeEntryTag(id domain.Identity) *TimeEntryTagModel {
	return r.wrapTimeEntryTag(model.NewWithID[domain.TimeEntryTag](TimeEntryTagSchema{}, r.stores.TimeEntryTags, id, r.opts...))
}

// TimeEntryTagFromRecord wraps an existing record.
func (r *Registry) TimeEntryTagFromRecord(rec domain.TimeEntryTag) *TimeEntryTagModel {
	return r.wrapTimeEntryTag(model.FromRecord[domain.TimeEntryTag](TimeEntryTagSchema{}, r.stores.TimeEntryTags, rec, r.opts...))
}

func (r *Registry) wrapTimeEntryTag(m *model.Model[domain.TimeEntryTag]) *TimeEntryTagModel {
	l := &TimeEntryTagModel{Model: m}
	l.timeEntry = link(m, domain.TimeEntryTagPropertyTimeEntry, r.timeEntryFactory, r.TimeEntryExists,
		linkTimeEntryID, func(rec *domain.TimeEntryTag, id domain.Identity) { rec.TimeEntryID = id })
	l.tag = link(m, domain.TimeEntryTagPropertyTag, r.tagFactory, r.TagExists,
		linkTagID, func(rec *domain.TimeEntryTag, id domain.Identity) { rec.TagID = id })
	return l
}
