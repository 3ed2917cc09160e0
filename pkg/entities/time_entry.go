package entities

import (
	"context"
	"time"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var timeEntryProperties = []domain.Property{
	domain.PropertyID,
	domain.TimeEntryPropertyWorkspace,
	domain.TimeEntryPropertyProject,
	domain.TimeEntryPropertyDescription,
	domain.TimeEntryPropertyStart,
	domain.TimeEntryPropertyStop,
	domain.TimeEntryPropertyBillable,
}

// TimeEntrySchema describes domain.TimeEntry to the model layer.
type TimeEntrySchema struct{}

func (TimeEntrySchema) Entity() domain.EntityType { return domain.EntityTimeEntry }

func (TimeEntrySchema) Properties() []domain.Property { return timeEntryProperties }

func (TimeEntrySchema) New() domain.TimeEntry { return domain.TimeEntry{} }

func (TimeEntrySchema) WithIdentity(rec domain.TimeEntry, id domain.Identity) domain.TimeEntry {
	rec.ID = id
	return rec
}

func (TimeEntrySchema) Duplicate(rec domain.TimeEntry) domain.TimeEntry { return rec.Clone() }

func (TimeEntrySchema) Equal(a, b domain.TimeEntry) bool { return a.Equal(b) }

func (TimeEntrySchema) Diff(old, next domain.TimeEntry) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.WorkspaceID != next.WorkspaceID, domain.TimeEntryPropertyWorkspace)
	d.check(old.ProjectID != next.ProjectID, domain.TimeEntryPropertyProject)
	d.check(old.Description != next.Description, domain.TimeEntryPropertyDescription)
	d.check(!old.Start.Equal(next.Start), domain.TimeEntryPropertyStart)
	d.check(!sameStop(old.Stop, next.Stop), domain.TimeEntryPropertyStop)
	d.check(old.Billable != next.Billable, domain.TimeEntryPropertyBillable)
	return d.props
}

func (TimeEntrySchema) Validate(rec domain.TimeEntry) []domain.Failure {
	failures := requireKey(nil, rec.WorkspaceID, domain.TimeEntryPropertyWorkspace)
	failures = append(failures, fieldFailures(rec)...)
	if rec.Stop != nil && !rec.Start.IsZero() && rec.Stop.Before(rec.Start) {
		failures = append(failures, domain.Failure{Field: domain.TimeEntryPropertyStop, Reason: "must not be before start"})
	}
	return failures
}

func sameStop(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// TimeEntryModel is the observable model of a time entry.
type TimeEntryModel struct {
	*model.Model[domain.TimeEntry]
	workspace *model.Relation[*WorkspaceModel]
	project   *model.Relation[*ProjectModel]
}

func timeEntryWorkspaceID(r domain.TimeEntry) domain.Identity { return r.WorkspaceID }

func timeEntryProjectID(r domain.TimeEntry) domain.Identity { return r.ProjectID }

// Description returns the entry description.
func (m *TimeEntryModel) Description(ctx context.Context) (string, error) {
	return field(ctx, m.Model, func(r domain.TimeEntry) string { return r.Description })
}

// SetDescription replaces the description.
func (m *TimeEntryModel) SetDescription(ctx context.Context, desc string) error {
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.Description = desc })
}

// Start returns when the entry started.
func (m *TimeEntryModel) Start(ctx context.Context) (time.Time, error) {
	return field(ctx, m.Model, func(r domain.TimeEntry) time.Time { return r.Start })
}

// SetStart moves the start time.
func (m *TimeEntryModel) SetStart(ctx context.Context, at time.Time) error {
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.Start = at })
}

// Stop returns when the entry stopped, nil while it is running.
func (m *TimeEntryModel) Stop(ctx context.Context) (*time.Time, error) {
	return field(ctx, m.Model, func(r domain.TimeEntry) *time.Time { return r.Stop })
}

// SetStop stops the entry at the given time. Nil resumes it.
func (m *TimeEntryModel) SetStop(ctx context.Context, at *time.Time) error {
	var stop *time.Time
	if at != nil {
		v := *at
		stop = &v
	}
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.Stop = stop })
}

// Running reports whether the entry has not been stopped.
func (m *TimeEntryModel) Running(ctx context.Context) (bool, error) {
	return field(ctx, m.Model, domain.TimeEntry.Running)
}

// Billable reports whether the entry is billable.
func (m *TimeEntryModel) Billable(ctx context.Context) (bool, error) {
	return field(ctx, m.Model, func(r domain.TimeEntry) bool { return r.Billable })
}

// SetBillable changes the billable flag.
func (m *TimeEntryModel) SetBillable(ctx context.Context, billable bool) error {
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.Billable = billable })
}

// Workspace resolves the owning workspace.
func (m *TimeEntryModel) Workspace(ctx context.Context) (*WorkspaceModel, error) {
	return related(ctx, m.Model, m.workspace, timeEntryWorkspaceID)
}

// SetWorkspace moves the entry to ws.
func (m *TimeEntryModel) SetWorkspace(ctx context.Context, ws *WorkspaceModel) error {
	return m.workspace.Set(ctx, ws)
}

// SetWorkspaceID points the entry at a workspace by identity.
func (m *TimeEntryModel) SetWorkspaceID(ctx context.Context, id domain.Identity) error {
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.WorkspaceID = id })
}

// Project resolves the project, nil when unset.
func (m *TimeEntryModel) Project(ctx context.Context) (*ProjectModel, error) {
	return related(ctx, m.Model, m.project, timeEntryProjectID)
}

// SetProject assigns the entry to p. Nil clears the project.
func (m *TimeEntryModel) SetProject(ctx context.Context, p *ProjectModel) error {
	return m.project.Set(ctx, p)
}

// SetProjectID points the entry at a project by identity.
func (m *TimeEntryModel) SetProjectID(ctx context.Context, id domain.Identity) error {
	return m.Mutate(ctx, func(r *domain.TimeEntry) { r.ProjectID = id })
}
