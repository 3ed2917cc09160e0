package entities

import (
	"context"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var projectProperties = []domain.Property{
	domain.PropertyID,
	domain.ProjectPropertyWorkspace,
	domain.ProjectPropertyClient,
	domain.ProjectPropertyName,
	domain.ProjectPropertyColor,
	domain.ProjectPropertyActive,
	domain.ProjectPropertyBillable,
}

// ProjectSchema describes domain.Project to the model layer. New projects
// start active.
type ProjectSchema struct{}

func (ProjectSchema) Entity() domain.EntityType { return domain.EntityProject }

func (ProjectSchema) Properties() []domain.Property { return projectProperties }

func (ProjectSchema) New() domain.Project { return domain.Project{Active: true} }

func (ProjectSchema) WithIdentity(rec domain.Project, id domain.Identity) domain.Project {
	rec.ID = id
	return rec
}

func (ProjectSchema) Duplicate(rec domain.Project) domain.Project { return rec.Clone() }

func (ProjectSchema) Equal(a, b domain.Project) bool { return a.Equal(b) }

func (ProjectSchema) Diff(old, next domain.Project) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.WorkspaceID != next.WorkspaceID, domain.ProjectPropertyWorkspace)
	d.check(old.ClientID != next.ClientID, domain.ProjectPropertyClient)
	d.check(old.Name != next.Name, domain.ProjectPropertyName)
	d.check(old.Color != next.Color, domain.ProjectPropertyColor)
	d.check(old.Active != next.Active, domain.ProjectPropertyActive)
	d.check(old.Billable != next.Billable, domain.ProjectPropertyBillable)
	return d.props
}

func (ProjectSchema) Validate(rec domain.Project) []domain.Failure {
	failures := requireKey(nil, rec.WorkspaceID, domain.ProjectPropertyWorkspace)
	return append(failures, fieldFailures(rec)...)
}

// ProjectModel is the observable model of a project.
type ProjectModel struct {
	*model.Model[domain.Project]
	workspace *model.Relation[*WorkspaceModel]
	client    *model.Relation[*ClientModel]
}

func projectWorkspaceID(r domain.Project) domain.Identity { return r.WorkspaceID }

func projectClientID(r domain.Project) domain.Identity { return r.ClientID }

// Name returns the project name.
func (m *ProjectModel) Name(ctx context.Context) (string, error) {
	return field(ctx, m.Model, func(r domain.Project) string { return r.Name })
}

// SetName renames the project.
func (m *ProjectModel) SetName(ctx context.Context, name string) error {
	return m.Mutate(ctx, func(r *domain.Project) { r.Name = name })
}

// Color returns the palette index of the project.
func (m *ProjectModel) Color(ctx context.Context) (int, error) {
	return field(ctx, m.Model, func(r domain.Project) int { return r.Color })
}

// SetColor sets the palette index. Out of range values fail validation on save.
func (m *ProjectModel) SetColor(ctx context.Context, color int) error {
	return m.Mutate(ctx, func(r *domain.Project) { r.Color = color })
}

// Active reports whether the project accepts new time entries.
func (m *ProjectModel) Active(ctx context.Context) (bool, error) {
	return field(ctx, m.Model, func(r domain.Project) bool { return r.Active })
}

// SetActive archives or restores the project.
func (m *ProjectModel) SetActive(ctx context.Context, active bool) error {
	return m.Mutate(ctx, func(r *domain.Project) { r.Active = active })
}

// Billable reports whether time on the project is billable by default.
func (m *ProjectModel) Billable(ctx context.Context) (bool, error) {
	return field(ctx, m.Model, func(r domain.Project) bool { return r.Billable })
}

// SetBillable changes the billable default.
func (m *ProjectModel) SetBillable(ctx context.Context, billable bool) error {
	return m.Mutate(ctx, func(r *domain.Project) { r.Billable = billable })
}

// Workspace resolves the owning workspace.
func (m *ProjectModel) Workspace(ctx context.Context) (*WorkspaceModel, error) {
	return related(ctx, m.Model, m.workspace, projectWorkspaceID)
}

// SetWorkspace moves the project to ws.
func (m *ProjectModel) SetWorkspace(ctx context.Context, ws *WorkspaceModel) error {
	return m.workspace.Set(ctx, ws)
}

// Client resolves the client the project is billed to, nil when unset.
func (m *ProjectModel) Client(ctx context.Context) (*ClientModel, error) {
	return related(ctx, m.Model, m.client, projectClientID)
}

// SetClient assigns the project to c. Nil clears the client.
func (m *ProjectModel) SetClient(ctx context.Context, c *ClientModel) error {
	return m.client.Set(ctx, c)
}
