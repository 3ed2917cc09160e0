package entities

import (
	"context"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var workspaceProperties = []domain.Property{
	domain.PropertyID,
	domain.WorkspacePropertyName,
}

// WorkspaceSchema describes domain.Workspace to the model layer.
type WorkspaceSchema struct{}

func (WorkspaceSchema) Entity() domain.EntityType { return domain.EntityWorkspace }

func (WorkspaceSchema) Properties() []domain.Property { return workspaceProperties }

func (WorkspaceSchema) New() domain.Workspace { return domain.Workspace{} }

func (WorkspaceSchema) WithIdentity(rec domain.Workspace, id domain.Identity) domain.Workspace {
	rec.ID = id
	return rec
}

func (WorkspaceSchema) Duplicate(rec domain.Workspace) domain.Workspace { return rec.Clone() }

func (WorkspaceSchema) Equal(a, b domain.Workspace) bool { return a.Equal(b) }

func (WorkspaceSchema) Diff(old, next domain.Workspace) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.Name != next.Name, domain.WorkspacePropertyName)
	return d.props
}

func (WorkspaceSchema) Validate(rec domain.Workspace) []domain.Failure {
	return fieldFailures(rec)
}

// WorkspaceModel is the observable model of a workspace.
type WorkspaceModel struct {
	*model.Model[domain.Workspace]
}

// Name returns the workspace name.
func (m *WorkspaceModel) Name(ctx context.Context) (string, error) {
	return field(ctx, m.Model, func(r domain.Workspace) string { return r.Name })
}

// SetName renames the workspace.
func (m *WorkspaceModel) SetName(ctx context.Context, name string) error {
	return m.Mutate(ctx, func(r *domain.Workspace) { r.Name = name })
}
