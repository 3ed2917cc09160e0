package entities

import (
	"context"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var tagProperties = []domain.Property{
	domain.PropertyID,
	domain.TagPropertyWorkspace,
	domain.TagPropertyName,
}

// TagSchema describes domain.Tag to the model layer.
type TagSchema struct{}

func (TagSchema) Entity() domain.EntityType { return domain.EntityTag }

func (TagSchema) Properties() []domain.Property { return tagProperties }

func (TagSchema) New() domain.Tag { return domain.Tag{} }

func (TagSchema) WithIdentity(rec domain.Tag, id domain.Identity) domain.Tag {
	rec.ID = id
	return rec
}

func (TagSchema) Duplicate(rec domain.Tag) domain.Tag { return rec.Clone() }

func (TagSchema) Equal(a, b domain.Tag) bool { return a.Equal(b) }

func (TagSchema) Diff(old, next domain.Tag) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.WorkspaceID != next.WorkspaceID, domain.TagPropertyWorkspace)
	d.check(old.Name != next.Name, domain.TagPropertyName)
	return d.props
}

func (TagSchema) Validate(rec domain.Tag) []domain.Failure {
	failures := requireKey(nil, rec.WorkspaceID, domain.TagPropertyWorkspace)
	return append(failures, fieldFailures(rec)...)
}

// TagModel is the observable model of a tag.
type TagModel struct {
	*model.Model[domain.Tag]
	workspace *model.Relation[*WorkspaceModel]
}

func tagWorkspaceID(r domain.Tag) domain.Identity { return r.WorkspaceID }

// Name returns the tag label.
func (m *TagModel) Name(ctx context.Context) (string, error) {
	return field(ctx, m.Model, func(r domain.Tag) string { return r.Name })
}

// SetName relabels the tag.
func (m *TagModel) SetName(ctx context.Context, name string) error {
	return m.Mutate(ctx, func(r *domain.Tag) { r.Name = name })
}

// Workspace resolves the owning workspace.
func (m *TagModel) Workspace(ctx context.Context) (*WorkspaceModel, error) {
	return related(ctx, m.Model, m.workspace, tagWorkspaceID)
}

// SetWorkspace moves the tag to ws.
func (m *TagModel) SetWorkspace(ctx context.Context, ws *WorkspaceModel) error {
	return m.workspace.Set(ctx, ws)
}

// SetWorkspaceID points the tag at a workspace by identity.
func (m *TagModel) SetWorkspaceID(ctx context.Context, id domain.Identity) error {
	return m.Mutate(ctx, func(r *domain.Tag) { r.WorkspaceID = id })
}
