package entities

import (
	"context"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var clientProperties = []domain.Property{
	domain.PropertyID,
	domain.ClientPropertyWorkspace,
	domain.ClientPropertyName,
}

// ClientSchema describes domain.Client to the model layer.
type ClientSchema struct{}

func (ClientSchema) Entity() domain.EntityType { return domain.EntityClient }

func (ClientSchema) Properties() []domain.Property { return clientProperties }

func (ClientSchema) New() domain.Client { return domain.Client{} }

func (ClientSchema) WithIdentity(rec domain.Client, id domain.Identity) domain.Client {
	rec.ID = id
	return rec
}

func (ClientSchema) Duplicate(rec domain.Client) domain.Client { return rec.Clone() }

func (ClientSchema) Equal(a, b domain.Client) bool { return a.Equal(b) }

func (ClientSchema) Diff(old, next domain.Client) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.WorkspaceID != next.WorkspaceID, domain.ClientPropertyWorkspace)
	d.check(old.Name != next.Name, domain.ClientPropertyName)
	return d.props
}

func (ClientSchema) Validate(rec domain.Client) []domain.Failure {
	failures := requireKey(nil, rec.WorkspaceID, domain.ClientPropertyWorkspace)
	return append(failures, fieldFailures(rec)...)
}

// ClientModel is the observable model of a client.
type ClientModel struct {
	*model.Model[domain.Client]
	workspace *model.Relation[*WorkspaceModel]
}

func clientWorkspaceID(r domain.Client) domain.Identity { return r.WorkspaceID }

// Name returns the client name.
func (m *ClientModel) Name(ctx context.Context) (string, error) {
	return field(ctx, m.Model, func(r domain.Client) string { return r.Name })
}

// SetName renames the client.
func (m *ClientModel) SetName(ctx context.Context, name string) error {
	return m.Mutate(ctx, func(r *domain.Client) { r.Name = name })
}

// Workspace resolves the owning workspace.
func (m *ClientModel) Workspace(ctx context.Context) (*WorkspaceModel, error) {
	return related(ctx, m.Model, m.workspace, clientWorkspaceID)
}

// SetWorkspace moves the client to ws. Nil clears the reference.
func (m *ClientModel) SetWorkspace(ctx context.Context, ws *WorkspaceModel) error {
	return m.workspace.Set(ctx, ws)
}

// SetWorkspaceID points the client at a workspace by identity.
func (m *ClientModel) SetWorkspaceID(ctx context.Context, id domain.Identity) error {
	return m.Mutate(ctx, func(r *domain.Client) { r.WorkspaceID = id })
}
