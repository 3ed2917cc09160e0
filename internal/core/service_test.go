package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newMemoryService(t *testing.T, opts ...Option) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(MemoryStores(), append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, clock
}

func TestServiceTracksAnEntry(t *testing.T) {
	ctx := context.Background()
	svc, clock := newMemoryService(t)

	ws, err := svc.CreateWorkspace(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, ws.ID.IsZero())

	client, err := svc.CreateClient(ctx, ws.ID, "Globex")
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, ProjectInput{Workspace: ws.ID, Client: client.ID, Name: "Website", Color: 3, Billable: true})
	require.NoError(t, err)
	assert.True(t, project.Active)

	tag, err := svc.CreateTag(ctx, ws.ID, "meetings")
	require.NoError(t, err)

	entry, err := svc.StartEntry(ctx, EntryInput{Workspace: ws.ID, Project: project.ID, Description: "kickoff"})
	require.NoError(t, err)
	assert.True(t, entry.Running())
	assert.Equal(t, clock.now, entry.Start)

	link, err := svc.TagEntry(ctx, entry.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, link.TimeEntryID)
	assert.Equal(t, tag.ID, link.TagID)

	clock.advance(45 * time.Minute)
	stopped, err := svc.StopEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.Stop)
	assert.Equal(t, 45*time.Minute, stopped.Duration(clock.now))

	summary, err := svc.DescribeEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", summary.Workspace)
	assert.Equal(t, "Website", summary.Project)
	assert.Equal(t, 45*time.Minute, summary.Duration)

	rec, err := svc.Show(ctx, domain.EntityTimeEntryTag, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link, rec)
}

func TestServiceStopTwice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)
	ws, err := svc.CreateWorkspace(ctx, "Acme")
	require.NoError(t, err)
	entry, err := svc.StartEntry(ctx, EntryInput{Workspace: ws.ID})
	require.NoError(t, err)
	_, err = svc.StopEntry(ctx, entry.ID)
	require.NoError(t, err)
	_, err = svc.StopEntry(ctx, entry.ID)
	assert.ErrorContains(t, err, "already stopped")
}

func TestServiceRejectsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)
	ws, err := svc.CreateWorkspace(ctx, "Acme")
	require.NoError(t, err)
	entry, err := svc.StartEntry(ctx, EntryInput{Workspace: ws.ID})
	require.NoError(t, err)

	_, err = svc.TagEntry(ctx, entry.ID, domain.NewIdentity())
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField(domain.TimeEntryTagPropertyTag))
	assert.False(t, verr.HasField(domain.TimeEntryTagPropertyTimeEntry))

	_, err = svc.CreateTag(ctx, domain.NewIdentity(), "orphan")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateWorkspace(ctx, "")
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField(domain.WorkspacePropertyName))
}

func TestServiceShow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)
	ws, err := svc.CreateWorkspace(ctx, "Acme")
	require.NoError(t, err)

	rec, err := svc.Show(ctx, "WORKSPACE", ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws, rec)

	_, err = svc.Show(ctx, domain.EntityProject, ws.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Show(ctx, "invoice", ws.ID)
	assert.ErrorContains(t, err, "unknown entity")
}

func TestServiceLogsSaves(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc, _ := newMemoryService(t, WithLogger(zap.New(core)))
	_, err := svc.CreateWorkspace(context.Background(), "Acme")
	require.NoError(t, err)
	entries := logs.FilterMessage("record saved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "workspace", entries[0].ContextMap()["entity"])
}

func TestOpenWiresConfig(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	cfg := Config{
		Storage:    StorageSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "trackcore.db"),
		Metrics:    MetricsPrometheus,
		LoadPolicy: model.FailNotLoaded,
	}
	svc, err := Open(ctx, cfg, WithRegisterer(reg))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	ws, err := svc.CreateWorkspace(ctx, "Acme")
	require.NoError(t, err)

	// A lazily constructed model refuses access until loaded explicitly.
	lazy := svc.Registry().Workspace(ws.ID)
	_, err = lazy.Name(ctx)
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	// StopEntry and Show load explicitly, so they work under the same policy.
	entry, err := svc.StartEntry(ctx, EntryInput{Workspace: ws.ID})
	require.NoError(t, err)
	_, err = svc.StopEntry(ctx, entry.ID)
	require.NoError(t, err)
	summary, err := svc.DescribeEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", summary.Workspace)

	count, err := testutil.GatherAndCount(reg, "trackcore_model_operations_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, Config{Storage: "nope"})
	assert.ErrorContains(t, err, "open nope storage")

	_, err = Open(ctx, Config{Storage: StorageMemory, Metrics: "statsd"})
	assert.Error(t, err)
}
