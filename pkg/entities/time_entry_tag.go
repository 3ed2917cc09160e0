package entities

import (
	"context"

	"trackcore/pkg/domain"
	"trackcore/pkg/model"
)

var timeEntryTagProperties = []domain.Property{
	domain.PropertyID,
	domain.TimeEntryTagPropertyTimeEntry,
	domain.TimeEntryTagPropertyTag,
}

// TimeEntryTagSchema describes domain.TimeEntryTag to the model layer. Both
// sides of the link are mandatory.
type TimeEntryTagSchema struct{}

func (TimeEntryTagSchema) Entity() domain.EntityType { return domain.EntityTimeEntryTag }

func (TimeEntryTagSchema) Properties() []domain.Property { return timeEntryTagProperties }

func (TimeEntryTagSchema) New() domain.TimeEntryTag { return domain.TimeEntryTag{} }

func (TimeEntryTagSchema) WithIdentity(rec domain.TimeEntryTag, id domain.Identity) domain.TimeEntryTag {
	rec.ID = id
	return rec
}

func (TimeEntryTagSchema) Duplicate(rec domain.TimeEntryTag) domain.TimeEntryTag { return rec.Clone() }

func (TimeEntryTagSchema) Equal(a, b domain.TimeEntryTag) bool { return a.Equal(b) }

func (TimeEntryTagSchema) Diff(old, next domain.TimeEntryTag) []domain.Property {
	var d differ
	d.check(old.ID != next.ID, domain.PropertyID)
	d.check(old.TimeEntryID != next.TimeEntryID, domain.TimeEntryTagPropertyTimeEntry)
	d.check(old.TagID != next.TagID, domain.TimeEntryTagPropertyTag)
	return d.props
}

func (TimeEntryTagSchema) Validate(rec domain.TimeEntryTag) []domain.Failure {
	failures := requireKey(nil, rec.TimeEntryID, domain.TimeEntryTagPropertyTimeEntry)
	return requireKey(failures, rec.TagID, domain.TimeEntryTagPropertyTag)
}

// TimeEntryTagModel is the observable model of the link between a time
// entry and a tag.
type TimeEntryTagModel struct {
	*model.Model[domain.TimeEntryTag]
	timeEntry *model.Relation[*TimeEntryModel]
	tag       *model.Relation[*TagModel]
}

func linkTimeEntryID(r domain.TimeEntryTag) domain.Identity { return r.TimeEntryID }

func linkTagID(r domain.TimeEntryTag) domain.Identity { return r.TagID }

// TimeEntry resolves the linked time entry.
func (m *TimeEntryTagModel) TimeEntry(ctx context.Context) (*TimeEntryModel, error) {
	return related(ctx, m.Model, m.timeEntry, linkTimeEntryID)
}

// SetTimeEntry links e.
func (m *TimeEntryTagModel) SetTimeEntry(ctx context.Context, e *TimeEntryModel) error {
	return m.timeEntry.Set(ctx, e)
}

// Tag resolves the linked tag.
func (m *TimeEntryTagModel) Tag(ctx context.Context) (*TagModel, error) {
	return related(ctx, m.Model, m.tag, linkTagID)
}

// SetTag links t.
func (m *TimeEntryTagModel) SetTag(ctx context.Context, t *TagModel) error {
	return m.tag.Set(ctx, t)
}
