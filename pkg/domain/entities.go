// Package domain defines the immutable data records tracked by trackcore,
// their property names, and the error and change types shared by the model
// layer and the persistence backends.
package domain

import "time"

// EntityType identifies the type of record stored in the domain.
type EntityType string

// Supported entity type identifiers used in errors, change records and
// persistence buckets.
const (
	// EntityWorkspace identifies a workspace record.
	EntityWorkspace EntityType = "workspace"
	// EntityClient identifies a client record.
	EntityClient EntityType = "client"
	// EntityProject identifies a project record.
	EntityProject EntityType = "project"
	// EntityTag identifies a tag record.
	EntityTag EntityType = "tag"
	// EntityTimeEntry identifies a time entry record.
	EntityTimeEntry EntityType = "time_entry"
	// EntityTimeEntryTag identifies the join record linking time entries to tags.
	EntityTimeEntryTag EntityType = "time_entry_tag"
)

// EntityTypes lists every entity type in dependency order: referenced types
// come before the types that reference them.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityWorkspace,
		EntityClient,
		EntityProject,
		EntityTag,
		EntityTimeEntry,
		EntityTimeEntryTag,
	}
}

// Property names an observable field of a record. Names are compile-time
// constants declared next to each record type.
type Property string

// PropertyID is the identity property shared by every record.
const PropertyID Property = "ID"

// Record is implemented by every data record value.
type Record interface {
	Entity() EntityType
	RecordID() Identity
}

// Cloner is a record that can produce an independent deep copy of itself.
type Cloner[R any] interface {
	Record
	Clone() R
}

// Base holds the identity common to all records.
type Base struct {
	ID Identity `json:"id"`
}

// RecordID returns the record identity.
func (b Base) RecordID() Identity { return b.ID }

// Workspace is the top-level container that owns clients, projects, tags and
// time entries.
type Workspace struct {
	Base
	Name string `json:"name" validate:"required,max=255"`
}

// Workspace property names.
const (
	WorkspacePropertyName Property = "Name"
)

// Entity returns EntityWorkspace.
func (Workspace) Entity() EntityType { return EntityWorkspace }

// Clone returns a copy of the record.
func (w Workspace) Clone() Workspace { return w }

// Equal reports structural equality.
func (w Workspace) Equal(o Workspace) bool { return w == o }

// Client is a customer that projects may be billed to.
type Client struct {
	Base
	WorkspaceID Identity `json:"workspace_id"`
	Name        string   `json:"name" validate:"required,max=255"`
}

// Client property names.
const (
	ClientPropertyWorkspace Property = "Workspace"
	ClientPropertyName      Property = "Name"
)

// Entity returns EntityClient.
func (Client) Entity() EntityType { return EntityClient }

// Clone returns a copy of the record.
func (c Client) Clone() Client { return c }

// Equal reports structural equality.
func (c Client) Equal(o Client) bool { return c == o }

// Project groups time entries inside a workspace, optionally for a client.
type Project struct {
	Base
	WorkspaceID Identity `json:"workspace_id"`
	ClientID    Identity `json:"client_id"`
	Name        string   `json:"name" validate:"required,max=255"`
	Color       int      `json:"color" validate:"min=0,max=23"`
	Active      bool     `json:"active"`
	Billable    bool     `json:"billable"`
}

// Project property names.
const (
	ProjectPropertyWorkspace Property = "Workspace"
	ProjectPropertyClient    Property = "Client"
	ProjectPropertyName      Property = "Name"
	ProjectPropertyColor     Property = "Color"
	ProjectPropertyActive    Property = "Active"
	ProjectPropertyBillable  Property = "Billable"
)

// Entity returns EntityProject.
func (Project) Entity() EntityType { return EntityProject }

// Clone returns a copy of the record.
func (p Project) Clone() Project { return p }

// Equal reports structural equality.
func (p Project) Equal(o Project) bool { return p == o }

// Tag is a workspace-scoped label attached to time entries.
type Tag struct {
	Base
	WorkspaceID Identity `json:"workspace_id"`
	Name        string   `json:"name" validate:"required,max=255"`
}

// Tag property names.
const (
	TagPropertyWorkspace Property = "Workspace"
	TagPropertyName      Property = "Name"
)

// Entity returns EntityTag.
func (Tag) Entity() EntityType { return EntityTag }

// Clone returns a copy of the record.
func (t Tag) Clone() Tag { return t }

// Equal reports structural equality.
func (t Tag) Equal(o Tag) bool { return t == o }

// TimeEntry is a tracked span of work. A nil Stop marks a running entry.
type TimeEntry struct {
	Base
	WorkspaceID Identity   `json:"workspace_id"`
	ProjectID   Identity   `json:"project_id"`
	Description string     `json:"description" validate:"max=3000"`
	Start       time.Time  `json:"start" validate:"required"`
	Stop        *time.Time `json:"stop,omitempty"`
	Billable    bool       `json:"billable"`
}

// TimeEntry property names.
const (
	TimeEntryPropertyWorkspace   Property = "Workspace"
	TimeEntryPropertyProject     Property = "Project"
	TimeEntryPropertyDescription Property = "Description"
	TimeEntryPropertyStart       Property = "Start"
	TimeEntryPropertyStop        Property = "Stop"
	TimeEntryPropertyBillable    Property = "Billable"
)

// Entity returns EntityTimeEntry.
func (TimeEntry) Entity() EntityType { return EntityTimeEntry }

// Running reports whether the entry has no stop time.
func (e TimeEntry) Running() bool { return e.Stop == nil }

// Duration returns the elapsed time of a stopped entry, or the time since
// Start measured at now for a running one.
func (e TimeEntry) Duration(now time.Time) time.Duration {
	if e.Stop != nil {
		return e.Stop.Sub(e.Start)
	}
	return now.Sub(e.Start)
}

// Clone returns a deep copy of the record.
func (e TimeEntry) Clone() TimeEntry {
	cp := e
	if e.Stop != nil {
		stop := *e.Stop
		cp.Stop = &stop
	}
	return cp
}

// Equal reports structural equality. Times compare by instant.
func (e TimeEntry) Equal(o TimeEntry) bool {
	return e.ID == o.ID &&
		e.WorkspaceID == o.WorkspaceID &&
		e.ProjectID == o.ProjectID &&
		e.Description == o.Description &&
		e.Start.Equal(o.Start) &&
		equalTimePtr(e.Stop, o.Stop) &&
		e.Billable == o.Billable
}

// TimeEntryTag links one time entry to one tag.
type TimeEntryTag struct {
	Base
	TimeEntryID Identity `json:"time_entry_id"`
	TagID       Identity `json:"tag_id"`
}

// TimeEntryTag property names.
const (
	TimeEntryTagPropertyTimeEntry Property = "TimeEntry"
	TimeEntryTagPropertyTag       Property = "Tag"
)

// Entity returns EntityTimeEntryTag.
func (TimeEntryTag) Entity() EntityType { return EntityTimeEntryTag }

// Clone returns a copy of the record.
func (t TimeEntryTag) Clone() TimeEntryTag { return t }

// Equal reports structural equality.
func (t TimeEntryTag) Equal(o TimeEntryTag) bool { return t == o }

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
