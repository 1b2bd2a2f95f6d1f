package model

import "time"

// Kind discriminates the three collection families a user can own.
type Kind string

const (
	KindList     Kind = "list"
	KindSchedule Kind = "schedule"
	KindMemory   Kind = "memory"
)

// Valid reports whether k is one of the known collection kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindList, KindSchedule, KindMemory:
		return true
	}
	return false
}

// User represents an account in the system. Users are upserted on first
// interaction; identity itself lives with the external auth provider.
type User struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Collection is a named, user-owned grouping of entries: a list, a schedule,
// or a memory category. (user_id, kind, name) is unique; name matching for
// resolution is case-insensitive (see internal/resolve).
type Collection struct {
	CollectionID string    `json:"collectionId"`
	UserID       string    `json:"userId"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Type         string    `json:"type,omitempty"`
	Archived     bool      `json:"archived,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Entries; only the slice matching Kind is populated.
	Items       []*ListItem      `json:"items,omitempty"`
	Events      []*ScheduleEvent `json:"events,omitempty"`
	MemoryItems []*MemoryItem    `json:"memoryItems,omitempty"`
}

// Len returns the number of entries for the collection's kind.
func (c *Collection) Len() int {
	switch c.Kind {
	case KindList:
		return len(c.Items)
	case KindSchedule:
		return len(c.Events)
	case KindMemory:
		return len(c.MemoryItems)
	}
	return 0
}

// ListItem is an entry in a list collection.
type ListItem struct {
	ItemID    string     `json:"itemId"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Status    string     `json:"status,omitempty"`
	Priority  int        `json:"priority"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Done reports completion, honoring both the boolean flag and the legacy
// string status carried over from older payloads.
func (i *ListItem) Done() bool {
	return i.Completed || i.Status == "completed"
}

// ScheduleEvent is an entry in a schedule collection.
type ScheduleEvent struct {
	EventID         string     `json:"eventId"`
	Title           string     `json:"title"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	Location        string     `json:"location,omitempty"`
	Description     string     `json:"description,omitempty"`
	Type            string     `json:"type,omitempty"`
	AllDay          bool       `json:"allDay"`
	ReminderMinutes *int       `json:"reminderMinutes,omitempty"`
	RecurrenceRule  string     `json:"recurrenceRule,omitempty"`
	Cancelled       bool       `json:"cancelled"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// MemoryItem is a key/value entry in a memory category. (collection, key) is
// unique; a second write to the same key overwrites the value in place.
type MemoryItem struct {
	MemoryItemID string     `json:"memoryItemId"`
	Key          string     `json:"key"`
	Value        string     `json:"value"`
	Type         string     `json:"type,omitempty"`
	Importance   int        `json:"importance"`
	Tags         []string   `json:"tags,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Private      bool       `json:"private"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Label returns the human-facing name for the item in query breakdowns.
func (m *MemoryItem) Label() string {
	if m.Key != "" {
		return m.Key
	}
	return "Unnamed item"
}
