package model

// Action is the ephemeral instruction produced by the planner for one
// operation. It is never persisted; the dispatcher validates the
// (Type, Operation) pair before routing.
type Action struct {
	Type   string     `json:"type"`
	Intent string     `json:"intent,omitempty"`
	Data   ActionData `json:"data"`
}

// ActionData carries the operation payload. Target is free text naming the
// collection the user meant; Values are the raw entry strings.
//
// The trailing fields mirror the legacy action shape (listName/name/items)
// that older planner prompts emitted; handleLegacy remaps them onto
// Target/Operation/Values before re-dispatching once.
type ActionData struct {
	Target    string         `json:"target,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Values    []string       `json:"values,omitempty"`
	Metadata  ActionMetadata `json:"metadata,omitempty"`

	ListName     string   `json:"listName,omitempty"`
	ScheduleName string   `json:"scheduleName,omitempty"`
	Name         string   `json:"name,omitempty"`
	Items        []string `json:"items,omitempty"`
	Title        string   `json:"title,omitempty"`
	Event        string   `json:"event,omitempty"`
}

// ActionMetadata is the loosely-typed bag the planner attaches to updates and
// deletes: entry ids, per-kind name overrides, partial field updates, and the
// pre-parsed natural-language date for events.
type ActionMetadata struct {
	ItemID       string        `json:"itemId,omitempty"`
	EventID      string        `json:"eventId,omitempty"`
	ListName     string        `json:"listName,omitempty"`
	ScheduleName string        `json:"scheduleName,omitempty"`
	CategoryName string        `json:"categoryName,omitempty"`
	Updates      *EntryUpdates `json:"updates,omitempty"`
	SmartDate    string        `json:"smartDate,omitempty"`
	Confidence   string        `json:"confidence,omitempty"`
}

// EntryUpdates is a partial-update set; nil pointers mean "leave unchanged".
type EntryUpdates struct {
	// List items
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	// Schedule events
	Title       *string `json:"title,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Cancelled   *bool   `json:"cancelled,omitempty"`
	// Memory items
	Value      *string `json:"value,omitempty"`
	Importance *int    `json:"importance,omitempty"`
}

// Empty reports whether no field is set.
func (u *EntryUpdates) Empty() bool {
	if u == nil {
		return true
	}
	return u.Text == nil && u.Completed == nil &&
		u.Title == nil && u.StartTime == nil && u.EndTime == nil &&
		u.Location == nil && u.Description == nil && u.Cancelled == nil &&
		u.Value == nil && u.Importance == nil
}
