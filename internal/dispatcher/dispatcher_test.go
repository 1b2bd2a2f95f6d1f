package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/resolve"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// --- Fakes ---

// memStore is an in-memory store.Store. Collections are kept in
// most-recently-touched order to mirror the drivers' updated_at DESC
// ordering contract.
type memStore struct {
	mu       sync.Mutex
	seq      int
	cols     []*model.Collection
	failAdds bool
}

func (f *memStore) Users() store.Users             { return fakeUsers{} }
func (f *memStore) Collections() store.Collections { return &fakeCollections{f} }
func (f *memStore) ListItems() store.ListItems     { return &fakeListItems{f} }
func (f *memStore) Events() store.Events           { return &fakeEvents{f} }
func (f *memStore) MemoryItems() store.MemoryItems { return &fakeMemoryItems{f} }

func (f *memStore) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%d", f.seq)
}

// touch moves the collection to the front, most recent first.
func (f *memStore) touch(c *model.Collection) {
	for i, existing := range f.cols {
		if existing == c {
			f.cols = append(f.cols[:i], f.cols[i+1:]...)
			break
		}
	}
	f.cols = append([]*model.Collection{c}, f.cols...)
}

func (f *memStore) find(userID string, kind model.Kind, name string) *model.Collection {
	for _, c := range f.cols {
		if c.UserID == userID && c.Kind == kind && c.Name == name {
			return c
		}
	}
	return nil
}

func (f *memStore) byID(id string) *model.Collection {
	for _, c := range f.cols {
		if c.CollectionID == id {
			return c
		}
	}
	return nil
}

type fakeUsers struct{}

func (fakeUsers) Upsert(context.Context, *model.User) (*model.User, error) { panic("unused") }
func (fakeUsers) Get(context.Context, string) (*model.User, error)         { panic("unused") }

type fakeCollections struct{ p *memStore }

func (c *fakeCollections) Upsert(_ context.Context, in *model.Collection) (*model.Collection, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if existing := c.p.find(in.UserID, in.Kind, in.Name); existing != nil {
		existing.Type = in.Type
		c.p.touch(existing)
		return existing, nil
	}
	col := &model.Collection{
		CollectionID: c.p.nextID(),
		UserID:       in.UserID,
		Kind:         in.Kind,
		Name:         in.Name,
		Type:         in.Type,
	}
	c.p.touch(col)
	return col, nil
}

func (c *fakeCollections) GetByName(_ context.Context, userID string, kind model.Kind, name string) (*model.Collection, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if col := c.p.find(userID, kind, name); col != nil {
		return col, nil
	}
	return nil, model.ErrNotFound
}

func (c *fakeCollections) List(_ context.Context, userID string, kind model.Kind, includeArchived bool) ([]*model.Collection, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	var out []*model.Collection
	for _, col := range c.p.cols {
		if col.UserID == userID && col.Kind == kind && (includeArchived || !col.Archived) {
			out = append(out, col)
		}
	}
	return out, nil
}

func (c *fakeCollections) Delete(_ context.Context, userID string, kind model.Kind, name string) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	for i, col := range c.p.cols {
		if col.UserID == userID && col.Kind == kind && col.Name == name {
			c.p.cols = append(c.p.cols[:i], c.p.cols[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeListItems struct{ p *memStore }

func (l *fakeListItems) Add(_ context.Context, collectionID string, item *model.ListItem) (*model.ListItem, error) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	if l.p.failAdds {
		return nil, errors.New("simulated storage failure")
	}
	col := l.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	out := *item
	out.ItemID = l.p.nextID()
	col.Items = append(col.Items, &out)
	l.p.touch(col)
	return &out, nil
}

func (l *fakeListItems) Update(_ context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.ListItem, error) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	col := l.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	for _, it := range col.Items {
		if it.ItemID == itemID {
			if u.Text != nil {
				it.Text = *u.Text
			}
			if u.Completed != nil {
				it.Completed = *u.Completed
			}
			return it, nil
		}
	}
	return nil, model.ErrNotFound
}

func (l *fakeListItems) Delete(_ context.Context, collectionID, itemID string) error {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	col := l.p.byID(collectionID)
	if col == nil {
		return model.ErrNotFound
	}
	for i, it := range col.Items {
		if it.ItemID == itemID {
			col.Items = append(col.Items[:i], col.Items[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeEvents struct{ p *memStore }

func (e *fakeEvents) Add(_ context.Context, collectionID string, ev *model.ScheduleEvent) (*model.ScheduleEvent, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	col := e.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	out := *ev
	out.EventID = e.p.nextID()
	col.Events = append(col.Events, &out)
	e.p.touch(col)
	return &out, nil
}

func (e *fakeEvents) Update(_ context.Context, collectionID, eventID string, u *model.EntryUpdates) (*model.ScheduleEvent, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	col := e.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	for _, ev := range col.Events {
		if ev.EventID == eventID {
			if u.Title != nil {
				ev.Title = *u.Title
			}
			if u.Cancelled != nil {
				ev.Cancelled = *u.Cancelled
			}
			return ev, nil
		}
	}
	return nil, model.ErrNotFound
}

func (e *fakeEvents) Delete(_ context.Context, collectionID, eventID string) error {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	col := e.p.byID(collectionID)
	if col == nil {
		return model.ErrNotFound
	}
	for i, ev := range col.Events {
		if ev.EventID == eventID {
			col.Events = append(col.Events[:i], col.Events[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeMemoryItems struct{ p *memStore }

func (m *fakeMemoryItems) Put(_ context.Context, collectionID string, item *model.MemoryItem) (*model.MemoryItem, error) {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	col := m.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	for _, mi := range col.MemoryItems {
		if mi.Key == item.Key {
			mi.Value = item.Value
			return mi, nil
		}
	}
	out := *item
	out.MemoryItemID = m.p.nextID()
	col.MemoryItems = append(col.MemoryItems, &out)
	m.p.touch(col)
	return &out, nil
}

func (m *fakeMemoryItems) Update(_ context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.MemoryItem, error) {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	col := m.p.byID(collectionID)
	if col == nil {
		return nil, model.ErrNotFound
	}
	for _, mi := range col.MemoryItems {
		if mi.MemoryItemID == itemID {
			if u.Value != nil {
				mi.Value = *u.Value
			}
			if u.Importance != nil {
				mi.Importance = *u.Importance
			}
			return mi, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *fakeMemoryItems) Delete(_ context.Context, collectionID, itemID string) error {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	col := m.p.byID(collectionID)
	if col == nil {
		return model.ErrNotFound
	}
	for i, mi := range col.MemoryItems {
		if mi.MemoryItemID == itemID {
			col.MemoryItems = append(col.MemoryItems[:i], col.MemoryItems[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

// fixedAdvisor returns canned answers.
type fixedAdvisor struct {
	choice string
	name   string
}

func (a *fixedAdvisor) Rank(context.Context, string, []*model.Collection, []string) (string, error) {
	return a.choice, nil
}
func (a *fixedAdvisor) SuggestName(_ context.Context, request string, _ []string) string {
	if a.name != "" {
		return a.name
	}
	return request
}

// --- Helpers ---

const testUser = "u-1"

func newDispatcher(fs *memStore, advisor Advisor) *Dispatcher {
	wednesday := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	return New(fs, advisor, dates.NewParserAt(func() time.Time { return wednesday }), zerolog.Nop())
}

func seedCollection(fs *memStore, kind model.Kind, name, colType string) *model.Collection {
	col := &model.Collection{
		CollectionID: fs.nextID(),
		UserID:       testUser,
		Kind:         kind,
		Name:         name,
		Type:         colType,
	}
	fs.touch(col)
	return col
}

func addAction(target string, values ...string) model.Action {
	return model.Action{
		Type: "smart_add",
		Data: model.ActionData{Target: target, Operation: "add_to_list", Values: values},
	}
}

// --- Tests ---

func TestAddToList_SoleListAbsorbsAnyPhrasing(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, addAction("Thursday List", "milk"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "items_added", res.Type)
	assert.Equal(t, "Groceries", res.Details["targetList"])
	require.Len(t, groceries.Items, 1)
	assert.Equal(t, "milk", groceries.Items[0].Text)
	// No spurious "Thursday List" was created.
	assert.Len(t, fs.cols, 1)
}

func TestAddToList_ZeroListsCreatesWithRequestedName(t *testing.T) {
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, addAction("Camping", "tent", "sleeping bag"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, true, res.Details["created"])
	col := fs.find(testUser, model.KindList, "Camping")
	require.NotNil(t, col)
	assert.Equal(t, "custom", col.Type)
	assert.Len(t, col.Items, 2)
}

func TestAddToList_SubstringBeatsCreation(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	work := seedCollection(fs, model.KindList, "Work Tasks", "todo")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, addAction("work", "send report"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Work Tasks", res.Details["targetList"])
	assert.Len(t, work.Items, 1)
	assert.Len(t, fs.cols, 2)
}

func TestAddToList_NoMatchAmongManyCreates(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	seedCollection(fs, model.KindList, "Work Tasks", "todo")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, addAction("Camping", "tent"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Camping", res.Details["targetList"])
	assert.Len(t, fs.cols, 3)
}

func TestAddToList_AdvisorChoiceIsValidated(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	work := seedCollection(fs, model.KindList, "Work Tasks", "todo")

	// A hallucinated name is ignored and resolution falls through to creation.
	d := newDispatcher(fs, &fixedAdvisor{choice: "Imaginary List"})
	res, err := d.Process(context.Background(), testUser, addAction("stuff for later", "notebook"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotNil(t, fs.find(testUser, model.KindList, "stuff for later"))

	// A verbatim candidate name is trusted.
	d = newDispatcher(fs, &fixedAdvisor{choice: "work tasks"})
	res, err = d.Process(context.Background(), testUser, addAction("things to do", "call dentist"))
	require.NoError(t, err)
	assert.Equal(t, "Work Tasks", res.Details["targetList"])
	require.Len(t, work.Items, 1)
	assert.Equal(t, "call dentist", work.Items[0].Text)
}

func TestAddToList_CreateNewSentinelCreates(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	seedCollection(fs, model.KindList, "Work Tasks", "todo")
	d := newDispatcher(fs, &fixedAdvisor{choice: resolve.CreateNew})

	res, err := d.Process(context.Background(), testUser, addAction("Birthday Party", "balloons"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotNil(t, fs.find(testUser, model.KindList, "Birthday Party"))
}

func TestAddRace_DuplicateCreateIsAccepted(t *testing.T) {
	// Two adds targeting the same unseen name: the first creates, the second
	// resolves onto the created collection through upsert semantics instead
	// of failing on a name conflict.
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	for _, item := range []string{"tent", "stove"} {
		res, err := d.Process(context.Background(), testUser, addAction("Camping", item))
		require.NoError(t, err)
		assert.True(t, res.Success)
	}
	col := fs.find(testUser, model.KindList, "Camping")
	require.NotNil(t, col)
	assert.Len(t, col.Items, 2)
	assert.Len(t, fs.cols, 1)
}

func TestCreateList_NamesInfersAndSeeds(t *testing.T) {
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_create",
		Data: model.ActionData{Target: "shopping stuff", Operation: "create_list", Values: []string{"milk", "bread"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "list_created", res.Type)
	assert.Equal(t, "Shopping List", res.Details["name"])
	assert.Equal(t, "shopping", res.Details["type"])
	assert.Equal(t, 2, res.Details["initialItems"])
	col := fs.find(testUser, model.KindList, "Shopping List")
	require.NotNil(t, col)
	assert.Len(t, col.Items, 2)
}

func TestCreateList_TomorrowNamesAfterWeekday(t *testing.T) {
	// The pinned clock is a Wednesday, so "tomorrow" is Thursday.
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_create",
		Data: model.ActionData{Target: "a list for tomorrow", Operation: "create_list"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Thursday List", res.Details["name"])
}

func TestSmartSchedule_DelegatesToAddEventWithSmartDate(t *testing.T) {
	fs := &memStore{}
	sched := seedCollection(fs, model.KindSchedule, "Work Schedule", "work")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_schedule",
		Data: model.ActionData{
			Target:   "work schedule",
			Values:   []string{"dentist appointment"},
			Metadata: model.ActionMetadata{SmartDate: "tomorrow"},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "events_added", res.Type)
	require.Len(t, sched.Events, 1)
	require.NotNil(t, sched.Events[0].StartTime)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), sched.Events[0].StartTime.UTC())
}

func TestSmartRemember_ExtractsKeyValueAndUpserts(t *testing.T) {
	fs := &memStore{}
	cat := seedCollection(fs, model.KindMemory, "Personal Info", "personal")
	d := newDispatcher(fs, nil)

	remember := func(raw string) *Result {
		res, err := d.Process(context.Background(), testUser, model.Action{
			Type: "smart_remember",
			Data: model.ActionData{Target: "personal info", Values: []string{raw}},
		})
		require.NoError(t, err)
		require.True(t, res.Success)
		return res
	}

	remember("the wifi password is hunter2")
	require.Len(t, cat.MemoryItems, 1)
	assert.Equal(t, "the wifi password", cat.MemoryItems[0].Key)
	assert.Equal(t, "hunter2", cat.MemoryItems[0].Value)

	// Same key again replaces the value instead of duplicating the item.
	remember("the wifi password is hunter3")
	require.Len(t, cat.MemoryItems, 1)
	assert.Equal(t, "hunter3", cat.MemoryItems[0].Value)
}

func TestUpdate_PrepareEditIsNoOp(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	groceries.Items = []*model.ListItem{{ItemID: "i-1", Text: "milk"}}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{Target: "Groceries", Operation: "prepare_edit"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "edit_prepared", res.Type)
	assert.Len(t, groceries.Items, 1)
	assert.Equal(t, "milk", groceries.Items[0].Text)
}

func TestUpdateListItem_TogglesCompletion(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	groceries.Items = []*model.ListItem{{ItemID: "i-1", Text: "milk"}}
	d := newDispatcher(fs, nil)

	done := true
	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{
			Target:    "Groceries",
			Operation: "update_item",
			Metadata:  model.ActionMetadata{ItemID: "i-1", Updates: &model.EntryUpdates{Completed: &done}},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "completion_toggle", res.Details["operation"])
	assert.True(t, groceries.Items[0].Completed)
}

func TestUpdateListItem_WithoutUpdatesIsSoftFailure(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{Target: "Groceries", Operation: "update_item", Metadata: model.ActionMetadata{ItemID: "i-1"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no valid updates")
}

func TestUpdate_MissingCollectionIsSoftFailure(t *testing.T) {
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{Target: "No Such List", Operation: "update_item",
			Metadata: model.ActionMetadata{ItemID: "i-1", Updates: &model.EntryUpdates{Text: strPtr("x")}}},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "could not find")
}

func TestUpdate_MissingEntryPropagatesStoreError(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	d := newDispatcher(fs, nil)

	_, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{Target: "Groceries", Operation: "update_item",
			Metadata: model.ActionMetadata{ItemID: "missing", Updates: &model.EntryUpdates{Text: strPtr("x")}}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEditList_LegacyAppendsItems(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_update",
		Data: model.ActionData{Target: "the groceries", Operation: "edit_list", Values: []string{"eggs"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "list_updated", res.Type)
	assert.Len(t, groceries.Items, 1)
}

func TestDelete_CascadesThroughCollection(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	groceries.Items = []*model.ListItem{{ItemID: "i-1", Text: "milk"}}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_delete",
		Data: model.ActionData{Target: "Groceries", Operation: "delete_list"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "list_deleted", res.Type)
	assert.Empty(t, fs.cols)
}

func TestDelete_MissingTargetIsSoftFailure(t *testing.T) {
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_delete",
		Data: model.ActionData{Target: "Nothing", Operation: "delete_list"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "could not find")
}

func TestDelete_NoOperationResolvesListsThenSchedulesThenMemory(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindSchedule, "Work Schedule", "work")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "smart_delete",
		Data: model.ActionData{Target: "work schedule"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "schedule_deleted", res.Type)
	assert.Empty(t, fs.cols)
}

func TestQueries_AggregateWithoutMutating(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	groceries.Items = []*model.ListItem{
		{ItemID: "i-1", Text: "milk", Completed: true},
		{ItemID: "i-2", Text: "bread", Completed: true},
		{ItemID: "i-3", Text: "eggs", Status: "completed"},
		{ItemID: "i-4", Text: "cheese"},
		{ItemID: "i-5", Text: "apples"},
	}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{Type: "list_items"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "list_count", res.Type)
	assert.Equal(t, "You have 5 total items across 1 lists. 3 completed. 2 pending.", res.Summary)
	assert.Len(t, groceries.Items, 5)
}

func TestQueries_EventCountSplitsTodayAndUpcoming(t *testing.T) {
	fs := &memStore{}
	sched := seedCollection(fs, model.KindSchedule, "Work Schedule", "work")
	today := time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
	nextWeek := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2025, 5, 28, 9, 0, 0, 0, time.UTC)
	sched.Events = []*model.ScheduleEvent{
		{EventID: "e-1", Title: "standup", StartTime: &today},
		{EventID: "e-2", Title: "review", StartTime: &nextWeek},
		{EventID: "e-3", Title: "retro", StartTime: &lastWeek},
	}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{Type: "count_events"})
	require.NoError(t, err)
	assert.Equal(t, "event_count", res.Type)
	assert.Equal(t, 3, res.Data["total"])
	assert.Equal(t, 1, res.Data["today"])
	assert.Equal(t, 1, res.Data["upcoming"])
	assert.Equal(t, "You have 3 total events scheduled across 1 schedules. 1 events today. 1 upcoming events.", res.Summary)
}

func TestQueries_EmptyDataOmitsZeroClauses(t *testing.T) {
	fs := &memStore{}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{Type: "count_events"})
	require.NoError(t, err)
	assert.Equal(t, "You have 0 total events scheduled across 0 schedules.", res.Summary)

	res, err = d.Process(context.Background(), testUser, model.Action{Type: "list_items"})
	require.NoError(t, err)
	assert.Equal(t, "You have 0 total items across 0 lists.", res.Summary)
}

func TestQueries_MemoryBreakdownLabelsItems(t *testing.T) {
	fs := &memStore{}
	cat := seedCollection(fs, model.KindMemory, "Passwords", "credentials")
	cat.MemoryItems = []*model.MemoryItem{
		{MemoryItemID: "m-1", Key: "gmail", Value: "abc"},
		{MemoryItemID: "m-2", Value: "orphaned"},
	}
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{Type: "memory_search"})
	require.NoError(t, err)
	assert.Equal(t, "memory_count", res.Type)
	breakdown := res.Data["breakdown"].(map[string]any)
	entry := breakdown["Passwords"].(map[string]any)
	assert.Equal(t, []string{"gmail", "Unnamed item"}, entry["items"])
}

func TestLegacyActions_RemapOntoCurrentShape(t *testing.T) {
	fs := &memStore{}
	groceries := seedCollection(fs, model.KindList, "Groceries", "shopping")
	d := newDispatcher(fs, nil)

	res, err := d.Process(context.Background(), testUser, model.Action{
		Type: "add_to_list",
		Data: model.ActionData{ListName: "Groceries", Items: []string{"milk", "bread"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "items_added", res.Type)
	assert.Len(t, groceries.Items, 2)

	res, err = d.Process(context.Background(), testUser, model.Action{
		Type: "does_not_exist",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown action type")
}

func TestProcessAll_IsolatesFailures(t *testing.T) {
	fs := &memStore{}
	seedCollection(fs, model.KindList, "Groceries", "shopping")
	fs.failAdds = true
	d := newDispatcher(fs, nil)

	results := d.ProcessAll(context.Background(), testUser, []model.Action{
		addAction("Groceries", "milk"),
		{Type: "list_items"},
	})
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "simulated storage failure")
	assert.True(t, results[1].Success)
}

func strPtr(s string) *string { return &s }
