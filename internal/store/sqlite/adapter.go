// Package sqlite implements store.Store on SQLite via the pure-Go
// modernc.org driver. It serves local single-node deployments and the test
// suite; Postgres is the driver for everything multi-node.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// New opens (or creates) the database at path, ensures the schema, and
// returns the store. ":memory:" selects a private in-memory database.
func New(path string) (store.Store, error) {
	var (
		db  *sql.DB
		err error
	)
	if path == ":memory:" {
		db, err = OpenInMemory()
	} else {
		db, err = Open(path)
	}
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires the store over an existing connection and ensures the schema.
func NewWithDB(db *sql.DB) (store.Store, error) {
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users             { return &users{db: s.db} }
func (s *sqliteStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *sqliteStore) ListItems() store.ListItems     { return &listItems{db: s.db} }
func (s *sqliteStore) Events() store.Events           { return &events{db: s.db} }
func (s *sqliteStore) MemoryItems() store.MemoryItems { return &memoryItems{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Upsert(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, display_name, created_at) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET display_name = excluded.display_name
    `, m.UserID, m.DisplayName, now)
	if err != nil {
		return nil, err
	}
	return u.Get(ctx, m.UserID)
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `SELECT user_id, display_name, created_at FROM users WHERE user_id=?`, userID)
	if err := row.Scan(&out.UserID, &out.DisplayName, &out.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Collections ---

type collections struct{ db *sql.DB }

func (c *collections) Upsert(ctx context.Context, mc *model.Collection) (*model.Collection, error) {
	id := mc.CollectionID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO collections (collection_id, user_id, kind, name, type, created_at, updated_at)
        VALUES (?,?,?,?,?,?,?)
        ON CONFLICT(user_id, kind, name)
        DO UPDATE SET type = excluded.type, updated_at = excluded.updated_at
    `, id, mc.UserID, string(mc.Kind), mc.Name, mc.Type, now, now)
	if err != nil {
		return nil, err
	}
	return c.GetByName(ctx, mc.UserID, mc.Kind, mc.Name)
}

func (c *collections) GetByName(ctx context.Context, userID string, kind model.Kind, name string) (*model.Collection, error) {
	out := model.Collection{UserID: userID, Kind: kind, Name: name}
	row := c.db.QueryRowContext(ctx, `
        SELECT collection_id, type, archived, created_at, updated_at
        FROM collections WHERE user_id=? AND kind=? AND name=?
    `, userID, string(kind), name)
	if err := row.Scan(&out.CollectionID, &out.Type, &out.Archived, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := c.loadEntries(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *collections) List(ctx context.Context, userID string, kind model.Kind, includeArchived bool) ([]*model.Collection, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT collection_id, name, type, archived, created_at, updated_at
        FROM collections
        WHERE user_id=? AND kind=? AND (? OR NOT archived)
        ORDER BY updated_at DESC, created_at DESC
    `, userID, string(kind), includeArchived)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Collection
	for rows.Next() {
		mc := model.Collection{UserID: userID, Kind: kind}
		if err := rows.Scan(&mc.CollectionID, &mc.Name, &mc.Type, &mc.Archived, &mc.CreatedAt, &mc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, mc := range out {
		if err := c.loadEntries(ctx, mc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *collections) Delete(ctx context.Context, userID string, kind model.Kind, name string) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `
        SELECT collection_id FROM collections WHERE user_id=? AND kind=? AND name=?
    `, userID, string(kind), name).Scan(&id)
	if err != nil {
		return mapErr(err)
	}

	for _, table := range []string{"list_items", "schedule_events", "memory_items"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE collection_id=?`, table), id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE collection_id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *collections) loadEntries(ctx context.Context, mc *model.Collection) error {
	switch mc.Kind {
	case model.KindList:
		return loadItems(ctx, c.db, mc)
	case model.KindSchedule:
		return loadEvents(ctx, c.db, mc)
	case model.KindMemory:
		return loadMemoryItems(ctx, c.db, mc)
	}
	return nil
}

func loadItems(ctx context.Context, db *sql.DB, mc *model.Collection) error {
	rows, err := db.QueryContext(ctx, `
        SELECT item_id, item_text, completed, status, priority, due_date, notes, quantity, created_at
        FROM list_items WHERE collection_id=? ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		it, err := scanListItem(rows)
		if err != nil {
			return err
		}
		mc.Items = append(mc.Items, it)
	}
	return rows.Err()
}

func loadEvents(ctx context.Context, db *sql.DB, mc *model.Collection) error {
	rows, err := db.QueryContext(ctx, `
        SELECT event_id, title, start_time, end_time, location, description, event_type,
               all_day, reminder_minutes, recurrence_rule, cancelled, created_at
        FROM schedule_events WHERE collection_id=? ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return err
		}
		mc.Events = append(mc.Events, ev)
	}
	return rows.Err()
}

func loadMemoryItems(ctx context.Context, db *sql.DB, mc *model.Collection) error {
	rows, err := db.QueryContext(ctx, `
        SELECT memory_item_id, memory_key, memory_value, memory_type, importance, tags,
               expires_at, private, created_at
        FROM memory_items WHERE collection_id=? ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		mi, err := scanMemoryItem(rows)
		if err != nil {
			return err
		}
		mc.MemoryItems = append(mc.MemoryItems, mi)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanListItem(s scanner) (*model.ListItem, error) {
	var it model.ListItem
	var status, notes sql.NullString
	var due sql.NullTime
	if err := s.Scan(&it.ItemID, &it.Text, &it.Completed, &status, &it.Priority, &due, &notes, &it.Quantity, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Status = status.String
	it.Notes = notes.String
	if due.Valid {
		t := due.Time
		it.DueDate = &t
	}
	return &it, nil
}

func scanEvent(s scanner) (*model.ScheduleEvent, error) {
	var ev model.ScheduleEvent
	var start, end sql.NullTime
	var location, description, eventType, recurrence sql.NullString
	var reminder sql.NullInt64
	if err := s.Scan(&ev.EventID, &ev.Title, &start, &end, &location, &description, &eventType,
		&ev.AllDay, &reminder, &recurrence, &ev.Cancelled, &ev.CreatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		ev.StartTime = &t
	}
	if end.Valid {
		t := end.Time
		ev.EndTime = &t
	}
	ev.Location = location.String
	ev.Description = description.String
	ev.Type = eventType.String
	ev.RecurrenceRule = recurrence.String
	if reminder.Valid {
		n := int(reminder.Int64)
		ev.ReminderMinutes = &n
	}
	return &ev, nil
}

func scanMemoryItem(s scanner) (*model.MemoryItem, error) {
	var mi model.MemoryItem
	var memType, tags sql.NullString
	var expires sql.NullTime
	if err := s.Scan(&mi.MemoryItemID, &mi.Key, &mi.Value, &memType, &mi.Importance, &tags,
		&expires, &mi.Private, &mi.CreatedAt); err != nil {
		return nil, err
	}
	mi.Type = memType.String
	if tags.Valid && tags.String != "" {
		_ = json.Unmarshal([]byte(tags.String), &mi.Tags)
	}
	if expires.Valid {
		t := expires.Time
		mi.ExpiresAt = &t
	}
	return &mi, nil
}

func touch(ctx context.Context, db *sql.DB, collectionID string) error {
	_, err := db.ExecContext(ctx, `UPDATE collections SET updated_at=? WHERE collection_id=?`, time.Now().UTC(), collectionID)
	return err
}

// --- List items ---

type listItems struct{ db *sql.DB }

func (l *listItems) Add(ctx context.Context, collectionID string, item *model.ListItem) (*model.ListItem, error) {
	id := uuid.New().String()
	quantity := item.Quantity
	if quantity == 0 {
		quantity = 1
	}
	now := time.Now().UTC()
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO list_items (item_id, collection_id, item_text, completed, priority, due_date, notes, quantity, created_at)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, id, collectionID, item.Text, item.Completed, item.Priority, item.DueDate, nullStr(item.Notes), quantity, now)
	if err != nil {
		return nil, err
	}
	if err := touch(ctx, l.db, collectionID); err != nil {
		return nil, err
	}
	out := *item
	out.ItemID = id
	out.Quantity = quantity
	out.CreatedAt = now
	return &out, nil
}

func (l *listItems) Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.ListItem, error) {
	set, args := []string{}, []interface{}{}
	if u.Text != nil {
		set = append(set, "item_text=?")
		args = append(args, *u.Text)
	}
	if u.Completed != nil {
		set = append(set, "completed=?")
		args = append(args, *u.Completed)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no list item fields to update", model.ErrValidation)
	}
	args = append(args, collectionID, itemID)
	res, err := l.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE list_items SET %s WHERE collection_id=? AND item_id=?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("list item %s: %w", itemID, model.ErrNotFound)
	}
	row := l.db.QueryRowContext(ctx, `
        SELECT item_id, item_text, completed, status, priority, due_date, notes, quantity, created_at
        FROM list_items WHERE collection_id=? AND item_id=?
    `, collectionID, itemID)
	it, err := scanListItem(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return it, nil
}

func (l *listItems) Delete(ctx context.Context, collectionID, itemID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM list_items WHERE collection_id=? AND item_id=?`, collectionID, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("list item %s: %w", itemID, model.ErrNotFound)
	}
	return nil
}

// --- Schedule events ---

type events struct{ db *sql.DB }

func (e *events) Add(ctx context.Context, collectionID string, ev *model.ScheduleEvent) (*model.ScheduleEvent, error) {
	id := uuid.New().String()
	eventType := ev.Type
	if eventType == "" {
		eventType = "appointment"
	}
	now := time.Now().UTC()
	_, err := e.db.ExecContext(ctx, `
        INSERT INTO schedule_events (event_id, collection_id, title, start_time, end_time, location,
            description, event_type, all_day, reminder_minutes, recurrence_rule, cancelled, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, collectionID, ev.Title, ev.StartTime, ev.EndTime, nullStr(ev.Location),
		nullStr(ev.Description), eventType, ev.AllDay, ev.ReminderMinutes, nullStr(ev.RecurrenceRule), ev.Cancelled, now)
	if err != nil {
		return nil, err
	}
	if err := touch(ctx, e.db, collectionID); err != nil {
		return nil, err
	}
	out := *ev
	out.EventID = id
	out.Type = eventType
	out.CreatedAt = now
	return &out, nil
}

func (e *events) Update(ctx context.Context, collectionID, eventID string, u *model.EntryUpdates) (*model.ScheduleEvent, error) {
	set, args := []string{}, []interface{}{}
	add := func(col string, v interface{}) {
		set = append(set, col+"=?")
		args = append(args, v)
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.StartTime != nil {
		add("start_time", dates.ToTime(*u.StartTime))
	}
	if u.EndTime != nil {
		add("end_time", dates.ToTime(*u.EndTime))
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Cancelled != nil {
		add("cancelled", *u.Cancelled)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no event fields to update", model.ErrValidation)
	}
	args = append(args, collectionID, eventID)
	res, err := e.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE schedule_events SET %s WHERE collection_id=? AND event_id=?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, model.ErrNotFound)
	}
	row := e.db.QueryRowContext(ctx, `
        SELECT event_id, title, start_time, end_time, location, description, event_type,
               all_day, reminder_minutes, recurrence_rule, cancelled, created_at
        FROM schedule_events WHERE collection_id=? AND event_id=?
    `, collectionID, eventID)
	ev2, err := scanEvent(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return ev2, nil
}

func (e *events) Delete(ctx context.Context, collectionID, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM schedule_events WHERE collection_id=? AND event_id=?`, collectionID, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", eventID, model.ErrNotFound)
	}
	return nil
}

// --- Memory items ---

type memoryItems struct{ db *sql.DB }

func (m *memoryItems) Put(ctx context.Context, collectionID string, item *model.MemoryItem) (*model.MemoryItem, error) {
	id := uuid.New().String()
	memType := item.Type
	if memType == "" {
		memType = "fact"
	}
	tagsJSON, _ := json.Marshal(item.Tags)
	now := time.Now().UTC()
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO memory_items (memory_item_id, collection_id, memory_key, memory_value,
            memory_type, importance, tags, expires_at, private, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(collection_id, memory_key)
        DO UPDATE SET memory_value = excluded.memory_value
    `, id, collectionID, item.Key, item.Value, memType, item.Importance,
		nullIfEmpty(tagsJSON), item.ExpiresAt, item.Private, now)
	if err != nil {
		return nil, err
	}
	if err := touch(ctx, m.db, collectionID); err != nil {
		return nil, err
	}
	row := m.db.QueryRowContext(ctx, `
        SELECT memory_item_id, memory_key, memory_value, memory_type, importance, tags,
               expires_at, private, created_at
        FROM memory_items WHERE collection_id=? AND memory_key=?
    `, collectionID, item.Key)
	mi, err := scanMemoryItem(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return mi, nil
}

func (m *memoryItems) Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.MemoryItem, error) {
	set, args := []string{}, []interface{}{}
	if u.Value != nil {
		set = append(set, "memory_value=?")
		args = append(args, *u.Value)
	}
	if u.Importance != nil {
		set = append(set, "importance=?")
		args = append(args, *u.Importance)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no memory item fields to update", model.ErrValidation)
	}
	args = append(args, collectionID, itemID)
	res, err := m.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE memory_items SET %s WHERE collection_id=? AND memory_item_id=?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("memory item %s: %w", itemID, model.ErrNotFound)
	}
	row := m.db.QueryRowContext(ctx, `
        SELECT memory_item_id, memory_key, memory_value, memory_type, importance, tags,
               expires_at, private, created_at
        FROM memory_items WHERE collection_id=? AND memory_item_id=?
    `, collectionID, itemID)
	mi, err := scanMemoryItem(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return mi, nil
}

func (m *memoryItems) Delete(ctx context.Context, collectionID, itemID string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM memory_items WHERE collection_id=? AND memory_item_id=?`, collectionID, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("memory item %s: %w", itemID, model.ErrNotFound)
	}
	return nil
}

// helpers

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfEmpty(b []byte) interface{} {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return b
}
