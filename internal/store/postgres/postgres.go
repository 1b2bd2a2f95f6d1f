package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users             { return &users{db: s.db} }
func (s *pgStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *pgStore) ListItems() store.ListItems     { return &listItems{db: s.db} }
func (s *pgStore) Events() store.Events           { return &events{db: s.db} }
func (s *pgStore) MemoryItems() store.MemoryItems { return &memoryItems{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check. Schema setup is handled by
// deployment migrations, so this is a ping-only check.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
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
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, display_name)
        VALUES ($1,$2)
        ON CONFLICT (user_id)
        DO UPDATE SET display_name = EXCLUDED.display_name
        RETURNING created_at
    `, m.UserID, m.DisplayName)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.CreatedAt = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, display_name, created_at FROM users WHERE user_id=$1
    `, userID)
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
	out := *mc
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO collections (collection_id, user_id, kind, name, type)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, kind, name)
        DO UPDATE SET type = EXCLUDED.type, updated_at = now()
        RETURNING collection_id, archived, created_at, updated_at
    `, id, mc.UserID, string(mc.Kind), mc.Name, mc.Type)
	if err := row.Scan(&out.CollectionID, &out.Archived, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	if err := c.loadEntries(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *collections) GetByName(ctx context.Context, userID string, kind model.Kind, name string) (*model.Collection, error) {
	out := model.Collection{UserID: userID, Kind: kind, Name: name}
	row := c.db.QueryRowContext(ctx, `
        SELECT collection_id, type, archived, created_at, updated_at
        FROM collections WHERE user_id=$1 AND kind=$2 AND name=$3
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
        WHERE user_id=$1 AND kind=$2 AND ($3 OR NOT archived)
        ORDER BY updated_at DESC
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
        SELECT collection_id FROM collections WHERE user_id=$1 AND kind=$2 AND name=$3
    `, userID, string(kind), name).Scan(&id)
	if err != nil {
		return mapErr(err)
	}

	for _, table := range []string{"list_items", "schedule_events", "memory_items"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE collection_id=$1`, table), id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE collection_id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *collections) loadEntries(ctx context.Context, mc *model.Collection) error {
	switch mc.Kind {
	case model.KindList:
		return c.loadItems(ctx, mc)
	case model.KindSchedule:
		return c.loadEvents(ctx, mc)
	case model.KindMemory:
		return c.loadMemoryItems(ctx, mc)
	}
	return nil
}

func (c *collections) loadItems(ctx context.Context, mc *model.Collection) error {
	rows, err := c.db.QueryContext(ctx, `
        SELECT item_id, item_text, completed, status, priority, due_date, notes, quantity, created_at
        FROM list_items WHERE collection_id=$1 ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var it model.ListItem
		var status, notes sql.NullString
		var due sql.NullTime
		if err := rows.Scan(&it.ItemID, &it.Text, &it.Completed, &status, &it.Priority, &due, &notes, &it.Quantity, &it.CreatedAt); err != nil {
			return err
		}
		it.Status = status.String
		it.Notes = notes.String
		if due.Valid {
			t := due.Time
			it.DueDate = &t
		}
		mc.Items = append(mc.Items, &it)
	}
	return rows.Err()
}

func (c *collections) loadEvents(ctx context.Context, mc *model.Collection) error {
	rows, err := c.db.QueryContext(ctx, `
        SELECT event_id, title, start_time, end_time, location, description, event_type,
               all_day, reminder_minutes, recurrence_rule, cancelled, created_at
        FROM schedule_events WHERE collection_id=$1 ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var ev model.ScheduleEvent
		var start, end sql.NullTime
		var location, description, eventType, recurrence sql.NullString
		var reminder sql.NullInt64
		if err := rows.Scan(&ev.EventID, &ev.Title, &start, &end, &location, &description, &eventType,
			&ev.AllDay, &reminder, &recurrence, &ev.Cancelled, &ev.CreatedAt); err != nil {
			return err
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
		mc.Events = append(mc.Events, &ev)
	}
	return rows.Err()
}

func (c *collections) loadMemoryItems(ctx context.Context, mc *model.Collection) error {
	rows, err := c.db.QueryContext(ctx, `
        SELECT memory_item_id, memory_key, memory_value, memory_type, importance, tags,
               expires_at, private, created_at
        FROM memory_items WHERE collection_id=$1 ORDER BY created_at
    `, mc.CollectionID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var mi model.MemoryItem
		var memType, tags sql.NullString
		var expires sql.NullTime
		if err := rows.Scan(&mi.MemoryItemID, &mi.Key, &mi.Value, &memType, &mi.Importance, &tags,
			&expires, &mi.Private, &mi.CreatedAt); err != nil {
			return err
		}
		mi.Type = memType.String
		if tags.Valid && tags.String != "" {
			_ = json.Unmarshal([]byte(tags.String), &mi.Tags)
		}
		if expires.Valid {
			t := expires.Time
			mi.ExpiresAt = &t
		}
		mc.MemoryItems = append(mc.MemoryItems, &mi)
	}
	return rows.Err()
}

func touch(ctx context.Context, db *sql.DB, collectionID string) error {
	_, err := db.ExecContext(ctx, `UPDATE collections SET updated_at=now() WHERE collection_id=$1`, collectionID)
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
	out := *item
	out.ItemID = id
	out.Quantity = quantity
	row := l.db.QueryRowContext(ctx, `
        INSERT INTO list_items (item_id, collection_id, item_text, completed, priority, due_date, notes, quantity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at
    `, id, collectionID, item.Text, item.Completed, item.Priority, item.DueDate, nullStr(item.Notes), quantity)
	if err := row.Scan(&out.CreatedAt); err != nil {
		return nil, err
	}
	if err := touch(ctx, l.db, collectionID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *listItems) Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.ListItem, error) {
	set, args := []string{}, []interface{}{}
	if u.Text != nil {
		args = append(args, *u.Text)
		set = append(set, fmt.Sprintf("item_text=$%d", len(args)))
	}
	if u.Completed != nil {
		args = append(args, *u.Completed)
		set = append(set, fmt.Sprintf("completed=$%d", len(args)))
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no list item fields to update", model.ErrValidation)
	}
	args = append(args, collectionID, itemID)
	query := fmt.Sprintf(`UPDATE list_items SET %s WHERE collection_id=$%d AND item_id=$%d`,
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("list item %s: %w", itemID, model.ErrNotFound)
	}
	return l.get(ctx, collectionID, itemID)
}

func (l *listItems) get(ctx context.Context, collectionID, itemID string) (*model.ListItem, error) {
	var it model.ListItem
	var status, notes sql.NullString
	var due sql.NullTime
	row := l.db.QueryRowContext(ctx, `
        SELECT item_id, item_text, completed, status, priority, due_date, notes, quantity, created_at
        FROM list_items WHERE collection_id=$1 AND item_id=$2
    `, collectionID, itemID)
	if err := row.Scan(&it.ItemID, &it.Text, &it.Completed, &status, &it.Priority, &due, &notes, &it.Quantity, &it.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	it.Status = status.String
	it.Notes = notes.String
	if due.Valid {
		t := due.Time
		it.DueDate = &t
	}
	return &it, nil
}

func (l *listItems) Delete(ctx context.Context, collectionID, itemID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM list_items WHERE collection_id=$1 AND item_id=$2`, collectionID, itemID)
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
	out := *ev
	out.EventID = id
	out.Type = eventType
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO schedule_events (event_id, collection_id, title, start_time, end_time, location,
            description, event_type, all_day, reminder_minutes, recurrence_rule, cancelled)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at
    `, id, collectionID, ev.Title, ev.StartTime, ev.EndTime, nullStr(ev.Location),
		nullStr(ev.Description), eventType, ev.AllDay, ev.ReminderMinutes, nullStr(ev.RecurrenceRule), ev.Cancelled)
	if err := row.Scan(&out.CreatedAt); err != nil {
		return nil, err
	}
	if err := touch(ctx, e.db, collectionID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) Update(ctx context.Context, collectionID, eventID string, u *model.EntryUpdates) (*model.ScheduleEvent, error) {
	set, args := []string{}, []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
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
	query := fmt.Sprintf(`UPDATE schedule_events SET %s WHERE collection_id=$%d AND event_id=$%d`,
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, model.ErrNotFound)
	}
	return e.get(ctx, collectionID, eventID)
}

func (e *events) get(ctx context.Context, collectionID, eventID string) (*model.ScheduleEvent, error) {
	var ev model.ScheduleEvent
	var start, end sql.NullTime
	var location, description, eventType, recurrence sql.NullString
	var reminder sql.NullInt64
	row := e.db.QueryRowContext(ctx, `
        SELECT event_id, title, start_time, end_time, location, description, event_type,
               all_day, reminder_minutes, recurrence_rule, cancelled, created_at
        FROM schedule_events WHERE collection_id=$1 AND event_id=$2
    `, collectionID, eventID)
	if err := row.Scan(&ev.EventID, &ev.Title, &start, &end, &location, &description, &eventType,
		&ev.AllDay, &reminder, &recurrence, &ev.Cancelled, &ev.CreatedAt); err != nil {
		return nil, mapErr(err)
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

func (e *events) Delete(ctx context.Context, collectionID, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM schedule_events WHERE collection_id=$1 AND event_id=$2`, collectionID, eventID)
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
	out := *item
	out.Type = memType
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO memory_items (memory_item_id, collection_id, memory_key, memory_value,
            memory_type, importance, tags, expires_at, private)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (collection_id, memory_key)
        DO UPDATE SET memory_value = EXCLUDED.memory_value
        RETURNING memory_item_id, created_at
    `, id, collectionID, item.Key, item.Value, memType, item.Importance,
		nullIfEmpty(tagsJSON), item.ExpiresAt, item.Private)
	if err := row.Scan(&out.MemoryItemID, &out.CreatedAt); err != nil {
		return nil, err
	}
	if err := touch(ctx, m.db, collectionID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *memoryItems) Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.MemoryItem, error) {
	set, args := []string{}, []interface{}{}
	if u.Value != nil {
		args = append(args, *u.Value)
		set = append(set, fmt.Sprintf("memory_value=$%d", len(args)))
	}
	if u.Importance != nil {
		args = append(args, *u.Importance)
		set = append(set, fmt.Sprintf("importance=$%d", len(args)))
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no memory item fields to update", model.ErrValidation)
	}
	args = append(args, collectionID, itemID)
	query := fmt.Sprintf(`UPDATE memory_items SET %s WHERE collection_id=$%d AND memory_item_id=$%d`,
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("memory item %s: %w", itemID, model.ErrNotFound)
	}
	return m.get(ctx, collectionID, itemID)
}

func (m *memoryItems) get(ctx context.Context, collectionID, itemID string) (*model.MemoryItem, error) {
	var mi model.MemoryItem
	var memType, tags sql.NullString
	var expires sql.NullTime
	row := m.db.QueryRowContext(ctx, `
        SELECT memory_item_id, memory_key, memory_value, memory_type, importance, tags,
               expires_at, private, created_at
        FROM memory_items WHERE collection_id=$1 AND memory_item_id=$2
    `, collectionID, itemID)
	if err := row.Scan(&mi.MemoryItemID, &mi.Key, &mi.Value, &memType, &mi.Importance, &tags,
		&expires, &mi.Private, &mi.CreatedAt); err != nil {
		return nil, mapErr(err)
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

func (m *memoryItems) Delete(ctx context.Context, collectionID, itemID string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM memory_items WHERE collection_id=$1 AND memory_item_id=$2`, collectionID, itemID)
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
