// Package storetest holds a driver-agnostic compliance suite for store.Store
// implementations. Each driver's test package calls Run with a factory that
// yields a clean, isolated store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()

	// Users: upsert is idempotent, the second call updates the display name.
	if _, err := s.Users().Upsert(ctx, &model.User{UserID: userID, DisplayName: "Sam"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if _, err := s.Users().Upsert(ctx, &model.User{UserID: userID, DisplayName: "Samantha"}); err != nil {
		t.Fatalf("UpsertUser again: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got.DisplayName != "Samantha" {
		t.Fatalf("GetUser: got=%+v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "nobody-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	// Collections: upsert creates, repeat upsert keeps the same id and
	// applies the new type.
	groceries, err := s.Collections().Upsert(ctx, &model.Collection{UserID: userID, Kind: model.KindList, Name: "Groceries", Type: "shopping"})
	if err != nil {
		t.Fatalf("UpsertCollection: %v", err)
	}
	if groceries.CollectionID == "" {
		t.Fatalf("UpsertCollection: empty collection id")
	}
	again, err := s.Collections().Upsert(ctx, &model.Collection{UserID: userID, Kind: model.KindList, Name: "Groceries", Type: "custom"})
	if err != nil {
		t.Fatalf("UpsertCollection again: %v", err)
	}
	if again.CollectionID != groceries.CollectionID {
		t.Fatalf("UpsertCollection not idempotent: %s vs %s", again.CollectionID, groceries.CollectionID)
	}
	if again.Type != "custom" {
		t.Fatalf("UpsertCollection: type not updated, got %q", again.Type)
	}

	if _, err := s.Collections().GetByName(ctx, userID, model.KindList, "No Such List"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByName missing: want ErrNotFound, got %v", err)
	}

	// List items
	item, err := s.ListItems().Add(ctx, groceries.CollectionID, &model.ListItem{Text: "milk"})
	if err != nil {
		t.Fatalf("AddListItem: %v", err)
	}
	if item.ItemID == "" || item.Quantity != 1 {
		t.Fatalf("AddListItem: got %+v", item)
	}
	done := true
	updated, err := s.ListItems().Update(ctx, groceries.CollectionID, item.ItemID, &model.EntryUpdates{Completed: &done})
	if err != nil || !updated.Completed {
		t.Fatalf("UpdateListItem: got=%+v err=%v", updated, err)
	}
	if _, err := s.ListItems().Update(ctx, groceries.CollectionID, uuid.New().String(), &model.EntryUpdates{Completed: &done}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateListItem missing: want ErrNotFound, got %v", err)
	}

	got, err := s.Collections().GetByName(ctx, userID, model.KindList, "Groceries")
	if err != nil || len(got.Items) != 1 || got.Items[0].Text != "milk" {
		t.Fatalf("GetByName with entries: got=%+v err=%v", got, err)
	}

	// List ordering: the most recently touched collection comes first.
	time.Sleep(20 * time.Millisecond)
	_, err = s.Collections().Upsert(ctx, &model.Collection{UserID: userID, Kind: model.KindList, Name: "Work Tasks", Type: "todos"})
	if err != nil {
		t.Fatalf("UpsertCollection work: %v", err)
	}
	lists, err := s.Collections().List(ctx, userID, model.KindList, false)
	if err != nil || len(lists) != 2 {
		t.Fatalf("ListCollections: n=%d err=%v", len(lists), err)
	}
	if lists[0].Name != "Work Tasks" {
		t.Fatalf("ListCollections order: got %q first", lists[0].Name)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := s.ListItems().Add(ctx, groceries.CollectionID, &model.ListItem{Text: "bread"}); err != nil {
		t.Fatalf("AddListItem bread: %v", err)
	}
	lists, err = s.Collections().List(ctx, userID, model.KindList, false)
	if err != nil || len(lists) != 2 || lists[0].Name != "Groceries" {
		t.Fatalf("ListCollections after touch: err=%v first=%q", err, lists[0].Name)
	}

	// Schedule events
	sched, err := s.Collections().Upsert(ctx, &model.Collection{UserID: userID, Kind: model.KindSchedule, Name: "Work Schedule", Type: "work"})
	if err != nil {
		t.Fatalf("UpsertSchedule: %v", err)
	}
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	ev, err := s.Events().Add(ctx, sched.CollectionID, &model.ScheduleEvent{Title: "standup", StartTime: &start})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if ev.Type != "appointment" {
		t.Fatalf("AddEvent default type: got %q", ev.Type)
	}
	newTitle := "daily standup"
	ev2, err := s.Events().Update(ctx, sched.CollectionID, ev.EventID, &model.EntryUpdates{Title: &newTitle})
	if err != nil || ev2.Title != "daily standup" {
		t.Fatalf("UpdateEvent: got=%+v err=%v", ev2, err)
	}
	if err := s.Events().Delete(ctx, sched.CollectionID, ev.EventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := s.Events().Delete(ctx, sched.CollectionID, ev.EventID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteEvent twice: want ErrNotFound, got %v", err)
	}

	// Memory items: Put upserts by key.
	mem, err := s.Collections().Upsert(ctx, &model.Collection{UserID: userID, Kind: model.KindMemory, Name: "Personal Info", Type: "personal"})
	if err != nil {
		t.Fatalf("UpsertMemory: %v", err)
	}
	mi, err := s.MemoryItems().Put(ctx, mem.CollectionID, &model.MemoryItem{Key: "wifi password", Value: "hunter2", Tags: []string{"home"}})
	if err != nil {
		t.Fatalf("PutMemoryItem: %v", err)
	}
	if mi.Type != "fact" || len(mi.Tags) != 1 {
		t.Fatalf("PutMemoryItem defaults: got %+v", mi)
	}
	mi2, err := s.MemoryItems().Put(ctx, mem.CollectionID, &model.MemoryItem{Key: "wifi password", Value: "hunter3"})
	if err != nil {
		t.Fatalf("PutMemoryItem again: %v", err)
	}
	if mi2.MemoryItemID != mi.MemoryItemID || mi2.Value != "hunter3" {
		t.Fatalf("PutMemoryItem upsert: got %+v want id=%s value=hunter3", mi2, mi.MemoryItemID)
	}
	imp := 5
	mi3, err := s.MemoryItems().Update(ctx, mem.CollectionID, mi.MemoryItemID, &model.EntryUpdates{Importance: &imp})
	if err != nil || mi3.Importance != 5 {
		t.Fatalf("UpdateMemoryItem: got=%+v err=%v", mi3, err)
	}

	// Delete cascades to entries.
	if err := s.Collections().Delete(ctx, userID, model.KindList, "Groceries"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := s.Collections().GetByName(ctx, userID, model.KindList, "Groceries"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByName after delete: want ErrNotFound, got %v", err)
	}
	if err := s.Collections().Delete(ctx, userID, model.KindList, "Groceries"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteCollection twice: want ErrNotFound, got %v", err)
	}

	// Health
	if hp, ok := s.(store.HealthPinger); ok {
		if err := hp.HealthPing(ctx); err != nil {
			t.Fatalf("HealthPing: %v", err)
		}
	}
}
