package store

import (
	"context"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
)

// Store exposes persistence operations required by the dispatcher and the
// HTTP layer. Implementations live under internal/store/<driver>/
// (postgres, sqlite).
type Store interface {
	Users() Users
	Collections() Collections
	ListItems() ListItems
	Events() Events
	MemoryItems() MemoryItems
}

type Users interface {
	// Upsert creates the user on first interaction; repeat calls update the
	// display name in place.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

type Collections interface {
	// Upsert creates a collection or, on a (user, kind, name) conflict,
	// updates the existing row's type and bumps updated_at. Existing entries
	// are preserved either way.
	Upsert(ctx context.Context, c *model.Collection) (*model.Collection, error)
	// GetByName is an exact-name lookup; entries are loaded.
	GetByName(ctx context.Context, userID string, kind model.Kind, name string) (*model.Collection, error)
	// List returns the user's collections of one kind with entries loaded,
	// ordered most-recently-updated first. Archived collections are excluded
	// unless includeArchived is set.
	List(ctx context.Context, userID string, kind model.Kind, includeArchived bool) ([]*model.Collection, error)
	// Delete removes the collection and cascades to all its entries.
	Delete(ctx context.Context, userID string, kind model.Kind, name string) error
}

type ListItems interface {
	Add(ctx context.Context, collectionID string, item *model.ListItem) (*model.ListItem, error)
	Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.ListItem, error)
	Delete(ctx context.Context, collectionID, itemID string) error
}

type Events interface {
	Add(ctx context.Context, collectionID string, ev *model.ScheduleEvent) (*model.ScheduleEvent, error)
	Update(ctx context.Context, collectionID, eventID string, u *model.EntryUpdates) (*model.ScheduleEvent, error)
	Delete(ctx context.Context, collectionID, eventID string) error
}

type MemoryItems interface {
	// Put upserts on (collection, key): a second write to the same key
	// overwrites the value, not the key.
	Put(ctx context.Context, collectionID string, item *model.MemoryItem) (*model.MemoryItem, error)
	Update(ctx context.Context, collectionID, itemID string, u *model.EntryUpdates) (*model.MemoryItem, error)
	Delete(ctx context.Context, collectionID, itemID string) error
}
