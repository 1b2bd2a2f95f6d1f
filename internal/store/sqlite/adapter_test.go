package sqlite

import (
	"testing"

	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store/storetest"
)

func TestSQLiteStoreCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		db, err := OpenInMemory()
		if err != nil {
			t.Fatalf("open in-memory db: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		s, err := NewWithDB(db)
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		return s
	})
}
