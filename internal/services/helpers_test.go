package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func newMockDB(t *testing.T, dialect database.Dialect) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.Wrap(db, dialect), mock
}

func mustCreateUser(t *testing.T, s *UserService, username string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), username, "hash-"+username)
	require.NoError(t, err)
	return u
}

type recordingNotifier struct {
	mu     sync.Mutex
	events map[int64][]models.Event
}

func (n *recordingNotifier) NotifyUser(userID int64, event models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.events == nil {
		n.events = make(map[int64][]models.Event)
	}
	n.events[userID] = append(n.events[userID], event)
}
