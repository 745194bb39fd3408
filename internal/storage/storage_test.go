package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/storage"
	"pet-medication-reminder/internal/storage/storagetest"
)

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		db, err := storage.New(filepath.Join(t.TempDir(), "data", "reminder.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	})
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminder.db")
	ctx := context.Background()

	db, err := storage.New(path)
	require.NoError(t, err)
	_, err = db.UpdateSchedule(ctx, "bravecto", func(sc *models.Schedule) error {
		sc.Status = models.StatusAwaitingConfirmation
		return nil
	})
	require.NoError(t, err)
	_, err = db.AddSubscriber(ctx, "telegram:42")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.New(path)
	require.NoError(t, err)
	defer db.Close()

	sc, err := db.Schedule(ctx, "bravecto")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingConfirmation, sc.Status)

	subs, err := db.ListSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "telegram:42", subs[0].ID)
}
