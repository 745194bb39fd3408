// Package storagetest is a behavioural test suite shared by all storage backends.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/storage"
)

// Run exercises a fresh store returned by open for every subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	t.Run("schedule is created lazily", func(t *testing.T) {
		st := open(t)
		sc, err := st.Schedule(context.Background(), "bravecto")
		require.NoError(t, err)
		assert.Equal(t, models.NewSchedule("bravecto"), sc)
	})

	t.Run("update commits and reloads", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		due := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)

		got, err := st.UpdateSchedule(ctx, "bravecto", func(sc *models.Schedule) error {
			sc.NextDueDate = &due
			sc.Status = models.StatusAwaitingConfirmation
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "bravecto", got.Key)

		all, err := st.Schedules(ctx, []string{"heartgard", "bravecto"})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, models.NewSchedule("heartgard"), all[0])
		assert.Equal(t, "bravecto", all[1].Key)
		require.NotNil(t, all[1].NextDueDate)
		assert.True(t, due.Equal(*all[1].NextDueDate))
		assert.Equal(t, models.StatusAwaitingConfirmation, all[1].Status)
	})

	t.Run("update can clear the due date", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		_, err := st.UpdateSchedule(ctx, "heartgard", func(sc *models.Schedule) error {
			sc.NextDueDate = &due
			return nil
		})
		require.NoError(t, err)
		_, err = st.UpdateSchedule(ctx, "heartgard", func(sc *models.Schedule) error {
			sc.NextDueDate = nil
			return nil
		})
		require.NoError(t, err)

		sc, err := st.Schedule(ctx, "heartgard")
		require.NoError(t, err)
		assert.Nil(t, sc.NextDueDate)
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		boom := errors.New("boom")

		_, err := st.UpdateSchedule(ctx, "bravecto", func(sc *models.Schedule) error {
			sc.Status = models.StatusAwaitingConfirmation
			return boom
		})
		assert.ErrorIs(t, err, boom)

		sc, err := st.Schedule(ctx, "bravecto")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, sc.Status)
	})

	t.Run("concurrent updates do not interleave", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := st.UpdateSchedule(ctx, "heartgard", func(sc *models.Schedule) error {
			sc.NextDueDate = &start
			return nil
		})
		require.NoError(t, err)

		const n = 10
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.UpdateSchedule(ctx, "heartgard", func(sc *models.Schedule) error {
					next := sc.NextDueDate.AddDate(0, 0, 1)
					sc.NextDueDate = &next
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		sc, err := st.Schedule(ctx, "heartgard")
		require.NoError(t, err)
		assert.True(t, start.AddDate(0, 0, n).Equal(*sc.NextDueDate))
	})

	t.Run("subscribers are a set", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		for _, id := range []string{"telegram:1", "sms:+886900000000", "telegram:1"} {
			_, err := st.AddSubscriber(ctx, id)
			require.NoError(t, err)
		}
		added, err := st.AddSubscriber(ctx, "telegram:1")
		require.NoError(t, err)
		assert.False(t, added)

		subs, err := st.ListSubscribers(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(subs))
		for _, s := range subs {
			ids = append(ids, s.ID)
			assert.False(t, s.CreatedAt.IsZero())
		}
		assert.ElementsMatch(t, []string{"telegram:1", "sms:+886900000000"}, ids)
	})

	t.Run("conversation state defaults to normal", func(t *testing.T) {
		st := open(t)
		ctx := context.Background()

		got, err := st.ConversationState(ctx, "telegram:1")
		require.NoError(t, err)
		assert.Equal(t, models.NormalState(), got)

		require.NoError(t, st.SetConversationState(ctx, "telegram:1", models.AwaitingDate("bravecto")))
		require.NoError(t, st.SetConversationState(ctx, "telegram:2", models.ConversationState{Mode: models.ModeAwaitingDelayCount}))

		got, err = st.ConversationState(ctx, "telegram:1")
		require.NoError(t, err)
		assert.Equal(t, models.AwaitingDate("bravecto"), got)

		got, err = st.ConversationState(ctx, "telegram:2")
		require.NoError(t, err)
		assert.Equal(t, models.ConversationState{Mode: models.ModeAwaitingDelayCount}, got)

		require.NoError(t, st.SetConversationState(ctx, "telegram:1", models.NormalState()))
		got, err = st.ConversationState(ctx, "telegram:1")
		require.NoError(t, err)
		assert.Equal(t, models.NormalState(), got)
	})
}
