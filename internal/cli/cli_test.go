package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medication-reminder/internal/config"
	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/reminder"
	"pet-medication-reminder/internal/storage"
	"pet-medication-reminder/internal/storage/memory"
)

func TestValidateSubscriberID(t *testing.T) {
	for _, ok := range []string{"telegram:123", "telegram:-1001234567890", "sms:+886912345678"} {
		assert.NoError(t, validateSubscriberID(ok), ok)
	}
	for _, bad := range []string{"", "123", "telegram:", "telegram:abc", "sms:0912345678", "sms:+", "line:U1"} {
		assert.Error(t, validateSubscriberID(bad), bad)
	}
}

func TestOpenStore(t *testing.T) {
	st, err := openStore(&config.Config{StorageBackend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)

	st, err = openStore(&config.Config{StorageBackend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "r.db")})
	require.NoError(t, err)
	assert.IsType(t, &storage.DB{}, st)
	require.NoError(t, st.Close())

	_, err = openStore(&config.Config{StorageBackend: "mongo"})
	var cerr *config.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestNewPusher_SMSOnlyWhenConfigured(t *testing.T) {
	ctx := context.Background()
	reply := models.TextReply("hi")

	rt := newPusher(&config.Config{}, nil)
	assert.ErrorContains(t, rt.Push(ctx, "sms:+1555", reply), "no pusher")
	assert.ErrorContains(t, rt.Push(ctx, "telegram:1", reply), "no pusher")
}

func TestStatusUsesConfiguredRegistry(t *testing.T) {
	st := memory.NewStore()
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err := st.UpdateSchedule(context.Background(), "heartgard", func(sc *models.Schedule) error {
		sc.NextDueDate = &due
		return nil
	})
	require.NoError(t, err)

	c := &config.Config{Registry: models.DefaultRegistry(), Location: time.UTC}
	out, err := newService(c, st, nil).Summary(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "下次餵 犬新寶 的日期為：2025/07/01")
}

func TestPrintSweep(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printSweep(cmd, reminder.SweepResult{
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Notified:    []string{"bravecto", "heartgard"},
		Subscribers: 2,
		Delivered:   3,
		Failures:    []*reminder.DeliveryError{{SubscriberID: "telegram:2", MedicationKey: "bravecto", Err: errors.New("blocked")}},
	})

	assert.Equal(t, "date:        2025/06/01\n"+
		"notified:    bravecto, heartgard\n"+
		"subscribers: 2\n"+
		"delivered:   3\n"+
		"failed:      deliver bravecto reminder to telegram:2: blocked\n", buf.String())
}
