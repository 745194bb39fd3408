// Package postgres is a gorm backed Store for deployments that already run Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"pet-medication-reminder/internal/models"
)

type scheduleRow struct {
	MedicationKey string     `gorm:"primaryKey;type:varchar(64)"`
	NextDueDate   *time.Time `gorm:"type:date"`
	Status        string     `gorm:"type:varchar(32);not null;default:pending"`
	UpdatedAt     time.Time
}

func (scheduleRow) TableName() string { return "schedules" }

func (r scheduleRow) toModel() models.Schedule {
	s := models.Schedule{Key: r.MedicationKey, Status: models.Status(r.Status)}
	if r.NextDueDate != nil {
		y, m, d := r.NextDueDate.Date()
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		s.NextDueDate = &t
	}
	return s
}

type subscriberRow struct {
	ID        string `gorm:"primaryKey;type:varchar(128)"`
	CreatedAt time.Time
}

func (subscriberRow) TableName() string { return "subscribers" }

type stateRow struct {
	SubscriberID  string  `gorm:"primaryKey;type:varchar(128)"`
	Mode          string  `gorm:"type:varchar(32);not null"`
	MedicationKey *string `gorm:"type:varchar(64)"`
}

func (stateRow) TableName() string { return "conversation_states" }

func stateRowFrom(subscriberID string, st models.ConversationState) stateRow {
	row := stateRow{SubscriberID: subscriberID, Mode: string(st.Mode)}
	if st.MedicationKey != "" {
		k := st.MedicationKey
		row.MedicationKey = &k
	}
	return row
}

func (r stateRow) toModel() models.ConversationState {
	st := models.ConversationState{Mode: models.Mode(r.Mode)}
	if r.MedicationKey != nil {
		st.MedicationKey = *r.MedicationKey
	}
	return st
}

type Store struct {
	db *gorm.DB
}

// Open connects with dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db)
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&scheduleRow{}, &subscriberRow{}, &stateRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func ensureSchedule(tx *gorm.DB, key string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&scheduleRow{MedicationKey: key, Status: string(models.StatusPending)}).Error
}

func (s *Store) Schedule(ctx context.Context, key string) (models.Schedule, error) {
	db := s.db.WithContext(ctx)
	if err := ensureSchedule(db, key); err != nil {
		return models.Schedule{}, err
	}
	var row scheduleRow
	if err := db.First(&row, "medication_key = ?", key).Error; err != nil {
		return models.Schedule{}, err
	}
	return row.toModel(), nil
}

func (s *Store) Schedules(ctx context.Context, keys []string) ([]models.Schedule, error) {
	res := make([]models.Schedule, 0, len(keys))
	for _, k := range keys {
		sc, err := s.Schedule(ctx, k)
		if err != nil {
			return nil, err
		}
		res = append(res, sc)
	}
	return res, nil
}

// UpdateSchedule locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (s *Store) UpdateSchedule(ctx context.Context, key string, fn func(*models.Schedule) error) (models.Schedule, error) {
	var out models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSchedule(tx, key); err != nil {
			return err
		}
		var row scheduleRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "medication_key = ?", key).Error; err != nil {
			return err
		}

		sc := row.toModel()
		if err := fn(&sc); err != nil {
			return err
		}
		sc.Key = key
		row.NextDueDate = sc.NextDueDate
		row.Status = string(sc.Status)
		out = sc
		return tx.Save(&row).Error
	})
	if err != nil {
		return models.Schedule{}, err
	}
	return out, nil
}

func (s *Store) AddSubscriber(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&subscriberRow{ID: id})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	var rows []subscriberRow
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]models.Subscriber, 0, len(rows))
	for _, r := range rows {
		res = append(res, models.Subscriber{ID: r.ID, CreatedAt: r.CreatedAt.UTC()})
	}
	return res, nil
}

func (s *Store) ConversationState(ctx context.Context, subscriberID string) (models.ConversationState, error) {
	var row stateRow
	err := s.db.WithContext(ctx).First(&row, "subscriber_id = ?", subscriberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NormalState(), nil
	}
	if err != nil {
		return models.ConversationState{}, err
	}
	return row.toModel(), nil
}

func (s *Store) SetConversationState(ctx context.Context, subscriberID string, st models.ConversationState) error {
	row := stateRowFrom(subscriberID, st)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subscriber_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "medication_key"}),
	}).Create(&row).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
