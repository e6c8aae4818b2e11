package repository

import (
	"estampa-fina/internal/model"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	// Get returns gorm.ErrRecordNotFound until settings have been saved once.
	Get() (*model.Settings, error)
	Save(settings *model.Settings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db}
}

func (r *settingsRepo) Get() (*model.Settings, error) {
	var s model.Settings
	if err := r.db.First(&s, "id = ?", model.SettingsID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Save(settings *model.Settings) error {
	settings.ID = model.SettingsID
	return r.db.Save(settings).Error
}

type ActivityLogRepository interface {
	Create(entry *model.ActivityLog) error
	List(entityType string, limit int) ([]model.ActivityLog, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db}
}

func (r *activityLogRepo) Create(entry *model.ActivityLog) error {
	return r.db.Create(entry).Error
}

// List returns the newest entries first, optionally for one entity type.
func (r *activityLogRepo) List(entityType string, limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	q := r.db.Order("created_at DESC").Limit(limit)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	err := q.Find(&entries).Error
	return entries, err
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.Quote{},
		&model.Notification{},
		&model.ActivityLog{},
		&model.Settings{},
	)
}
