package repository

import (
	"estampa-fina/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	ExistingIDs(ids []string) (map[string]bool, error)
	CreateIfAbsent(n *model.Notification) (bool, error)
	FindByID(id string) (*model.Notification, error)
	Latest(limit int) ([]model.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id string) error
	MarkAllRead() (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

// ExistingIDs reports which of ids are already stored.
func (r *notificationRepo) ExistingIDs(ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(ids) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.Model(&model.Notification{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// CreateIfAbsent inserts n unless a row with the same id exists. It reports
// whether a row was written.
func (r *notificationRepo) CreateIfAbsent(n *model.Notification) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepo) FindByID(id string) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Latest(limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.Order("issued_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *notificationRepo) CountUnread() (int64, error) {
	var total int64
	err := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Count(&total).Error
	return total, err
}

// MarkRead sets read=true. Marking an already-read notification is not an
// error; a missing id is.
func (r *notificationRepo) MarkRead(id string) error {
	res := r.db.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&model.Notification{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *notificationRepo) MarkAllRead() (int64, error) {
	res := r.db.Model(&model.Notification{}).Where("is_read = ?", false).Update("is_read", true)
	return res.RowsAffected, res.Error
}
