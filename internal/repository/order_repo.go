package repository

import (
	"time"

	"estampa-fina/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	Update(order *model.Order) error
	UpdateStatus(id uuid.UUID, status model.OrderStatus, updatedBy string) error
	FindAll() ([]model.Order, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByClient(clientID string) ([]model.Order, error)
	FindByStatus(status model.OrderStatus) ([]model.Order, error)
	FindByStatusBetween(status model.OrderStatus, start, end time.Time) ([]model.Order, error)
	FindRecent(limit int) ([]model.Order, error)
	CountByStatus(status model.OrderStatus) (int64, error)
	CountCompletedByClient() (map[string]int, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) Update(order *model.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepo) UpdateStatus(id uuid.UUID, status model.OrderStatus, updatedBy string) error {
	res := r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Order("placed_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByClient(clientID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("client_id = ?", clientID).Order("placed_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByStatus(status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("status = ?", status).Order("placed_at ASC").Find(&orders).Error
	return orders, err
}

// FindByStatusBetween returns orders in status dated within [start, end].
func (r *orderRepo) FindByStatusBetween(status model.OrderStatus, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("status = ? AND placed_at >= ? AND placed_at <= ?", status, start, end).
		Order("placed_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindRecent(limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Order("placed_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByStatus(status model.OrderStatus) (int64, error) {
	var total int64
	err := r.db.Model(&model.Order{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

// CountCompletedByClient maps client id to its number of completed orders.
func (r *orderRepo) CountCompletedByClient() (map[string]int, error) {
	var rows []struct {
		ClientID string
		Total    int
	}
	err := r.db.Model(&model.Order{}).
		Select("client_id, COUNT(*) AS total").
		Where("status = ? AND client_id <> ''", model.OrderCompleted).
		Group("client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ClientID] = row.Total
	}
	return counts, nil
}
