package repository

import (
	"strings"
	"time"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	FindAll() ([]model.User, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error
	CountByRole() (map[permission.Role]int64, error)
	CountCreatedSince(since time.Time) (int64, error)
	SearchByNamePrefix(prefix string, limit int) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", time.Now()).Error
}

func (r *userRepo) CountByRole() (map[permission.Role]int64, error) {
	var rows []struct {
		Role  permission.Role
		Total int64
	}
	if err := r.db.Model(&model.User{}).Select("role, COUNT(*) AS total").Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[permission.Role]int64, len(permission.Roles))
	for _, role := range permission.Roles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *userRepo) CountCreatedSince(since time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&model.User{}).Where("created_at >= ?", since).Count(&total).Error
	return total, err
}

func (r *userRepo) SearchByNamePrefix(prefix string, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePrefix(prefix)).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// likePrefix escapes LIKE wildcards in s and appends a trailing %.
func likePrefix(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return s + "%"
}
