package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
	"estampa-fina/mocks"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func newPublisher() *mocks.MockPublisher {
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return()
	return pub
}

func seedUser(t *testing.T, db *gorm.DB, name string, role permission.Role) *model.User {
	t.Helper()
	u := &model.User{Email: name + "@estampafina.com.br", Name: name, Role: role, Active: true}
	require.NoError(t, u.SetPassword("secret1"))
	u.ResetPermissions()
	require.NoError(t, repository.NewUserRepo(db).Create(u))
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, sku, name string, price string, stock, min int) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:          sku,
		Name:         name,
		SalePrice:    decimal.RequireFromString(price),
		CostPrice:    decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		CurrentStock: stock,
		MinStock:     min,
	}
	require.NoError(t, repository.NewProductRepo(db).Create(p))
	return p
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
