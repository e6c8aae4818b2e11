package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, repo UserRepository, name string, role permission.Role) *model.User {
	t.Helper()
	u := &model.User{Email: name + "@example.com", Name: name, Role: role, Active: true}
	require.NoError(t, u.SetPassword("secret1"))
	u.ResetPermissions()
	require.NoError(t, repo.Create(u))
	return u
}

func TestUserRepo_FindByEmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	seedUser(t, repo, "ana", permission.Manager)

	u, err := repo.FindByEmail("ANA@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Name)
	assert.True(t, u.Can(permission.ViewReports))
	assert.Len(t, u.Permissions.Data(), len(permission.Catalogue))
}

func TestUserRepo_CountByRole(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	seedUser(t, repo, "a", permission.Administrator)
	seedUser(t, repo, "b", permission.Operator)
	seedUser(t, repo, "c", permission.Operator)

	counts, err := repo.CountByRole()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[permission.Administrator])
	assert.Equal(t, int64(2), counts[permission.Operator])
	assert.Equal(t, int64(0), counts[permission.Customer])
}

func TestUserRepo_SearchByNamePrefixEscapesWildcards(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	seedUser(t, repo, "maria", permission.Operator)
	seedUser(t, repo, "mario", permission.Operator)
	seedUser(t, repo, "m_x", permission.Operator)

	found, err := repo.SearchByNamePrefix("Mari", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.SearchByNamePrefix("m_", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "m_x", found[0].Name)
}

func TestProductRepo_DeleteMissing(t *testing.T) {
	repo := NewProductRepo(setupTestDB(t))
	p := &model.Product{SKU: "CAM-01", Name: "Camiseta", SalePrice: decimal.NewFromInt(50)}
	require.NoError(t, repo.Create(p))

	require.NoError(t, repo.Delete(p.ID, "tester"))
	_, err := repo.FindByID(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(p.ID, "tester"), gorm.ErrRecordNotFound)
}

func TestProductRepo_DecimalRoundTrip(t *testing.T) {
	repo := NewProductRepo(setupTestDB(t))
	p := &model.Product{SKU: "CAN-01", Name: "Caneca", CostPrice: decimal.RequireFromString("12.5"), SalePrice: decimal.RequireFromString("29.9")}
	require.NoError(t, repo.Create(p))

	got, err := repo.FindBySKU("CAN-01")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("29.9").Equal(got.SalePrice))
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.CostPrice))
}

func TestOrderRepo_CompletedCountsAndRange(t *testing.T) {
	repo := NewOrderRepo(setupTestDB(t))
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

	mk := func(client string, status model.OrderStatus, at time.Time) {
		o := &model.Order{ClientID: client, CustomerName: client, Status: status, Date: at,
			Items: []model.LineItem{{ProductID: "p", Quantity: 1, SalePrice: decimal.NewFromInt(10)}}}
		o.Recalculate()
		require.NoError(t, repo.Create(o))
	}
	mk("c1", model.OrderCompleted, base)
	mk("c1", model.OrderCompleted, base.AddDate(0, 0, 1))
	mk("c1", model.OrderCancelled, base)
	mk("c2", model.OrderCompleted, base.AddDate(0, 0, 5))
	mk("", model.OrderCompleted, base)

	counts, err := repo.CountCompletedByClient()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 2, "c2": 1}, counts)

	inRange, err := repo.FindByStatusBetween(model.OrderCompleted, base, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 3)

	mine, err := repo.FindByClient("c1")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.False(t, mine[0].Date.Before(mine[1].Date), "newest first")

	require.NoError(t, repo.UpdateStatus(mine[0].ID, model.OrderShipped, "x"))
}

func TestNotificationRepo_Idempotency(t *testing.T) {
	repo := NewNotificationRepo(setupTestDB(t))
	n := &model.Notification{ID: "stock-1", Type: "low-stock", Timestamp: time.Now()}

	written, err := repo.CreateIfAbsent(n)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = repo.CreateIfAbsent(&model.Notification{ID: "stock-1", Title: "again", Timestamp: time.Now()})
	require.NoError(t, err)
	assert.False(t, written)

	existing, err := repo.ExistingIDs([]string{"stock-1", "stock-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"stock-1": true}, existing)

	unread, err := repo.CountUnread()
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, repo.MarkRead("stock-1"))
	require.NoError(t, repo.MarkRead("stock-1"))
	assert.ErrorIs(t, repo.MarkRead("missing"), gorm.ErrRecordNotFound)

	got, err := repo.FindByID("stock-1")
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.Empty(t, got.Title)
}

func TestNotificationRepo_LatestOrdering(t *testing.T) {
	repo := NewNotificationRepo(setupTestDB(t))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err := repo.CreateIfAbsent(&model.Notification{ID: fmt.Sprintf("n-%02d", i), Timestamp: start.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	latest, err := repo.Latest(10)
	require.NoError(t, err)
	require.Len(t, latest, 10)
	assert.Equal(t, "n-11", latest[0].ID)
	assert.Equal(t, "n-02", latest[9].ID)
}

func TestSettingsRepo(t *testing.T) {
	repo := NewSettingsRepo(setupTestDB(t))
	_, err := repo.Get()
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	s := model.DefaultSettings()
	s.CompanyName = "Outra"
	require.NoError(t, repo.Save(&s))

	got, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, "Outra", got.CompanyName)
	assert.Equal(t, model.SettingsID, got.ID)
}

func TestActivityLogRepo_List(t *testing.T) {
	repo := NewActivityLogRepo(setupTestDB(t))
	require.NoError(t, repo.Create(&model.ActivityLog{Action: "create", EntityType: "product", EntityID: "1"}))
	require.NoError(t, repo.Create(&model.ActivityLog{Action: "update", EntityType: "client", EntityID: "2"}))

	all, err := repo.List("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	products, err := repo.List("product", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "create", products[0].Action)
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, `ab\%c\_%`, likePrefix("AB%c_"))
}
