package service

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
)

const (
	dashboardDays   = 7
	dashboardRecent = 5
)

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
}

type DashboardStats struct {
	MonthlyRevenue decimal.Decimal           `json:"monthlyRevenue"`
	PendingOrders  int64                     `json:"pendingOrders"`
	SalesLastWeek  []model.DaySales          `json:"salesLastWeek"`
	NewUsers       int64                     `json:"newUsersThisMonth"`
	UsersByRole    map[permission.Role]int64 `json:"usersByRole"`
	RecentOrders   []model.Order             `json:"recentOrders"`
	TotalProducts  int64                     `json:"totalProducts"`
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewDashboardService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, productRepo repository.ProductRepository) DashboardService {
	return &dashboardService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// GetDashboardStats fetches every figure concurrently; any failure fails the whole view.
func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := startOfDay(now).AddDate(0, 0, -(dashboardDays - 1))

	stats := &DashboardStats{}
	var monthOrders, weekOrders []model.Order

	var g errgroup.Group
	g.Go(func() (err error) {
		monthOrders, err = s.orderRepo.FindByStatusBetween(model.OrderCompleted, monthStart, now)
		return
	})
	g.Go(func() (err error) {
		weekOrders, err = s.orderRepo.FindByStatusBetween(model.OrderCompleted, weekStart, now)
		return
	})
	g.Go(func() (err error) {
		stats.PendingOrders, err = s.orderRepo.CountByStatus(model.OrderRequested)
		return
	})
	g.Go(func() (err error) {
		stats.NewUsers, err = s.userRepo.CountCreatedSince(monthStart)
		return
	})
	g.Go(func() (err error) {
		stats.UsersByRole, err = s.userRepo.CountByRole()
		return
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = s.orderRepo.FindRecent(dashboardRecent)
		return
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.productRepo.Count()
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.MonthlyRevenue = decimal.Zero
	for _, o := range monthOrders {
		stats.MonthlyRevenue = stats.MonthlyRevenue.Add(o.TotalValue)
	}
	stats.SalesLastWeek = salesPerDay(weekOrders, weekStart, dashboardDays)
	return stats, nil
}

// salesPerDay buckets orders into days consecutive days starting at from,
// including days without sales.
func salesPerDay(orders []model.Order, from time.Time, days int) []model.DaySales {
	out := make([]model.DaySales, days)
	index := make(map[string]int, days)
	for i := range out {
		key := from.AddDate(0, 0, i).Format(dayLayout)
		out[i] = model.DaySales{Date: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, o := range orders {
		if i, ok := index[o.Date.In(from.Location()).Format(dayLayout)]; ok {
			out[i].Total = out[i].Total.Add(o.TotalValue)
			out[i].Count++
		}
	}
	return out
}

const dayLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Millisecond)
}
