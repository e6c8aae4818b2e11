package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"estampa-fina/internal/alert"
	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/ws"
)

type AlertService interface {
	// Generate scans products and awaiting-payment orders, stores alerts not
	// yet stored as notifications, and returns the full current list.
	Generate(ctx context.Context) ([]alert.Alert, error)
	// Run calls Generate every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

type alertService struct {
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	notificationRepo repository.NotificationRepository
	settings         SettingsService
	wsHub            Publisher
	now              func() time.Time
}

func NewAlertService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, notificationRepo repository.NotificationRepository, settings SettingsService, hub Publisher) AlertService {
	return &alertService{
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		settings:         settings,
		wsHub:            hub,
		now:              time.Now,
	}
}

func (s *alertService) Generate(ctx context.Context) ([]alert.Alert, error) {
	var (
		products []model.Product
		orders   []model.Order
		settings *model.Settings
	)

	// All reads finish before anything is written; one failure fails the run.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		products, err = s.productRepo.FindAll()
		if err != nil {
			return fmt.Errorf("reading products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.FindByStatus(model.OrderAwaitingPayment)
		if err != nil {
			return fmt.Errorf("reading orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Get()
		if err != nil {
			return fmt.Errorf("reading settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	alerts := alert.Build(productSnapshots(products), orderSnapshots(orders), now)

	if err := s.persist(alerts, settings, now); err != nil {
		return nil, err
	}
	return alerts, nil
}

// persist stores the alerts whose category is enabled in settings and that
// have no notification yet, and pushes each newly stored one.
func (s *alertService) persist(alerts []alert.Alert, settings *model.Settings, now time.Time) error {
	var candidates []alert.Alert
	for _, a := range alerts {
		if notifyEnabled(settings, a.Type) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]string, len(candidates))
	for i, a := range candidates {
		ids[i] = a.ID
	}
	existing, err := s.notificationRepo.ExistingIDs(ids)
	if err != nil {
		return fmt.Errorf("reading notifications: %w", err)
	}

	for _, a := range candidates {
		if existing[a.ID] {
			continue
		}
		n := &model.Notification{
			ID:        a.ID,
			Type:      string(a.Type),
			Severity:  string(a.Severity),
			Title:     a.Title,
			Details:   a.Details,
			CtaLink:   a.CtaLink,
			Timestamp: now,
		}
		written, err := s.notificationRepo.CreateIfAbsent(n)
		if err != nil {
			return fmt.Errorf("storing notification %s: %w", a.ID, err)
		}
		if written && s.wsHub != nil {
			s.wsHub.Publish(ws.TopicNotifications, map[string]interface{}{
				"type":         "notification_created",
				"notification": n,
			})
		}
	}
	return nil
}

func (s *alertService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if alerts, err := s.Generate(ctx); err != nil {
			log.Printf("alert scan failed: %v", err)
		} else {
			log.Printf("alert scan: %d active alerts", len(alerts))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func notifyEnabled(s *model.Settings, t alert.Type) bool {
	switch t {
	case alert.TypeLowStock:
		return s.NotifyLowStock
	case alert.TypeExpired, alert.TypeExpiringSoon:
		return s.NotifyExpiry
	case alert.TypeOverduePayment:
		return s.NotifyOverduePayment
	}
	return true
}

func productSnapshots(products []model.Product) []alert.Product {
	out := make([]alert.Product, len(products))
	for i, p := range products {
		out[i] = alert.Product{
			ID:           p.ID.String(),
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
			ExpiryDate:   p.ExpiryDate,
		}
	}
	return out
}

func orderSnapshots(orders []model.Order) []alert.Order {
	out := make([]alert.Order, len(orders))
	for i, o := range orders {
		out[i] = alert.Order{
			ID:           o.ID.String(),
			CustomerName: o.CustomerName,
			Status:       string(o.Status),
			Date:         o.Date,
		}
	}
	return out
}
