// Package alert derives operational alerts from product and order snapshots.
package alert

import (
	"fmt"
	"slices"
	"time"
)

type Severity string

const (
	High   Severity = "high"
	Medium Severity = "medium"
	Low    Severity = "low"
)

// Rank orders severities for display, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case High:
		return 1
	case Medium:
		return 2
	case Low:
		return 3
	}
	return 4
}

type Type string

const (
	TypeLowStock       Type = "low-stock"
	TypeExpired        Type = "expired"
	TypeExpiringSoon   Type = "expiring-soon"
	TypeOverduePayment Type = "overdue-payment"
)

const (
	ExpiryWindow   = 30 * 24 * time.Hour
	OverdueAfter   = 7 * 24 * time.Hour
	AwaitingStatus = "Awaiting Payment"
)

// Alert is a generated notice. ID is deterministic per rule and source entity.
type Alert struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Details  string   `json:"details"`
	CtaLink  string   `json:"ctaLink"`
}

// Product carries the fields alert rules read from a product.
type Product struct {
	ID           string
	Name         string
	CurrentStock int
	MinStock     int
	ExpiryDate   *time.Time
}

// Order carries the fields alert rules read from an order.
type Order struct {
	ID           string
	CustomerName string
	Status       string
	Date         time.Time
}

// Build evaluates every rule against the snapshots and returns the alerts
// sorted by severity. Alerts of equal severity keep discovery order: products
// first, then orders, each in input order.
func Build(products []Product, orders []Order, now time.Time) []Alert {
	var alerts []Alert

	for _, p := range products {
		if p.CurrentStock <= p.MinStock {
			alerts = append(alerts, Alert{
				ID:       "stock-" + p.ID,
				Type:     TypeLowStock,
				Severity: Medium,
				Title:    "Low stock: " + p.Name,
				Details:  fmt.Sprintf("Current stock is %d (minimum %d).", p.CurrentStock, p.MinStock),
				CtaLink:  "/products/" + p.ID + "/edit",
			})
		}

		if p.ExpiryDate == nil || p.ExpiryDate.IsZero() {
			continue
		}
		expiry := *p.ExpiryDate
		if expiry.Before(now) {
			alerts = append(alerts, Alert{
				ID:       "expired-" + p.ID,
				Type:     TypeExpired,
				Severity: High,
				Title:    "Expired product: " + p.Name,
				Details:  "Expired on " + expiry.Format("02/01/2006") + ".",
				CtaLink:  "/products/" + p.ID + "/edit",
			})
		} else if expiry.Before(now.Add(ExpiryWindow)) {
			alerts = append(alerts, Alert{
				ID:       "expiring-" + p.ID,
				Type:     TypeExpiringSoon,
				Severity: Low,
				Title:    "Product expiring soon: " + p.Name,
				Details:  "Expires on " + expiry.Format("02/01/2006") + ".",
				CtaLink:  "/products/" + p.ID + "/edit",
			})
		}
	}

	overdueBefore := now.Add(-OverdueAfter)
	for _, o := range orders {
		if o.Status != AwaitingStatus || !o.Date.Before(overdueBefore) {
			continue
		}
		alerts = append(alerts, Alert{
			ID:       "overdue-" + o.ID,
			Type:     TypeOverduePayment,
			Severity: High,
			Title:    "Overdue payment",
			Details:  fmt.Sprintf("Order for %s has been awaiting payment since %s.", o.CustomerName, o.Date.Format("02/01/2006")),
			CtaLink:  "/sales/" + o.ID,
		})
	}

	Sort(alerts)
	return alerts
}

// Sort orders alerts by severity rank, keeping the relative order of ties.
func Sort(alerts []Alert) {
	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
}
