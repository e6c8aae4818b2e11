// Package tier classifies clients by purchase history and account age.
package tier

import "time"

type Tier string

const (
	New     Tier = "New"
	Regular Tier = "Regular"
	VIP     Tier = "VIP"
	Premium Tier = "Premium"
)

const (
	premiumAbove = 10
	vipAbove     = 5
	newWindow    = 7 * 24 * time.Hour
)

// Valid reports whether t names a known tier.
func (t Tier) Valid() bool {
	switch t {
	case New, Regular, VIP, Premium:
		return true
	}
	return false
}

// Classify returns the tier for a client created at createdAt with
// completedOrders finished orders, evaluated at now. Rules apply in order and
// the first match wins. A zero createdAt is never considered recent.
func Classify(createdAt time.Time, completedOrders int, now time.Time) Tier {
	switch {
	case completedOrders > premiumAbove:
		return Premium
	case completedOrders > vipAbove:
		return VIP
	case !createdAt.IsZero() && !createdAt.Before(now.Add(-newWindow)):
		return New
	default:
		return Regular
	}
}
