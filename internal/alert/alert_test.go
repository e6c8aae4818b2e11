package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	t := now.AddDate(0, 0, days)
	return &t
}

func ids(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestBuild_LowStock(t *testing.T) {
	alerts := Build([]Product{
		{ID: "p1", Name: "Mug", CurrentStock: 3, MinStock: 3},
		{ID: "p2", Name: "Shirt", CurrentStock: 4, MinStock: 3},
		{ID: "p3", Name: "Cap", CurrentStock: 0},
	}, nil, now)

	require.Equal(t, []string{"stock-p1", "stock-p3"}, ids(alerts))
	assert.Equal(t, Medium, alerts[0].Severity)
	assert.Equal(t, TypeLowStock, alerts[0].Type)
	assert.Equal(t, "/products/p1/edit", alerts[0].CtaLink)
}

func TestBuild_Expiry(t *testing.T) {
	cases := []struct {
		name   string
		expiry *time.Time
		want   []string
	}{
		{"forty days ahead", at(40), nil},
		{"twenty nine days ahead", at(29), []string{"expiring-p"}},
		{"yesterday", at(-1), []string{"expired-p"}},
		{"no expiry", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := Build([]Product{{ID: "p", Name: "Ink", CurrentStock: 10, MinStock: 1, ExpiryDate: tc.expiry}}, nil, now)
			if tc.want == nil {
				assert.Empty(t, alerts)
				return
			}
			assert.Equal(t, tc.want, ids(alerts))
		})
	}
}

func TestBuild_ExpiredSeverity(t *testing.T) {
	alerts := Build([]Product{{ID: "p", CurrentStock: 10, ExpiryDate: at(-1)}}, nil, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, High, alerts[0].Severity)

	alerts = Build([]Product{{ID: "p", CurrentStock: 10, ExpiryDate: at(29)}}, nil, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, Low, alerts[0].Severity)
}

func TestBuild_ProductMayRaiseSeveralCategories(t *testing.T) {
	alerts := Build([]Product{{ID: "p", CurrentStock: 0, MinStock: 2, ExpiryDate: at(-3)}}, nil, now)
	assert.Equal(t, []string{"expired-p", "stock-p"}, ids(alerts))
}

func TestBuild_OverduePayment(t *testing.T) {
	orders := []Order{
		{ID: "o1", CustomerName: "Ana", Status: AwaitingStatus, Date: now.AddDate(0, 0, -8)},
		{ID: "o2", CustomerName: "Bia", Status: AwaitingStatus, Date: now.AddDate(0, 0, -6)},
		{ID: "o3", CustomerName: "Caio", Status: "Completed", Date: now.AddDate(0, 0, -30)},
	}
	alerts := Build(nil, orders, now)
	require.Equal(t, []string{"overdue-o1"}, ids(alerts))
	assert.Equal(t, High, alerts[0].Severity)
	assert.Equal(t, "/sales/o1", alerts[0].CtaLink)
	assert.Contains(t, alerts[0].Details, "Ana")
}

func TestBuild_OrderingBySeverity(t *testing.T) {
	// discovery order: low (expiring p1), high (expired p2), medium (stock p3)
	products := []Product{
		{ID: "p1", CurrentStock: 10, ExpiryDate: at(10)},
		{ID: "p2", CurrentStock: 10, ExpiryDate: at(-10)},
		{ID: "p3", CurrentStock: 0, MinStock: 1},
	}
	alerts := Build(products, nil, now)
	assert.Equal(t, []string{"expired-p2", "stock-p3", "expiring-p1"}, ids(alerts))
}

func TestBuild_TiesKeepDiscoveryOrder(t *testing.T) {
	products := []Product{
		{ID: "a", CurrentStock: 10, ExpiryDate: at(-1)},
		{ID: "b", CurrentStock: 10, ExpiryDate: at(-2)},
	}
	orders := []Order{{ID: "c", Status: AwaitingStatus, Date: now.AddDate(0, 0, -20)}}
	alerts := Build(products, orders, now)
	assert.Equal(t, []string{"expired-a", "expired-b", "overdue-c"}, ids(alerts))
}

func TestBuild_Deterministic(t *testing.T) {
	products := []Product{{ID: "p", CurrentStock: 0, MinStock: 1}}
	assert.Equal(t, Build(products, nil, now), Build(products, nil, now))
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, High.Rank(), Medium.Rank())
	assert.Less(t, Medium.Rank(), Low.Rank())
	assert.Equal(t, 4, Severity("unknown").Rank())
}
