package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	cases := []struct {
		name      string
		createdAt time.Time
		orders    int
		want      Tier
	}{
		{"eleven orders", daysAgo(400), 11, Premium},
		{"ten orders is not premium", daysAgo(400), 10, VIP},
		{"six orders", daysAgo(400), 6, VIP},
		{"five orders is not vip", daysAgo(400), 5, Regular},
		{"recent signup", daysAgo(2), 0, New},
		{"old signup", daysAgo(30), 0, Regular},
		{"exactly seven days", now.Add(-7 * 24 * time.Hour), 0, New},
		{"just past seven days", now.Add(-7*24*time.Hour - time.Second), 0, Regular},
		{"recent but many orders", daysAgo(1), 12, Premium},
		{"missing createdAt", time.Time{}, 0, Regular},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.createdAt, tc.orders, now))
		})
	}
}

func TestTierValid(t *testing.T) {
	assert.True(t, VIP.Valid())
	assert.False(t, Tier("Gold").Valid())
}
