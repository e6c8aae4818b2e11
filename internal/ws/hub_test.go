package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, s *Subscription) Envelope {
	t.Helper()
	select {
	case data, ok := <-s.C:
		require.True(t, ok, "subscription closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Envelope{}
}

func TestHub_DeliversToTopicSubscribers(t *testing.T) {
	h, _ := startHub(t)

	notif := h.Subscribe(TopicNotifications)
	settings := h.Subscribe(TopicSettings)
	defer notif.Close()
	defer settings.Close()

	h.Publish(TopicNotifications, map[string]string{"id": "stock-1"})

	env := receive(t, notif)
	assert.Equal(t, TopicNotifications, env.Topic)
	assert.Equal(t, map[string]interface{}{"id": "stock-1"}, env.Payload)

	select {
	case <-settings.C:
		t.Fatal("settings subscriber should not receive notification events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CloseIsIdempotentAndClosesChannel(t *testing.T) {
	h, _ := startHub(t)
	s := h.Subscribe(TopicUsers)
	require.NotNil(t, s)

	s.Close()
	s.Close()

	select {
	case _, ok := <-s.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	assert.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	h, _ := startHub(t)
	s := h.Subscribe(TopicInventory)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer*3; i++ {
			h.Publish(TopicInventory, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}
	assert.Len(t, s.C, subscriptionBuffer)
}

func TestHub_StopReleasesSubscribers(t *testing.T) {
	h, cancel := startHub(t)
	s := h.Subscribe(TopicSales)
	require.NotNil(t, s)

	cancel()

	select {
	case _, ok := <-s.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not released on shutdown")
	}

	s.Close()
	h.Publish(TopicSales, "ignored")
	assert.Nil(t, h.Subscribe(TopicSales))
}

func TestUserTopic(t *testing.T) {
	assert.Equal(t, "user:abc", UserTopic("abc"))
}
