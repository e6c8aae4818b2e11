package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Topics pushed to websocket clients.
const (
	TopicNotifications = "notifications"
	TopicSettings      = "settings"
	TopicUsers         = "users"
	TopicInventory     = "inventory"
	TopicSales         = "sales"
)

// AllTopics is what a connection receives when it asks for nothing specific.
var AllTopics = []string{TopicNotifications, TopicSettings, TopicUsers, TopicInventory, TopicSales}

// UserTopic carries events about a single account (role or status changes).
func UserTopic(userID string) string {
	return "user:" + userID
}

const subscriptionBuffer = 32

// Envelope is the JSON frame delivered to subscribers.
type Envelope struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

type message struct {
	topic string
	data  []byte
}

// Subscription is a live listener on one or more topics. The owner must call
// Close when it stops listening; C is closed once the hub has let go of it.
type Subscription struct {
	C      <-chan []byte
	c      chan []byte
	topics map[string]bool
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
	})
}

type Hub struct {
	subscribers map[*Subscription]bool
	register    chan *Subscription
	unregister  chan *Subscription
	broadcast   chan message
	done        chan struct{}
	mutex       sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]bool),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		broadcast:   make(chan message),
		done:        make(chan struct{}),
	}
}

// Run dispatches messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mutex.Lock()
		for s := range h.subscribers {
			delete(h.subscribers, s)
			close(s.c)
		}
		h.mutex.Unlock()
	}()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return

		case s := <-h.register:
			h.mutex.Lock()
			h.subscribers[s] = true
			h.mutex.Unlock()

		case s := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.subscribers[s]; ok {
				delete(h.subscribers, s)
				close(s.c)
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for s := range h.subscribers {
				if !s.topics[msg.topic] {
					continue
				}
				select {
				case s.c <- msg.data:
				default:
					log.Printf("ws: subscriber buffer full, dropping %s event", msg.topic)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Subscribe registers a listener for topics. It returns nil once the hub has stopped.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	c := make(chan []byte, subscriptionBuffer)
	s := &Subscription{C: c, c: c, topics: make(map[string]bool, len(topics)), hub: h}
	for _, t := range topics {
		s.topics[t] = true
	}
	select {
	case h.register <- s:
		return s
	case <-h.done:
		return nil
	}
}

// Publish delivers payload to every subscriber of topic. Slow subscribers
// miss the event rather than stall the publisher.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(Envelope{Topic: topic, Payload: payload})
	if err != nil {
		log.Printf("ws: failed to encode %s event: %v", topic, err)
		return
	}
	select {
	case h.broadcast <- message{topic: topic, data: data}:
	case <-h.done:
	}
}

// Count returns the number of live subscriptions.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subscribers)
}
