package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockPublisher records realtime events instead of pushing them to a hub.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, payload interface{}) {
	m.Called(topic, payload)
}

// Topics returns the topic of every Publish call in order.
func (m *MockPublisher) Topics() []string {
	var topics []string
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			topics = append(topics, call.Arguments.String(0))
		}
	}
	return topics
}
