package service

import (
	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
)

const notificationFeedSize = 10

type NotificationService interface {
	Feed() (*NotificationFeed, error)
	MarkRead(id string) error
	MarkAllRead() (int64, error)
}

// NotificationFeed is the latest notifications plus the overall unread count.
type NotificationFeed struct {
	Items  []model.Notification `json:"items"`
	Unread int64                `json:"unread"`
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Feed() (*NotificationFeed, error) {
	items, err := s.repo.Latest(notificationFeedSize)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread()
	if err != nil {
		return nil, err
	}
	return &NotificationFeed{Items: items, Unread: unread}, nil
}

// MarkRead is idempotent; an unknown id yields ErrNotFound.
func (s *notificationService) MarkRead(id string) error {
	return notFound(s.repo.MarkRead(id))
}

func (s *notificationService) MarkAllRead() (int64, error) {
	return s.repo.MarkAllRead()
}
