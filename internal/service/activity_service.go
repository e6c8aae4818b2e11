package service

import (
	"encoding/json"

	"gorm.io/datatypes"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
)

const defaultActivityLimit = 100

type ActivityService interface {
	Record(actor Actor, action, entityType, entityID, description string, before, after interface{})
	List(entityType string, limit int) ([]model.ActivityLog, error)
}

type activityService struct {
	repo repository.ActivityLogRepository
}

func NewActivityService(repo repository.ActivityLogRepository) ActivityService {
	return &activityService{repo: repo}
}

// Record appends an audit entry. The triggering mutation has already been
// committed, so a failure here is logged rather than returned.
func (s *activityService) Record(actor Actor, action, entityType, entityID, description string, before, after interface{}) {
	entry := &model.ActivityLog{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Before:      snapshot(before),
		After:       snapshot(after),
	}
	entry.CreatedBy = actor.ID
	logErr("activity log", s.repo.Create(entry))
}

func (s *activityService) List(entityType string, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultActivityLimit
	}
	return s.repo.List(entityType, limit)
}

func snapshot(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
