package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/pkg/validator"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrForbidden  = errors.New("you do not have permission to perform this action")
	ErrValidation = validator.ErrInvalid
)

// Publisher pushes realtime events to subscribers of a topic.
type Publisher interface {
	Publish(topic string, payload interface{})
}

// Actor is the authenticated user performing a mutation.
type Actor struct {
	ID    string
	Name  string
	Email string
	User  permission.Principal
}

// ActorFromUser builds an Actor from a loaded user record.
func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.ID.String(), Name: u.Name, Email: u.Email, User: u.Principal()}
}

func (a Actor) Can(c permission.Capability) bool {
	return permission.Can(a.User, c)
}

func (a Actor) event() map[string]interface{} {
	return map[string]interface{}{"id": a.ID, "name": a.Name, "email": a.Email}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}

func publish(pub Publisher, topic, eventType, action string, actor Actor, data map[string]interface{}, message string) {
	if pub == nil {
		return
	}
	payload := map[string]interface{}{
		"type":    eventType,
		"action":  action,
		"user":    actor.event(),
		"message": message,
	}
	for k, v := range data {
		payload[k] = v
	}
	pub.Publish(topic, payload)
}

func logErr(op string, err error) {
	if err != nil {
		log.Printf("%s: %v", op, err)
	}
}
