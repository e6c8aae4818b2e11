package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"estampa-fina/internal/model"
	"estampa-fina/internal/postal"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/tier"
	"estampa-fina/pkg/validator"
)

type ClientService interface {
	List(filter ClientFilter) ([]model.ClientResponse, error)
	Get(id uuid.UUID) (*model.ClientResponse, error)
	Create(actor Actor, req *model.Client) (*model.ClientResponse, error)
	Update(actor Actor, id uuid.UUID, req *model.Client) (*model.ClientResponse, error)
	Delete(actor Actor, id uuid.UUID) error
	History(id uuid.UUID) ([]model.Order, error)
	LookupPostalCode(ctx context.Context, cep string) (*postal.Address, error)
}

// ClientFilter narrows the client listing. Search matches name, email, phone
// or CPF (punctuation ignored); Tier keeps one derived tier.
type ClientFilter struct {
	Search string
	Tier   tier.Tier
}

type clientService struct {
	clientRepo repository.ClientRepository
	orderRepo  repository.OrderRepository
	postal     postal.Lookup
	activity   ActivityService
	now        func() time.Time
}

func NewClientService(clientRepo repository.ClientRepository, orderRepo repository.OrderRepository, lookup postal.Lookup, activity ActivityService) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		orderRepo:  orderRepo,
		postal:     lookup,
		activity:   activity,
		now:        time.Now,
	}
}

func (s *clientService) List(filter ClientFilter) ([]model.ClientResponse, error) {
	if filter.Tier != "" && !filter.Tier.Valid() {
		return nil, invalid("unknown tier %q", filter.Tier)
	}

	clients, err := s.clientRepo.FindAll()
	if err != nil {
		return nil, err
	}
	counts, err := s.orderRepo.CountCompletedByClient()
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]model.ClientResponse, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		if !matchesClient(c, filter.Search) {
			continue
		}
		resp := c.ToResponse(counts[c.ID.String()], now)
		if filter.Tier != "" && resp.Status != filter.Tier {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

func matchesClient(c *model.Client, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(c.Phone, q) {
		return true
	}
	digits := validator.DigitsOnly(q)
	return digits != "" && strings.Contains(validator.DigitsOnly(c.CPF), digits)
}

func (s *clientService) Get(id uuid.UUID) (*model.ClientResponse, error) {
	client, err := s.clientRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.respond(client)
}

func (s *clientService) respond(client *model.Client) (*model.ClientResponse, error) {
	counts, err := s.orderRepo.CountCompletedByClient()
	if err != nil {
		return nil, err
	}
	resp := client.ToResponse(counts[client.ID.String()], s.now())
	return &resp, nil
}

func (s *clientService) Create(actor Actor, req *model.Client) (*model.ClientResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	client := &model.Client{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		CPF:     req.CPF,
		Address: normalizeAddress(req.Address),
		Notes:   req.Notes,
	}
	client.CreatedBy = actor.ID
	client.UpdatedBy = actor.ID

	if err := s.clientRepo.Create(client); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "create", "client", client.ID.String(), "created client "+client.Name, nil, client)
	return s.respond(client)
}

func (s *clientService) Update(actor Actor, id uuid.UUID, req *model.Client) (*model.ClientResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	before := *client

	client.Name = strings.TrimSpace(req.Name)
	client.Email = req.Email
	client.Phone = req.Phone
	client.CPF = req.CPF
	client.Address = normalizeAddress(req.Address)
	client.Notes = req.Notes
	client.UpdatedBy = actor.ID

	if err := s.clientRepo.Update(client); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "update", "client", client.ID.String(), "updated client "+client.Name, before, client)
	return s.respond(client)
}

func (s *clientService) Delete(actor Actor, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(id)
	if err != nil {
		return notFound(err)
	}
	if err := s.clientRepo.Delete(id); err != nil {
		return notFound(err)
	}
	s.activity.Record(actor, "delete", "client", id.String(), "deleted client "+client.Name, client, nil)
	return nil
}

func (s *clientService) History(id uuid.UUID) ([]model.Order, error) {
	if _, err := s.clientRepo.FindByID(id); err != nil {
		return nil, notFound(err)
	}
	return s.orderRepo.FindByClient(id.String())
}

func (s *clientService) LookupPostalCode(ctx context.Context, cep string) (*postal.Address, error) {
	addr, err := s.postal.Lookup(ctx, cep)
	if err != nil {
		return nil, fmt.Errorf("postal code %s: %w", cep, err)
	}
	return addr, nil
}

func normalizeAddress(a model.Address) model.Address {
	if digits := validator.DigitsOnly(a.PostalCode); len(digits) == 8 {
		a.PostalCode = digits[:5] + "-" + digits[5:]
	}
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	return a
}
