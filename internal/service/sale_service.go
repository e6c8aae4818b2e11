package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/validator"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")
)

type SaleService interface {
	GetAllSales(filter SaleFilter) ([]model.Order, error)
	GetSale(id uuid.UUID) (*model.Order, error)
	GetSalesForClient(clientID string) ([]model.Order, error)
	CreateSale(actor Actor, req *SaleRequest) (*model.Order, error)
	CreateWalkInSale(actor Actor, req *SaleRequest) (*model.Order, error)
	UpdateSale(actor Actor, id uuid.UUID, req *SaleRequest) (*model.Order, error)
	UpdateStatus(actor Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// SaleFilter narrows the sales listing. Search matches the customer name or
// the order id prefix.
type SaleFilter struct {
	Search string
	Status model.OrderStatus
}

// SaleRequest is the editable part of an order. The total is never read from
// the caller; it is derived from Items.
type SaleRequest struct {
	ClientID       string               `json:"clientId"`
	CustomerName   string               `json:"customerName"`
	Items          []model.LineItem     `json:"items" validate:"required,min=1,dive"`
	Status         model.OrderStatus    `json:"status"`
	PaymentMethod  string               `json:"paymentMethod"`
	PaymentDetails model.PaymentDetails `json:"paymentDetails"`
	Notes          string               `json:"notes"`
}

type saleService struct {
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	activity    ActivityService
	wsHub       Publisher
	now         func() time.Time
}

func NewSaleService(orderRepo repository.OrderRepository, clientRepo repository.ClientRepository, productRepo repository.ProductRepository, activity ActivityService, hub Publisher) SaleService {
	return &saleService{
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		activity:    activity,
		wsHub:       hub,
		now:         time.Now,
	}
}

func (s *saleService) GetAllSales(filter SaleFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown status %q", filter.Status)
	}

	orders, err := s.orderRepo.FindAll()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(filter.Search))
	out := orders[:0]
	for _, o := range orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(o.CustomerName), q) && !strings.HasPrefix(o.ID.String(), q) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (s *saleService) GetSalesForClient(clientID string) ([]model.Order, error) {
	return s.orderRepo.FindByClient(clientID)
}

func (s *saleService) CreateSale(actor Actor, req *SaleRequest) (*model.Order, error) {
	return s.create(actor, req, false)
}

// CreateWalkInSale registers a counter sale, which is paid on the spot and
// therefore stored as Completed.
func (s *saleService) CreateWalkInSale(actor Actor, req *SaleRequest) (*model.Order, error) {
	return s.create(actor, req, true)
}

func (s *saleService) create(actor Actor, req *SaleRequest, walkIn bool) (*model.Order, error) {
	order := &model.Order{Date: s.now()}
	if err := s.apply(order, req); err != nil {
		return nil, err
	}
	if walkIn {
		order.Status = model.OrderCompleted
	}
	order.CreatedBy = actor.ID
	order.UpdatedBy = actor.ID

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "create", "sale", order.ID.String(), fmt.Sprintf("registered sale for %s (%s)", order.CustomerName, order.TotalValue.StringFixed(2)), nil, order)
	s.broadcast(actor, "sale_created", order, fmt.Sprintf("%s registered a sale for '%s'", actor.Name, order.CustomerName))
	return order, nil
}

func (s *saleService) UpdateSale(actor Actor, id uuid.UUID, req *SaleRequest) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	before := *order

	if req.Status == "" {
		req.Status = order.Status
	}
	if err := s.apply(order, req); err != nil {
		return nil, err
	}
	order.UpdatedBy = actor.ID

	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "update", "sale", order.ID.String(), "updated sale of "+order.CustomerName, before, order)
	s.broadcast(actor, "sale_updated", order, fmt.Sprintf("%s updated the sale of '%s'", actor.Name, order.CustomerName))
	return order, nil
}

func (s *saleService) UpdateStatus(actor Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	previous := order.Status
	if previous == status {
		return order, nil
	}

	if err := s.orderRepo.UpdateStatus(id, status, actor.ID); err != nil {
		return nil, notFound(err)
	}
	order.Status = status
	order.UpdatedBy = actor.ID

	s.activity.Record(actor, "update_status", "sale", order.ID.String(),
		fmt.Sprintf("changed status from %s to %s", previous, status),
		map[string]interface{}{"status": previous}, map[string]interface{}{"status": status})
	s.broadcast(actor, "sale_status_updated", order, fmt.Sprintf("%s moved the sale of '%s' to %s", actor.Name, order.CustomerName, status))
	return order, nil
}

// apply validates req and copies it onto order, resolving the customer and
// the line items and recomputing the total.
func (s *saleService) apply(order *model.Order, req *SaleRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = model.OrderAwaitingPayment
	}
	if !status.Valid() {
		return invalid("unknown status %q", status)
	}

	clientID, name, _, err := resolveCustomer(s.clientRepo, req.ClientID, req.CustomerName)
	if err != nil {
		return err
	}
	items, err := resolveItems(s.productRepo, req.Items)
	if err != nil {
		return err
	}

	details := req.PaymentDetails
	if req.PaymentMethod != model.PaymentCreditCard || details.Installments < 1 {
		details.Installments = 1
	}

	order.ClientID = clientID
	order.CustomerName = name
	order.Items = items
	order.Status = status
	order.PaymentMethod = req.PaymentMethod
	order.PaymentDetails = datatypes.NewJSONType(details)
	order.Notes = req.Notes
	order.Recalculate()
	return nil
}

func (s *saleService) broadcast(actor Actor, action string, o *model.Order, message string) {
	publish(s.wsHub, ws.TopicSales, "sale_update", action, actor, map[string]interface{}{
		"sale": map[string]interface{}{
			"id":           o.ID,
			"customerName": o.CustomerName,
			"status":       o.Status,
			"totalValue":   o.TotalValue,
		},
	}, message)
}

// resolveCustomer returns the canonical client id, the customer name and
// email. A client id must name an existing client and wins over a typed name;
// without one the typed name is required and the client id is empty.
func resolveCustomer(clients repository.ClientRepository, clientID, typedName string) (string, string, string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		name := strings.TrimSpace(typedName)
		if name == "" {
			return "", "", "", invalid("customer name is required")
		}
		return "", name, "", nil
	}

	id, err := uuid.Parse(clientID)
	if err != nil {
		return "", "", "", ErrClientNotFound
	}
	client, err := clients.FindByID(id)
	if err != nil {
		return "", "", "", ErrClientNotFound
	}
	return client.ID.String(), client.Name, client.Email, nil
}

// resolveItems fills blank names and prices from the catalogue and clamps
// quantities to at least one.
func resolveItems(products repository.ProductRepository, items []model.LineItem) ([]model.LineItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		ids = append(ids, id)
	}

	found, err := products.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	catalogue := make(map[string]model.Product, len(found))
	for _, p := range found {
		catalogue[p.ID.String()] = p
	}

	out := make([]model.LineItem, len(items))
	for i, it := range items {
		p, ok := catalogue[strings.ToLower(it.ProductID)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if it.Name == "" {
			it.Name = p.Name
		}
		if it.SalePrice.IsZero() {
			it.SalePrice = p.SalePrice
		}
		if it.SalePrice.IsNegative() {
			return nil, invalid("item %s has a negative price", it.ProductID)
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		it.ProductID = p.ID.String()
		out[i] = it
	}
	return out, nil
}
