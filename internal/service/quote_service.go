package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"estampa-fina/internal/export"
	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/pkg/validator"
)

type QuoteService interface {
	GetAllQuotes() ([]model.Quote, error)
	GetQuote(id uuid.UUID) (*model.Quote, error)
	CreateQuote(actor Actor, req *QuoteRequest) (*model.Quote, error)
	UpdateQuote(actor Actor, id uuid.UUID, req *QuoteRequest) (*model.Quote, error)
	DeleteQuote(actor Actor, id uuid.UUID) error
	RenderPDF(id uuid.UUID) ([]byte, string, error)
}

// QuoteRequest names either an existing client or a free-typed customer.
type QuoteRequest struct {
	ClientID      string            `json:"clientId"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail" validate:"omitempty,email"`
	Items         []model.LineItem  `json:"items" validate:"required,min=1,dive"`
	Status        model.QuoteStatus `json:"status"`
	Notes         string            `json:"notes"`
}

type quoteService struct {
	quoteRepo   repository.QuoteRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	settings    SettingsService
	activity    ActivityService
	now         func() time.Time
}

func NewQuoteService(quoteRepo repository.QuoteRepository, clientRepo repository.ClientRepository, productRepo repository.ProductRepository, settings SettingsService, activity ActivityService) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		settings:    settings,
		activity:    activity,
		now:         time.Now,
	}
}

func (s *quoteService) GetAllQuotes() ([]model.Quote, error) {
	return s.quoteRepo.FindAll()
}

func (s *quoteService) GetQuote(id uuid.UUID) (*model.Quote, error) {
	q, err := s.quoteRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return q, nil
}

func (s *quoteService) CreateQuote(actor Actor, req *QuoteRequest) (*model.Quote, error) {
	quote := &model.Quote{Date: s.now()}
	if err := s.apply(quote, req); err != nil {
		return nil, err
	}
	quote.CreatedBy = actor.ID
	quote.UpdatedBy = actor.ID

	if err := s.quoteRepo.Create(quote); err != nil {
		return nil, err
	}
	s.activity.Record(actor, "create", "quote", quote.ID.String(), "created quote for "+quote.CustomerName, nil, quote)
	return quote, nil
}

func (s *quoteService) UpdateQuote(actor Actor, id uuid.UUID, req *QuoteRequest) (*model.Quote, error) {
	quote, err := s.quoteRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	before := *quote

	if req.Status == "" {
		req.Status = quote.Status
	}
	if err := s.apply(quote, req); err != nil {
		return nil, err
	}
	quote.UpdatedBy = actor.ID

	if err := s.quoteRepo.Update(quote); err != nil {
		return nil, err
	}
	s.activity.Record(actor, "update", "quote", quote.ID.String(), "updated quote for "+quote.CustomerName, before, quote)
	return quote, nil
}

func (s *quoteService) DeleteQuote(actor Actor, id uuid.UUID) error {
	quote, err := s.quoteRepo.FindByID(id)
	if err != nil {
		return notFound(err)
	}
	if err := s.quoteRepo.Delete(id); err != nil {
		return notFound(err)
	}
	s.activity.Record(actor, "delete", "quote", id.String(), "deleted quote for "+quote.CustomerName, quote, nil)
	return nil
}

// RenderPDF returns the quote as a PDF and a download filename.
func (s *quoteService) RenderPDF(id uuid.UUID) ([]byte, string, error) {
	quote, err := s.quoteRepo.FindByID(id)
	if err != nil {
		return nil, "", notFound(err)
	}
	settings, err := s.settings.Get()
	if err != nil {
		return nil, "", err
	}

	pdf, err := export.QuotePDF(quote, settings)
	if err != nil {
		return nil, "", err
	}
	name := export.BuildFilename(fmt.Sprintf("quote_%s", quote.CustomerName), "pdf", quote.Date)
	return pdf, name, nil
}

func (s *quoteService) apply(quote *model.Quote, req *QuoteRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = model.QuotePending
	}
	if !status.Valid() {
		return invalid("unknown status %q", status)
	}

	clientID, name, email, err := resolveCustomer(s.clientRepo, req.ClientID, req.CustomerName)
	if err != nil {
		return err
	}
	if req.CustomerEmail != "" {
		email = req.CustomerEmail
	}
	items, err := resolveItems(s.productRepo, req.Items)
	if err != nil {
		return err
	}

	quote.ClientID = clientID
	quote.CustomerName = name
	quote.CustomerEmail = email
	quote.Items = items
	quote.Status = status
	quote.Notes = req.Notes
	quote.Recalculate()
	return nil
}
