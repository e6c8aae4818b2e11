package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
)

func newQuoteServiceForTest(db *gorm.DB, now time.Time) QuoteService {
	activity := NewActivityService(repository.NewActivityLogRepo(db))
	settings := NewSettingsService(repository.NewSettingsRepo(db), nil, activity, nil)
	svc := NewQuoteService(repository.NewQuoteRepo(db), repository.NewClientRepo(db), repository.NewProductRepo(db), settings, activity)
	svc.(*quoteService).now = fixedClock(now)
	return svc
}

func TestQuoteService_CreateWithTypedCustomer(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "manager", permission.Manager))
	shirt := seedProduct(t, db, "CAM-01", "Camiseta", "59.90", 10, 2)
	svc := newQuoteServiceForTest(db, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC))

	quote, err := svc.CreateQuote(actor, &QuoteRequest{
		CustomerName: "  Maria Souza ",
		Items: []model.LineItem{
			{ProductID: shirt.ID.String(), Quantity: 3},
			{ProductID: shirt.ID.String(), Quantity: 0, SalePrice: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Souza", quote.CustomerName)
	assert.Equal(t, model.QuotePending, quote.Status)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "Camiseta", quote.Items[0].Name)
	assert.Equal(t, 1, quote.Items[1].Quantity)
	assert.True(t, decimal.RequireFromString("229.70").Equal(quote.TotalValue), quote.TotalValue.String())

	stored, err := repository.NewProductRepo(db).FindByID(shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.CurrentStock)
}

func TestQuoteService_ClientAndRejections(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "manager", permission.Manager))
	shirt := seedProduct(t, db, "CAM-01", "Camiseta", "59.90", 10, 2)
	client := &model.Client{Name: "Joana Lima", Email: "joana@example.com"}
	require.NoError(t, repository.NewClientRepo(db).Create(client))
	svc := newQuoteServiceForTest(db, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC))
	items := []model.LineItem{{ProductID: shirt.ID.String(), Quantity: 1}}

	quote, err := svc.CreateQuote(actor, &QuoteRequest{ClientID: strings.ToUpper(client.ID.String()), CustomerName: "ignored", Items: items})
	require.NoError(t, err)
	assert.Equal(t, "Joana Lima", quote.CustomerName)
	assert.Equal(t, client.ID.String(), quote.ClientID)
	assert.Equal(t, "joana@example.com", quote.CustomerEmail)

	quote, err = svc.UpdateQuote(actor, quote.ID, &QuoteRequest{
		ClientID: client.ID.String(), CustomerEmail: "compras@example.com", Items: items, Status: model.QuoteApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, "compras@example.com", quote.CustomerEmail)
	assert.Equal(t, model.QuoteApproved, quote.Status)

	_, err = svc.CreateQuote(actor, &QuoteRequest{CustomerName: "X", Items: items, Status: "Sent"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateQuote(actor, &QuoteRequest{CustomerName: "X"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateQuote(actor, &QuoteRequest{Items: items})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateQuote(actor, &QuoteRequest{ClientID: uuid.NewString(), Items: items})
	assert.ErrorIs(t, err, ErrClientNotFound)
	_, err = svc.CreateQuote(actor, &QuoteRequest{CustomerName: "X", Items: []model.LineItem{{ProductID: uuid.NewString()}}})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.DeleteQuote(actor, quote.ID))
	_, err = svc.GetQuote(quote.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteService_RenderPDF(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "manager", permission.Manager))
	shirt := seedProduct(t, db, "CAM-01", "Camiseta", "59.90", 10, 2)
	svc := newQuoteServiceForTest(db, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC))

	quote, err := svc.CreateQuote(actor, &QuoteRequest{
		CustomerName: "Maria Souza",
		Items:        []model.LineItem{{ProductID: shirt.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)

	pdf, filename, err := svc.RenderPDF(quote.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "quote_Maria_Souza_2025-05-10.pdf", filename)

	_, _, err = svc.RenderPDF(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
