package service

import (
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
	"estampa-fina/internal/ws"
	"estampa-fina/mocks"
)

type saleFixture struct {
	db      *gorm.DB
	svc     *saleService
	pub     *mocks.MockPublisher
	actor   Actor
	product *model.Product
	client  *model.Client
}

func newSaleFixture(t *testing.T) *saleFixture {
	db := setupTestDB(t)
	pub := newPublisher()
	svc := NewSaleService(
		repository.NewOrderRepo(db),
		repository.NewClientRepo(db),
		repository.NewProductRepo(db),
		NewActivityService(repository.NewActivityLogRepo(db)),
		pub,
	).(*saleService)
	svc.now = fixedClock(time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC))

	client := &model.Client{Name: "Joana Lima", Email: "joana@example.com"}
	require.NoError(t, repository.NewClientRepo(db).Create(client))

	return &saleFixture{
		db:      db,
		svc:     svc,
		pub:     pub,
		actor:   ActorFromUser(seedUser(t, db, "caixa", permission.Operator)),
		product: seedProduct(t, db, "CAM-01", "Camiseta Preta", "59.90", 10, 2),
		client:  client,
	}
}

func TestSaleService_CreateSaleResolvesClientAndItems(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateSale(f.actor, &SaleRequest{
		ClientID:      f.client.ID.String(),
		CustomerName:  "ignored",
		Items:         []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 0}},
		PaymentMethod: "Pix",
		PaymentDetails: model.PaymentDetails{
			Installments: 6,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Joana Lima", order.CustomerName)
	assert.Equal(t, model.OrderAwaitingPayment, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, "Camiseta Preta", order.Items[0].Name)
	assert.True(t, decimal.RequireFromString("59.90").Equal(order.TotalValue))
	assert.Equal(t, 1, order.PaymentDetails.Data().Installments)
	assert.Equal(t, time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC), order.Date)
	assert.Equal(t, []string{ws.TopicSales}, f.pub.Topics())

	stored, err := f.svc.GetSale(order.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalValue.Equal(stored.TotalValue))
}

func TestSaleService_CreditCardKeepsInstallments(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateSale(f.actor, &SaleRequest{
		CustomerName:   "Balcão",
		Items:          []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 3, SalePrice: decimal.NewFromInt(50)}},
		PaymentMethod:  model.PaymentCreditCard,
		PaymentDetails: model.PaymentDetails{Installments: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, order.PaymentDetails.Data().Installments)
	assert.True(t, decimal.NewFromInt(150).Equal(order.TotalValue))
	assert.Empty(t, order.ClientID)
}

func TestSaleService_CreateSaleRejections(t *testing.T) {
	f := newSaleFixture(t)
	item := []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 1}}

	_, err := f.svc.CreateSale(f.actor, &SaleRequest{CustomerName: "Ana"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateSale(f.actor, &SaleRequest{Items: item})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateSale(f.actor, &SaleRequest{ClientID: uuid.NewString(), Items: item})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = f.svc.CreateSale(f.actor, &SaleRequest{CustomerName: "Ana", Items: []model.LineItem{{ProductID: uuid.NewString()}}})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.svc.CreateSale(f.actor, &SaleRequest{CustomerName: "Ana", Items: item, Status: "Lost"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, f.pub.Topics())
}

func TestSaleService_WalkInIsCompleted(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateWalkInSale(f.actor, &SaleRequest{
		CustomerName: "Cliente de balcão",
		Items:        []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 2}},
		Status:       model.OrderRequested,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, order.Status)

	// Sales never touch stock.
	p, err := repository.NewProductRepo(f.db).FindByID(f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.CurrentStock)
}

func TestSaleService_UpdateStatusAndFilters(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateSale(f.actor, &SaleRequest{
		ClientID: f.client.ID.String(),
		Items:    []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateSale(f.actor, &SaleRequest{
		CustomerName: "Pedro",
		Items:        []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.actor, order.ID, "Lost")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateStatus(f.actor, uuid.New(), model.OrderShipped)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.svc.UpdateStatus(f.actor, order.ID, model.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, updated.Status)

	shipped, err := f.svc.GetAllSales(SaleFilter{Status: model.OrderShipped})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, order.ID, shipped[0].ID)

	byName, err := f.svc.GetAllSales(SaleFilter{Search: "pedr"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Pedro", byName[0].CustomerName)

	mine, err := f.svc.GetSalesForClient(f.client.ID.String())
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestSaleService_UpdateSaleRecalculates(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateSale(f.actor, &SaleRequest{
		CustomerName: "Pedro",
		Status:       model.OrderRequested,
		Items:        []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateSale(f.actor, order.ID, &SaleRequest{
		CustomerName: "Pedro Alves",
		Items:        []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 2, SalePrice: decimal.NewFromInt(40)}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderRequested, updated.Status)
	assert.Equal(t, "Pedro Alves", updated.CustomerName)
	assert.True(t, decimal.NewFromInt(80).Equal(updated.TotalValue))
}

func TestSaleService_UppercaseClientIDIsStoredCanonical(t *testing.T) {
	f := newSaleFixture(t)

	order, err := f.svc.CreateWalkInSale(f.actor, &SaleRequest{
		ClientID: strings.ToUpper(f.client.ID.String()),
		Items:    []model.LineItem{{ProductID: f.product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, f.client.ID.String(), order.ClientID)

	orders := repository.NewOrderRepo(f.db)
	counts, err := orders.CountCompletedByClient()
	require.NoError(t, err)
	assert.Equal(t, 1, counts[f.client.ID.String()])

	clients := NewClientService(repository.NewClientRepo(f.db), orders, nil, NewActivityService(repository.NewActivityLogRepo(f.db)))
	history, err := clients.History(f.client.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
