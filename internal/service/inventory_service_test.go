package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estampa-fina/internal/model"
	"estampa-fina/internal/permission"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/storage"
	"estampa-fina/internal/ws"
	"estampa-fina/mocks"
)

func TestProductService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "admin", permission.Administrator))
	pub := newPublisher()
	svc := NewProductService(repository.NewProductRepo(db), nil, NewActivityService(repository.NewActivityLogRepo(db)), pub)

	created, err := svc.CreateProduct(actor, &model.Product{
		SKU: " CAM-01 ", Name: "Camiseta Preta", SalePrice: decimal.NewFromInt(60), CurrentStock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "CAM-01", created.SKU)

	_, err = svc.CreateProduct(actor, &model.Product{SKU: "CAM-01", Name: "Outra"})
	assert.ErrorIs(t, err, ErrSKUExists)

	_, err = svc.CreateProduct(actor, &model.Product{SKU: "NEG-01", Name: "Negativa", CurrentStock: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(actor, &model.Product{SKU: "NEG-02", Name: "Negativa", SalePrice: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrValidation)

	other, err := svc.CreateProduct(actor, &model.Product{SKU: "CAN-01", Name: "Caneca"})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(actor, other.ID, &model.Product{SKU: "CAM-01", Name: "Caneca"})
	assert.ErrorIs(t, err, ErrSKUExists)

	updated, err := svc.UpdateProduct(actor, created.ID, &model.Product{SKU: "CAM-01", Name: "Camiseta Preta G", SalePrice: decimal.NewFromInt(65)})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta Preta G", updated.Name)

	found, err := svc.GetAllProducts("cam")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, svc.DeleteProduct(actor, other.ID))
	assert.ErrorIs(t, svc.DeleteProduct(actor, other.ID), ErrNotFound)
	_, err = svc.GetProduct(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	for _, topic := range pub.Topics() {
		assert.Equal(t, ws.TopicInventory, topic)
	}
	assert.Len(t, pub.Topics(), 4)
}

func TestProductService_UploadImage(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "admin", permission.Administrator))
	product := seedProduct(t, db, "CAM-01", "Camiseta", "50", 1, 0)

	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in storage.UploadInput) bool {
		return strings.HasPrefix(in.Key, "products/") && strings.HasSuffix(in.Key, "_foto.png") && in.Size == 4 && in.Progress != nil
	})).Return(&storage.UploadOutput{Key: "products/1_foto.png", URL: "https://cdn.example.com/products/1_foto.png"}, nil)

	svc := NewProductService(repository.NewProductRepo(db), store, NewActivityService(repository.NewActivityLogRepo(db)), nil)

	updated, err := svc.UploadImage(context.Background(), actor, product.ID, FileUpload{
		Filename: "foto.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/1_foto.png", updated.ImageURL)

	_, err = svc.UploadImage(context.Background(), actor, product.ID, FileUpload{Filename: "vazio.png"})
	assert.ErrorIs(t, err, ErrValidation)

	store.AssertNumberOfCalls(t, "Upload", 1)
}

func TestProductService_UploadFailureKeepsImage(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "admin", permission.Administrator))
	product := seedProduct(t, db, "CAM-01", "Camiseta", "50", 1, 0)

	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket unavailable"))
	svc := NewProductService(repository.NewProductRepo(db), store, NewActivityService(repository.NewActivityLogRepo(db)), nil)

	_, err := svc.UploadImage(context.Background(), actor, product.ID, FileUpload{Filename: "a.png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "bucket unavailable")

	stored, err := repository.NewProductRepo(db).FindByID(product.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ImageURL)
}

func TestCategoryService(t *testing.T) {
	db := setupTestDB(t)
	actor := ActorFromUser(seedUser(t, db, "admin", permission.Administrator))
	svc := NewCategoryService(repository.NewCategoryRepo(db), NewActivityService(repository.NewActivityLogRepo(db)))

	shirts, err := svc.CreateCategory(actor, &model.Category{Name: " Camisetas "})
	require.NoError(t, err)
	assert.Equal(t, "Camisetas", shirts.Name)

	_, err = svc.CreateCategory(actor, &model.Category{Name: "Camisetas"})
	assert.ErrorIs(t, err, ErrCategoryExists)
	_, err = svc.CreateCategory(actor, &model.Category{})
	assert.ErrorIs(t, err, ErrValidation)

	mugs, err := svc.CreateCategory(actor, &model.Category{Name: "Canecas"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(actor, mugs.ID, &model.Category{Name: "Camisetas"})
	assert.ErrorIs(t, err, ErrCategoryExists)

	require.NoError(t, svc.DeleteCategory(actor, mugs.ID))
	all, err := svc.GetAllCategories()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
