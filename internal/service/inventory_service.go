package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
	"estampa-fina/internal/storage"
	"estampa-fina/internal/ws"
	"estampa-fina/pkg/validator"
)

var (
	ErrSKUExists      = errors.New("SKU already exists")
	ErrCategoryExists = errors.New("category already exists")
)

type ProductService interface {
	GetAllProducts(search string) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	CreateProduct(actor Actor, req *model.Product) (*model.Product, error)
	UpdateProduct(actor Actor, id uuid.UUID, req *model.Product) (*model.Product, error)
	DeleteProduct(actor Actor, id uuid.UUID) error
	UploadImage(ctx context.Context, actor Actor, id uuid.UUID, file FileUpload) (*model.Product, error)
}

// FileUpload is a file received from a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type productService struct {
	productRepo repository.ProductRepository
	storage     storage.ObjectStorage
	activity    ActivityService
	wsHub       Publisher
}

func NewProductService(productRepo repository.ProductRepository, store storage.ObjectStorage, activity ActivityService, hub Publisher) ProductService {
	return &productService{
		productRepo: productRepo,
		storage:     store,
		activity:    activity,
		wsHub:       hub,
	}
}

func (s *productService) GetAllProducts(search string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return products, nil
	}
	filtered := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *productService) GetProduct(id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *productService) CreateProduct(actor Actor, req *model.Product) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return nil, ErrSKUExists
	}

	product := &model.Product{}
	copyProductFields(product, req)
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "create", "product", product.ID.String(), "created product "+product.Name, nil, product)
	s.broadcast(actor, "product_created", product, fmt.Sprintf("%s created product '%s'", actor.Name, product.Name))
	return product, nil
}

func (s *productService) UpdateProduct(actor Actor, id uuid.UUID, req *model.Product) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}

	if !strings.EqualFold(req.SKU, product.SKU) {
		existing, _ := s.productRepo.FindBySKU(req.SKU)
		if existing != nil && existing.ID != product.ID {
			return nil, ErrSKUExists
		}
	}

	before := *product
	copyProductFields(product, req)
	product.UpdatedBy = actor.ID

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	s.activity.Record(actor, "update", "product", product.ID.String(), "updated product "+product.Name, before, product)
	s.broadcast(actor, "product_updated", product, fmt.Sprintf("%s updated product '%s'", actor.Name, product.Name))
	return product, nil
}

func (s *productService) DeleteProduct(actor Actor, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return notFound(err)
	}
	if err := s.productRepo.Delete(id, actor.ID); err != nil {
		return notFound(err)
	}

	s.activity.Record(actor, "delete", "product", id.String(), "deleted product "+product.Name, product, nil)
	s.broadcast(actor, "product_deleted", product, fmt.Sprintf("%s deleted product '%s'", actor.Name, product.Name))
	return nil
}

// UploadImage stores the file under products/ and points the product's
// ImageURL at the durable URL.
func (s *productService) UploadImage(ctx context.Context, actor Actor, id uuid.UUID, file FileUpload) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}

	out, err := uploadFile(ctx, s.storage, "products", file)
	if err != nil {
		return nil, err
	}

	product.ImageURL = out.URL
	product.UpdatedBy = actor.ID
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	s.broadcast(actor, "product_image_updated", product, fmt.Sprintf("%s changed the image of '%s'", actor.Name, product.Name))
	return product, nil
}

func (s *productService) broadcast(actor Actor, action string, p *model.Product, message string) {
	publish(s.wsHub, ws.TopicInventory, "stock_update", action, actor, map[string]interface{}{
		"product": map[string]interface{}{
			"id":           p.ID,
			"sku":          p.SKU,
			"name":         p.Name,
			"currentStock": p.CurrentStock,
			"salePrice":    p.SalePrice,
		},
	}, message)
}

func copyProductFields(dst, src *model.Product) {
	dst.SKU = strings.TrimSpace(src.SKU)
	dst.Name = strings.TrimSpace(src.Name)
	dst.Description = src.Description
	dst.CurrentStock = src.CurrentStock
	dst.MinStock = src.MinStock
	dst.MaxStock = src.MaxStock
	dst.CostPrice = src.CostPrice
	dst.SalePrice = src.SalePrice
	dst.ExpiryDate = src.ExpiryDate
	dst.Category = src.Category
	dst.Supplier = src.Supplier
	dst.Location = src.Location
	if src.ImageURL != "" {
		dst.ImageURL = src.ImageURL
	}
}

// uploadFile stores file under folder and logs progress as it goes.
func uploadFile(ctx context.Context, store storage.ObjectStorage, folder string, file FileUpload) (*storage.UploadOutput, error) {
	if file.Size <= 0 {
		return nil, invalid("file is empty")
	}
	key := storage.ObjectKey(folder, file.Filename, time.Now())
	out, err := store.Upload(ctx, storage.UploadInput{
		Key:         key,
		Body:        file.Body,
		ContentType: file.ContentType,
		Size:        file.Size,
		Progress: func(fraction float64) {
			log.Printf("upload %s: %.0f%%", key, fraction*100)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", file.Filename, err)
	}
	return out, nil
}

type CategoryService interface {
	GetAllCategories() ([]model.Category, error)
	CreateCategory(actor Actor, req *model.Category) (*model.Category, error)
	UpdateCategory(actor Actor, id uuid.UUID, req *model.Category) (*model.Category, error)
	DeleteCategory(actor Actor, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	activity     ActivityService
}

func NewCategoryService(categoryRepo repository.CategoryRepository, activity ActivityService) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, activity: activity}
}

func (s *categoryService) GetAllCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) CreateCategory(actor Actor, req *model.Category) (*model.Category, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if existing, _ := s.categoryRepo.FindByName(name); existing != nil {
		return nil, ErrCategoryExists
	}

	category := &model.Category{Name: name, Description: req.Description}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	s.activity.Record(actor, "create", "category", category.ID.String(), "created category "+category.Name, nil, category)
	return category, nil
}

func (s *categoryService) UpdateCategory(actor Actor, id uuid.UUID, req *model.Category) (*model.Category, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, category.Name) {
		if existing, _ := s.categoryRepo.FindByName(name); existing != nil {
			return nil, ErrCategoryExists
		}
	}

	before := *category
	category.Name = name
	category.Description = req.Description
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.activity.Record(actor, "update", "category", category.ID.String(), "updated category "+category.Name, before, category)
	return category, nil
}

// DeleteCategory removes the category only; products keep the name as text.
func (s *categoryService) DeleteCategory(actor Actor, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return notFound(err)
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		return notFound(err)
	}
	s.activity.Record(actor, "delete", "category", id.String(), "deleted category "+category.Name, category, nil)
	return nil
}
