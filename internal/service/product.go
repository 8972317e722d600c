package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/storage"
)

// imageURLExpiry bounds the lifetime of presigned product image URLs.
const imageURLExpiry = 24 * time.Hour

// ProductListResult is the service-level DTO for paginated products.
type ProductListResult struct {
	Items []model.Product `json:"data"`
	Total int             `json:"total"`
}

// ProductInput carries the user-editable fields of a catalog product.
type ProductInput struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// Validate checks the input against the catalog rules.
func (in ProductInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Price, validation.Min(0.0)),
	)
}

// ProductService defines the catalog use cases, including image upload to
// object storage.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, limit, offset int) (*ProductListResult, error)
	Update(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id string) error

	// UploadImage streams the image to object storage, then records the
	// resulting key on the product row. The stored object is rolled back if
	// the DB update fails.
	UploadImage(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64) (*model.Product, error)
}

type productService struct {
	repo   repository.ProductRepository
	store  storage.Storage
	logger *zap.Logger
}

// NewProductService constructs a new ProductService.
func NewProductService(repo repository.ProductRepository, store storage.Storage, logger *zap.Logger) ProductService {
	return &productService{repo: repo, store: store, logger: logger}
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	status := in.Status
	if status == "" {
		status = "available"
	}
	p := &model.Product{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create product", Err: err}
	}

	s.logger.Info("product created", zap.String("id", stored.ID), zap.String("title", stored.Title))
	return stored, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get product", Err: err}
	}
	s.resolveImageURL(ctx, p)
	return p, nil
}

func (s *productService) List(ctx context.Context, limit, offset int) (*ProductListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list products", Err: err}
	}
	for i := range res.Items {
		s.resolveImageURL(ctx, &res.Items[i])
	}
	return &ProductListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Category = in.Category
	p.Price = in.Price
	p.Description = in.Description
	if in.Status != "" {
		p.Status = in.Status
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update product", Err: err}
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "delete product", Err: err}
	}

	// Remove the image object first so no row ever points at a missing key.
	if p.ImageKey != "" {
		if err := s.store.Delete(ctx, p.ImageKey); err != nil {
			return fmt.Errorf("delete product image: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return &domain.PersistenceError{Op: "delete product", Err: err}
	}
	s.logger.Info("product deleted", zap.String("id", id))
	return nil
}

func (s *productService) UploadImage(ctx context.Context, id string, r io.Reader, originalFilename, contentType string, size int64) (*model.Product, error) {
	if r == nil {
		return nil, &domain.ValidationError{Field: "file", Message: "file is required"}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get product", Err: err}
	}

	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("products", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if err := s.repo.UpdateImageKey(ctx, id, objInfo.Key); err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, &domain.PersistenceError{Op: "save product image", Err: err}
	}

	p.ImageKey = objInfo.Key
	s.resolveImageURL(ctx, p)
	s.logger.Info("product image uploaded", zap.String("id", id), zap.String("key", objInfo.Key))
	return p, nil
}

// resolveImageURL converts the stored object key into a presigned public
// URL. A presign failure degrades the product (no image URL) instead of
// failing the read.
func (s *productService) resolveImageURL(ctx context.Context, p *model.Product) {
	if p.ImageKey == "" {
		return
	}
	url, err := s.store.PresignGet(ctx, p.ImageKey, imageURLExpiry)
	if err != nil {
		s.logger.Warn("presign product image failed", zap.String("id", p.ID), zap.Error(err))
		return
	}
	p.ImageURL = url
}
