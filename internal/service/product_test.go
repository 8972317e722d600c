package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository/mocks"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/storage"
	storagemocks "github.com/PlayFutnaTela/gerezim-sub000/internal/storage/mocks"
)

func newTestProductService() (ProductService, *mocks.MockProductRepository, *storagemocks.MockStorage) {
	repo := new(mocks.MockProductRepository)
	store := new(storagemocks.MockStorage)
	return NewProductService(repo, store, zap.NewNop()), repo, store
}

func TestProductService_Create(t *testing.T) {
	tests := []struct {
		name       string
		input      ProductInput
		setupMocks func(repo *mocks.MockProductRepository)
		wantErr    error
	}{
		{
			name:  "creates with the default status",
			input: ProductInput{Title: "Fiat Argo 1.3", Category: "carro", Price: 72000},
			setupMocks: func(repo *mocks.MockProductRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
					return p.Title == "Fiat Argo 1.3" && p.Status == "available"
				})).Return(&model.Product{ID: "p-1", Title: "Fiat Argo 1.3", Status: "available"}, nil)
			},
		},
		{
			name:       "title is required",
			input:      ProductInput{Price: 100},
			setupMocks: func(repo *mocks.MockProductRepository) {},
			wantErr:    domain.ErrValidation,
		},
		{
			name:       "negative price is rejected",
			input:      ProductInput{Title: "Fiat Argo", Price: -1},
			setupMocks: func(repo *mocks.MockProductRepository) {},
			wantErr:    domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestProductService()
			tt.setupMocks(repo)

			p, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "p-1", p.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_Get_ResolvesImageURL(t *testing.T) {
	svc, repo, store := newTestProductService()

	repo.On("FindByID", mock.Anything, "p-1").
		Return(&model.Product{ID: "p-1", Title: "Fiat Argo", ImageKey: "products/argo.jpg"}, nil)
	store.On("PresignGet", mock.Anything, "products/argo.jpg", imageURLExpiry).
		Return("https://storage.local/products/argo.jpg?sig=x", nil)

	p, err := svc.Get(context.Background(), "p-1")

	assert.NoError(t, err)
	assert.Equal(t, "https://storage.local/products/argo.jpg?sig=x", p.ImageURL)
	store.AssertExpectations(t)
}

func TestProductService_Get_PresignFailureDegrades(t *testing.T) {
	svc, repo, store := newTestProductService()

	repo.On("FindByID", mock.Anything, "p-1").
		Return(&model.Product{ID: "p-1", Title: "Fiat Argo", ImageKey: "products/argo.jpg"}, nil)
	store.On("PresignGet", mock.Anything, "products/argo.jpg", imageURLExpiry).
		Return("", errors.New("storage down"))

	p, err := svc.Get(context.Background(), "p-1")

	assert.NoError(t, err, "a presign failure must not fail the read")
	assert.Empty(t, p.ImageURL)
}

func TestProductService_List(t *testing.T) {
	svc, repo, _ := newTestProductService()

	repo.On("List", mock.Anything, repository.PageQuery{Limit: 20, Offset: 40}).
		Return(&repository.PageResult[model.Product]{
			Items: []model.Product{{ID: "p-1", Title: "Fiat Argo"}},
			Total: 41,
		}, nil)

	res, err := svc.List(context.Background(), 20, 40)

	assert.NoError(t, err)
	assert.Equal(t, 41, res.Total)
	repo.AssertExpectations(t)
}

func TestProductService_UploadImage(t *testing.T) {
	svc, repo, store := newTestProductService()

	repo.On("FindByID", mock.Anything, "p-1").
		Return(&model.Product{ID: "p-1", Title: "Fiat Argo"}, nil)
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "products/abc.jpg", Size: 512}, nil)
	repo.On("UpdateImageKey", mock.Anything, "p-1", "products/abc.jpg").Return(nil)
	store.On("PresignGet", mock.Anything, "products/abc.jpg", imageURLExpiry).
		Return("https://storage.local/products/abc.jpg?sig=x", nil)

	p, err := svc.UploadImage(context.Background(), "p-1", strings.NewReader("jpegdata"), "argo.jpg", "image/jpeg", 512)

	assert.NoError(t, err)
	assert.Equal(t, "products/abc.jpg", p.ImageKey)
	assert.Equal(t, "https://storage.local/products/abc.jpg?sig=x", p.ImageURL)
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

// When the key cannot be saved the uploaded object is rolled back, unlike
// repository file uploads which leave orphans behind.
func TestProductService_UploadImage_RollsBackObjectOnDBFailure(t *testing.T) {
	svc, repo, store := newTestProductService()

	repo.On("FindByID", mock.Anything, "p-1").
		Return(&model.Product{ID: "p-1", Title: "Fiat Argo"}, nil)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "products/abc.jpg"}, nil)
	repo.On("UpdateImageKey", mock.Anything, "p-1", "products/abc.jpg").
		Return(errors.New("db down"))
	store.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "products/")
	})).Return(nil)

	_, err := svc.UploadImage(context.Background(), "p-1", strings.NewReader("jpegdata"), "argo.jpg", "image/jpeg", 512)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	store.AssertExpectations(t)
}

func TestProductService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *mocks.MockProductRepository, store *storagemocks.MockStorage)
		wantErr    error
	}{
		{
			name: "removes the image object before the row",
			setupMocks: func(repo *mocks.MockProductRepository, store *storagemocks.MockStorage) {
				repo.On("FindByID", mock.Anything, "p-1").
					Return(&model.Product{ID: "p-1", ImageKey: "products/abc.jpg"}, nil)
				store.On("Delete", mock.Anything, "products/abc.jpg").Return(nil)
				repo.On("Delete", mock.Anything, "p-1").Return(nil)
			},
		},
		{
			name: "a product without an image skips storage",
			setupMocks: func(repo *mocks.MockProductRepository, store *storagemocks.MockStorage) {
				repo.On("FindByID", mock.Anything, "p-1").
					Return(&model.Product{ID: "p-1"}, nil)
				repo.On("Delete", mock.Anything, "p-1").Return(nil)
			},
		},
		{
			name: "missing product",
			setupMocks: func(repo *mocks.MockProductRepository, store *storagemocks.MockStorage) {
				repo.On("FindByID", mock.Anything, "p-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestProductService()
			tt.setupMocks(repo, store)

			err := svc.Delete(context.Background(), "p-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}
