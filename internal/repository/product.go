package repository

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// ProductRepository defines data access for catalog products.
type ProductRepository interface {
	// Create inserts a new product row and returns the stored record.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// FindByID returns a product by its ID.
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// List returns a paginated list of products and the total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Product], error)

	// ListByIDs returns the products whose IDs are in the given set.
	// Missing IDs are simply absent from the result, not an error.
	ListByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Update overwrites the editable fields of an existing row.
	Update(ctx context.Context, p *model.Product) error

	// UpdateImageKey stores the object-storage key of the product image.
	UpdateImageKey(ctx context.Context, id, key string) error

	// Delete removes a product by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
