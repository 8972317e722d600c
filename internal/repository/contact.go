package repository

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// ContactRepository defines data access for CRM contacts.
type ContactRepository interface {
	// Create inserts a new contact row and returns the stored record.
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)

	// FindByID returns a contact by its ID.
	FindByID(ctx context.Context, id string) (*model.Contact, error)

	// List returns a paginated list of contacts and the total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Contact], error)

	// ListByIDs returns the contacts whose IDs are in the given set.
	// Missing IDs are simply absent from the result, not an error.
	ListByIDs(ctx context.Context, ids []string) ([]model.Contact, error)

	// Update overwrites the editable fields of an existing row.
	Update(ctx context.Context, c *model.Contact) error

	// Delete removes a contact by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
