package repository

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// OpportunityRepository defines data access for pipeline cards.
type OpportunityRepository interface {
	// Create inserts a new opportunity row and returns the stored record.
	Create(ctx context.Context, o *model.Opportunity) (*model.Opportunity, error)

	// FindByID returns an opportunity by its ID.
	FindByID(ctx context.Context, id string) (*model.Opportunity, error)

	// ListAll returns every opportunity, oldest first.
	ListAll(ctx context.Context) ([]model.Opportunity, error)

	// Update overwrites the editable fields (title, category, value, notes,
	// status, associations) of an existing row.
	Update(ctx context.Context, o *model.Opportunity) error

	// UpdateStage moves an opportunity to the given pipeline stage.
	UpdateStage(ctx context.Context, id string, stage model.PipelineStage) error

	// Delete removes an opportunity by ID.
	Delete(ctx context.Context, id string) error
}
