package repository

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// NodeRepository defines data access for file-repository nodes using SQL
// queries only. No business logic here, strictly persistence operations.
// Descendant rows of a deleted folder are removed by the database's
// ON DELETE CASCADE, not by this layer.
type NodeRepository interface {
	// Create inserts a new node row and returns the stored record.
	Create(ctx context.Context, n *model.Node) (*model.Node, error)

	// FindByID returns a node by its ID.
	FindByID(ctx context.Context, id string) (*model.Node, error)

	// ListChildren returns the direct children of parentID, alphabetically,
	// folders first. A nil parentID selects root-level nodes. An empty
	// folder yields an empty slice, not an error.
	ListChildren(ctx context.Context, parentID *string) ([]model.Node, error)

	// UpdateTitle renames a node.
	UpdateTitle(ctx context.Context, id, title string) error

	// UpdateParent reparents a node. A nil parentID moves it to root level.
	UpdateParent(ctx context.Context, id string, parentID *string) error

	// Delete removes a node by ID. Folder descendants go with it via the
	// cascade constraint.
	Delete(ctx context.Context, id string) error
}
