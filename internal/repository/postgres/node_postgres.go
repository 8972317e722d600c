package postgres

import (
	"context"
	"database/sql"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// NodePostgres is a PostgreSQL implementation of repository.NodeRepository.
// Folder deletion cascades to descendant rows through the parent_id
// foreign key; this layer never walks the tree itself.
type NodePostgres struct {
	db *sql.DB
}

// NewNodePostgres creates a new NodePostgres repository.
func NewNodePostgres(db *sql.DB) *NodePostgres {
	return &NodePostgres{db: db}
}

var _ repository.NodeRepository = (*NodePostgres)(nil)

// Create inserts a new node row and returns the stored record.
func (r *NodePostgres) Create(ctx context.Context, n *model.Node) (*model.Node, error) {
	const q = `
		INSERT INTO nodes (id, title, is_folder, parent_id, file_url, file_type, file_size, product_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, title, is_folder, parent_id, file_url, file_type, file_size, product_id, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.Title,
		n.IsFolder,
		n.ParentID,
		n.FileURL,
		n.FileType,
		n.FileSize,
		n.ProductID,
		n.CreatedAt,
	)
	var out model.Node
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.IsFolder,
		&out.ParentID,
		&out.FileURL,
		&out.FileType,
		&out.FileSize,
		&out.ProductID,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single node by its ID, with its product title when an
// association exists.
func (r *NodePostgres) FindByID(ctx context.Context, id string) (*model.Node, error) {
	const q = `
		SELECT n.id, n.title, n.is_folder, n.parent_id, n.file_url, n.file_type, n.file_size,
		       n.product_id, COALESCE(p.title, ''), n.created_at
		FROM nodes n
		LEFT JOIN products p ON p.id = n.product_id
		WHERE n.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var n model.Node
	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.IsFolder,
		&n.ParentID,
		&n.FileURL,
		&n.FileType,
		&n.FileSize,
		&n.ProductID,
		&n.ProductTitle,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListChildren returns the direct children of parentID, folders first, then
// alphabetically. A nil parentID selects root-level nodes.
func (r *NodePostgres) ListChildren(ctx context.Context, parentID *string) ([]model.Node, error) {
	const qRoot = `
		SELECT n.id, n.title, n.is_folder, n.parent_id, n.file_url, n.file_type, n.file_size,
		       n.product_id, COALESCE(p.title, ''), n.created_at
		FROM nodes n
		LEFT JOIN products p ON p.id = n.product_id
		WHERE n.parent_id IS NULL
		ORDER BY n.is_folder DESC, n.title ASC
	`
	const qChild = `
		SELECT n.id, n.title, n.is_folder, n.parent_id, n.file_url, n.file_type, n.file_size,
		       n.product_id, COALESCE(p.title, ''), n.created_at
		FROM nodes n
		LEFT JOIN products p ON p.id = n.product_id
		WHERE n.parent_id = $1
		ORDER BY n.is_folder DESC, n.title ASC
	`

	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = r.db.QueryContext(ctx, qRoot)
	} else {
		rows, err = r.db.QueryContext(ctx, qChild, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Node, 0)
	for rows.Next() {
		var n model.Node
		if err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.IsFolder,
			&n.ParentID,
			&n.FileURL,
			&n.FileType,
			&n.FileSize,
			&n.ProductID,
			&n.ProductTitle,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateTitle renames a node.
func (r *NodePostgres) UpdateTitle(ctx context.Context, id, title string) error {
	const q = `UPDATE nodes SET title = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, title)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateParent reparents a node. A nil parentID moves it to root level.
func (r *NodePostgres) UpdateParent(ctx context.Context, id string, parentID *string) error {
	const q = `UPDATE nodes SET parent_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, parentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a node by ID. It does not return an error if the row does not exist.
func (r *NodePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM nodes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
