package postgres

import (
	"context"
	"database/sql"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// OpportunityPostgres is a PostgreSQL implementation of repository.OpportunityRepository.
type OpportunityPostgres struct {
	db *sql.DB
}

// NewOpportunityPostgres creates a new OpportunityPostgres repository.
func NewOpportunityPostgres(db *sql.DB) *OpportunityPostgres {
	return &OpportunityPostgres{db: db}
}

var _ repository.OpportunityRepository = (*OpportunityPostgres)(nil)

// Create inserts a new opportunity row and returns the stored record.
func (r *OpportunityPostgres) Create(ctx context.Context, o *model.Opportunity) (*model.Opportunity, error) {
	const q = `
		INSERT INTO opportunities (id, title, category, value, notes, pipeline_stage, status, contact_id, product_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, title, category, value, notes, pipeline_stage, status, contact_id, product_id, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		o.ID,
		o.Title,
		o.Category,
		o.Value,
		o.Notes,
		string(o.Stage),
		o.Status,
		o.ContactID,
		o.ProductID,
		o.CreatedAt,
	)
	var out model.Opportunity
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Category,
		&out.Value,
		&out.Notes,
		&out.Stage,
		&out.Status,
		&out.ContactID,
		&out.ProductID,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single opportunity by its ID.
func (r *OpportunityPostgres) FindByID(ctx context.Context, id string) (*model.Opportunity, error) {
	const q = `
		SELECT id, title, category, value, notes, pipeline_stage, status, contact_id, product_id, created_at
		FROM opportunities
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var o model.Opportunity
	if err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Category,
		&o.Value,
		&o.Notes,
		&o.Stage,
		&o.Status,
		&o.ContactID,
		&o.ProductID,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListAll returns every opportunity, oldest first. Board ordering within a
// stage follows creation order.
func (r *OpportunityPostgres) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	const q = `
		SELECT id, title, category, value, notes, pipeline_stage, status, contact_id, product_id, created_at
		FROM opportunities
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Opportunity, 0)
	for rows.Next() {
		var o model.Opportunity
		if err := rows.Scan(
			&o.ID,
			&o.Title,
			&o.Category,
			&o.Value,
			&o.Notes,
			&o.Stage,
			&o.Status,
			&o.ContactID,
			&o.ProductID,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the editable fields of an existing opportunity row.
func (r *OpportunityPostgres) Update(ctx context.Context, o *model.Opportunity) error {
	const q = `
		UPDATE opportunities
		SET title = $2, category = $3, value = $4, notes = $5, status = $6, contact_id = $7, product_id = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		o.ID,
		o.Title,
		o.Category,
		o.Value,
		o.Notes,
		o.Status,
		o.ContactID,
		o.ProductID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStage moves an opportunity to the given pipeline stage.
func (r *OpportunityPostgres) UpdateStage(ctx context.Context, id string, stage model.PipelineStage) error {
	const q = `UPDATE opportunities SET pipeline_stage = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, string(stage))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an opportunity by ID. It does not return an error if the row does not exist.
func (r *OpportunityPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM opportunities WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
