package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// ContactPostgres is a PostgreSQL implementation of repository.ContactRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ContactPostgres struct {
	db *sql.DB
}

// NewContactPostgres creates a new ContactPostgres repository.
func NewContactPostgres(db *sql.DB) *ContactPostgres {
	return &ContactPostgres{db: db}
}

var _ repository.ContactRepository = (*ContactPostgres)(nil)

// Create inserts a new contact row and returns the stored record.
func (r *ContactPostgres) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	const q = `
		INSERT INTO contacts (id, name, email, phone, company, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, phone, company, notes, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Company,
		c.Notes,
		c.CreatedAt,
	)
	var out model.Contact
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.Email,
		&out.Phone,
		&out.Company,
		&out.Notes,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single contact by its ID.
func (r *ContactPostgres) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	const q = `
		SELECT id, name, email, phone, company, notes, created_at
		FROM contacts
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var c model.Contact
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.Notes,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns contacts using LIMIT/OFFSET pagination and a total count.
func (r *ContactPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Contact], error) {
	const qCount = `SELECT COUNT(*) FROM contacts`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name, email, phone, company, notes, created_at
		FROM contacts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contact, 0)
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.Company,
			&c.Notes,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Contact]{
		Items: items,
		Total: total,
	}, nil
}

// ListByIDs fetches the contacts whose IDs are in the given set.
func (r *ContactPostgres) ListByIDs(ctx context.Context, ids []string) ([]model.Contact, error) {
	if len(ids) == 0 {
		return []model.Contact{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(`
		SELECT id, name, email, phone, company, notes, created_at
		FROM contacts
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contact, 0, len(ids))
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.Company,
			&c.Notes,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the editable fields of an existing contact row.
func (r *ContactPostgres) Update(ctx context.Context, c *model.Contact) error {
	const q = `
		UPDATE contacts
		SET name = $2, email = $3, phone = $4, company = $5, notes = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a contact by ID. It does not return an error if the row does not exist.
func (r *ContactPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM contacts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
