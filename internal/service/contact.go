package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// ContactListResult is the service-level DTO for paginated contacts.
type ContactListResult struct {
	Items []model.Contact `json:"data"`
	Total int             `json:"total"`
}

// ContactInput carries the user-editable fields of a contact.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

// Validate checks the input against the CRM rules.
func (in ContactInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, is.Email),
	)
}

// ContactService defines the CRM use cases.
type ContactService interface {
	Create(ctx context.Context, in ContactInput) (*model.Contact, error)
	Get(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, limit, offset int) (*ContactListResult, error)
	Update(ctx context.Context, id string, in ContactInput) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactService struct {
	repo   repository.ContactRepository
	logger *zap.Logger
}

// NewContactService constructs a new ContactService.
func NewContactService(repo repository.ContactRepository, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, logger: logger}
}

func (s *contactService) Create(ctx context.Context, in ContactInput) (*model.Contact, error) {
	if err := in.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	c := &model.Contact{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Notes:     in.Notes,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create contact", Err: err}
	}

	s.logger.Info("contact created", zap.String("id", stored.ID), zap.String("name", stored.Name))
	return stored, nil
}

func (s *contactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get contact", Err: err}
	}
	return c, nil
}

func (s *contactService) List(ctx context.Context, limit, offset int) (*ContactListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list contacts", Err: err}
	}
	return &ContactListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *contactService) Update(ctx context.Context, id string, in ContactInput) (*model.Contact, error) {
	if err := in.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Company = in.Company
	c.Notes = in.Notes

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update contact", Err: err}
	}
	return c, nil
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return &domain.PersistenceError{Op: "delete contact", Err: err}
	}
	s.logger.Info("contact deleted", zap.String("id", id))
	return nil
}
