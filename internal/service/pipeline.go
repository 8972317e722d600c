package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
)

// CardInput carries the user-editable fields of a pipeline card.
type CardInput struct {
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Value     float64 `json:"value"`
	Notes     string  `json:"notes"`
	ContactID *string `json:"contact_id"`
	ProductID *string `json:"product_id"`
}

// Validate checks the input against the pipeline rules: a card needs a
// title and a strictly positive value.
func (in CardInput) Validate() error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
	); err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if in.Value <= 0 {
		return &domain.ValidationError{Field: "value", Message: "must be greater than zero"}
	}
	return nil
}

// PipelineBoard is the kanban state machine: the full set of opportunities
// held in memory, grouped by stage on demand. Stage transitions are
// optimistic: the local card moves before the persistence call resolves
// and moves back if it fails. All other mutations persist first.
//
// The board also tracks the transient drag state (which card is being
// dragged, which column is hovered); that state is cleared unconditionally
// when a drop resolves, even on failure; only the stage value rolls back.
type PipelineBoard struct {
	mu    sync.Mutex
	cards map[string]*model.Opportunity
	order []string // load/creation order, preserved across enrichment

	draggingID   string
	hoveredStage model.PipelineStage

	repo     repository.OpportunityRepository
	contacts repository.ContactRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewPipelineBoard constructs an empty board. Call Load before reading.
func NewPipelineBoard(
	repo repository.OpportunityRepository,
	contacts repository.ContactRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) *PipelineBoard {
	return &PipelineBoard{
		cards:    make(map[string]*model.Opportunity),
		repo:     repo,
		contacts: contacts,
		products: products,
		logger:   logger,
	}
}

// Load fetches every opportunity and enriches contact/product display data
// in two batch lookups joined in memory. A missing or failed enrichment
// degrades the card (association left blank) and is logged; only a failure
// of the primary fetch is reported to the caller.
func (b *PipelineBoard) Load(ctx context.Context) ([]model.Opportunity, error) {
	items, err := b.repo.ListAll(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load board", Err: err}
	}

	b.enrich(ctx, items)

	b.mu.Lock()
	b.cards = make(map[string]*model.Opportunity, len(items))
	b.order = make([]string, 0, len(items))
	for i := range items {
		card := items[i]
		b.cards[card.ID] = &card
		b.order = append(b.order, card.ID)
	}
	b.mu.Unlock()

	return items, nil
}

// enrich joins denormalized contact and product display fields onto the
// cards. One lookup per table for the whole batch, regardless of how many
// cards reference it.
func (b *PipelineBoard) enrich(ctx context.Context, items []model.Opportunity) {
	contactIDs := make([]string, 0)
	productIDs := make([]string, 0)
	seenContact := make(map[string]bool)
	seenProduct := make(map[string]bool)
	for i := range items {
		if id := items[i].ContactID; id != nil && !seenContact[*id] {
			seenContact[*id] = true
			contactIDs = append(contactIDs, *id)
		}
		if id := items[i].ProductID; id != nil && !seenProduct[*id] {
			seenProduct[*id] = true
			productIDs = append(productIDs, *id)
		}
	}

	contactsByID := make(map[string]model.Contact)
	if len(contactIDs) > 0 {
		contacts, err := b.contacts.ListByIDs(ctx, contactIDs)
		if err != nil {
			b.logger.Warn("contact enrichment failed",
				zap.Int("ids", len(contactIDs)),
				zap.Error(&domain.EnrichmentError{Resource: "contact", Err: err}),
			)
		}
		for _, c := range contacts {
			contactsByID[c.ID] = c
		}
	}

	productsByID := make(map[string]model.Product)
	if len(productIDs) > 0 {
		products, err := b.products.ListByIDs(ctx, productIDs)
		if err != nil {
			b.logger.Warn("product enrichment failed",
				zap.Int("ids", len(productIDs)),
				zap.Error(&domain.EnrichmentError{Resource: "product", Err: err}),
			)
		}
		for _, p := range products {
			productsByID[p.ID] = p
		}
	}

	for i := range items {
		if id := items[i].ContactID; id != nil {
			if c, ok := contactsByID[*id]; ok {
				items[i].ContactName = c.Name
			}
		}
		if id := items[i].ProductID; id != nil {
			if p, ok := productsByID[*id]; ok {
				items[i].ProductTitle = p.Title
				items[i].ProductImage = p.ImageKey
			}
		}
	}
}

// Board returns the cards grouped by stage, preserving load order within
// each column.
func (b *PipelineBoard) Board() map[model.PipelineStage][]model.Opportunity {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[model.PipelineStage][]model.Opportunity, len(model.Stages))
	for _, s := range model.Stages {
		out[s] = []model.Opportunity{}
	}
	for _, id := range b.order {
		card := b.cards[id]
		out[card.Stage] = append(out[card.Stage], *card)
	}
	return out
}

// Card returns a snapshot of a single card.
func (b *PipelineBoard) Card(id string) (model.Opportunity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	card, ok := b.cards[id]
	if !ok {
		return model.Opportunity{}, false
	}
	return *card, true
}

// StartDrag marks a card as being dragged.
func (b *PipelineBoard) StartDrag(id string) {
	b.mu.Lock()
	b.draggingID = id
	b.mu.Unlock()
}

// HoverStage marks the column currently hovered during a drag.
func (b *PipelineBoard) HoverStage(stage model.PipelineStage) {
	b.mu.Lock()
	b.hoveredStage = stage
	b.mu.Unlock()
}

// MoveCard transitions a card to the target stage optimistically: the
// in-memory stage changes before the persistence call resolves and is
// reverted to its prior value if persistence fails. Dropping a card onto
// its own column is a no-op. The transient drag markers are cleared
// unconditionally either way.
func (b *PipelineBoard) MoveCard(ctx context.Context, id string, target model.PipelineStage) error {
	if !target.Valid() {
		return &domain.ValidationError{Field: "pipeline_stage", Message: "unknown stage"}
	}

	b.mu.Lock()
	card, ok := b.cards[id]
	if !ok {
		b.draggingID = ""
		b.hoveredStage = ""
		b.mu.Unlock()
		return domain.ErrNotFound
	}
	prev := card.Stage
	b.draggingID = ""
	b.hoveredStage = ""
	if prev == target {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	err := applyOptimistic(
		func() {
			b.mu.Lock()
			card.Stage = target
			b.mu.Unlock()
		},
		func() error { return b.repo.UpdateStage(ctx, id, target) },
		func() {
			b.mu.Lock()
			card.Stage = prev
			b.mu.Unlock()
		},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "move card", Err: err}
	}

	b.logger.Info("card moved",
		zap.String("id", id),
		zap.String("from", string(prev)),
		zap.String("to", string(target)),
	)
	return nil
}

// CreateCard persists a new card in the target stage and adds it to the
// board. No optimistic update: the card only appears once stored.
func (b *PipelineBoard) CreateCard(ctx context.Context, target model.PipelineStage, in CardInput) (*model.Opportunity, error) {
	if !target.Valid() {
		return nil, &domain.ValidationError{Field: "pipeline_stage", Message: "unknown stage"}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	o := &model.Opportunity{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Category:  in.Category,
		Value:     in.Value,
		Notes:     in.Notes,
		Stage:     target,
		Status:    "new",
		ContactID: in.ContactID,
		ProductID: in.ProductID,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := b.repo.Create(ctx, o)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create card", Err: err}
	}

	b.mu.Lock()
	b.cards[stored.ID] = stored
	b.order = append(b.order, stored.ID)
	b.mu.Unlock()

	b.logger.Info("card created",
		zap.String("id", stored.ID),
		zap.String("stage", string(stored.Stage)),
		zap.Float64("value", stored.Value),
	)
	return stored, nil
}

// UpdateCard edits a card's fields. Persist first; local state is only
// touched on success.
func (b *PipelineBoard) UpdateCard(ctx context.Context, id string, in CardInput) (*model.Opportunity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	card, ok := b.cards[id]
	if !ok {
		b.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	updated := *card
	b.mu.Unlock()

	updated.Title = in.Title
	updated.Category = in.Category
	updated.Value = in.Value
	updated.Notes = in.Notes
	updated.ContactID = in.ContactID
	updated.ProductID = in.ProductID

	if err := b.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update card", Err: err}
	}

	b.mu.Lock()
	*card = updated
	b.mu.Unlock()
	return &updated, nil
}

// DeleteCard removes a card. Persist first; local state is only touched on
// success.
func (b *PipelineBoard) DeleteCard(ctx context.Context, id string) error {
	b.mu.Lock()
	_, ok := b.cards[id]
	b.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	if err := b.repo.Delete(ctx, id); err != nil {
		return &domain.PersistenceError{Op: "delete card", Err: err}
	}

	b.mu.Lock()
	delete(b.cards, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	b.logger.Info("card deleted", zap.String("id", id))
	return nil
}
