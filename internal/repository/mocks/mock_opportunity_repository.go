package mocks

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) Create(ctx context.Context, o *model.Opportunity) (*model.Opportunity, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindByID(ctx context.Context, id string) (*model.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) Update(ctx context.Context, o *model.Opportunity) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOpportunityRepository) UpdateStage(ctx context.Context, id string, stage model.PipelineStage) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func (m *MockOpportunityRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
