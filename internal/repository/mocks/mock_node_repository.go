package mocks

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) Create(ctx context.Context, n *model.Node) (*model.Node, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodeRepository) FindByID(ctx context.Context, id string) (*model.Node, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodeRepository) ListChildren(ctx context.Context, parentID *string) ([]model.Node, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Node), args.Error(1)
}

func (m *MockNodeRepository) UpdateTitle(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockNodeRepository) UpdateParent(ctx context.Context, id string, parentID *string) error {
	args := m.Called(ctx, id, parentID)
	return args.Error(0)
}

func (m *MockNodeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
