package mocks

import (
	"context"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockNodeService struct {
	mock.Mock
}

func (m *MockNodeService) ListChildren(ctx context.Context, folderID *string) ([]model.Node, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Node), args.Error(1)
}

func (m *MockNodeService) CreateFolder(ctx context.Context, parentID *string, title string) (*model.Node, error) {
	args := m.Called(ctx, parentID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodeService) CreateFile(ctx context.Context, req service.CreateFileRequest) (*model.Node, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Node), args.Error(1)
}

func (m *MockNodeService) Rename(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockNodeService) Move(ctx context.Context, id string, newParentID *string) error {
	args := m.Called(ctx, id, newParentID)
	return args.Error(0)
}

func (m *MockNodeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNodeService) FileURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
