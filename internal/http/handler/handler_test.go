package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	repoMocks "github.com/PlayFutnaTela/gerezim-sub000/internal/repository/mocks"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/service"
	serviceMocks "github.com/PlayFutnaTela/gerezim-sub000/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListContacts(t *testing.T) {
	mockSvc := new(serviceMocks.MockContactService)
	app := fiber.New()
	app.Get("/contacts", ListContacts(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(&service.ContactListResult{
			Items: []model.Contact{{ID: "c-1", Name: "Maria Souza"}},
			Total: 1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body service.ContactListResult
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 1, body.Total)
		assert.Equal(t, "Maria Souza", body.Items[0].Name)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contacts?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("store failure maps to 502", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).
			Return(nil, &domain.PersistenceError{Op: "list contacts", Err: errors.New("db down")}).Once()

		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "STORE_ERROR", body.Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateContact(t *testing.T) {
	mockSvc := new(serviceMocks.MockContactService)
	app := fiber.New()
	app.Post("/contacts", CreateContact(mockSvc))

	t.Run("created", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, service.ContactInput{Name: "Maria Souza"}).
			Return(&model.Contact{ID: "c-1", Name: "Maria Souza"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{"name":"Maria Souza"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, service.ContactInput{}).
			Return(nil, &domain.ValidationError{Field: "name", Message: "cannot be blank"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/contacts", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "name")
	})

	mockSvc.AssertExpectations(t)
}

func TestGetContact_NotFound(t *testing.T) {
	mockSvc := new(serviceMocks.MockContactService)
	app := fiber.New()
	app.Get("/contacts/:id", GetContact(mockSvc))

	mockSvc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts/missing", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadProductImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockProductService)
	app := fiber.New()
	app.Post("/products/:id/image", UploadProductImage(mockSvc))

	t.Run("uploads", func(t *testing.T) {
		mockSvc.On("UploadImage", mock.Anything, "p-1", mock.Anything, "argo.jpg", mock.Anything, int64(8)).
			Return(&model.Product{ID: "p-1", ImageURL: "https://storage.local/products/abc.jpg"}, nil).Once()

		body, ct := multipartFile(t, "file", "argo.jpg", "jpegdata")
		req := httptest.NewRequest(http.MethodPost, "/products/p-1/image", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var p model.Product
		json.NewDecoder(resp.Body).Decode(&p)
		assert.NotEmpty(t, p.ImageURL)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/products/p-1/image", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestListNodes(t *testing.T) {
	mockSvc := new(serviceMocks.MockNodeService)
	app := fiber.New()
	app.Get("/nodes", ListNodes(mockSvc))

	mockSvc.On("ListChildren", mock.Anything, (*string)(nil)).Return([]model.Node{
		{ID: "f-1", Title: "Tabelas", IsFolder: true},
	}, nil).Once()
	folderID := "f-1"
	mockSvc.On("ListChildren", mock.Anything, &folderID).Return([]model.Node{}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/nodes", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/nodes?parent_id=f-1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestPatchNode(t *testing.T) {
	mockSvc := new(serviceMocks.MockNodeService)
	app := fiber.New()
	app.Patch("/nodes/:id", PatchNode(mockSvc))

	t.Run("rename", func(t *testing.T) {
		mockSvc.On("Rename", mock.Anything, "n-1", "Novo nome").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/nodes/n-1", strings.NewReader(`{"title":"Novo nome"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("move to root", func(t *testing.T) {
		mockSvc.On("Move", mock.Anything, "n-1", (*string)(nil)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/nodes/n-1", strings.NewReader(`{"move":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("cycle rejected", func(t *testing.T) {
		target := "f-sub"
		mockSvc.On("Move", mock.Anything, "f-root", &target).
			Return(&domain.ValidationError{Field: "parent_id", Message: "cannot move a folder under its own descendant"}).Once()

		req := httptest.NewRequest(http.MethodPatch, "/nodes/f-root", strings.NewReader(`{"move":true,"parent_id":"f-sub"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty patch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/nodes/n-1", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func newHandlerBoard() (*service.PipelineBoard, *repoMocks.MockOpportunityRepository) {
	repo := new(repoMocks.MockOpportunityRepository)
	return service.NewPipelineBoard(repo, new(repoMocks.MockContactRepository), new(repoMocks.MockProductRepository), zap.NewNop()), repo
}

func TestGetBoard(t *testing.T) {
	board, repo := newHandlerBoard()
	app := fiber.New()
	app.Get("/pipeline", GetBoard(board))

	repo.On("ListAll", mock.Anything).Return([]model.Opportunity{
		{ID: "o-1", Title: "Fiat Argo", Stage: model.StageNew},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/pipeline", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Columns []struct {
			Stage string              `json:"stage"`
			Label string              `json:"label"`
			Cards []model.Opportunity `json:"cards"`
		} `json:"columns"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Len(t, body.Columns, 5)
	assert.Equal(t, "new", body.Columns[0].Stage)
	assert.Equal(t, "Novo", body.Columns[0].Label)
	assert.Len(t, body.Columns[0].Cards, 1)
	repo.AssertExpectations(t)
}

func TestMoveCard(t *testing.T) {
	board, repo := newHandlerBoard()
	app := fiber.New()
	app.Get("/pipeline", GetBoard(board))
	app.Post("/pipeline/:id/move", MoveCard(board))

	repo.On("ListAll", mock.Anything).Return([]model.Opportunity{
		{ID: "o-1", Title: "Fiat Argo", Stage: model.StageNew},
	}, nil).Once()
	app.Test(httptest.NewRequest(http.MethodGet, "/pipeline", nil))

	t.Run("moved", func(t *testing.T) {
		repo.On("UpdateStage", mock.Anything, "o-1", model.StageInterested).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/pipeline/o-1/move", strings.NewReader(`{"pipeline_stage":"interested"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var card model.Opportunity
		json.NewDecoder(resp.Body).Decode(&card)
		assert.Equal(t, model.StageInterested, card.Stage)
	})

	t.Run("unknown stage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pipeline/o-1/move", strings.NewReader(`{"pipeline_stage":"limbo"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("persistence failure rolls back and maps to 502", func(t *testing.T) {
		repo.On("UpdateStage", mock.Anything, "o-1", model.StageClosed).
			Return(errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/pipeline/o-1/move", strings.NewReader(`{"pipeline_stage":"closed"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		card, ok := board.Card("o-1")
		assert.True(t, ok)
		assert.Equal(t, model.StageInterested, card.Stage)
	})

	repo.AssertExpectations(t)
}

func TestCreateCard(t *testing.T) {
	board, repo := newHandlerBoard()
	app := fiber.New()
	app.Post("/pipeline", CreateCard(board))

	t.Run("created", func(t *testing.T) {
		repo.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Opportunity) bool {
			return o.Title == "Apartamento Centro" && o.Stage == model.StageNew
		})).Return(&model.Opportunity{ID: "o-9", Title: "Apartamento Centro", Stage: model.StageNew}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/pipeline",
			strings.NewReader(`{"pipeline_stage":"new","title":"Apartamento Centro","value":450000}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pipeline",
			strings.NewReader(`{"pipeline_stage":"new","title":"","value":100}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	repo.AssertExpectations(t)
}

func TestGetDashboard(t *testing.T) {
	opps := new(repoMocks.MockOpportunityRepository)
	products := new(repoMocks.MockProductRepository)
	svc := service.NewDashboardService(opps, products, zap.NewNop())

	app := fiber.New()
	app.Get("/dashboard", GetDashboard(svc))

	t.Run("unknown range", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard?range=2y", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("default range", func(t *testing.T) {
		opps.On("ListAll", mock.Anything).Return([]model.Opportunity{}, nil).Once()
		products.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "30d", body["range"])
	})

	opps.AssertExpectations(t)
	products.AssertExpectations(t)
}
