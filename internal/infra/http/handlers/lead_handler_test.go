package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/usecase"
)

type MockLeadCreator struct {
	mock.Mock
}

func (m *MockLeadCreator) Execute(ctx context.Context, input usecase.CreateLeadInput) (*usecase.CreateLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateLeadOutput), args.Error(1)
}

type MockLeadRescorer struct {
	mock.Mock
}

func (m *MockLeadRescorer) Execute(ctx context.Context, leadID int64) (*usecase.RescoreLeadOutput, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RescoreLeadOutput), args.Error(1)
}

type MockLeadRepo struct {
	mock.Mock
}

func (m *MockLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepo) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepo) List(ctx context.Context, filter entity.LeadFilter, sort entity.LeadSort, page, limit int) ([]entity.Lead, int64, error) {
	args := m.Called(ctx, filter, sort, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepo) ListAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepo) UpdateScore(ctx context.Context, id int64, score int, quality string) error {
	return m.Called(ctx, id, score, quality).Error(0)
}

func (m *MockLeadRepo) UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, notes *string) (bool, error) {
	args := m.Called(ctx, id, status, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepo) Stats(ctx context.Context) (*entity.LeadStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadStats), args.Error(1)
}

type MockInteractionRepo struct {
	mock.Mock
}

func (m *MockInteractionRepo) Create(ctx context.Context, interaction *entity.Interaction) error {
	return m.Called(ctx, interaction).Error(0)
}

func (m *MockInteractionRepo) ListByLeadID(ctx context.Context, leadID int64) ([]entity.Interaction, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Interaction), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestRouter(creator LeadCreator, rescorer LeadRescorer, leads *MockLeadRepo, interactions *MockInteractionRepo) *chi.Mux {
	h := NewLeadHandler(creator, rescorer, leads, interactions, nil, quietLogger())

	r := chi.NewRouter()
	r.Post("/leads", h.HandleCreate)
	r.Get("/leads", h.HandleList)
	r.Get("/leads/{id}", h.HandleGet)
	r.Put("/leads/{id}/status", h.HandleUpdateStatus)
	r.Post("/leads/{id}/score", h.HandleRescore)
	return r
}

func TestHandleCreateReturns201(t *testing.T) {
	creator := new(MockLeadCreator)
	creator.On("Execute", mock.Anything, mock.Anything).Return(&usecase.CreateLeadOutput{
		Lead:                 &entity.Lead{ID: 42, Status: entity.StatusQualified, Score: 72},
		Score:                72,
		NotificationsCreated: 1,
	}, nil)

	router := newTestRouter(creator, new(MockLeadRescorer), new(MockLeadRepo), new(MockInteractionRepo))

	body := `{"full_name":"Alice Nguyen","email":"alice@x.com","source":"web_form","message":"call me"}`
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(72), resp["score"])
	assert.Equal(t, float64(1), resp["notifications_created"])
}

func TestHandleCreateInvalidJSON(t *testing.T) {
	router := newTestRouter(new(MockLeadCreator), new(MockLeadRescorer), new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateValidationErrorMapsTo400(t *testing.T) {
	creator := new(MockLeadCreator)
	creator.On("Execute", mock.Anything, mock.Anything).
		Return(nil, &usecase.DomainError{Code: usecase.CodeValidation, Message: "validation failed: email (is invalid)"})

	router := newTestRouter(creator, new(MockLeadRescorer), new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"full_name":"A"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.CodeValidation)
}

func TestHandleRescoreNotFound(t *testing.T) {
	rescorer := new(MockLeadRescorer)
	rescorer.On("Execute", mock.Anything, int64(9999)).
		Return(nil, &usecase.NotFoundError{Resource: "lead", ID: 9999})

	router := newTestRouter(new(MockLeadCreator), rescorer, new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPost, "/leads/9999/score", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRescoreOracleFailureMapsTo502(t *testing.T) {
	rescorer := new(MockLeadRescorer)
	rescorer.On("Execute", mock.Anything, int64(5)).
		Return(nil, &usecase.TechnicalError{Code: usecase.CodeExternalService, Message: "scoring service failed, retry later"})

	router := newTestRouter(new(MockLeadCreator), rescorer, new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPost, "/leads/5/score", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleUpdateStatusRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter(new(MockLeadCreator), new(MockLeadRescorer), new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPut, "/leads/1/status", strings.NewReader(`{"status":"on_fire"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateStatusNotFound(t *testing.T) {
	leads := new(MockLeadRepo)
	leads.On("UpdateStatus", mock.Anything, int64(77), entity.StatusContacted, (*string)(nil)).Return(false, nil)

	router := newTestRouter(new(MockLeadCreator), new(MockLeadRescorer), leads, new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodPut, "/leads/77/status", strings.NewReader(`{"status":"contacted"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListPagination(t *testing.T) {
	leads := new(MockLeadRepo)
	leads.On("List", mock.Anything, mock.Anything, mock.Anything, 2, 10).
		Return([]entity.Lead{{ID: 1}}, int64(25), nil)

	router := newTestRouter(new(MockLeadCreator), new(MockLeadRescorer), leads, new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodGet, "/leads?page=2&limit=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pagination pagination `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(25), resp.Pagination.Total)
	assert.Equal(t, int64(3), resp.Pagination.TotalPages)
}

func TestHandleListRejectsUnknownFilter(t *testing.T) {
	router := newTestRouter(new(MockLeadCreator), new(MockLeadRescorer), new(MockLeadRepo), new(MockInteractionRepo))

	req := httptest.NewRequest(http.MethodGet, "/leads?status=FROZEN", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
