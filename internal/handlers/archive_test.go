package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archive-service/internal/archive"
	"archive-service/internal/middleware"
	"archive-service/internal/mocks"
	"archive-service/internal/models"
)

type archiveRunnerMock struct {
	mock.Mock
}

func (m *archiveRunnerMock) Run(ctx context.Context, now time.Time) (archive.Result, error) {
	args := m.Called(ctx, now)
	var result archive.Result
	if val := args.Get(0); val != nil {
		result = val.(archive.Result)
	}
	return result, args.Error(1)
}

func setupArchiveRouter(handler *ArchiveHandler, principal models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.PrincipalContextKey, principal)
		c.Next()
	})
	r.GET("/archives/months", handler.ListMonths)
	r.GET("/archives/:month/messages", handler.ListMonthMessages)
	r.POST("/archives/run", handler.RunArchival)
	return r
}

func employeePrincipal() models.Principal {
	return models.Principal{ID: 1, Kind: models.PrincipalEmployee, Name: "Ana"}
}

func TestListMonthsSuccess(t *testing.T) {
	archiveRepo := new(mocks.ArchiveRepositoryMock)
	router := setupArchiveRouter(NewArchiveHandler(archiveRepo, nil, nil), employeePrincipal())

	archiveRepo.On("ListMonths", mock.Anything).Return([]string{"2024-04", "2024-03"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/archives/months", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Months []string `json:"months"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"2024-04", "2024-03"}, resp.Months)
	assert.Equal(t, 2, resp.Count)
	archiveRepo.AssertExpectations(t)
}

func TestListMonthsEmptyArchiveIsOK(t *testing.T) {
	archiveRepo := new(mocks.ArchiveRepositoryMock)
	router := setupArchiveRouter(NewArchiveHandler(archiveRepo, nil, nil), employeePrincipal())

	// A missing archive table surfaces here as an empty list, never an error.
	archiveRepo.On("ListMonths", mock.Anything).Return([]string{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/archives/months", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"months": [], "count": 0}`, rec.Body.String())
	archiveRepo.AssertExpectations(t)
}

func TestListMonthsRepoError(t *testing.T) {
	archiveRepo := new(mocks.ArchiveRepositoryMock)
	router := setupArchiveRouter(NewArchiveHandler(archiveRepo, nil, nil), employeePrincipal())

	archiveRepo.On("ListMonths", mock.Anything).Return(([]string)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/archives/months", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	archiveRepo.AssertExpectations(t)
}

func TestListMonthMessagesSuccess(t *testing.T) {
	archiveRepo := new(mocks.ArchiveRepositoryMock)
	router := setupArchiveRouter(NewArchiveHandler(archiveRepo, nil, nil), employeePrincipal())

	msgs := []models.ArchivedMessage{{ID: "a1", Content: "hi", SenderName: "Bob", ArchiveMonth: "2024-03"}}
	archiveRepo.On("ListByMonth", mock.Anything, "2024-03").Return(msgs, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/archives/2024-03/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Month string `json:"month"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2024-03", resp.Month)
	assert.Equal(t, 1, resp.Count)
	archiveRepo.AssertExpectations(t)
}

func TestListMonthMessagesInvalidMonth(t *testing.T) {
	archiveRepo := new(mocks.ArchiveRepositoryMock)
	router := setupArchiveRouter(NewArchiveHandler(archiveRepo, nil, nil), employeePrincipal())

	for _, month := range []string{"2024-13", "202403", "2024-3", "march"} {
		req := httptest.NewRequest(http.MethodGet, "/archives/"+month+"/messages", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "month %q", month)
	}
	archiveRepo.AssertNotCalled(t, "ListByMonth", mock.Anything, mock.Anything)
}

func TestRunArchivalSuccess(t *testing.T) {
	runner := new(archiveRunnerMock)
	router := setupArchiveRouter(NewArchiveHandler(new(mocks.ArchiveRepositoryMock), runner, nil), employeePrincipal())

	runner.On("Run", mock.Anything, mock.Anything).
		Return(archive.Result{ArchivedCount: 4, DeletedCount: 4, Month: "2024-03", SystemMessageID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/archives/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result archive.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 4, result.ArchivedCount)
	assert.Equal(t, "2024-03", result.Month)
	runner.AssertExpectations(t)
}

func TestRunArchivalForbiddenForLegacyUser(t *testing.T) {
	runner := new(archiveRunnerMock)
	principal := models.Principal{ID: 2, Kind: models.PrincipalUser, Name: "Bob"}
	router := setupArchiveRouter(NewArchiveHandler(new(mocks.ArchiveRepositoryMock), runner, nil), principal)

	req := httptest.NewRequest(http.MethodPost, "/archives/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRunArchivalFailure(t *testing.T) {
	runner := new(archiveRunnerMock)
	router := setupArchiveRouter(NewArchiveHandler(new(mocks.ArchiveRepositoryMock), runner, nil), employeePrincipal())

	runner.On("Run", mock.Anything, mock.Anything).Return(archive.Result{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/archives/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	runner.AssertExpectations(t)
}
