package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archive-service/internal/auth"
	"archive-service/internal/mocks"
	"archive-service/internal/models"
	"archive-service/internal/repositories"
)

func setupAuthRouter(sessions *mocks.SessionRepositoryMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := auth.NewResolver(sessions)

	r := gin.New()
	r.GET("/protected", SessionAuth(resolver), func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "principal missing"})
			return
		}
		c.JSON(http.StatusOK, principal)
	})
	return r
}

func TestSessionAuthMissingCookies(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "authentication required"}`, rec.Body.String())
}

func TestSessionAuthEmployeeCookie(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	employee := models.Principal{ID: 5, Kind: models.PrincipalEmployee, Name: "Ana"}
	sessions.On("EmployeeByToken", mock.Anything, "tok", mock.Anything).Return(employee, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "employee-session", Value: "tok"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 5, "kind": "employee", "name": "Ana"}`, rec.Body.String())
	sessions.AssertExpectations(t)
}

func TestSessionAuthExpiredSessionIsUnauthorized(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	sessions.On("EmployeeByToken", mock.Anything, "tok", mock.Anything).
		Return(models.Principal{}, repositories.ErrSessionNotFound).Once()
	sessions.On("UserByToken", mock.Anything, "tok", mock.Anything).
		Return(models.Principal{}, repositories.ErrSessionNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: "tok"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	sessions.AssertExpectations(t)
}

func TestSessionAuthLookupFailure(t *testing.T) {
	sessions := new(mocks.SessionRepositoryMock)
	router := setupAuthRouter(sessions)

	sessions.On("EmployeeByToken", mock.Anything, "tok", mock.Anything).
		Return(models.Principal{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "employee-session", Value: "tok"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	sessions.AssertExpectations(t)
}
