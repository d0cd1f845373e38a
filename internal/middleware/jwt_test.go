package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/service"
)

type stubUserRepo struct{}

func (stubUserRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (stubUserRepo) FindByID(context.Context, string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (stubUserRepo) CreateWithProfileAndRole(context.Context, *models.User, models.UserRole) error {
	return nil
}

func (stubUserRepo) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (stubUserRepo) CreateRefreshToken(context.Context, *models.RefreshToken) error { return nil }

func (stubUserRepo) FindRefreshToken(context.Context, string) (*models.RefreshToken, error) {
	return nil, sql.ErrNoRows
}

func (stubUserRepo) RevokeRefreshToken(context.Context, string, time.Time) error { return nil }

type stubRoleLister struct{}

func (stubRoleLister) ListByUser(context.Context, string) ([]models.RoleAssignment, error) {
	return nil, nil
}

func newTestRouter(authSvc *service.AuthService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWT(authSvc)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/protected", handlers...)
	return r
}

func newAuthService() *service.AuthService {
	return service.NewAuthService(stubUserRepo{}, service.NewRoleService(stubRoleLister{}), nil, nil, service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "test",
	})
}

func issueToken(t *testing.T, svc *service.AuthService, role models.UserRole) string {
	t.Helper()
	session, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "user@campus.edu",
		Password: "secret123",
		FullName: "Test User",
		Role:     role,
	})
	require.NoError(t, err)
	return session.AccessToken
}

func TestJWTMissingHeader(t *testing.T) {
	router := newTestRouter(newAuthService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	router := newTestRouter(newAuthService())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidToken(t *testing.T) {
	svc := newAuthService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, models.RoleStudent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesBlocksWrongRole(t *testing.T) {
	svc := newAuthService()
	router := newTestRouter(svc, models.RoleOrganizer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, models.RoleStudent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	svc := newAuthService()
	router := newTestRouter(svc, models.RoleOrganizer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, svc, models.RoleOrganizer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalJWTPassesThroughAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalJWT(newAuthService()), func(c *gin.Context) {
		_, exists := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": exists})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}
