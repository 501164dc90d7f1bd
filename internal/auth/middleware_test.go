package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/membership"
	"github.com/mrlokans/circulation/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router   *gin.Engine
	members  *membership.Service
	sessions *SessionManager
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewDatabase(t)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	sessions, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)
	members := membership.NewService(db, bcrypt.MinCost)

	router := gin.New()
	router.Use(sessions.SessionLoadSave(), NewMiddleware(members, sessions).Handler())

	router.POST("/login/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		b, err := members.Get(c.Request.Context(), uint(id))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		require.NoError(t, sessions.CreateSession(c.Request, b))
		c.Status(http.StatusNoContent)
	})
	router.POST("/logout", func(c *gin.Context) {
		require.NoError(t, sessions.DestroySession(c.Request))
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       GetBorrowerID(c),
			"username": GetUsername(c),
			"role":     GetRole(c),
			"actor":    circulation.ActorFrom(c.Request.Context()),
		})
	})
	router.GET("/catalog", RequireAction(circulation.ActionManageCatalog), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &authFixture{router: router, members: members, sessions: sessions}
}

func (f *authFixture) login(t *testing.T, id uint) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login/"+strconv.FormatUint(uint64(id), 10), nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	for _, c := range rr.Result().Cookies() {
		if c.Name == f.sessions.Cookie.Name {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (f *authFixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_Anonymous(t *testing.T) {
	f := setupAuth(t)

	rr := f.get("/me", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "auth_error")
}

func TestMiddleware_SessionLogin(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	student, err := f.members.Register(ctx, "Sam", "sam", "pw", entities.RoleStudent)
	require.NoError(t, err)

	cookie := f.login(t, student.ID)
	rr := f.get("/me", cookie)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"username":"sam","role":"Student","actor":1}`, rr.Body.String())
}

func TestMiddleware_RequireAction(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	student, err := f.members.Register(ctx, "Sam", "sam", "pw", entities.RoleStudent)
	require.NoError(t, err)
	librarian, err := f.members.Register(ctx, "Lee", "lee", "pw", entities.RoleLibrarian)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.get("/catalog", nil).Code)

	rr := f.get("/catalog", f.login(t, student.ID))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "not_eligible")

	assert.Equal(t, http.StatusOK, f.get("/catalog", f.login(t, librarian.ID)).Code)
}

func TestMiddleware_DeactivatedBorrowerLosesSession(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	student, err := f.members.Register(ctx, "Sam", "sam", "pw", entities.RoleStudent)
	require.NoError(t, err)
	cookie := f.login(t, student.ID)

	require.NoError(t, f.members.SetActive(ctx, student.ID, false))

	assert.Equal(t, http.StatusUnauthorized, f.get("/me", cookie).Code)

	require.NoError(t, f.members.SetActive(ctx, student.ID, true))
	assert.Equal(t, http.StatusUnauthorized, f.get("/me", cookie).Code, "destroyed session stays invalid")
}

func TestSessionManager_Logout(t *testing.T) {
	f := setupAuth(t)
	student, err := f.members.Register(context.Background(), "Sam", "sam", "pw", entities.RoleStudent)
	require.NoError(t, err)
	cookie := f.login(t, student.ID)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Equal(t, http.StatusUnauthorized, f.get("/me", cookie).Code)
}

func TestNewSessionManager_Cookie(t *testing.T) {
	f := setupAuth(t)

	assert.Equal(t, "circulation_session", f.sessions.Cookie.Name)
	assert.True(t, f.sessions.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, f.sessions.Cookie.SameSite)
	assert.Equal(t, time.Hour, f.sessions.Lifetime)
}
