package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/membership"
)

// Context keys for borrower data
const (
	ContextKeyBorrowerID = "auth_borrower_id"
	ContextKeyUsername   = "auth_username"
	ContextKeyRole       = "auth_role"
)

// Middleware resolves the session cookie to a borrower.
type Middleware struct {
	members  *membership.Service
	sessions *SessionManager
}

func NewMiddleware(members *membership.Service, sessions *SessionManager) *Middleware {
	return &Middleware{members: members, sessions: sessions}
}

// Handler loads the logged-in borrower, if any, into the gin context and tags
// the request context with the borrower as actor. Sessions of borrowers that
// were deactivated or removed are destroyed.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := m.sessions.BorrowerID(c.Request)
		if id == 0 {
			c.Next()
			return
		}

		borrower, err := m.members.Get(c.Request.Context(), id)
		switch {
		case err == nil && borrower.Active:
			c.Set(ContextKeyBorrowerID, borrower.ID)
			c.Set(ContextKeyUsername, borrower.Username)
			c.Set(ContextKeyRole, borrower.Role)
			c.Request = c.Request.WithContext(circulation.WithActor(c.Request.Context(), borrower.ID))
		case err == nil || errs.Kind(err) == errs.ErrNotFound:
			_ = m.sessions.DestroySession(c.Request)
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "session lookup failed",
				"code":  errs.Code(err),
			})
			return
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a logged-in borrower.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticated(c) {
			return
		}
		c.Next()
	}
}

// RequireAction rejects borrowers whose role policy does not grant action.
// It implies RequireAuth.
func RequireAction(action circulation.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticated(c) {
			return
		}
		if err := circulation.Authorize(GetRole(c), action); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
				"code":  errs.Code(err),
			})
			return
		}
		c.Next()
	}
}

func authenticated(c *gin.Context) bool {
	if GetBorrowerID(c) != 0 {
		return true
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication required",
		"code":  errs.Code(errs.ErrAuth),
	})
	return false
}

// GetBorrowerID returns the logged-in borrower's ID, or 0.
func GetBorrowerID(c *gin.Context) uint {
	return c.GetUint(ContextKeyBorrowerID)
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetRole returns the logged-in borrower's role, or "".
func GetRole(c *gin.Context) entities.Role {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.Role); ok {
			return role
		}
	}
	return ""
}
