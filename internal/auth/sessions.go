package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

// Session data keys
const (
	SessionKeyBorrowerID = "borrower_id"
	SessionKeyUsername   = "username"
	SessionKeyRole       = "role"
	SessionKeyLoginAt    = "login_at"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

func init() {
	gob.Register(entities.Role(""))
	gob.Register(time.Time{})
}

// SessionManager keeps logged-in borrowers in the sessions table of the main
// database.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "circulation_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession logs the borrower in. Call only after Authenticate succeeded.
func (sm *SessionManager) CreateSession(r *http.Request, borrower *entities.Borrower) error {
	// New token on login to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyBorrowerID, int(borrower.ID))
	sm.Put(r.Context(), SessionKeyUsername, borrower.Username)
	sm.Put(r.Context(), SessionKeyRole, borrower.Role)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// BorrowerID returns the logged-in borrower, or 0.
func (sm *SessionManager) BorrowerID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyBorrowerID))
}

// SessionData holds the session information for a request.
type SessionData struct {
	BorrowerID uint          `json:"borrower_id"`
	Username   string        `json:"username"`
	Role       entities.Role `json:"role"`
	LoginAt    time.Time     `json:"login_at"`
}

// GetSessionData returns nil when nobody is logged in.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	id := sm.BorrowerID(r)
	if id == 0 {
		return nil
	}

	role, _ := sm.Get(r.Context(), SessionKeyRole).(entities.Role)
	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return &SessionData{
		BorrowerID: id,
		Username:   sm.GetString(r.Context(), SessionKeyUsername),
		Role:       role,
		LoginAt:    loginAt,
	}
}
