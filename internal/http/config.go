package http

import (
	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/database"
	"github.com/mrlokans/circulation/internal/membership"
	"github.com/mrlokans/circulation/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Circulation *circulation.Service
	Catalog     *catalog.Service
	Members     *membership.Service
	Database    *database.Database

	// Audit may be nil; the audit trail endpoint is then not registered.
	Audit *audit.Service

	// Authentication. Without a session manager only public routes work.
	Sessions       *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
