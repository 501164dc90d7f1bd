// Package auth turns a successful membership.Authenticate into a login
// session and enforces role policies on HTTP routes.
//
// Sessions are stored by scs in the sessions table of the main SQLite
// database. When AUTH_SESSION_SECRET is set, unsafe requests also need the
// token from the X-CSRF-Token response header.
//
// # Usage
//
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(members, sessions)
//	router.Use(sessions.SessionLoadSave(), mw.Handler())
//	router.POST("/api/books", auth.RequireAction(circulation.ActionManageCatalog), h.AddBook)
//
// Extract the borrower in handlers:
//
//	id := auth.GetBorrowerID(c)
package auth
