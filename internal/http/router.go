package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/circulation"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.Sessions == nil || cfg.Circulation == nil {
		return router
	}

	session := NewSessionController(cfg.Members, cfg.Circulation, cfg.Sessions, cfg.Audit)
	router.POST("/api/register", session.Register)
	router.POST("/api/session", session.Login)
	router.DELETE("/api/session", session.Logout)
	router.GET("/api/session", session.Whoami)

	api := router.Group("/api")
	api.Use(auth.RequireAuth())

	books := NewBooksController(cfg.Catalog, cfg.Circulation)
	catalogAdmin := api.Group("", auth.RequireAction(circulation.ActionManageCatalog))
	catalogAdmin.GET("/books/all", books.List)
	api.GET("/books", books.FindAvailable)
	api.GET("/books/:id", books.Get)
	catalogAdmin.POST("/books", books.Add)
	catalogAdmin.DELETE("/books/:id", books.Remove)

	loans := NewLoansController(cfg.Circulation)
	desk := api.Group("/loans", auth.RequireAction(circulation.ActionIssueForOthers))
	desk.POST("", loans.Issue)
	desk.POST("/return", loans.Return)

	me := NewMeController(cfg.Circulation)
	self := api.Group("/me", auth.RequireAction(circulation.ActionBorrow))
	self.GET("/loans", me.Loans)
	self.POST("/loans/:bookId", me.Borrow)
	self.POST("/loans/:bookId/return", me.Return)
	self.POST("/loans/:bookId/renew", me.Renew)
	self.GET("/wishlist", me.Wishlist)
	self.POST("/wishlist/:bookId", me.WishlistAdd)
	self.DELETE("/wishlist/:bookId", me.WishlistRemove)
	self.POST("/wishlist/:bookId/issue", me.WishlistIssue)
	self.GET("/notifications", me.Notifications)

	borrowers := NewBorrowersController(cfg.Members, cfg.Circulation)
	users := api.Group("/borrowers", auth.RequireAction(circulation.ActionManageUsers))
	users.GET("", borrowers.Search)
	users.PATCH("/:id/active", borrowers.SetActive)

	reports := NewReportsController(cfg.Circulation)
	circulationReports := api.Group("/reports", auth.RequireAction(circulation.ActionViewCirculationReports))
	circulationReports.GET("/overdue", reports.Overdue)
	circulationReports.GET("/summary", reports.Summary)
	userReports := api.Group("/reports", auth.RequireAction(circulation.ActionViewUserReports))
	userReports.GET("/users", reports.Users)
	userReports.GET("/status", reports.Status)
	userReports.GET("/librarians", reports.Librarians)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auth.RequireAction(circulation.ActionViewUserReports), auditController.GetAuditEvents)
	}

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		ops := api.Group("/tasks", auth.RequireAction(circulation.ActionViewCirculationReports))
		ops.GET("/types", tasksController.ListTaskTypes)
		ops.GET("/:id", tasksController.GetTaskStatus)
		ops.POST("/:type/run", tasksController.RunTask)
	}

	return router
}
