package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/circulation"
)

type ReportsController struct {
	circulation *circulation.Service
}

func NewReportsController(svc *circulation.Service) *ReportsController {
	return &ReportsController{circulation: svc}
}

// Overdue handles GET /api/reports/overdue?as_of=YYYY-MM-DD
func (rc *ReportsController) Overdue(c *gin.Context) {
	asOf, ok := parseDateQuery(c, "as_of", rc.circulation.Today())
	if !ok {
		return
	}
	report, err := rc.circulation.OverdueReport(c.Request.Context(), asOf)
	if err != nil {
		respondDomainError(c, err, "overdue report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"as_of": asOf.Format("2006-01-02"),
		"loans": report,
		"count": len(report),
	})
}

// Users handles GET /api/reports/users
func (rc *ReportsController) Users(c *gin.Context) {
	report, err := rc.circulation.UserActivityReport(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "user activity report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Status handles GET /api/reports/status
func (rc *ReportsController) Status(c *gin.Context) {
	counts, err := rc.circulation.StatusDistributionReport(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "status distribution report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"distribution": counts})
}

// Librarians handles GET /api/reports/librarians
func (rc *ReportsController) Librarians(c *gin.Context) {
	report, err := rc.circulation.LibrarianReport(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "librarian report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Summary handles GET /api/reports/summary?as_of=YYYY-MM-DD
func (rc *ReportsController) Summary(c *gin.Context) {
	asOf, ok := parseDateQuery(c, "as_of", rc.circulation.Today())
	if !ok {
		return
	}
	summary, err := rc.circulation.CirculationSummary(c.Request.Context(), asOf)
	if err != nil {
		respondDomainError(c, err, "circulation summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
