package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/entities"
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=&actor_id=&limit=&offset=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, offset := parsePagination(c, 25)

	var actorID uint
	if raw := c.Query("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid actor_id")
			return
		}
		actorID = uint(id)
	}

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if raw := c.Query("type"); raw != "" {
		eventType, ok := entities.ParseAuditEventType(raw)
		if !ok {
			respondBadRequest(c, "unknown audit event type: "+raw)
			return
		}
		events, total, err = ac.auditService.GetEventsByType(c.Request.Context(), eventType, actorID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(c.Request.Context(), actorID, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
