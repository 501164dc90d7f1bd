package http

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/fines"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error kind
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// statusFor maps an error kind to its HTTP status. Unavailable and Conflict
// share 409; the body code tells them apart.
func statusFor(err error) int {
	switch errs.Kind(err) {
	case errs.ErrValidation:
		return http.StatusBadRequest
	case errs.ErrAuth:
		return http.StatusUnauthorized
	case errs.ErrNotEligible:
		return http.StatusForbidden
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrUnavailable, errs.ErrConflict:
		return http.StatusConflict
	case errs.ErrStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes err with the status of its kind. Storage and
// unknown failures are logged and reported without their cause.
func respondDomainError(c *gin.Context, err error, context string) {
	status := statusFor(err)
	switch status {
	case http.StatusServiceUnavailable:
		log.Printf("Storage error (%s): %v", context, err)
		c.JSON(status, ErrorResponse{Error: "storage temporarily unavailable, retry", Code: errs.Code(err)})
	case http.StatusInternalServerError:
		respondInternalError(c, err, context)
	default:
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: errs.Code(err)})
	}
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: errs.Code(errs.ErrValidation)})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery reads a YYYY-MM-DD query parameter. A missing parameter
// yields fallback.
func parseDateQuery(c *gin.Context, paramName string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(paramName))
	if raw == "" {
		return fallback, true
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		respondBadRequest(c, paramName+" must be a YYYY-MM-DD date")
		return time.Time{}, false
	}
	return fines.Date(d), true
}

// parsePagination reads limit and offset with limit capped at 100.
func parsePagination(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// bindJSON decodes the request body into req. On failure it responds with a
// 400 and returns false.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
