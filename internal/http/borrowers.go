package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/membership"
)

type BorrowersController struct {
	members     *membership.Service
	circulation *circulation.Service
}

func NewBorrowersController(members *membership.Service, svc *circulation.Service) *BorrowersController {
	return &BorrowersController{
		members:     members,
		circulation: svc,
	}
}

// Search handles GET /api/borrowers?field=name|username|role&q=
func (bc *BorrowersController) Search(c *gin.Context) {
	borrowers, err := bc.members.Search(c.Request.Context(), c.Query("field"), c.Query("q"))
	if err != nil {
		respondDomainError(c, err, "search borrowers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowers": borrowers, "count": len(borrowers)})
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive handles PATCH /api/borrowers/:id/active
func (bc *BorrowersController) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := bc.circulation.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		respondDomainError(c, err, "set borrower active")
		return
	}
	borrower, err := bc.members.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "set borrower active")
		return
	}
	c.JSON(http.StatusOK, borrower)
}
