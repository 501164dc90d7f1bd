package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/fines"
)

// LoansController lets staff issue and take back books on a student's
// behalf.
type LoansController struct {
	circulation *circulation.Service
}

func NewLoansController(svc *circulation.Service) *LoansController {
	return &LoansController{circulation: svc}
}

type LoanRequest struct {
	BorrowerID uint `json:"borrower_id" binding:"required"`
	BookID     uint `json:"book_id" binding:"required"`
}

// ReturnResponse is a closed loan with the fine charged for it.
type ReturnResponse struct {
	Loan *entities.Loan `json:"loan"`
	Fine fines.Amount   `json:"fine"`
}

// Issue handles POST /api/loans
func (lc *LoansController) Issue(c *gin.Context) {
	var req LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	loan, err := lc.circulation.IssueToStudent(c.Request.Context(), req.BorrowerID, req.BookID)
	if err != nil {
		respondDomainError(c, err, "issue book")
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// Return handles POST /api/loans/return
func (lc *LoansController) Return(c *gin.Context) {
	var req LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	loan, fine, err := lc.circulation.Return(c.Request.Context(), req.BorrowerID, req.BookID)
	if err != nil {
		respondDomainError(c, err, "return book")
		return
	}
	c.JSON(http.StatusOK, ReturnResponse{Loan: loan, Fine: fine})
}
