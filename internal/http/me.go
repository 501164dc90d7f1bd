package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/ledger"
)

// MeController serves the logged-in student's own loans, wishlist and
// notifications. Routes are mounted behind RequireAction(ActionBorrow).
type MeController struct {
	circulation *circulation.Service
}

func NewMeController(svc *circulation.Service) *MeController {
	return &MeController{circulation: svc}
}

// Loans handles GET /api/me/loans?status=&q=
func (mc *MeController) Loans(c *gin.Context) {
	status, err := ledger.ParseStatus(c.Query("status"))
	if err != nil {
		respondDomainError(c, err, "loan history")
		return
	}
	loans, err := mc.circulation.History(c.Request.Context(), auth.GetBorrowerID(c), status, c.Query("q"))
	if err != nil {
		respondDomainError(c, err, "loan history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// Borrow handles POST /api/me/loans/:bookId
func (mc *MeController) Borrow(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	loan, err := mc.circulation.IssueToStudent(c.Request.Context(), auth.GetBorrowerID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "borrow book")
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// Return handles POST /api/me/loans/:bookId/return
func (mc *MeController) Return(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	loan, fine, err := mc.circulation.Return(c.Request.Context(), auth.GetBorrowerID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "return book")
		return
	}
	c.JSON(http.StatusOK, ReturnResponse{Loan: loan, Fine: fine})
}

// Renew handles POST /api/me/loans/:bookId/renew
func (mc *MeController) Renew(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	loan, err := mc.circulation.Renew(c.Request.Context(), auth.GetBorrowerID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "renew loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// Wishlist handles GET /api/me/wishlist
func (mc *MeController) Wishlist(c *gin.Context) {
	books, err := mc.circulation.WishlistBooks(c.Request.Context(), auth.GetBorrowerID(c))
	if err != nil {
		respondDomainError(c, err, "wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// WishlistAdd handles POST /api/me/wishlist/:bookId
func (mc *MeController) WishlistAdd(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	if err := mc.circulation.WishlistAdd(c.Request.Context(), auth.GetBorrowerID(c), bookID); err != nil {
		respondDomainError(c, err, "wishlist add")
		return
	}
	c.Status(http.StatusNoContent)
}

// WishlistRemove handles DELETE /api/me/wishlist/:bookId
func (mc *MeController) WishlistRemove(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	if err := mc.circulation.WishlistRemove(c.Request.Context(), auth.GetBorrowerID(c), bookID); err != nil {
		respondDomainError(c, err, "wishlist remove")
		return
	}
	c.Status(http.StatusNoContent)
}

// WishlistIssue handles POST /api/me/wishlist/:bookId/issue
func (mc *MeController) WishlistIssue(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}
	loan, err := mc.circulation.IssueFromWishlist(c.Request.Context(), auth.GetBorrowerID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "issue from wishlist")
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// Notifications handles GET /api/me/notifications
func (mc *MeController) Notifications(c *gin.Context) {
	n, err := mc.circulation.BorrowerNotifications(c.Request.Context(), auth.GetBorrowerID(c), mc.circulation.Today())
	if err != nil {
		respondDomainError(c, err, "notifications")
		return
	}
	c.JSON(http.StatusOK, n)
}
