package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/catalog"
	"github.com/mrlokans/circulation/internal/circulation"
)

type BooksController struct {
	catalog     *catalog.Service
	circulation *circulation.Service
}

func NewBooksController(books *catalog.Service, svc *circulation.Service) *BooksController {
	return &BooksController{
		catalog:     books,
		circulation: svc,
	}
}

// FindAvailable handles GET /api/books?q=
func (bc *BooksController) FindAvailable(c *gin.Context) {
	books, err := bc.catalog.FindAvailable(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondDomainError(c, err, "find available books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// List handles GET /api/books/all, including borrowed books.
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.catalog.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Get handles GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type AddBookRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author" binding:"required"`
	Genre  string `json:"genre"`
}

// Add handles POST /api/books
func (bc *BooksController) Add(c *gin.Context) {
	var req AddBookRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := bc.circulation.AddBook(c.Request.Context(), req.Title, req.Author, req.Genre)
	if err != nil {
		respondDomainError(c, err, "add book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Remove handles DELETE /api/books/:id
func (bc *BooksController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.circulation.RemoveBook(c.Request.Context(), id); err != nil {
		respondDomainError(c, err, "remove book")
		return
	}
	c.Status(http.StatusNoContent)
}
