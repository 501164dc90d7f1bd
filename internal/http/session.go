package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/audit"
	"github.com/mrlokans/circulation/internal/auth"
	"github.com/mrlokans/circulation/internal/circulation"
	"github.com/mrlokans/circulation/internal/entities"
	"github.com/mrlokans/circulation/internal/errs"
	"github.com/mrlokans/circulation/internal/membership"
)

// SessionController handles login, logout and self-registration.
type SessionController struct {
	members     *membership.Service
	circulation *circulation.Service
	sessions    *auth.SessionManager
	audit       *audit.Service
}

func NewSessionController(members *membership.Service, svc *circulation.Service, sessions *auth.SessionManager, auditor *audit.Service) *SessionController {
	return &SessionController{
		members:     members,
		circulation: svc,
		sessions:    sessions,
		audit:       auditor,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// SessionResponse describes the logged-in borrower and where the client
// should take them.
type SessionResponse struct {
	Borrower *entities.Borrower `json:"borrower"`
	Home     string             `json:"home"`
}

// Login handles POST /api/session.
func (sc *SessionController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	role, ok := entities.ParseRole(req.Role)
	if !ok {
		respondBadRequest(c, "unknown role: "+req.Role)
		return
	}

	borrower, err := sc.members.Authenticate(c.Request.Context(), req.Username, req.Password, role)
	if err != nil {
		if errs.Kind(err) == errs.ErrAuth {
			sc.audit.LogAuth(0, "login", req.Username, false)
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error: "invalid username, password or role",
				Code:  errs.Code(err),
			})
			return
		}
		respondDomainError(c, err, "login")
		return
	}

	if err := sc.sessions.CreateSession(c.Request, borrower); err != nil {
		respondInternalError(c, err, "create session")
		return
	}
	sc.audit.LogAuth(borrower.ID, "login", borrower.Username, true)

	c.JSON(http.StatusOK, SessionResponse{
		Borrower: borrower,
		Home:     circulation.PolicyFor(borrower.Role).Home,
	})
}

// Logout handles DELETE /api/session.
func (sc *SessionController) Logout(c *gin.Context) {
	id := auth.GetBorrowerID(c)
	if err := sc.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	if id != 0 {
		sc.audit.LogAuth(id, "logout", auth.GetUsername(c), true)
	}
	c.Status(http.StatusNoContent)
}

// Whoami handles GET /api/session.
func (sc *SessionController) Whoami(c *gin.Context) {
	id := auth.GetBorrowerID(c)
	if id == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in", Code: errs.Code(errs.ErrAuth)})
		return
	}

	borrower, err := sc.members.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "whoami")
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		Borrower: borrower,
		Home:     circulation.PolicyFor(borrower.Role).Home,
	})
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register handles POST /api/register. Anyone may register as a student;
// staff accounts need an administrator's session.
func (sc *SessionController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	role := entities.RoleStudent
	if req.Role != "" {
		var ok bool
		if role, ok = entities.ParseRole(req.Role); !ok {
			respondBadRequest(c, "unknown role: "+req.Role)
			return
		}
	}
	if role != entities.RoleStudent {
		if err := circulation.Authorize(auth.GetRole(c), circulation.ActionManageUsers); err != nil {
			respondDomainError(c, errs.NotEligible("only administrators can register %s accounts", role), "register")
			return
		}
	}

	borrower, err := sc.circulation.Register(c.Request.Context(), req.Name, req.Username, req.Password, role)
	if err != nil {
		respondDomainError(c, err, "register")
		return
	}
	c.JSON(http.StatusCreated, borrower)
}
