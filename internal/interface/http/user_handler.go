package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
	"github.com/oksasatya/maisrole-api/pkg/helpers"
	"github.com/oksasatya/maisrole-api/pkg/validation"
)

type userService interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	Register(ctx context.Context, in application.RegisterUserInput) (*entity.User, error)
	Update(ctx context.Context, id int64, in application.UpdateUserInput) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

type userAuthenticator interface {
	AuthenticateUser(ctx context.Context, username, password string) (*entity.User, error)
}

type UserHandler struct {
	Svc     userService
	Auth    userAuthenticator
	Tokens  application.TokenIssuer
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc userService, auth userAuthenticator, tokens application.TokenIssuer, cookies *helpers.CookieManager) *UserHandler {
	return &UserHandler{Svc: svc, Auth: auth, Tokens: tokens, Cookies: cookies}
}

type personalDataRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"max=32"`
	CellNumber  string `json:"cell_number" binding:"max=32"`
	Email       string `json:"email" binding:"required,email"`
}

type registerUserRequest struct {
	Username     string               `json:"username" binding:"required,username"`
	Password     string               `json:"password" binding:"required,pwd"`
	PersonalData *personalDataRequest `json:"personal_data" binding:"required"`
}

type loginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username    *string  `json:"username" binding:"omitempty,username"`
	Password    *string  `json:"password" binding:"omitempty,pwd"`
	FirstName   *string  `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string  `json:"last_name" binding:"omitempty,max=100"`
	DateOfBirth *string  `json:"date_of_birth" binding:"omitempty,max=32"`
	CellNumber  *string  `json:"cell_number" binding:"omitempty,max=32"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Roles       []string `json:"roles" binding:"omitempty,min=1,dive,oneof=USER ADMIN HOST"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	pd := req.PersonalData
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
		PersonalData: entity.UserPersonalData{
			FirstName: pd.FirstName, LastName: pd.LastName, DateOfBirth: pd.DateOfBirth,
			CellNumber: pd.CellNumber, Email: pd.Email,
		},
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toUserView(u), "user registered")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	u, err := h.Auth.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	tok, exp, err := h.Tokens.Issue(u.Identity())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.Cookies.SetAccess(c, tok, exp)
	respond(c, http.StatusOK, userLoginView{Token: tok, ExpiresAt: exp, User: toUserView(u)}, "login successful")
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	respond(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toUserView(u), "user")
}

func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	out := make([]userView, len(users))
	for i := range users {
		out[i] = toUserView(&users[i])
	}
	respond(c, http.StatusOK, out, "users")
}

// Update runs behind PolicyUpdateUser. Changing roles additionally needs
// PolicyGrantRoles.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	in := application.UpdateUserInput{
		Username: req.Username, Password: req.Password,
		FirstName: req.FirstName, LastName: req.LastName, DateOfBirth: req.DateOfBirth,
		CellNumber: req.CellNumber, Email: req.Email,
	}
	if req.Roles != nil {
		if !middleware.Check(c, application.PolicyGrantRoles, 0) {
			return
		}
		in.Roles = make([]entity.Role, 0, len(req.Roles))
		for _, r := range req.Roles {
			role, ok := entity.ParseRole(r)
			if !ok {
				middleware.Fail(c, oops.Code("INVALID_ROLE").With("role", r).Public("Unknown role "+r).Wrap(middleware.ErrBadRequest))
				return
			}
			in.Roles = append(in.Roles, role)
		}
		// An admin keeps ADMIN on their own account.
		if self := middleware.IdentityFrom(c); self != nil && self.ID == id && !entity.NewRoleSet(in.Roles...).Has(entity.RoleAdmin) {
			middleware.Fail(c, domain.Invalid("ADMIN_ROLE_REQUIRED", "An admin cannot remove their own ADMIN role."))
			return
		}
	}
	u, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toUserView(u), "user updated")
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		middleware.Fail(c, err)
		return
	}
	if self := middleware.IdentityFrom(c); self != nil && self.ID == id && self.Kind == entity.ActorUser {
		h.Cookies.Clear(c)
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "user deleted")
}
