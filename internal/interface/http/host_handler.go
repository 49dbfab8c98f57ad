package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
	"github.com/oksasatya/maisrole-api/pkg/helpers"
	"github.com/oksasatya/maisrole-api/pkg/validation"
)

type hostService interface {
	Get(ctx context.Context, id int64) (*entity.Host, error)
	GetAll(ctx context.Context) ([]entity.Host, error)
	Register(ctx context.Context, in application.RegisterHostInput) (*entity.Host, error)
	Update(ctx context.Context, id int64, in application.UpdateHostInput) (*entity.Host, error)
	Delete(ctx context.Context, id int64) error
}

type hostAuthenticator interface {
	AuthenticateHost(ctx context.Context, email, password string) (*entity.Host, error)
}

type HostHandler struct {
	Svc     hostService
	Auth    hostAuthenticator
	Tokens  application.TokenIssuer
	Cookies *helpers.CookieManager
}

func NewHostHandler(svc hostService, auth hostAuthenticator, tokens application.TokenIssuer, cookies *helpers.CookieManager) *HostHandler {
	return &HostHandler{Svc: svc, Auth: auth, Tokens: tokens, Cookies: cookies}
}

type contactRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=32"`
	Mobile    string `json:"mobile" binding:"max=32"`
	Instagram string `json:"instagram" binding:"max=100"`
	Facebook  string `json:"facebook" binding:"max=100"`
}

type registerHostRequest struct {
	Name     string          `json:"name" binding:"required,max=120"`
	Password string          `json:"password" binding:"required,pwd"`
	Contact  *contactRequest `json:"contact" binding:"required"`
	Agenda   []string        `json:"agenda" binding:"omitempty,dive,weekday"`
}

type loginHostRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateHostRequest struct {
	Name      *string  `json:"name" binding:"omitempty,max=120"`
	Password  *string  `json:"password" binding:"omitempty,pwd"`
	Email     *string  `json:"email" binding:"omitempty,email"`
	Phone     *string  `json:"phone" binding:"omitempty,max=32"`
	Mobile    *string  `json:"mobile" binding:"omitempty,max=32"`
	Instagram *string  `json:"instagram" binding:"omitempty,max=100"`
	Facebook  *string  `json:"facebook" binding:"omitempty,max=100"`
	Agenda    []string `json:"agenda" binding:"omitempty,dive,weekday"`
}

// parseAgenda keeps nil distinct from empty so updates can clear the agenda.
func parseAgenda(names []string) []entity.Weekday {
	if names == nil {
		return nil
	}
	out := make([]entity.Weekday, 0, len(names))
	for _, n := range names {
		if d, ok := entity.ParseWeekday(n); ok {
			out = append(out, d)
		}
	}
	return out
}

func (h *HostHandler) Register(c *gin.Context) {
	var req registerHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	ct := req.Contact
	host, err := h.Svc.Register(c.Request.Context(), application.RegisterHostInput{
		Name:     req.Name,
		Password: req.Password,
		Contact: entity.Contact{
			Email: ct.Email, Phone: ct.Phone, Mobile: ct.Mobile, Instagram: ct.Instagram, Facebook: ct.Facebook,
		},
		Agenda: parseAgenda(req.Agenda),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toHostView(host), "host registered")
}

func (h *HostHandler) Login(c *gin.Context) {
	var req loginHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	host, err := h.Auth.AuthenticateHost(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	tok, exp, err := h.Tokens.Issue(host.Identity())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.Cookies.SetAccess(c, tok, exp)
	respond(c, http.StatusOK, hostLoginView{
		Token:     tok,
		ExpiresAt: exp,
		Email:     host.Contact.Email,
		Name:      host.Name,
		Host:      toHostView(host),
	}, "login successful")
}

func (h *HostHandler) Get(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	host, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toHostView(host), "host")
}

func (h *HostHandler) GetAll(c *gin.Context) {
	hosts, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	out := make([]hostView, len(hosts))
	for i := range hosts {
		out[i] = toHostView(&hosts[i])
	}
	respond(c, http.StatusOK, out, "hosts")
}

func (h *HostHandler) Update(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	var req updateHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	host, err := h.Svc.Update(c.Request.Context(), id, application.UpdateHostInput{
		Name: req.Name, Password: req.Password, Email: req.Email, Phone: req.Phone,
		Mobile: req.Mobile, Instagram: req.Instagram, Facebook: req.Facebook,
		Agenda: parseAgenda(req.Agenda),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toHostView(host), "host updated")
}

func (h *HostHandler) Delete(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		middleware.Fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	respond(c, http.StatusOK, gin.H{"id": id}, "host deleted")
}
