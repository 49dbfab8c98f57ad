package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/pkg/response"
)

// Public JSON views. Password hashes never leave the service layer.

type personalDataView struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	CellNumber  string `json:"cell_number"`
	Email       string `json:"email"`
}

type reviewView struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	PostDate time.Time `json:"post_date"`
	Rating   int       `json:"rating"`
	Text     string    `json:"text"`
}

type userView struct {
	ID           int64            `json:"id"`
	Username     string           `json:"username"`
	Roles        []string         `json:"roles"`
	PersonalData personalDataView `json:"personal_data"`
	Reviews      []reviewView     `json:"reviews,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type contactView struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Mobile    string `json:"mobile"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
}

type hostView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Contact   contactView `json:"contact"`
	Agenda    []string    `json:"agenda"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type userLoginView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

type hostLoginView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Host      hostView  `json:"host"`
}

func toReviewView(r entity.Review) reviewView {
	return reviewView{ID: r.ID, UserID: r.AuthorID, PostDate: r.PostDate, Rating: r.Rating, Text: r.Text}
}

func toReviewViews(rs []entity.Review) []reviewView {
	out := make([]reviewView, len(rs))
	for i, r := range rs {
		out[i] = toReviewView(r)
	}
	return out
}

func toUserView(u *entity.User) userView {
	pd := u.PersonalData
	v := userView{
		ID:       u.ID,
		Username: u.Username,
		Roles:    u.Roles.Strings(),
		PersonalData: personalDataView{
			FirstName: pd.FirstName, LastName: pd.LastName, DateOfBirth: pd.DateOfBirth,
			CellNumber: pd.CellNumber, Email: pd.Email,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if len(u.Reviews) > 0 {
		v.Reviews = toReviewViews(u.Reviews)
	}
	return v
}

func toHostView(h *entity.Host) hostView {
	c := h.Contact
	return hostView{
		ID:   h.ID,
		Name: h.Name,
		Contact: contactView{
			Email: c.Email, Phone: c.Phone, Mobile: c.Mobile, Instagram: c.Instagram, Facebook: c.Facebook,
		},
		Agenda:    h.Agenda.Names(),
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func respond[T any](c *gin.Context, status int, data T, message string) {
	response.Success(c, status, data, message, nil)
}
