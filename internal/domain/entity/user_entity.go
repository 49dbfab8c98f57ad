package entity

import "time"

// User is the aggregate root for customer accounts. PersonalData and the
// review list are owned by the user and never persisted on their own.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        RoleSet
	PersonalData UserPersonalData
	Reviews      []Review
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPersonalData holds the contact details of a user. Email is unique
// across users.
type UserPersonalData struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	CellNumber  string
	Email       string
}

// Identity returns the authenticated principal view of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Kind: ActorUser, Roles: u.Roles}
}
