package entity

import "time"

// Review is posted by a user. AuthorID references the owning user; the
// review is removed together with its author.
type Review struct {
	ID       int64
	AuthorID int64
	PostDate time.Time
	Rating   int
	Text     string
}
