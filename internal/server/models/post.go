package models

import "time"

// Post is a blog entry with a cover image kept in object storage.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageURL"`
	ImageKey    string    `json:"imagePublicId"`
	AuthorID    string    `json:"authorId"`
	Author      *Account  `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PostPatch carries optional changes to a post. Nil fields are left as is.
type PostPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	ImageKey    *string
}
