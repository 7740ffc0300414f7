package books

import (
	"time"

	"github.com/google/uuid"
)

// Book is the ownership boundary: every sale reaches exactly one user
// through exactly one book. UserID is immutable after creation.
type Book struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Title       string     `json:"title"`
	ISBN        *string    `json:"isbn,omitempty"`
	Description *string    `json:"description,omitempty"`
	CoverImage  *string    `json:"coverImage,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SalesCount  int64      `json:"salesCount"`
}

// UpsertBookRequest carries the full field set for create and update;
// book edits always replace every field.
type UpsertBookRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	ISBN        *string `json:"isbn,omitempty" validate:"omitempty,max=20"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	CoverImage  *string `json:"coverImage,omitempty"`
	PublishedAt *string `json:"publishedAt,omitempty"`
}
