package dto

import (
	"time"

	"github.com/deskline/service-desk/internal/domain"
)

// ArticleRequest payload for create and update; omitted fields stay unchanged.
type ArticleRequest struct {
	Title    *string  `json:"title" validate:"omitempty,max=200"`
	Summary  *string  `json:"summary" validate:"omitempty,max=500"`
	Content  *string  `json:"content" validate:"omitempty,max=100000"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Status   *string  `json:"status" validate:"omitempty,article_status"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
}

// VoteRequest payload for article feedback.
type VoteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=helpful not_helpful"`
}

// ArticleResponse is the article representation.
type ArticleResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Summary         string               `json:"summary"`
	Content         string               `json:"content"`
	Category        string               `json:"category"`
	Status          domain.ArticleStatus `json:"status"`
	Tags            []string             `json:"tags"`
	AuthorID        *string              `json:"author_id"`
	ViewCount       int64                `json:"view_count"`
	HelpfulCount    int64                `json:"helpful_count"`
	NotHelpfulCount int64                `json:"not_helpful_count"`
	PublishedAt     *time.Time           `json:"published_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}
