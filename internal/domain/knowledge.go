package domain

import (
	"strings"
	"time"
)

// ArticleStatus is the editorial state of a knowledge article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticleReview    ArticleStatus = "review"
	ArticlePublished ArticleStatus = "published"
	ArticleArchived  ArticleStatus = "archived"
)

var articleStatuses = []ArticleStatus{ArticleDraft, ArticleReview, ArticlePublished, ArticleArchived}

// ParseArticleStatus matches val against the known statuses ignoring case.
func ParseArticleStatus(val string) (ArticleStatus, bool) {
	for _, s := range articleStatuses {
		if strings.EqualFold(strings.TrimSpace(val), string(s)) {
			return s, true
		}
	}
	return "", false
}

// ArticleVote is reader feedback on an article.
type ArticleVote string

const (
	VoteHelpful    ArticleVote = "helpful"
	VoteNotHelpful ArticleVote = "not_helpful"
)

// Valid reports whether v is a known vote.
func (v ArticleVote) Valid() bool {
	return v == VoteHelpful || v == VoteNotHelpful
}

// KnowledgeArticle is a self-service help page.
type KnowledgeArticle struct {
	ID              string
	Title           string
	Summary         string
	Content         string
	Category        string
	Status          ArticleStatus
	Tags            []string
	AuthorID        *string
	ViewCount       int64
	HelpfulCount    int64
	NotHelpfulCount int64
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
