package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/repository"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// KnowledgeService manages knowledge base articles. Readers without
// knowledge:update only ever see published articles.
type KnowledgeService struct {
	articles repository.KnowledgeRepository
	logger   *zap.Logger
}

// ArticleInput carries writable article fields; nil means unchanged on update.
type ArticleInput struct {
	Title    *string
	Summary  *string
	Content  *string
	Category *string
	Status   *domain.ArticleStatus
	Tags     []string
}

// NewKnowledgeService creates the service.
func NewKnowledgeService(articles repository.KnowledgeRepository, logger *zap.Logger) *KnowledgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{articles: articles, logger: logger}
}

func (s *KnowledgeService) CreateArticle(ctx context.Context, actor *domain.User, input ArticleInput) (*domain.KnowledgeArticle, error) {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionCreate); err != nil {
		return nil, err
	}
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	article := &domain.KnowledgeArticle{Status: domain.ArticleDraft, AuthorID: &actor.ID}
	if err := applyArticle(article, input); err != nil {
		return nil, err
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

func (s *KnowledgeService) ListArticles(ctx context.Context, actor *domain.User, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionRead); err != nil {
		return nil, err
	}
	if !canEditArticles(actor) {
		filter.Statuses = []domain.ArticleStatus{domain.ArticlePublished}
	}
	articles, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if articles == nil {
		articles = []domain.KnowledgeArticle{}
	}
	return articles, nil
}

// GetArticle returns one article and counts the view when it is published.
func (s *KnowledgeService) GetArticle(ctx context.Context, actor *domain.User, id string) (*domain.KnowledgeArticle, error) {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionRead); err != nil {
		return nil, err
	}
	article, err := s.visibleArticle(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if article.Status == domain.ArticlePublished {
		if err := s.articles.RecordView(ctx, article.ID); err != nil {
			s.logger.Warn("failed to count article view", zap.String("article_id", article.ID), zap.Error(err))
		} else {
			article.ViewCount++
		}
	}
	return article, nil
}

func (s *KnowledgeService) UpdateArticle(ctx context.Context, actor *domain.User, id string, input ArticleInput) (*domain.KnowledgeArticle, error) {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionUpdate); err != nil {
		return nil, err
	}
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "article", "article_id", id)
	}
	if err := applyArticle(article, input); err != nil {
		return nil, err
	}
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, lookupError(err, "article", "article_id", id)
	}
	return article, nil
}

func (s *KnowledgeService) DeleteArticle(ctx context.Context, actor *domain.User, id string) error {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return lookupError(err, "article", "article_id", id)
	}
	return nil
}

// Vote records reader feedback. Only published articles take votes.
func (s *KnowledgeService) Vote(ctx context.Context, actor *domain.User, id string, vote domain.ArticleVote) (*domain.KnowledgeArticle, error) {
	if err := requirePermission(actor, policy.ResourceKnowledge, policy.ActionRead); err != nil {
		return nil, err
	}
	if !vote.Valid() {
		return nil, apperrors.NewValidationError("unknown vote", map[string]any{"vote": vote})
	}
	article, err := s.visibleArticle(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.ArticlePublished {
		return nil, apperrors.NewConflict("only published articles accept feedback", map[string]any{
			"article_id": article.ID,
			"status":     article.Status,
		})
	}
	updated, err := s.articles.RecordVote(ctx, article.ID, vote)
	if err != nil {
		return nil, lookupError(err, "article", "article_id", id)
	}
	return updated, nil
}

func (s *KnowledgeService) visibleArticle(ctx context.Context, actor *domain.User, id string) (*domain.KnowledgeArticle, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "article", "article_id", id)
	}
	if article.Status != domain.ArticlePublished && !canEditArticles(actor) {
		return nil, apperrors.NewNotFound("article", map[string]any{"article_id": id})
	}
	return article, nil
}

func canEditArticles(actor *domain.User) bool {
	return actor.Can(policy.ResourceKnowledge, policy.ActionUpdate)
}

// applyArticle copies set fields onto article and stamps the first publication.
func applyArticle(article *domain.KnowledgeArticle, input ArticleInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return apperrors.NewValidationError("title cannot be empty", map[string]any{"field": "title"})
		}
		article.Title = title
	}
	if input.Summary != nil {
		article.Summary = strings.TrimSpace(*input.Summary)
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Category != nil {
		article.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		article.Tags = input.Tags
	}
	if input.Status != nil {
		article.Status = *input.Status
	}
	if article.Status == domain.ArticlePublished && article.PublishedAt == nil {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}
	return nil
}
