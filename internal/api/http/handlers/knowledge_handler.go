package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/dto"
	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/repository"
	"github.com/deskline/service-desk/internal/service"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// KnowledgeHandler serves knowledge base articles.
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService}
}

func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	article, err := h.service.CreateArticle(c.UserContext(), actor, articleInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": articleResponse(article)})
}

func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter := repository.ArticleFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	for _, part := range splitList(c.Query("status")) {
		status, ok := domain.ParseArticleStatus(part)
		if !ok {
			return apperrors.NewValidationError("unknown article status", map[string]any{"status": part})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		filter.Search = &search
	}
	articles, err := h.service.ListArticles(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, articleResponse(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	article, err := h.service.GetArticle(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	article, err := h.service.UpdateArticle(c.UserContext(), actor, c.Params("id"), articleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteArticle(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Vote POST /knowledge/articles/:id/feedback.
func (h *KnowledgeHandler) Vote(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	article, err := h.service.Vote(c.UserContext(), actor, c.Params("id"), domain.ArticleVote(req.Vote))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

func articleInput(req dto.ArticleRequest) service.ArticleInput {
	input := service.ArticleInput{
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	}
	if req.Status != nil {
		status, _ := domain.ParseArticleStatus(*req.Status)
		input.Status = &status
	}
	return input
}

func articleResponse(a *domain.KnowledgeArticle) dto.ArticleResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.ArticleResponse{
		ID:              a.ID,
		Title:           a.Title,
		Summary:         a.Summary,
		Content:         a.Content,
		Category:        a.Category,
		Status:          a.Status,
		Tags:            tags,
		AuthorID:        a.AuthorID,
		ViewCount:       a.ViewCount,
		HelpfulCount:    a.HelpfulCount,
		NotHelpfulCount: a.NotHelpfulCount,
		PublishedAt:     a.PublishedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
