package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/service-desk/internal/domain"
)

// ArticleFilter captures knowledge listing parameters. An empty Statuses
// list matches every status.
type ArticleFilter struct {
	Statuses []domain.ArticleStatus
	Category *string
	Search   *string
	Limit    int
	Offset   int
}

// KnowledgeRepository stores knowledge base articles.
type KnowledgeRepository interface {
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
	Update(ctx context.Context, article *domain.KnowledgeArticle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error)
	// RecordView bumps the view counter without touching updated_at.
	RecordView(ctx context.Context, id string) error
	// RecordVote bumps the matching feedback counter and returns the article.
	RecordVote(ctx context.Context, id string, vote domain.ArticleVote) (*domain.KnowledgeArticle, error)
}

const articleColumns = `id, title, summary, content, category, status, tags, author_id, view_count,
               helpful_count, not_helpful_count, published_at, created_at, updated_at`

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository constructs repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

func (r *knowledgeRepository) Create(ctx context.Context, a *domain.KnowledgeArticle) error {
	const query = `
        INSERT INTO knowledge_articles (title, summary, content, category, status, tags, author_id, published_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		a.Title, a.Summary, a.Content, a.Category, a.Status, nonNilTags(a.Tags), a.AuthorID, a.PublishedAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *knowledgeRepository) Update(ctx context.Context, a *domain.KnowledgeArticle) error {
	const query = `
        UPDATE knowledge_articles SET title=$2, summary=$3, content=$4, category=$5, status=$6, tags=$7,
               published_at=$8, updated_at=NOW()
        WHERE id=$1
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		a.ID, a.Title, a.Summary, a.Content, a.Category, a.Status, nonNilTags(a.Tags), a.PublishedAt,
	).Scan(&a.UpdatedAt)
}

func (r *knowledgeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM knowledge_articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM knowledge_articles WHERE id=$1`, id))
}

func (r *knowledgeRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		p := len(args)
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(summary) LIKE $%d OR LOWER(content) LIKE $%d)", p, p, p))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset, 20)
	query := fmt.Sprintf(`SELECT %s FROM knowledge_articles WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		articleColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *article)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) RecordView(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE knowledge_articles SET view_count=view_count+1 WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) RecordVote(ctx context.Context, id string, vote domain.ArticleVote) (*domain.KnowledgeArticle, error) {
	column := "helpful_count"
	if vote == domain.VoteNotHelpful {
		column = "not_helpful_count"
	}
	query := fmt.Sprintf(`UPDATE knowledge_articles SET %[1]s=%[1]s+1 WHERE id=$1 RETURNING %[2]s`, column, articleColumns)
	return scanArticle(r.pool.QueryRow(ctx, query, id))
}

func scanArticle(row pgx.Row) (*domain.KnowledgeArticle, error) {
	var a domain.KnowledgeArticle
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Summary,
		&a.Content,
		&a.Category,
		&a.Status,
		&a.Tags,
		&a.AuthorID,
		&a.ViewCount,
		&a.HelpfulCount,
		&a.NotHelpfulCount,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
