package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const articleColumns = `id, title, slug, excerpt, summary, content, image_url,
	source_url, source_name, category, tags, is_featured, is_manual, views,
	published_at, created_at, updated_at`

type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// FindBySlug returns nil, nil when no article has the slug.
func (r *SQLArticleRepository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ? LIMIT 1`, slug)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by slug: %w", err)
	}

	return article, nil
}

// Insert stores a new article and sets its ID. Timestamps left zero are set
// to the current time.
func (r *SQLArticleRepository) Insert(ctx context.Context, article *Article) error {
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = article.CreatedAt
	}

	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (
			title, slug, excerpt, summary, content, image_url,
			source_url, source_name, category, tags, is_featured, is_manual, views,
			published_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		article.Title, article.Slug, article.Excerpt, article.Summary, article.Content, article.ImageURL,
		article.SourceURL, article.SourceName, article.Category, string(tagsJSON),
		article.IsFeatured, article.IsManual, article.Views,
		article.PublishedAt.Unix(), article.CreatedAt.Unix(), article.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get article id: %w", err)
	}
	article.ID = id

	return nil
}

// GetLatest returns up to limit articles, newest publication first.
func (r *SQLArticleRepository) GetLatest(ctx context.Context, limit int) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

func (r *SQLArticleRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row scanner) (*Article, error) {
	var article Article
	var excerpt, summary, content, imageURL sql.NullString
	var tags string
	var publishedAt, createdAt, updatedAt int64

	err := row.Scan(
		&article.ID, &article.Title, &article.Slug, &excerpt, &summary, &content, &imageURL,
		&article.SourceURL, &article.SourceName, &article.Category, &tags,
		&article.IsFeatured, &article.IsManual, &article.Views,
		&publishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Excerpt = excerpt.String
	article.Summary = summary.String
	article.Content = content.String
	article.ImageURL = imageURL.String
	article.PublishedAt = time.Unix(publishedAt, 0).UTC()
	article.CreatedAt = time.Unix(createdAt, 0).UTC()
	article.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := json.Unmarshal([]byte(tags), &article.Tags); err != nil {
		article.Tags = []string{}
	}

	return &article, nil
}
