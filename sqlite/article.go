package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/reblog"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ reblog.ArticleService = (*ArticleService)(nil)

const articleColumns = "id, title, slug, content, original_content, source_url, is_updated, refs, created_at, updated_at"

// ArticleService implements reblog.ArticleService using SQLite.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// CreateArticle creates a new article with a generated ID and slug.
// A second article with the same source URL is rejected with EINVALID.
func (s *ArticleService) CreateArticle(ctx context.Context, article *reblog.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	existing, err := s.FindArticles(ctx, reblog.ArticleFilter{SourceURL: &article.SourceURL, Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return reblog.Errorf(reblog.EINVALID, "article with source URL %s already exists", article.SourceURL)
	}

	slug, err := s.uniqueSlug(ctx, article.Title, article.SourceURL)
	if err != nil {
		return err
	}

	if article.OriginalContent == "" {
		article.OriginalContent = article.Content
	}
	if article.References == nil {
		article.References = []string{}
	}
	refs, err := json.Marshal(article.References)
	if err != nil {
		return fmt.Errorf("failed to encode references: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	insert := func(slug string) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO articles (`+articleColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, article.Title, slug, article.Content, article.OriginalContent,
			article.SourceURL, article.IsUpdated, string(refs),
			formatTimestamp(now), formatTimestamp(now))
		return err
	}

	// A concurrent insert can take the slug between the check and the
	// insert; the hashed slug is unique per source URL.
	err = insert(slug)
	if hashed := hashedSlug(article.Title, article.SourceURL); isUniqueViolation(err, "articles.slug") && slug != hashed {
		slug = hashed
		err = insert(slug)
	}
	switch {
	case isUniqueViolation(err, "articles.source_url"):
		return reblog.Errorf(reblog.EINVALID, "article with source URL %s already exists", article.SourceURL)
	case err != nil:
		return err
	}

	article.ID = id
	article.Slug = slug
	article.CreatedAt = now
	article.UpdatedAt = now
	return nil
}

// uniqueSlug derives a slug from title. When it is taken, a hash of the
// source URL is appended.
func (s *ArticleService) uniqueSlug(ctx context.Context, title, sourceURL string) (string, error) {
	slug := slugify(title)
	if slug == "" {
		return shortHash(sourceURL), nil
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE slug = ?", slug).Scan(&n); err != nil {
		return "", err
	}
	if n == 0 {
		return slug, nil
	}
	return hashedSlug(title, sourceURL), nil
}

// hashedSlug is the collision form of a slug, suffixed with a hash of the
// source URL.
func hashedSlug(title, sourceURL string) string {
	if slug := slugify(title); slug != "" {
		return slug + "-" + shortHash(sourceURL)
	}
	return shortHash(sourceURL)
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// column, given as table.column.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// FindArticleByID retrieves an article by ID.
func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*reblog.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reblog.Errorf(reblog.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// FindArticles retrieves articles matching the filter, newest first.
func (s *ArticleService) FindArticles(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + articleColumns + " FROM articles WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	if filter.IsUpdated != nil {
		query.WriteString(" AND is_updated = ?")
		args = append(args, *filter.IsUpdated)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*reblog.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// UpdateArticle writes every field set in upd with one statement, so an
// article is never marked updated without its new content and references.
func (s *ArticleService) UpdateArticle(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTimestamp(time.Now())}

	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.IsUpdated != nil {
		sets = append(sets, "is_updated = ?")
		args = append(args, *upd.IsUpdated)
	}
	if upd.References != nil {
		refs, err := json.Marshal(*upd.References)
		if err != nil {
			return nil, fmt.Errorf("failed to encode references: %w", err)
		}
		sets = append(sets, "refs = ?")
		args = append(args, string(refs))
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, "UPDATE articles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, reblog.Errorf(reblog.ENOTFOUND, "article not found")
	}

	return s.FindArticleByID(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*reblog.Article, error) {
	var (
		a                    reblog.Article
		refs                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.OriginalContent,
		&a.SourceURL, &a.IsUpdated, &refs, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(refs), &a.References); err != nil {
		return nil, fmt.Errorf("failed to decode references: %w", err)
	}

	var err error
	if a.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
