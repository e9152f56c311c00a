package reblog

import (
	"context"
	"time"
)

// Article represents a blog post captured from the source site.
// Content holds the current body, which is replaced by the enhanced version
// once enhancement succeeds. OriginalContent is set once at capture time.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	OriginalContent string    `json:"originalContent"`
	SourceURL       string    `json:"sourceUrl"`
	IsUpdated       bool      `json:"isUpdated"`
	References      []string  `json:"references"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	if a.Content == "" {
		return Errorf(EINVALID, "article content required")
	}
	if a.SourceURL == "" {
		return Errorf(EINVALID, "article source URL required")
	}
	return nil
}

// ArticleService represents a service for managing articles.
type ArticleService interface {
	// CreateArticle creates a new article. OriginalContent defaults to
	// Content when empty.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleByID retrieves an article by ID.
	// Returns ENOTFOUND if article does not exist.
	FindArticleByID(ctx context.Context, id string) (*Article, error)

	// FindArticles retrieves articles matching the filter.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// UpdateArticle applies all fields of upd in a single write.
	// Returns ENOTFOUND if article does not exist.
	UpdateArticle(ctx context.Context, id string, upd ArticleUpdate) (*Article, error)
}

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	ID        *string `json:"id"`
	SourceURL *string `json:"sourceUrl"`
	IsUpdated *bool   `json:"isUpdated"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Match reports whether the article passes the filter's field predicates.
// Offset and Limit are not considered.
func (f ArticleFilter) Match(a *Article) bool {
	if f.ID != nil && a.ID != *f.ID {
		return false
	}
	if f.SourceURL != nil && a.SourceURL != *f.SourceURL {
		return false
	}
	if f.IsUpdated != nil && a.IsUpdated != *f.IsUpdated {
		return false
	}
	return true
}

// Apply returns the articles that match the filter, in their original
// order, with Offset and Limit applied. A zero Limit means no limit.
func (f ArticleFilter) Apply(articles []*Article) []*Article {
	matched := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if f.Match(a) {
			matched = append(matched, a)
		}
	}
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return matched[:0]
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched
}

// ArticleUpdate represents fields that can be updated on an article.
// OriginalContent is intentionally absent: it is written once on create.
type ArticleUpdate struct {
	Content    *string   `json:"content"`
	IsUpdated  *bool     `json:"isUpdated"`
	References *[]string `json:"references"`
}

// Validate returns an error if the update would mark an article as enhanced
// without carrying the enhanced content and its references.
func (u *ArticleUpdate) Validate() error {
	if u.IsUpdated == nil || !*u.IsUpdated {
		return nil
	}
	if u.Content == nil || *u.Content == "" {
		return Errorf(EINVALID, "enhanced article requires content")
	}
	if u.References == nil || len(*u.References) == 0 {
		return Errorf(EINVALID, "enhanced article requires references")
	}
	return nil
}

// PendingArticles returns the articles that have not been enhanced yet,
// preserving order.
func PendingArticles(articles []*Article) []*Article {
	pending := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if !a.IsUpdated {
			pending = append(pending, a)
		}
	}
	return pending
}
