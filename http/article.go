package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/reblog"
)

// DefaultStoreTimeout bounds each call to the Article Store API.
const DefaultStoreTimeout = 30 * time.Second

// Ensure ArticleService implements reblog.ArticleService.
var _ reblog.ArticleService = (*ArticleService)(nil)

// ArticleService is a client for the Article Store REST API rooted at
// baseURL (e.g. http://127.0.0.1:8000/api). The store exposes no query
// parameters, so filters are applied client-side.
type ArticleService struct {
	client  *http.Client
	baseURL string
}

// NewArticleService returns a client for the store at baseURL.
// If client is nil, one with DefaultStoreTimeout is used.
func NewArticleService(baseURL string, client *http.Client) *ArticleService {
	if client == nil {
		client = &http.Client{Timeout: DefaultStoreTimeout}
	}
	return &ArticleService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateArticle posts a new article and copies the stored fields back
// into article.
func (s *ArticleService) CreateArticle(ctx context.Context, article *reblog.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}
	body := createRequest{
		Title:      article.Title,
		Content:    article.Content,
		SourceURL:  article.SourceURL,
		References: article.References,
	}
	var out articleJSON
	if err := s.do(ctx, http.MethodPost, "/articles", body, &out); err != nil {
		return err
	}
	*article = *out.toArticle()
	return nil
}

// FindArticleByID returns ENOTFOUND if the store has no such article.
func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*reblog.Article, error) {
	var out articleJSON
	if err := s.do(ctx, http.MethodGet, "/articles/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toArticle(), nil
}

// FindArticles lists all articles in the order the store returns them
// and filters them locally.
func (s *ArticleService) FindArticles(ctx context.Context, filter reblog.ArticleFilter) ([]*reblog.Article, error) {
	var out []articleJSON
	if err := s.do(ctx, http.MethodGet, "/articles", nil, &out); err != nil {
		return nil, err
	}
	articles := make([]*reblog.Article, 0, len(out))
	for i := range out {
		articles = append(articles, out[i].toArticle())
	}
	return filter.Apply(articles), nil
}

// UpdateArticle sends every set field of upd in one PUT request.
func (s *ArticleService) UpdateArticle(ctx context.Context, id string, upd reblog.ArticleUpdate) (*reblog.Article, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	var out articleJSON
	if err := s.do(ctx, http.MethodPut, "/articles/"+url.PathEscape(id), updateRequest(upd), &out); err != nil {
		return nil, err
	}
	return out.toArticle(), nil
}

func (s *ArticleService) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return reblog.Errorf(reblog.ENOTFOUND, "article not found: %s", path)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return reblog.Errorf(reblog.EINVALID, "store rejected article: %s", storeMessage(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return reblog.Errorf(reblog.EINTERNAL, "%s %s: HTTP %d: %s", method, path, resp.StatusCode, storeMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return reblog.Errorf(reblog.EMALFORMED, "decoding %s %s response: %v", method, path, err)
	}
	return nil
}

// storeMessage extracts the "message" field of an error body, falling back
// to the raw text.
func storeMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}

type createRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	SourceURL  string   `json:"source_url"`
	References []string `json:"references,omitempty"`
}

type updateRequest reblog.ArticleUpdate

func (u updateRequest) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3)
	if u.Content != nil {
		m["content"] = *u.Content
	}
	if u.IsUpdated != nil {
		m["is_updated"] = *u.IsUpdated
	}
	if u.References != nil {
		m["references"] = *u.References
	}
	return json.Marshal(m)
}

// articleJSON is the store's snake_case representation.
type articleJSON struct {
	ID              flexString  `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Content         string      `json:"content"`
	OriginalContent string      `json:"original_content"`
	SourceURL       string      `json:"source_url"`
	IsUpdated       flexBool    `json:"is_updated"`
	References      flexStrings `json:"references"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at"`
}

func (a *articleJSON) toArticle() *reblog.Article {
	return &reblog.Article{
		ID:              string(a.ID),
		Title:           a.Title,
		Slug:            a.Slug,
		Content:         a.Content,
		OriginalContent: a.OriginalContent,
		SourceURL:       a.SourceURL,
		IsUpdated:       bool(a.IsUpdated),
		References:      []string(a.References),
		CreatedAt:       parseTimestamp(a.CreatedAt),
		UpdatedAt:       parseTimestamp(a.UpdatedAt),
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// flexStrings accepts a JSON array of strings, null, or a string holding
// an encoded array, which is how the store returns an uncast json column.
// A bare non-array string is taken as a single element.
type flexStrings []string

func (v *flexStrings) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*v = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		switch {
		case s == "" || s == "null":
			*v = nil
			return nil
		case !strings.HasPrefix(s, "["):
			*v = flexStrings{s}
			return nil
		}
		b = []byte(s)
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("references must be an array of strings: %w", err)
	}
	*v = list
	return nil
}

// flexBool accepts true/false as well as the 0/1 integers some database
// drivers return for boolean columns.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true", "1", `"1"`, `"true"`:
		*v = true
	case "false", "0", `"0"`, `"false"`, "null":
		*v = false
	default:
		return fmt.Errorf("invalid boolean %s", b)
	}
	return nil
}

// timestampLayouts covers RFC 3339 (with optional fraction) and the
// space-separated SQL datetime form.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC()
	}
	return time.Time{}
}
