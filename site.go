package reblog

import (
	"net/url"
	"regexp"
	"strings"
)

// Site describes the source blog that articles are ingested from.
// Its domain is excluded from search results: the site's own pages are
// useless as competing reference material.
type Site struct {
	Name        string `yaml:"name"`
	BaseURL     string `yaml:"baseUrl"`
	ListingURL  string `yaml:"listingUrl"`
	ArticlePath string `yaml:"articlePath"`
	Brand       string `yaml:"brand"`
}

// DefaultSite returns the BeyondChats blog profile.
func DefaultSite() Site {
	return Site{
		Name:        "beyondchats",
		BaseURL:     "https://beyondchats.com",
		ListingURL:  "https://beyondchats.com/blogs/",
		ArticlePath: "/blogs/",
		Brand:       "BeyondChats",
	}
}

// Validate returns an error if the site profile cannot be used.
func (s *Site) Validate() error {
	if s.BaseURL == "" {
		return Errorf(EINVALID, "site base URL required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" {
		return Errorf(EINVALID, "invalid site base URL %q", s.BaseURL)
	}
	if s.ListingURL == "" {
		return Errorf(EINVALID, "site listing URL required")
	}
	if s.ArticlePath == "" || !strings.HasPrefix(s.ArticlePath, "/") {
		return Errorf(EINVALID, "site article path must start with /")
	}
	return nil
}

// Domain returns the site's host without port and without a leading "www.".
func (s *Site) Domain() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsSameSite reports whether rawURL is hosted on domain or one of its subdomains.
// Unparseable URLs are treated as same-site so callers drop them.
func IsSameSite(rawURL, domain string) bool {
	if domain == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// articleHints are path fragments that suggest a page is editorial content.
var articleHints = []string{"blog", "article", "post", "news"}

// HasArticleHint reports whether the URL path looks like a blog post,
// article, or news item.
func HasArticleHint(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, hint := range articleHints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}

// ArticlePathPattern matches URL paths of individual articles directly
// under articlePath, e.g. /blogs/my-post/ for "/blogs/".
func ArticlePathPattern(articlePath string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + articleSlugPattern(articlePath) + `$`)
}

// ArticleURLFilter returns a filter accepting absolute article URLs of the
// site, for use with sitemap discovery.
func (s *Site) ArticleURLFilter() *URLFilter {
	re := regexp.MustCompile(`(?i)^https?://[^/?#]+` + articleSlugPattern(s.ArticlePath) + `$`)
	return &URLFilter{Include: []*regexp.Regexp{re}}
}

func articleSlugPattern(articlePath string) string {
	prefix := "/"
	if trimmed := strings.Trim(articlePath, "/"); trimmed != "" {
		prefix = "/" + trimmed + "/"
	}
	return regexp.QuoteMeta(prefix) + `[a-z0-9][a-z0-9\-]+/?`
}
