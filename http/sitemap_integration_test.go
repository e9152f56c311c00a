//go:build integration

package http_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/fwojciec/reblog"
	rebloghttp "github.com/fwojciec/reblog/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_Integration_BeyondChatsBlogs(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := rebloghttp.NewSitemapService(nil)
	filter := &reblog.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/blogs/[^/]+/?$`)},
	}

	urls, err := svc.DiscoverURLs(ctx, "https://beyondchats.com", filter)
	require.NoError(t, err)

	assert.NotEmpty(t, urls, "expected blog URLs from beyondchats.com sitemap")
	t.Logf("Found %d blog URLs", len(urls))
	for _, u := range urls[:min(5, len(urls))] {
		t.Logf("  - %s", u)
	}
}
