package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/reblog"
	rebyaml "github.com/fwojciec/reblog/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSite(t *testing.T) {
	t.Parallel()

	t.Run("empty document yields the default profile", func(t *testing.T) {
		t.Parallel()

		site, err := rebyaml.ParseSite(nil)

		require.NoError(t, err)
		assert.Equal(t, reblog.DefaultSite(), site)
	})

	t.Run("derives listing URL from base URL and article path", func(t *testing.T) {
		t.Parallel()

		site, err := rebyaml.ParseSite([]byte(`
name: acme
baseUrl: https://acme.example/
articlePath: /news/
brand: Acme
`))

		require.NoError(t, err)
		assert.Equal(t, reblog.Site{
			Name:        "acme",
			BaseURL:     "https://acme.example/",
			ListingURL:  "https://acme.example/news/",
			ArticlePath: "/news/",
			Brand:       "Acme",
		}, site)
	})

	t.Run("keeps explicit listing URL", func(t *testing.T) {
		t.Parallel()

		site, err := rebyaml.ParseSite([]byte(`
baseUrl: https://acme.example
listingUrl: https://acme.example/news/page/2/
articlePath: /news/
`))

		require.NoError(t, err)
		assert.Equal(t, "https://acme.example/news/page/2/", site.ListingURL)
		assert.Equal(t, "BeyondChats", site.Brand)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := rebyaml.ParseSite([]byte("baseURL: https://acme.example\n"))

		assert.Equal(t, reblog.ECONFIG, reblog.ErrorCode(err))
	})

	t.Run("rejects invalid profile", func(t *testing.T) {
		t.Parallel()

		_, err := rebyaml.ParseSite([]byte("articlePath: news\n"))

		assert.Equal(t, reblog.ECONFIG, reblog.ErrorCode(err))
		assert.Contains(t, reblog.ErrorMessage(err), "article path")
	})
}

func TestLoadSite(t *testing.T) {
	t.Parallel()

	t.Run("reads profile from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: beyondchats-staging\nbaseUrl: https://staging.beyondchats.com\n"), 0o600))

		site, err := rebyaml.LoadSite(path)

		require.NoError(t, err)
		assert.Equal(t, "beyondchats-staging", site.Name)
		assert.Equal(t, "https://staging.beyondchats.com/blogs/", site.ListingURL)
	})

	t.Run("returns ECONFIG for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := rebyaml.LoadSite(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, reblog.ECONFIG, reblog.ErrorCode(err))
	})
}
