package reblog_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/reblog"
	"github.com/stretchr/testify/assert"
)

func TestComposer_Compose(t *testing.T) {
	t.Parallel()

	article := &reblog.Article{Title: "Why Chatbots Matter", Content: "<p>Chatbots answer customers.</p>"}
	refs := []*reblog.Page{
		{URL: "https://example.com/blog/one", Content: "First reference body."},
		{URL: "https://other.org/post/two", Content: "Second reference body."},
	}

	t.Run("contains article title and content", func(t *testing.T) {
		t.Parallel()

		prompt := reblog.NewComposer().Compose(article, refs)

		assert.Contains(t, prompt, "Title: Why Chatbots Matter")
		assert.Contains(t, prompt, "Content: <p>Chatbots answer customers.</p>")
	})

	t.Run("numbers references with their URLs", func(t *testing.T) {
		t.Parallel()

		prompt := reblog.NewComposer().Compose(article, refs)

		assert.Contains(t, prompt, "Reference Article 1 (https://example.com/blog/one):\nFirst reference body.")
		assert.Contains(t, prompt, "Reference Article 2 (https://other.org/post/two):\nSecond reference body.")
		assert.Less(t, strings.Index(prompt, "Reference Article 1"), strings.Index(prompt, "Reference Article 2"))
	})

	t.Run("includes instruction block", func(t *testing.T) {
		t.Parallel()

		prompt := reblog.NewComposer().Compose(article, refs)

		assert.Contains(t, prompt, "INSTRUCTIONS:")
		assert.Contains(t, prompt, "HTML formatting")
		assert.Contains(t, prompt, "DO NOT copy content directly")
		assert.Contains(t, prompt, "core message")
		assert.Contains(t, prompt, "same length as the original or slightly longer")
	})

	t.Run("bounds article content", func(t *testing.T) {
		t.Parallel()

		long := &reblog.Article{Title: "T", Content: strings.Repeat("a", 10000)}
		c := &reblog.Composer{MaxArticleChars: 3000, MaxReferenceChars: 2000}

		prompt := c.Compose(long, nil)

		assert.Contains(t, prompt, strings.Repeat("a", 3000))
		assert.NotContains(t, prompt, strings.Repeat("a", 3001))
	})

	t.Run("bounds each reference", func(t *testing.T) {
		t.Parallel()

		c := &reblog.Composer{MaxArticleChars: 3000, MaxReferenceChars: 2000}
		long := []*reblog.Page{
			{URL: "https://example.com/blog/x", Content: strings.Repeat("x", 9000)},
			{URL: "https://example.com/blog/y", Content: strings.Repeat("y", 9000)},
		}

		prompt := c.Compose(article, long)

		assert.Contains(t, prompt, strings.Repeat("x", 2000))
		assert.NotContains(t, prompt, strings.Repeat("x", 2001))
		assert.Contains(t, prompt, strings.Repeat("y", 2000))
		assert.NotContains(t, prompt, strings.Repeat("y", 2001))
	})

	t.Run("zero bounds use defaults", func(t *testing.T) {
		t.Parallel()

		long := &reblog.Article{Title: "T", Content: strings.Repeat("b", 5000)}

		prompt := (&reblog.Composer{}).Compose(long, nil)

		assert.Contains(t, prompt, strings.Repeat("b", reblog.DefaultMaxArticleChars))
		assert.NotContains(t, prompt, strings.Repeat("b", reblog.DefaultMaxArticleChars+1))
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("returns short strings unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello", reblog.Truncate("hello", 10))
	})

	t.Run("cuts to n characters", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hel", reblog.Truncate("hello", 3))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()

		got := reblog.Truncate("héllo wörld", 5)

		assert.Equal(t, "héllo", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("non-positive bound yields empty string", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, reblog.Truncate("hello", 0))
	})
}
