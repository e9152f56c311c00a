package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/duckduckgo"
	"github.com/fwojciec/reblog/enhance"
	"github.com/fwojciec/reblog/gemini"
	"github.com/fwojciec/reblog/goquery"
	"github.com/fwojciec/reblog/htmltomarkdown"
	rebloghttp "github.com/fwojciec/reblog/http"
	"github.com/fwojciec/reblog/ingest"
	"github.com/fwojciec/reblog/openai"
	reblogprom "github.com/fwojciec/reblog/prometheus"
	"github.com/fwojciec/reblog/readability"
	"github.com/fwojciec/reblog/scrape"
	"github.com/fwojciec/reblog/serpapi"
	reblogslog "github.com/fwojciec/reblog/slog"
	"github.com/fwojciec/reblog/sqlite"
	"github.com/fwojciec/reblog/trafilatura"
	rebyaml "github.com/fwojciec/reblog/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, open only when a local store is selected.
	DB *sqlite.DB

	// Articles overrides the configured article store. Used by tests.
	Articles reblog.ArticleService

	// Tokenizer builds the prompt token counter for a Gemini model. The
	// default downloads the model vocabulary on first use.
	Tokenizer func(model string) (reblog.TokenCounter, error)

	// TokenizerTimeout bounds Tokenizer. Zero means DefaultTokenizerTimeout.
	TokenizerTimeout time.Duration
}

// DefaultTokenizerTimeout bounds the tokenizer vocabulary download, which
// has no timeout of its own.
const DefaultTokenizerTimeout = 15 * time.Second

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("reblog"),
		kong.Description("Enhance blog articles with LLM rewrites informed by competing articles."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'reblog --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	logger := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	deps.Site = reblog.DefaultSite()
	if cli.SiteFile != "" {
		if deps.Site, err = rebyaml.LoadSite(cli.SiteFile); err != nil {
			return err
		}
	}

	// Credentials are checked before anything touches the network.
	var (
		generator reblog.Generator
		provider  reblog.Provider
	)
	if cmd == "enhance" {
		if provider, err = reblog.ParseProvider(cli.Provider); err != nil {
			return err
		}
		if generator, err = m.newGenerator(ctx, provider, cli, stderr); err != nil {
			return err
		}
		if cli.Verbose {
			generator = reblogslog.NewLoggingGenerator(generator, cli.Provider, logger)
		}
	}

	if err := m.openArticles(cli, stderr); err != nil {
		return err
	}
	defer m.Close()
	deps.Articles = m.Articles

	var fetcher reblog.Fetcher = rebloghttp.NewFetcher()
	defer fetcher.Close()
	if cli.Verbose {
		fetcher = reblogslog.NewLoggingFetcher(fetcher, logger)
	}

	// list and show only need the store.
	switch cmd {
	case "enhance":
		scraper := &scrape.Scraper{
			Fetcher:   fetcher,
			Extractor: referenceExtractor(cli.Enhance.Extractor, deps.Site.Brand),
			Converter: htmltomarkdown.NewConverter(),
		}

		e := enhance.New(m.Articles, newSearcher(cli, deps.Site, logger), withScrapeLogging(scraper, cli.Verbose, logger), generator)
		e.Delay = cli.Enhance.Delay
		e.SearchLimit = cli.Enhance.Results
		e.Tokens = m.TokenCounter(provider, cli.Model)
		deps.Enhancer = e

		if cli.Enhance.MetricsFile != "" {
			deps.Metrics = reblogprom.NewRecorder()
		}

	case "ingest":
		var sitemaps reblog.SitemapService = rebloghttp.NewSitemapService(nil)
		if cli.Verbose {
			sitemaps = reblogslog.NewLoggingSitemapService(sitemaps, logger)
		}

		scraper := &scrape.Scraper{
			Fetcher:     fetcher,
			Extractor:   goquery.NewArticleExtractor(deps.Site.Brand),
			RetryDelays: scrape.DefaultRetryDelays(),
		}

		deps.Ingester = &ingest.Ingester{
			Fetcher:     fetcher,
			Sitemaps:    sitemaps,
			Scraper:     withScrapeLogging(scraper, cli.Verbose, logger),
			Articles:    m.Articles,
			Limiter:     ingest.NewDomainLimiter(1.0),
			Site:        deps.Site,
			Concurrency: cli.Ingest.Concurrency,
		}

		if cli.Ingest.MetricsFile != "" {
			deps.Metrics = reblogprom.NewRecorder()
		}
	}

	return kongCtx.Run(deps)
}

// newGenerator builds the generator for the selected provider. A missing
// key is reported as ECONFIG.
func (m *Main) newGenerator(ctx context.Context, provider reblog.Provider, cli *CLI, stderr io.Writer) (reblog.Generator, error) {
	switch provider {
	case reblog.ProviderOpenAI:
		if cli.OpenAIKey == "" {
			fmt.Fprintln(stderr, "Hint: Set OPENAI_API_KEY or pass --openai-key")
			return nil, reblog.Errorf(reblog.ECONFIG, "OpenAI API key not configured")
		}
		var opts []openai.Option
		if cli.Model != "" {
			opts = append(opts, openai.WithModel(cli.Model))
		}
		return openai.NewGenerator(cli.OpenAIKey, opts...), nil

	default:
		client, err := gemini.NewClient(ctx, gemini.ClientConfig{APIKey: cli.GeminiKey})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set GEMINI_API_KEY or pass --gemini-key. Get a key at https://aistudio.google.com/apikey")
			return nil, err
		}
		return gemini.NewGenerator(client, cli.Model), nil
	}
}

// TokenCounter returns a prompt token counter for provider, or nil when
// none applies. Only Gemini has a local tokenizer; counting OpenAI prompts
// with it would misreport their size. A tokenizer that fails or does not
// load within the timeout is dropped, since counts only feed progress
// output and metrics.
func (m *Main) TokenCounter(provider reblog.Provider, model string) reblog.TokenCounter {
	if provider != reblog.ProviderGemini {
		return nil
	}
	if model == "" {
		model = gemini.DefaultModel
	}
	build := m.Tokenizer
	if build == nil {
		build = func(model string) (reblog.TokenCounter, error) { return gemini.NewTokenCounter(model) }
	}
	timeout := m.TokenizerTimeout
	if timeout <= 0 {
		timeout = DefaultTokenizerTimeout
	}

	type built struct {
		tc  reblog.TokenCounter
		err error
	}
	done := make(chan built, 1)
	go func() {
		tc, err := build(model)
		done <- built{tc, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b := <-done:
		if b.err != nil {
			return nil
		}
		return b.tc
	case <-timer.C:
		return nil
	}
}

// openArticles selects the article store: the injected one, a local SQLite
// database, or the HTTP API.
func (m *Main) openArticles(cli *CLI, stderr io.Writer) error {
	if m.Articles != nil {
		return nil
	}

	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set REBLOG_DB to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		m.Articles = sqlite.NewArticleService(m.DB)
		return nil
	}

	m.Articles = rebloghttp.NewArticleService(cli.StoreURL, nil)
	return nil
}

// newSearcher chains SerpAPI, when a key is configured, in front of
// DuckDuckGo.
func newSearcher(cli *CLI, site reblog.Site, logger *slog.Logger) reblog.Searcher {
	var primary, fallback reblog.Searcher
	fallback = duckduckgo.NewSearcher(site.Domain())
	if cli.SerpAPIKey != "" {
		primary = serpapi.NewSearcher(cli.SerpAPIKey, site.Domain())
	}

	if cli.Verbose {
		fallback = reblogslog.NewLoggingSearcher(fallback, "duckduckgo", logger)
		if primary != nil {
			primary = reblogslog.NewLoggingSearcher(primary, "serpapi", logger)
		}
	}
	return &reblog.FallbackSearcher{Primary: primary, Fallback: fallback}
}

func referenceExtractor(name, brand string) reblog.Extractor {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	default:
		return goquery.NewReferenceExtractor(brand)
	}
}

func withScrapeLogging(s reblog.Scraper, verbose bool, logger *slog.Logger) reblog.Scraper {
	if !verbose {
		return s
	}
	return reblogslog.NewLoggingScraper(s, logger)
}
