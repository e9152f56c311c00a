package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/reblog"
	"github.com/fwojciec/reblog/enhance"
	"github.com/fwojciec/reblog/ingest"
	reblogprom "github.com/fwojciec/reblog/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Site     reblog.Site
	Articles reblog.ArticleService
	Enhancer *enhance.Enhancer
	Ingester *ingest.Ingester
	Metrics  *reblogprom.Recorder
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	StoreURL   string `name:"store-url" env:"REBLOG_STORE_URL" default:"http://127.0.0.1:8000/api" help:"Article store API base URL"`
	DB         string `name:"db" env:"REBLOG_DB" help:"Use a local SQLite article store at this path instead of the API"`
	SiteFile   string `name:"site" env:"REBLOG_SITE" type:"existingfile" help:"YAML site profile (defaults to the BeyondChats blog)"`
	Provider   string `name:"provider" env:"LLM_PROVIDER" default:"gemini" help:"LLM provider: openai or gemini"`
	Model      string `name:"model" env:"LLM_MODEL" help:"Override the provider's default model"`
	OpenAIKey  string `name:"openai-key" env:"OPENAI_API_KEY" help:"OpenAI API key"`
	GeminiKey  string `name:"gemini-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	SerpAPIKey string `name:"serpapi-key" env:"SERPAPI_KEY" help:"SerpAPI key; without it searches go to DuckDuckGo"`
	Verbose    bool   `short:"v" help:"Log every request to stderr"`

	Enhance EnhanceCmd `cmd:"" help:"Rewrite pending articles using competing articles as reference"`
	Ingest  IngestCmd  `cmd:"" help:"Capture the oldest articles from the source blog"`
	List    ListCmd    `cmd:"" help:"List stored articles"`
	Show    ShowCmd    `cmd:"" help:"Show one stored article"`
}

// EnhanceCmd is the "enhance" subcommand.
type EnhanceCmd struct {
	ID          string        `help:"Enhance only the article with this ID"`
	Delay       time.Duration `default:"60s" help:"Pause between articles to respect provider rate limits"`
	Results     int           `short:"n" default:"2" help:"Search results to use as references per article"`
	Extractor   string        `enum:"goquery,trafilatura,readability" default:"goquery" help:"Reference content extractor (goquery, trafilatura, readability)"`
	MetricsFile string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile when done"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Count       int    `short:"n" default:"5" help:"Number of oldest articles to capture"`
	Concurrency int    `short:"c" default:"3" help:"Concurrent fetch limit"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile when done"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Pending bool `help:"Only show articles that have not been enhanced"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID       string `arg:"" help:"Article ID"`
	Original bool   `help:"Print the original content instead of the current one"`
}
