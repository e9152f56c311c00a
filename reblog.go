// Package reblog enhances blog articles with large-language-model rewrites.
// It ingests articles from a source blog, looks up competing reference
// material through web search, scrapes those references, and asks an LLM to
// rewrite each article using them as stylistic inspiration.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, serpapi/).
package reblog
