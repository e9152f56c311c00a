// Package prometheus records pipeline outcomes as Prometheus metrics.
//
// The CLI runs as a batch job, so metrics are written to a node_exporter
// textfile rather than served.
package prometheus

import (
	"github.com/fwojciec/reblog/enhance"
	"github.com/fwojciec/reblog/ingest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "reblog"

// Recorder turns progress events into metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	enhanced          prometheus.Counter
	skipped           *prometheus.CounterVec
	referenceFailures prometheus.Counter
	promptTokens      prometheus.Histogram
	outputChars       prometheus.Histogram
	pending           prometheus.Gauge
	ingested          *prometheus.CounterVec
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		enhanced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "articles_enhanced_total",
			Help:      "Total number of articles rewritten and persisted",
		}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "articles_skipped_total",
			Help:      "Total number of articles left pending, by stage",
		}, []string{"stage"}),
		referenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reference_failures_total",
			Help:      "Total number of reference pages that could not be used",
		}),
		promptTokens: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "prompt_tokens",
			Help:      "Prompt size in tokens",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 8),
		}),
		outputChars: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "generated_chars",
			Help:      "Length of generated articles in characters",
			Buckets:   prometheus.ExponentialBuckets(1000, 2, 6),
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "articles_pending",
			Help:      "Articles awaiting enhancement at batch start",
		}),
		ingested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "articles_ingested_total",
			Help:      "Total number of ingestion attempts, by outcome",
		}, []string{"outcome"}),
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveEnhance records an enhancement progress event. It can be chained
// in front of another progress callback.
func (r *Recorder) ObserveEnhance(ev enhance.ProgressEvent) {
	switch ev.Type {
	case enhance.ProgressBatchStarted:
		if ev.Result != nil {
			r.pending.Set(float64(ev.Result.Pending))
		}
	case enhance.ProgressStage:
		if ev.Stage == enhance.StageGenerating && ev.PromptTokens > 0 {
			r.promptTokens.Observe(float64(ev.PromptTokens))
		}
	case enhance.ProgressReferenceFailed:
		r.referenceFailures.Inc()
	case enhance.ProgressArticleEnhanced:
		r.enhanced.Inc()
		r.outputChars.Observe(float64(ev.Chars))
	case enhance.ProgressArticleSkipped:
		r.skipped.WithLabelValues(string(ev.Stage)).Inc()
	}
}

// ObserveIngest records an ingestion progress event.
func (r *Recorder) ObserveIngest(ev ingest.ProgressEvent) {
	switch ev.Type {
	case ingest.ProgressSaved:
		r.ingested.WithLabelValues("saved").Inc()
	case ingest.ProgressExisting:
		r.ingested.WithLabelValues("existing").Inc()
	case ingest.ProgressFailed:
		r.ingested.WithLabelValues("failed").Inc()
	}
}

// WriteTextfile writes the current metrics to path in the text exposition
// format, replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
