package transpress

import "time"

// Article outcomes reported to Metrics.
const (
	OutcomePublished         = "published"
	OutcomeSkippedDuplicate  = "skipped_duplicate"
	OutcomeTranslationFailed = "translation_failed"
	OutcomePublishFailed     = "publish_failed"
	OutcomeFailed            = "failed"
)

// Image outcomes reported to Metrics.
const (
	ImageRelocated = "relocated"
	ImageFallback  = "fallback"
)

// Metrics records run statistics.
type Metrics interface {
	ArticleProcessed(outcome string, d time.Duration)
	ImageProcessed(outcome string)
	RunFinished(d time.Duration)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) ArticleProcessed(string, time.Duration) {}
func (NopMetrics) ImageProcessed(string)                  {}
func (NopMetrics) RunFinished(time.Duration)              {}
