package common

// Shared constants to avoid magic strings scattered across packages.

// HTTP headers and content types
const (
	HeaderAPIKey    = "X-API-Key" // #nosec G101 - header name constant, not a credential
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"
)

// API paths
const (
	PathHealthz     = "/healthz"
	PathMetrics     = "/metrics"
	PathJobs        = "/v1/jobs"
	PathSchedule    = "/v1/schedule"
	PathReviewQueue = "/v1/review-queue"
	PathLabels      = "/v1/labels"
	PathInference   = "/v1/inference"
)

// Well-known task and job names
const (
	TaskActiveLearning = "active_learning"
	TaskInference      = "inference"
)

// Active-learning defaults
const (
	DefaultUncertaintyThreshold = 0.15
	DefaultSampleLimit          = 25
	DefaultTextPreviewLen       = 1000
)

// Scheduler bounds surfaced to operators. The schedule store itself accepts
// any interval of at least one minute; only the dashboard enforces this range.
const (
	MinIntervalMinutes     = 30
	MaxIntervalMinutes     = 1440
	DefaultIntervalMinutes = 360
)

// Manual label values
const (
	LabelDisinformation = "Disinformation"
	LabelUncertain      = "Uncertain"
	LabelLegit          = "Legit"
)

// ValidLabel reports whether s is one of the accepted manual labels.
func ValidLabel(s string) bool {
	switch s {
	case LabelDisinformation, LabelUncertain, LabelLegit:
		return true
	}
	return false
}

// Metadata record types
const (
	TypeArticle         = "article"
	TypeTweet           = "tweet"
	TypeVideoTranscript = "video_transcript"
	TypeUnknown         = "unknown"
)
