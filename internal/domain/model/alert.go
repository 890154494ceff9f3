package model

// Severity ranks an alert. Lower rank sorts first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities critical < warning < info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Alert is a utilization anomaly derived from a record set. Alerts are
// rebuilt on every evaluation and never persisted.
type Alert struct {
	Severity    Severity `json:"severity"`
	Rule        string   `json:"rule"`
	Title       string   `json:"title"`
	Consultant  string   `json:"consultant"`
	Detail      string   `json:"detail"`
	MetricLabel string   `json:"metricLabel"`
	// RelatedRecordIDs are exactly the records a consumer should show when
	// the alert is activated.
	RelatedRecordIDs []string `json:"relatedRecordIds"`
}
