// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and WORKFORCE_ env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataURL is the published spreadsheet CSV loaded at startup, if set.
	DataURL string `koanf:"data_url"`
	// ConfigSheetURL is the published team configuration sheet, if set.
	ConfigSheetURL string `koanf:"config_sheet_url"`
	// FetchTimeoutMS bounds a single source fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// GeminiModel names the model used for the narrative summary.
	GeminiModel string `koanf:"gemini_model"`
	// GeminiAPIKey enables the narrative summary when non-empty.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// DatabaseURL enables the document-store sync when non-empty.
	DatabaseURL string `koanf:"database_url"`
	// SyncBatchSize caps the rows written per database round trip.
	SyncBatchSize int `koanf:"sync_batch_size"`
	// SyncQueueSize bounds the pending sync jobs.
	SyncQueueSize int `koanf:"sync_queue_size"`
	// SyncWorkers sets the number of sync workers.
	SyncWorkers int `koanf:"sync_workers"`

	// ExcludedCategories are consultant categories dropped after the team merge.
	ExcludedCategories []string `koanf:"excluded_categories"`
	// HiddenCategories are hidden unless explicitly selected in a filter.
	HiddenCategories []string `koanf:"hidden_categories"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		FetchTimeoutMS:     15_000,
		GeminiModel:        "gemini-2.5-flash",
		SyncBatchSize:      450,
		SyncQueueSize:      64,
		SyncWorkers:        2,
		ExcludedCategories: []string{"Externo", "SSFF"},
		HiddenCategories:   []string{"Baja"},
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
