// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "haircheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourcesConfig holds settings for the publication-source finder.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// TopKeywords is the number of summary keywords sent to the works
	// search (default 10).
	TopKeywords int `json:"top_keywords" yaml:"top_keywords" mapstructure:"top_keywords"`

	// SimilarityThreshold is the minimum summary-to-work cosine
	// similarity for a work to count toward a venue (default 0.2).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// PerPage is the number of works requested from OpenAlex (default
	// 200, the API maximum).
	PerPage int `json:"per_page" yaml:"per_page" mapstructure:"per_page"`

	// Page is the result page fetched. The finder issues exactly one
	// page request (default 1).
	Page int `json:"page" yaml:"page" mapstructure:"page"`

	// YearsBack bounds the publication-year filter: works from the
	// current year back through YearsBack years earlier (default 1,
	// i.e. the current and previous year).
	YearsBack int `json:"years_back" yaml:"years_back" mapstructure:"years_back"`

	// MailTo is sent as the OpenAlex mailto parameter for polite pool
	// access. Usually loaded from .secrets/openalex-email.
	MailTo string `json:"mailto,omitempty" yaml:"mailto,omitempty" mapstructure:"mailto"`
}

// DetectConfig holds settings for the object-detection oracle.
type DetectConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the inference service endpoint (e.g. "http://localhost:9090").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// ConfidenceFloor is the minimum confidence for a detection to be
	// accepted (default 0.5).
	ConfidenceFloor float64 `json:"confidence_floor" yaml:"confidence_floor" mapstructure:"confidence_floor"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the database file location (default "data/haircheck.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// RecommendationsFile is an optional YAML file of per-class
	// recommendations seeded into the store at startup.
	RecommendationsFile string `json:"recommendations_file,omitempty" yaml:"recommendations_file,omitempty" mapstructure:"recommendations_file"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Listen is the address the server binds to (default ":8000").
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`

	// AllowedOrigins lists CORS origins permitted to call the API.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// PublicBaseURL is the externally visible base URL used when
	// building image links in responses.
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url" mapstructure:"public_base_url"`
}

// Config groups all component configurations for the service.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Sources SourcesConfig `json:"sources" yaml:"sources" mapstructure:"sources"`
	Detect  DetectConfig  `json:"detect" yaml:"detect" mapstructure:"detect"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
}
