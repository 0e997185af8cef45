package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "constitution-qa/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CorpusConfig holds settings for the corpus index.
type CorpusConfig struct {
	HTTPConfig `yaml:",inline"`

	// DataDir is the base directory for corpus data (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the maximum number of passages returned per retrieval
	// (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ClassifierConfig holds settings for query classification.
type ClassifierConfig struct {
	// RulesFile is an optional YAML file overriding the built-in
	// meta-phrase and domain-keyword rule sets.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

// CompletionConfig holds settings for the hosted completion service.
type CompletionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the completion model identifier
	// (e.g. "mistralai/mistral-7b-instruct").
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer credential for the completion service. Treated
	// as an opaque secret; never logged.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the completion endpoint. Empty uses the default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Referer is the HTTP-Referer identification header required by the
	// completion service.
	Referer string `json:"referer" yaml:"referer"`

	// AppTitle is the X-Title identification header.
	AppTitle string `json:"app_title" yaml:"app_title"`

	// MaxRetries bounds retries on rate-limited requests (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// HistoryConfig holds settings for chat history persistence.
type HistoryConfig struct {
	// DataDir is the base directory for chat data (contains chats.db).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Completion CompletionConfig `json:"completion" yaml:"completion"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
