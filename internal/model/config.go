package model

import "time"

// Config holds every tunable for the resolution pipeline. Constructed once
// at worker startup and injected; components never read global state.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Search      SearchConfig      `yaml:"search"`
	Resolver    ResolverConfig    `yaml:"resolver"`
	Cache       CacheConfig       `yaml:"cache"`
	Extractor   ExtractorConfig   `yaml:"extractor"`
	LinkCheck   LinkCheckConfig   `yaml:"link_check"`
	Store       StoreConfig       `yaml:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig covers all outbound HTTP behavior.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy"`
}

// SearchConfig controls the web-search tiers.
type SearchConfig struct {
	// Delay is the minimum interval between outbound searches, enforced
	// globally across both tiers and all callers.
	Delay          time.Duration `yaml:"delay"`
	ScrapeFallback bool          `yaml:"scrape_fallback"`
	RespectRobots  bool          `yaml:"respect_robots"`
	MaxResults     int           `yaml:"max_results"`
}

// ResolverConfig holds the resolution policy thresholds. The 0.3/0.95
// values are empirical, carried over from the original deployment; they are
// configuration precisely because no derivation for them exists.
type ResolverConfig struct {
	CandidateFloor      float64 `yaml:"candidate_floor"`       // discard search results scoring below this
	SurfaceThreshold    float64 `yaml:"surface_threshold"`     // at or above: surface for human review
	AutoAcceptThreshold float64 `yaml:"auto_accept_threshold"` // at or above, for known patterns only: use without review
	MaxQueries          int     `yaml:"max_queries"`           // search queries per resolution attempt
	MaxCandidates       int     `yaml:"max_candidates"`
}

// CacheConfig controls resolution-result caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir"` // non-empty enables the disk layer
}

// ExtractorConfig configures the LLM claim extractor adapter.
type ExtractorConfig struct {
	Provider      string `yaml:"provider"` // "openai" or an OpenAI-compatible endpoint
	Model         string `yaml:"model"`
	APIKey        string `yaml:"-"`
	BaseURL       string `yaml:"base_url"`
	Timeout       int    `yaml:"timeout"` // seconds
	MaxTokens     int    `yaml:"max_tokens"`
	MinTextLength int    `yaml:"min_text_length"`
}

// LinkCheckConfig gates the optional candidate accessibility check.
type LinkCheckConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`
}

// StoreConfig locates the durable verification files.
type StoreConfig struct {
	Path           string `yaml:"path"`            // verified organizations JSON; empty disables the durable tier
	CandidatesPath string `yaml:"candidates_path"` // verification queue snapshot; empty keeps the queue in memory
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "claimresolve/0.1 (+https://github.com/linkedclaims/claimresolve)",
		},
		Search: SearchConfig{
			Delay:          1 * time.Second,
			ScrapeFallback: true,
			RespectRobots:  true,
			MaxResults:     5,
		},
		Resolver: ResolverConfig{
			CandidateFloor:      0.2,
			SurfaceThreshold:    0.3,
			AutoAcceptThreshold: 0.95,
			MaxQueries:          2,
			MaxCandidates:       5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Extractor: ExtractorConfig{
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			Timeout:       60,
			MaxTokens:     2000,
			MinTextLength: 50,
		},
		LinkCheck: LinkCheckConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
			Workers: 5,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 3,
		},
	}
}
