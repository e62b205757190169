package model

import "time"

// Config is the complete Truth Quest configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Judge       LLMConfig         `yaml:"judge" mapstructure:"judge"` // Falls back to LLM when provider is empty
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Sample      SampleConfig      `yaml:"sample" mapstructure:"sample"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Transcripts TranscriptsConfig `yaml:"transcripts" mapstructure:"transcripts"`
	Authority   AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// LLMConfig configures a language model provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures the evidence source
type SearchConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // brave
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	MaxResults        int     `yaml:"max_results" mapstructure:"max_results"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	EnrichPages       int     `yaml:"enrich_pages" mapstructure:"enrich_pages"` // Top N hits to fetch; 0 disables
}

// ExtractConfig configures claim extraction
type ExtractConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// SampleConfig bounds the sample-mode working set
type SampleConfig struct {
	Min int `yaml:"min" mapstructure:"min"`
	Max int `yaml:"max" mapstructure:"max"`
}

// VerifyConfig configures per-fact retry at the verifier boundary
type VerifyConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff" mapstructure:"backoff"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Verifiers    int `yaml:"verifiers" mapstructure:"verifiers"`         // Concurrent fact verifications per run
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"` // Concurrent runs in batch mode
}

// CacheConfig configures the search-result cache
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir      string        `yaml:"dir" mapstructure:"dir"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisURL string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"` // redis:// URL; replaces the disk layer
}

// HTTPConfig configures outbound HTTP
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// TranscriptsConfig locates stored transcripts for video references
type TranscriptsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // Holds <video-id>.json or <video-id>.txt
}

// AuthorityConfig drives source authority classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	AllowOrigins []string      `yaml:"allow_origins" mapstructure:"allow_origins"`
	DailyQuota   int           `yaml:"daily_quota" mapstructure:"daily_quota"` // 0 disables the quota gate
	RunTimeout   time.Duration `yaml:"run_timeout" mapstructure:"run_timeout"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o",
			Timeout:   60,
			MaxTokens: 4000,
		},
		Search: SearchConfig{
			Provider:          "brave",
			MaxResults:        5,
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Extract: ExtractConfig{
			MaxChars: 60000,
		},
		Sample: SampleConfig{
			Min: 5,
			Max: 7,
		},
		Verify: VerifyConfig{
			MaxAttempts: 2,
			Backoff:     time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Verifiers:    4,
			BatchWorkers: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".truthquest-cache",
			TTL:     24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:      20 * time.Second,
			UserAgent:    "TruthQuest/0.1 (+https://github.com/ppiankov/truthquest)",
			MaxBodyBytes: 1_000_000,
		},
		Transcripts: TranscriptsConfig{
			Dir: "transcripts",
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"doi.org", "nih.gov", "nasa.gov", "who.int", "un.org",
				"nature.com", "science.org", "thelancet.com", "nejm.org", "arxiv.org",
				"census.gov", "europa.eu", "data.worldbank.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com", "bbc.co.uk",
				"bbc.com", "nytimes.com", "theguardian.com", "snopes.com", "factcheck.org",
				"politifact.com", "history.com", "smithsonianmag.com",
			},
		},
		Server: ServerConfig{
			Addr:         ":3001",
			AllowOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RunTimeout:   5 * time.Minute,
		},
	}
}
