package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Acquisition scope
	//===============
	// Provider page URLs or direct image URLs to resolve.
	requestURLs []url.URL
	// Keep only front-typed candidates (or the first candidate when no
	// candidate is front-typed).
	frontOnly bool
	// Fetch the discovered URLs as-is, without trying larger renditions.
	skipMaximisation bool
	// Default artwork types asserted on candidates whose provider could
	// not determine one.
	imageTypes []string
	// Default comment stamped on candidates without one.
	comment string

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two provider-page
	// requests to the same host. Image candidates are not throttled.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during provider-page retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Maximum accepted image payload size in bytes. Zero means unbounded.
	maxImageSizeBytes int64

	//===============
	// Output
	//===============
	// Directory in which queued images and their sidecars are written
	outputDir string
	// Whether the program simulates what it would do without actually
	// performing any irreversible or side-effecting actions
	dryRun bool
	// Content hash algorithm for queue idempotence ("sha256" or "blake3")
	hashAlgo string
}

type configDTO struct {
	RequestURLs            []string      `json:"requestUrls"`
	FrontOnly              bool          `json:"frontOnly,omitempty"`
	SkipMaximisation       bool          `json:"skipMaximisation,omitempty"`
	ImageTypes             []string      `json:"imageTypes,omitempty"`
	Comment                string        `json:"comment,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	MaxImageSizeBytes      int64         `json:"maxImageSizeBytes,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
	HashAlgo               string        `json:"hashAlgo,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	requestURLs := make([]url.URL, 0, len(dto.RequestURLs))
	for _, raw := range dto.RequestURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: bad request url %q: %s", ErrInvalidConfig, raw, err.Error())
		}
		requestURLs = append(requestURLs, *parsed)
	}

	// Start with default config
	cfg, err := WithDefault(requestURLs).Build()
	if err != nil {
		return Config{}, err
	}

	// Booleans are used as-is; their zero value means disabled
	cfg.frontOnly = dto.FrontOnly
	cfg.skipMaximisation = dto.SkipMaximisation
	cfg.dryRun = dto.DryRun

	cfg.imageTypes = dto.ImageTypes
	if dto.Comment != "" {
		cfg.comment = dto.Comment
	}

	// For other fields, only override if non-zero value is provided
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.MaxImageSizeBytes != 0 {
		cfg.maxImageSizeBytes = dto.MaxImageSizeBytes
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	if dto.HashAlgo != "" {
		cfg.hashAlgo = dto.HashAlgo
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided request URLs and default
// values for all other fields. requestUrls is mandatory and must not be
// empty - an error will be returned by Build if it is.
func WithDefault(requestUrls []url.URL) *Config {
	defaultConfig := Config{
		requestURLs:            requestUrls,
		frontOnly:              false,
		skipMaximisation:       false,
		imageTypes:             []string{},
		comment:                "",
		baseDelay:              time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                time.Second * 30,
		userAgent:              "coverart-fetcher/1.0",
		maxImageSizeBytes:      64 * 1024 * 1024,
		outputDir:              "covers",
		dryRun:                 false,
		hashAlgo:               "blake3",
	}
	return &defaultConfig
}

func (c *Config) WithRequestUrls(urls []url.URL) *Config {
	c.requestURLs = urls
	return c
}

func (c *Config) WithFrontOnly(frontOnly bool) *Config {
	c.frontOnly = frontOnly
	return c
}

func (c *Config) WithSkipMaximisation(skip bool) *Config {
	c.skipMaximisation = skip
	return c
}

func (c *Config) WithImageTypes(types []string) *Config {
	c.imageTypes = types
	return c
}

func (c *Config) WithComment(comment string) *Config {
	c.comment = comment
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxImageSizeBytes(size int64) *Config {
	c.maxImageSizeBytes = size
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithHashAlgo(algo string) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.requestURLs) == 0 {
		return Config{}, fmt.Errorf("%w: requestUrls cannot be empty", ErrInvalidConfig)
	}
	for _, u := range c.requestURLs {
		if u.Scheme != "http" && u.Scheme != "https" {
			return Config{}, fmt.Errorf("%w: request url %q must be http or https", ErrInvalidConfig, u.String())
		}
	}
	if c.hashAlgo != "sha256" && c.hashAlgo != "blake3" {
		return Config{}, fmt.Errorf("%w: unknown hash algorithm %q", ErrInvalidConfig, c.hashAlgo)
	}
	return *c, nil
}

func (c Config) RequestURLs() []url.URL {
	urls := make([]url.URL, len(c.requestURLs))
	copy(urls, c.requestURLs)
	return urls
}

func (c Config) FrontOnly() bool {
	return c.frontOnly
}

func (c Config) SkipMaximisation() bool {
	return c.skipMaximisation
}

func (c Config) ImageTypes() []string {
	types := make([]string, len(c.imageTypes))
	copy(types, c.imageTypes)
	return types
}

func (c Config) Comment() string {
	return c.comment
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxImageSizeBytes() int64 {
	return c.maxImageSizeBytes
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) HashAlgo() string {
	return c.hashAlgo
}
