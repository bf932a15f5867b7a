package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/build"
	"github.com/rohmanhakim/coverart-fetcher/internal/config"
	"github.com/rohmanhakim/coverart-fetcher/internal/fetcher"
	"github.com/rohmanhakim/coverart-fetcher/internal/maximise"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider/bandcamp"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider/itunes"
	"github.com/rohmanhakim/coverart-fetcher/internal/queue"
	"github.com/rohmanhakim/coverart-fetcher/internal/transport"
	"github.com/rohmanhakim/coverart-fetcher/pkg/hashutil"
	"github.com/rohmanhakim/coverart-fetcher/pkg/limiter"
	"github.com/rohmanhakim/coverart-fetcher/pkg/retry"
	"github.com/rohmanhakim/coverart-fetcher/pkg/timeutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	requestURLs      []string
	frontOnly        bool
	skipMaximisation bool
	imageTypes       []string
	comment          string
	outputDir        string
	dryRun           bool
	userAgent        string
	timeout          time.Duration
	baseDelay        time.Duration
	jitter           time.Duration
	randomSeed       int64
	maxAttempt       int
	maxImageSize     int64
	hashAlgo         string
)

// parseRequestURLs converts a string slice of URLs to []url.URL
func parseRequestURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("request URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing request URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "coverart-fetcher [flags] URL...",
	Version: build.FullVersion(),
	Short:   "Fetch cover art referenced by music store pages.",
	Long: `coverart-fetcher resolves album pages on supported music stores (or
direct image URLs) to the artwork they reference, fetches each image at
the largest available size, verifies the payload is a real image by its
byte signature, and queues the results with full provenance for review.

Every image URL is fetched at most once per run; provider pages are
re-scanned only while they still have unresolved candidates.`,
	Run: func(cmd *cobra.Command, args []string) {
		urls := append([]string{}, requestURLs...)
		urls = append(urls, args...)
		if len(urls) == 0 {
			fmt.Fprintf(os.Stderr, "Error: provide at least one URL (positional or --url).\n")
			cmd.Usage()
			os.Exit(1)
		}

		parsedURLs, err := parseRequestURLs(urls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := InitConfig(parsedURLs)

		if err := runAcquisition(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringArrayVar(&requestURLs, "url", []string{}, "provider page or direct image URL (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&frontOnly, "front-only", false, "keep only front-cover candidates")
	rootCmd.PersistentFlags().BoolVar(&skipMaximisation, "skip-maximisation", false, "fetch discovered URLs as-is, without trying larger renditions")
	rootCmd.PersistentFlags().StringArrayVar(&imageTypes, "type", []string{}, "artwork type asserted on untyped candidates, e.g. `front` (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&comment, "comment", "", "comment stamped on candidates without one")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "covers", "output directory for queued images")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "resolve and fetch without writing output")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "base delay between provider-page requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "maximum provider-page fetch attempts")
	rootCmd.PersistentFlags().Int64Var(&maxImageSize, "max-image-size", 0, "maximum accepted image size in bytes (0 for default)")
	rootCmd.PersistentFlags().StringVar(&hashAlgo, "hash-algo", "", "content hash algorithm: sha256 or blake3")
}

// InitConfig builds the effective config from the config file or flags.
// requestUrls is a mandatory parameter and must contain at least one valid URL.
func InitConfig(requestUrls []url.URL) config.Config {
	cfg, err := InitConfigWithError(requestUrls)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective config, returning any errors.
// This makes it easier to test error cases.
func InitConfigWithError(requestUrls []url.URL) (config.Config, error) {
	if len(requestUrls) == 0 {
		return config.Config{}, fmt.Errorf("%w: requestUrls cannot be empty", config.ErrInvalidConfig)
	}

	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault(requestUrls)

	if frontOnly {
		configBuilder = configBuilder.WithFrontOnly(frontOnly)
	}

	if skipMaximisation {
		configBuilder = configBuilder.WithSkipMaximisation(skipMaximisation)
	}

	if len(imageTypes) > 0 {
		configBuilder = configBuilder.WithImageTypes(imageTypes)
	}

	if comment != "" {
		configBuilder = configBuilder.WithComment(comment)
	}

	if outputDir != "" && outputDir != "covers" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if maxImageSize > 0 {
		configBuilder = configBuilder.WithMaxImageSizeBytes(maxImageSize)
	}

	if hashAlgo != "" {
		configBuilder = configBuilder.WithHashAlgo(hashAlgo)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// runAcquisition wires the pipeline from config and resolves every request
// URL. Requests failing discovery count as errors; per-image failures are
// downgraded inside the pipeline and only show up in the summary counts.
func runAcquisition(cfg config.Config) error {
	startedAt := time.Now()

	recorder := metadata.NewRecorder(os.Stderr, zerolog.InfoLevel)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)

	httpTransport := transport.NewHTTPTransport(
		&http.Client{Timeout: cfg.Timeout()},
		cfg.MaxImageSizeBytes(),
	)

	pageFetcher := provider.NewPageFetcher(
		&httpTransport,
		rateLimiter,
		retryParam,
		cfg.UserAgent(),
		&recorder,
	)

	registry, err := provider.NewRegistry(
		bandcamp.NewProvider(pageFetcher, &recorder),
		itunes.NewProvider(pageFetcher, &recorder),
	)
	if err != nil {
		return err
	}

	sink := queue.NewDirSink(cfg.OutputDir(), hashutil.HashAlgo(cfg.HashAlgo()), cfg.DryRun(), &recorder)

	imageFetcher := fetcher.NewImageFetcher(
		registry,
		&httpTransport,
		maximise.DefaultRules(),
		&sink,
		&recorder,
		cfg.UserAgent(),
		fetcher.Hooks{
			OnFetchStarted: func(index int, fetchUrl url.URL) {
				fmt.Printf("  [%d] fetching %s\n", index, fetchUrl.String())
			},
		},
	)

	types := make([]artwork.Type, 0, len(cfg.ImageTypes()))
	for _, imageType := range cfg.ImageTypes() {
		types = append(types, artwork.Type(imageType))
	}
	opts := fetcher.NewOptions(cfg.FrontOnly(), cfg.SkipMaximisation())

	ctx := context.Background()
	totalImages := 0
	totalErrors := 0
	for _, requestUrl := range cfg.RequestURLs() {
		fmt.Printf("Resolving %s\n", requestUrl.String())
		result, ferr := imageFetcher.FetchImages(ctx, provider.NewRequest(requestUrl, types, cfg.Comment()), opts)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "  failed: %s\n", ferr.Error())
			totalErrors++
			continue
		}
		for _, image := range result.Images() {
			content := image.Content()
			fmt.Printf("  queued %s (%s, %d bytes)\n", content.FileName(), content.MIMEType(), len(content.Data()))
		}
		totalImages += len(result.Images())
	}

	recorder.RecordFinalRunStats(len(cfg.RequestURLs()), totalImages, totalErrors, time.Since(startedAt))

	fmt.Printf("Done: %d images from %d requests (%d failed)\n", totalImages, len(cfg.RequestURLs()), totalErrors)
	if totalErrors > 0 {
		return fmt.Errorf("%d of %d requests failed", totalErrors, len(cfg.RequestURLs()))
	}
	return nil
}

func ResetFlags() {
	cfgFile = ""
	requestURLs = []string{}
	frontOnly = false
	skipMaximisation = false
	imageTypes = []string{}
	comment = ""
	outputDir = ""
	dryRun = false
	userAgent = ""
	timeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	maxImageSize = 0
	hashAlgo = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetRequestURLsForTest(urls []string) {
	requestURLs = urls
}

func SetFrontOnlyForTest(value bool) {
	frontOnly = value
}

func SetSkipMaximisationForTest(value bool) {
	skipMaximisation = value
}

func SetImageTypesForTest(types []string) {
	imageTypes = types
}

func SetCommentForTest(value string) {
	comment = value
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(value time.Duration) {
	timeout = value
}

func SetBaseDelayForTest(value time.Duration) {
	baseDelay = value
}

func SetJitterForTest(value time.Duration) {
	jitter = value
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetHashAlgoForTest(algo string) {
	hashAlgo = algo
}
