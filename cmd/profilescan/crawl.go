package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/profilescan/profilescan/internal/config"
	"github.com/profilescan/profilescan/internal/crawler"
	"github.com/profilescan/profilescan/internal/database"
	"github.com/profilescan/profilescan/internal/extract"
	applog "github.com/profilescan/profilescan/internal/log"
	"github.com/profilescan/profilescan/internal/model"
	"github.com/profilescan/profilescan/internal/pipeline"
	"github.com/profilescan/profilescan/internal/report"
	"github.com/profilescan/profilescan/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl a website and extract people profiles",
		Long: `Crawl fetches pages breadth-first starting from the given URL, staying on
the same host. Each page's visible text is cleaned and sent to a
chat-completion model that returns people profiles (name plus description).

The accumulated directory is saved to profiles.json every few pages and
once more at the end, so an interrupted run keeps its data. The final
directory is printed as JSON to standard output.

When no URL is given, the command asks for one interactively.

The extraction API key is read from the OPENAI_API_KEY environment variable.

Examples:
  # Crawl a single site
  profilescan crawl https://example.com

  # Crawl with a larger page budget and slower pace
  profilescan crawl --max-pages 200 --delay 2s https://example.com

  # Crawl several sites, two at a time
  profilescan crawl --batch 2 https://a.example https://b.example

  # Markdown report written to a file
  profilescan crawl --markdown -o report.md https://example.com

Configuration file (.profilescan) example:
  sites:
    example.com:
      maxPages: 100
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each page request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to process per site")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Politeness delay before each page fetch")
	cmd.Flags().Int("save-every", config.DefaultSaveEvery,
		"Save the profile snapshot every N processed pages")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Extraction flags
	cmd.Flags().String("model", "",
		"Chat model used for extraction (default: the extractor's default)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", 1,
		"Number of sites crawled concurrently when several URLs are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .profilescan in current or home directory)")

	// Output flags
	cmd.Flags().String("data-dir", config.XDGDataDir(),
		"Directory for the profile snapshot and history database")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report instead of JSON (mutually exclusive with --summary)")
	cmd.Flags().BoolP("summary", "s", false,
		"Output human-readable summary instead of JSON (mutually exclusive with --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Skip recording the crawl in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Interactive prompt when no URL argument was given.
	if len(cfg.Targets) == 0 {
		target, err := promptForURL(cmd)
		if err != nil {
			return err
		}
		cfg.Targets = []string{target}
	}

	cfg.APIKey = os.Getenv(config.APIKeyEnvVar)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	verbose := getVerboseFlag(cmd)
	logger := applog.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	cfg.Verbose = verbose

	// Set up context with signal handling for graceful shutdown.
	// On SIGINT the context is cancelled; the pipeline treats this as an
	// interruption and the final snapshot save still runs.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing up...")
		cancel()
	}()

	return runCrawl(ctx, cmd, cfg, logger)
}

// promptForURL asks the user for the base URL on the command's input.
func promptForURL(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter the website URL to crawl: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read URL: %w", err)
		}
		return "", config.ErrNoTarget
	}

	target := strings.TrimSpace(scanner.Text())
	if target == "" {
		return "", config.ErrNoTarget
	}
	return target, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.SaveEvery, err = cmd.Flags().GetInt("save-every")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Model, err = cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.OutputDir, err = cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.SummaryReport, err = cmd.Flags().GetBool("summary")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if !noDB {
		cfg.DBDir = cfg.OutputDir
	}

	// Get positional arguments (base URLs)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl executes the crawl for all configured targets.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"max_pages", cfg.MaxPages,
		"delay", cfg.CrawlDelay,
		"data_dir", cfg.OutputDir,
	)

	// Open history database unless disabled
	var db *database.CrawlDB
	if cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	extractorOpts := []extract.Option{extract.WithLogger(logger)}
	if cfg.Model != "" {
		extractorOpts = append(extractorOpts, extract.WithModel(openai.ChatModel(cfg.Model)))
	}
	extractor := extract.NewOpenAIExtractor(cfg.APIKey, extractorOpts...)

	httpClient := &http.Client{Timeout: cfg.Timeout}

	if len(cfg.Targets) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cmd, cfg, httpClient, extractor, db, logger)
	}
	return runSequentialCrawl(ctx, cmd, cfg, httpClient, extractor, db, logger)
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, httpClient *http.Client, extractor extract.Extractor, db *database.CrawlDB, logger *slog.Logger) error {
	multipleTargets := len(cfg.Targets) > 1

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, err := buildSitePipeline(cfg, target, multipleTargets, httpClient, extractor, db, logger)
		if err != nil {
			return err
		}

		crawlReport := model.NewCrawlReport(target)

		fmt.Fprintf(cmd.OutOrStdout(), "Crawling %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "target", target, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Crawl error for %s: %v\n", target, err)
			continue
		}
		crawlReport.FinishedAt = time.Now()

		elapsed := time.Since(startTime)
		fmt.Fprintf(cmd.OutOrStdout(), "Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls several targets concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, httpClient *http.Client, extractor extract.Extractor, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.Concurrency)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(site string) *pipeline.Pipeline {
			p, err := buildSitePipeline(cfg, site, true, httpClient, extractor, db, logger)
			if err != nil {
				// A pipeline that cannot be built (bad output dir) still
				// gets a placeholder so the batch keeps its shape. The
				// failing step carries the error into the report.
				logger.Error("failed to build pipeline", "site", site, "error", err)
				placeholder := pipeline.New(pipeline.WithLogger(logger))
				placeholder.AddStep(&failingStep{err: err})
				return placeholder
			}
			return p
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(cmd.OutOrStdout(), "[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Targets), crawlReport.BaseURL)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", crawlReport.BaseURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Fprintf(cmd.OutOrStdout(), "\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// failingStep fails immediately with a fixed error.
type failingStep struct {
	err error
}

func (f *failingStep) Do(_ context.Context, _ *model.CrawlReport) error { return f.err }
func (f *failingStep) Name() string                                     { return "setup" }

// buildSitePipeline builds the crawl pipeline for one target, applying
// per-site configuration overrides from the config file.
func buildSitePipeline(cfg *config.Config, target string, multipleTargets bool, httpClient *http.Client, extractor extract.Extractor, db *database.CrawlDB, logger *slog.Logger) (*pipeline.Pipeline, error) {
	siteConfig := siteConfigFor(cfg, target)

	spiderOpts := []crawler.SpiderOption{
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithLogger(logger),
	}
	if siteConfig.MaxPages > 0 {
		spiderOpts = append(spiderOpts, crawler.WithMaxPages(siteConfig.MaxPages))
	}
	if siteConfig.Delay() > 0 {
		spiderOpts = append(spiderOpts, crawler.WithDelay(siteConfig.Delay()))
	}
	if siteConfig.UserAgent != "" {
		spiderOpts = append(spiderOpts, crawler.WithUserAgent(siteConfig.UserAgent))
	}
	if len(siteConfig.Headers) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithHeaders(siteConfig.Headers))
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(siteConfig.IgnorePatterns))
	}

	spider := crawler.NewSpider(httpClient, spiderOpts...)

	snapshot, err := store.NewSnapshot(snapshotDirFor(cfg, target, multipleTargets))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewCrawlExtractStep(spider, extractor, snapshot,
		pipeline.WithSaveEvery(cfg.SaveEvery),
		pipeline.WithCrawlLogger(logger),
	))
	p.AddStep(pipeline.NewSnapshotStep(snapshot, logger))
	if db != nil {
		p.AddStep(pipeline.NewHistoryStep(db, logger))
	}

	return p, nil
}

// siteConfigFor returns the merged site configuration for a target URL.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	host := target
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return cfg.SiteConfigs.GetSiteConfig(host)
}

// snapshotDirFor returns the snapshot directory for a target.
// With several targets each site gets its own subdirectory so the
// snapshot files don't overwrite each other.
func snapshotDirFor(cfg *config.Config, target string, multipleTargets bool) string {
	if !multipleTargets {
		return cfg.OutputDir
	}

	host := target
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return filepath.Join(cfg.OutputDir, host)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(crawlReport)
		return err
	}

	// Human-readable summary
	if cfg.SummaryReport {
		writer := report.NewSimpleWriter(output)
		_, err := writer.Write(crawlReport)
		return err
	}

	// JSON directory output (default): the snapshot shape printed to stdout
	writer := report.NewJSONWriter(output, report.WithPrettyPrint())
	_, err := writer.WriteDirectory(crawlReport.Directory)
	return err
}
