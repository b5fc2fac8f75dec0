package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/config"
	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ingest"
	"github.com/umputun/tradescope/pkg/quota"
	"github.com/umputun/tradescope/pkg/ratelimit"
	"github.com/umputun/tradescope/pkg/repository"
	"github.com/umputun/tradescope/pkg/scheduler"
	"github.com/umputun/tradescope/pkg/scrape"
	"github.com/umputun/tradescope/pkg/service"
	"github.com/umputun/tradescope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	SetupLog(opts.Debug)

	lgr.Printf("[INFO] starting tradescope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Print("[INFO] shutdown complete")
}

// run wires storage, adapters, scheduler and the http server, blocks until ctx is canceled
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if cfg.QuotaAPI.BearerToken != "" {
		SetupLog(opts.Debug, cfg.QuotaAPI.BearerToken)
	}

	srcZone, refZone, err := cfg.Locations()
	if err != nil {
		return fmt.Errorf("invalid time zones: %w", err)
	}
	clk := clock.System{}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		Location:        refZone,
		Clock:           clk,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	limiter := ratelimit.New(clk, rateRules(cfg.RateLimits))
	usage := limiter.Status()
	for _, name := range limiter.Categories() {
		lgr.Printf("[INFO] quota %s: %d calls per %s", name, usage[name].Limit, usage[name].Window)
	}
	normalizer := ingest.NewNormalizer(ingest.TimeZones{Source: srcZone, Reference: refZone, Grace: cfg.Time.GraceMargin}, clk)

	sf := cfg.ScrapedFeed
	scraper := scrape.New(limiter, scrape.Options{
		URLTemplate:        sf.URLTemplate,
		UserAgent:          sf.UserAgent,
		Timeout:            sf.Timeout,
		MinRequestInterval: sf.MinRequestInterval,
		Selectors:          scrape.Selectors(sf.Selectors),
	})

	qa := cfg.QuotaAPI
	quotaClient := quota.NewClient(limiter, service.QuotaToken(repos.Setting, qa.BearerToken), quota.ClientOptions{
		BaseURL:    qa.BaseURL,
		Timeout:    qa.Timeout,
		MaxResults: qa.MaxResults,
		Languages:  qa.Languages,
	})

	sched := scheduler.NewScheduler(scheduler.Params{
		Fetchers: map[domain.Platform]scheduler.Fetcher{
			domain.PlatformScrapedFeed: scraper,
			domain.PlatformQuotaAPI:    quota.NewPoller(quotaClient, quota.DefaultLinkTemplate),
		},
		Sources:    repos.Source,
		Messages:   repos.Message,
		Normalizer: normalizer,
		Settings:   repos.Setting,
		Enabled: map[domain.Platform]bool{
			domain.PlatformScrapedFeed: sf.Enabled,
			domain.PlatformQuotaAPI:    qa.Enabled,
		},
		Clock: clk,
	})

	svc := service.New(service.Params{
		Messages: repos.Message,
		Sources:  repos.Source,
		Settings: repos.Setting,
		Poller:   sched,
		Limits:   limiter,
	})
	go logEvents(ctx, svc.Events())

	sched.Start(ctx, map[domain.Platform]time.Duration{
		domain.PlatformScrapedFeed: sf.PollInterval,
		domain.PlatformQuotaAPI:    qa.PollInterval,
	})
	defer sched.Stop()

	srv := server.New(cfg, svc, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// rateRules converts configured quotas to limiter rules
func rateRules(limits map[string]config.RateLimitConfig) map[string]ratelimit.Rule {
	res := make(map[string]ratelimit.Rule, len(limits))
	for name, l := range limits {
		res[name] = ratelimit.Rule{Window: l.Window, Limit: l.Limit}
	}
	return res
}

// logEvents drains pipeline events into the log
func logEvents(ctx context.Context, events <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev.Kind {
			case domain.EventSourceFailed:
				lgr.Printf("[DEBUG] event %s: %s source %d, %s", ev.Kind, ev.Platform, ev.SourceID, ev.Err)
			case domain.EventNotConfigured:
				lgr.Printf("[DEBUG] event %s: %s", ev.Kind, ev.Platform)
			default:
				lgr.Printf("[DEBUG] event %s: %s source %d, %d new, %d duplicates, %d failed", ev.Kind, ev.Platform,
					ev.SourceID, ev.Inserted, ev.Duplicates, ev.Failed)
			}
		}
	}
}

// SetupLog configures lgr, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
