package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"index-scraper/pkg/config"
	"index-scraper/pkg/fetch"
	"index-scraper/pkg/report"
	"index-scraper/pkg/resolve"
	"index-scraper/pkg/scrape"
	"index-scraper/pkg/utils"
)

func main() {
	// --- Early Initialization & Flags ---
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel) // Default level

	configFileFlag := flag.String("config", "config.yaml", "Path to YAML config file")
	categoryFlag := flag.String("category", "", "Process only this category (default: all)")
	logLevelFlag := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	logFileFlag := flag.String("logfile", "", "Also write logs to this file (e.g. scraper.log)")
	flag.Parse()

	// --- Logger Configuration ---
	level, err := logrus.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevelFlag, err)
	} else {
		log.SetLevel(level)
	}
	if *logFileFlag != "" {
		logFile, err := os.OpenFile(*logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Open log file '%s' error: %v", *logFileFlag, err)
		}
		defer logFile.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	// --- Load Application Configuration ---
	log.Infof("Loading configuration from %s", *configFileFlag)
	yamlFile, err := os.ReadFile(*configFileFlag)
	if err != nil {
		log.Fatalf("Read config file '%s' error: %v", *configFileFlag, err)
	}
	var appCfg config.AppConfig
	if err := yaml.Unmarshal(yamlFile, &appCfg); err != nil {
		log.Fatalf("Parse config file '%s' error: %v", *configFileFlag, err)
	}

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// --- Optional single-category selection ---
	if *categoryFlag != "" {
		urls, ok := appCfg.Categories[*categoryFlag]
		if !ok {
			log.Fatalf("Category '%s' not found in config file '%s'", *categoryFlag, *configFileFlag)
		}
		appCfg.Categories = map[string][]string{*categoryFlag: urls}
	}

	logAppConfig(&appCfg, log)

	// --- Context & Signal Handling ---
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Finishing current target then stopping...", sig)
		cancelRun()

		// Force exit on second signal or timeout
		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()
	defer signal.Stop(sigChan)

	// --- Initialize Components ---
	httpClient := fetch.NewClient(appCfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(httpClient, &appCfg, log)
	rateLimiter := fetch.NewRateLimiter(appCfg.RequestDelay, log)

	var robots *fetch.RobotsHandler
	if appCfg.GetEffectiveRespectRobotsTxt() {
		robots = fetch.NewRobotsHandler(fetcher, rateLimiter, appCfg.UserAgent, logrus.NewEntry(log))
	} else {
		log.Warn("robots.txt checking disabled by configuration")
	}

	resolver := resolve.NewResolver(log)
	scraper := scrape.NewScraper(&appCfg, fetcher, resolver, robots, log)
	runner := scrape.NewBatchRunner(&appCfg, scraper, rateLimiter, robots, log)

	// --- Run Batch ---
	outcomes := runner.Run(runCtx)

	// --- Summary Report ---
	if appCfg.CreateSummary && len(outcomes) > 0 {
		summaryPath := filepath.Join(appCfg.DownloadDir, appCfg.SummaryFilename)
		if err := report.WriteSummary(summaryPath, outcomes); err != nil {
			log.Errorf("Failed to write summary report: %v", err)
		} else {
			log.Infof("Summary saved to: %s", summaryPath)
		}
	}

	// --- Download Directory Tree File ---
	if appCfg.CreateTreeFile && len(outcomes) > 0 {
		treePath := filepath.Join(appCfg.DownloadDir, "downloaded_files.txt")
		if treeErr := utils.GenerateAndSaveTreeStructure(appCfg.DownloadDir, treePath, logrus.NewEntry(log)); treeErr != nil {
			log.Errorf("Failed to generate directory tree file: %v", treeErr)
		} else {
			log.Infof("Saved directory tree to %s", treePath)
		}
	}

	// --- Exit ---
	if errors.Is(runCtx.Err(), context.Canceled) {
		log.Warn("Batch interrupted.")
		os.Exit(1)
	}
	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
		}
	}
	if failed > 0 {
		log.Warnf("Batch completed with %d failed target(s).", failed)
		os.Exit(0)
	}
	log.Info("Batch completed successfully.")
}

// logAppConfig logs the effective configuration
func logAppConfig(appCfg *config.AppConfig, log *logrus.Logger) {
	totalURLs := 0
	for _, urls := range appCfg.Categories {
		totalURLs += len(urls)
	}
	log.Infof("Config: DownloadDir:%s, Categories:%d, URLs:%d", appCfg.DownloadDir, len(appCfg.Categories), totalURLs)
	log.Infof("Config Politeness: RequestDelay:%v, RespectRobots:%t", appCfg.RequestDelay, appCfg.GetEffectiveRespectRobotsTxt())
	log.Infof("Config Retries: Max:%d, Delay:%v (flat)", appCfg.MaxRetries, appCfg.RetryDelay)
	log.Infof("Config HTTP Client: Timeout:%v, MaxIdle:%d, MaxIdlePerHost:%d",
		appCfg.HTTPClientSettings.Timeout, appCfg.HTTPClientSettings.MaxIdleConns, appCfg.HTTPClientSettings.MaxIdleConnsPerHost)
}
