package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weiboscraper/pkg/config"
	"weiboscraper/pkg/crawler"
	"weiboscraper/pkg/input"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/ui"
	"weiboscraper/pkg/weibo"
)

var (
	outputDir        string
	concurrent       int
	retries          int
	includeForwarded bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <input-file>",
	Short: "Crawl the users listed in an input file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "", "results directory (default ./results)")
	crawlCmd.Flags().IntVarP(&concurrent, "concurrent", "c", 0, "concurrent media downloads")
	crawlCmd.Flags().IntVar(&retries, "retries", -1, "download retry attempts")
	crawlCmd.Flags().BoolVar(&includeForwarded, "include-forwarded", false, "also collect forwarded posts")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	// Parse the request file before anything touches the network so a
	// malformed file fails fast.
	requests, err := input.ParseFile(args[0], time.Now())
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("input file %s contains no crawl requests", args[0])
	}

	flags := map[string]interface{}{
		"output":    outputDir,
		"log-level": logLevel,
		"log-file":  logFile,
	}
	if concurrent > 0 {
		flags["concurrent"] = concurrent
	}
	if retries >= 0 {
		flags["retries"] = retries
	}
	if cmd.Flags().Changed("include-forwarded") {
		flags["include-forwarded"] = includeForwarded
	}

	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	ui.SetQuiet(quietOut)

	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"requests": len(requests),
		"output":   cfg.Output.BaseDirectory,
	}).Info("Starting crawl")

	client := weibo.NewClient(cfg, log)
	return crawler.New(cfg, client, log).Run(requests)
}
