package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	cfgFile  string
	logLevel string
	logFile  string
	quietOut bool
)

var rootCmd = &cobra.Command{
	Use:   "weiboscraper",
	Short: "Crawl Weibo user timelines and download their media",
	Long: `weiboscraper walks the timelines of the users listed in an input file,
collects the posts inside each user's date window, and downloads the
selected pictures and videos into per-user results directories.

Input file format, one request per line:

  user_id [start_date|-] [end_date] [pv|p|v]

A # starts a comment. Dates are YYYY-MM-DD; - keeps the default start.`,
	Version: version,
	Example: `  weiboscraper crawl users.txt
  weiboscraper crawl users.txt --output ./archive --concurrent 5
  weiboscraper users.txt`,
}

// Execute runs the CLI. A bare invocation with an argument that is not a
// known subcommand is treated as "crawl <arg>".
func Execute() {
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") && !isKnownCommand(os.Args[1]) {
		args := append([]string{"crawl"}, os.Args[1:]...)
		rootCmd.SetArgs(args)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// isKnownCommand checks whether an argument names a registered subcommand
func isKnownCommand(name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	switch name {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .weiboscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "run log file (default output_YYYYMMDD.log)")
	rootCmd.PersistentFlags().BoolVarP(&quietOut, "quiet", "q", false, "suppress console output")

	rootCmd.SetVersionTemplate("weiboscraper {{.Version}}\n")
}
