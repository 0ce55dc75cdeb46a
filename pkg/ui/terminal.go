// Package ui renders the console surface: colored status lines, the user
// summary, and the per-user page progress bar.
package ui

import (
	"fmt"
	"sync/atomic"

	"weiboscraper/pkg/models"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

var quiet atomic.Bool

// SetQuiet suppresses all console output from this package
func SetQuiet(q bool) {
	quiet.Store(q)
}

func colorize(color, s string) string {
	return color + s + colorReset
}

// Cyan returns the string wrapped in cyan
func Cyan(s string) string { return colorize(colorCyan, s) }

// Green returns the string wrapped in green
func Green(s string) string { return colorize(colorGreen, s) }

// Yellow returns the string wrapped in yellow
func Yellow(s string) string { return colorize(colorYellow, s) }

// Red returns the string wrapped in red
func Red(s string) string { return colorize(colorRed, s) }

// Magenta returns the string wrapped in magenta
func Magenta(s string) string { return colorize(colorMagenta, s) }

// PrintInfo prints an informational line
func PrintInfo(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	fmt.Printf(Cyan("ℹ ")+format+"\n", args...)
}

// PrintSuccess prints a success line
func PrintSuccess(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	fmt.Printf(Green("✓ ")+format+"\n", args...)
}

// PrintWarning prints a warning line
func PrintWarning(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	fmt.Printf(Yellow("⚠ ")+format+"\n", args...)
}

// PrintError prints an error line
func PrintError(format string, args ...interface{}) {
	if quiet.Load() {
		return
	}
	fmt.Printf(Red("✗ ")+format+"\n", args...)
}

// PrintUserInfo prints the summary block shown before a user's crawl starts
func PrintUserInfo(info *models.UserInfo) {
	if quiet.Load() {
		return
	}
	fmt.Println()
	fmt.Printf("%s %s\n", Cyan("User:"), info.ScreenName)
	if info.Verified && info.VerifiedReason != "" {
		fmt.Printf("%s %s\n", Cyan("Verified:"), info.VerifiedReason)
	}
	fmt.Printf("%s %d posts, %d followers, %d following\n",
		Cyan("Stats:"), info.StatusesCount, info.FollowersCount, info.FollowCount)
	if info.Description != "" {
		fmt.Printf("%s %s\n", Cyan("Bio:"), info.Description)
	}
	fmt.Println()
}
