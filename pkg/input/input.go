// Package input parses the crawl request file. Each line names a target
// account with an optional date window and media selection:
//
//	user_id [start_date|-] [end_date] [media_selector]
//
// A # starts a comment. Lines whose first token is not all digits are
// ignored, which lets header text live in the file without markup.
package input

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"weiboscraper/pkg/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseFile reads crawl requests from a file
func ParseFile(path string, now time.Time) ([]models.CrawlRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	return Parse(lines, now)
}

// Parse converts input lines to crawl requests. Format violations are fatal
// so a miswritten file is caught before any network activity.
func Parse(lines []string, now time.Time) ([]models.CrawlRequest, error) {
	var requests []models.CrawlRequest

	for i, line := range lines {
		if strings.Count(line, "#") > 1 {
			return nil, fmt.Errorf("line %d: more than one # in %q", i+1, line)
		}
		if j := strings.Index(line, "#"); j >= 0 {
			line = line[:j]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !isDigits(fields[0]) {
			continue
		}

		req, err := parseRequest(fields, now)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// parseRequest interprets one line's tokens. The media selector, when
// present, is always the last token; the dates fill in left to right.
func parseRequest(fields []string, now time.Time) (models.CrawlRequest, error) {
	req := models.CrawlRequest{
		UserID:    fields[0],
		StartDate: models.DefaultStartDate,
		EndDate:   now.Format("2006-01-02"),
		Media:     models.MediaAll,
	}
	rest := fields[1:]

	if len(rest) > 0 {
		if media, err := models.ParseMediaSelector(rest[len(rest)-1]); err == nil {
			req.Media = media
			rest = rest[:len(rest)-1]
		}
	}

	if len(rest) > 0 {
		switch {
		case rest[0] == "-":
			// Keep the default start
		case datePattern.MatchString(rest[0]):
			req.StartDate = rest[0]
		default:
			return models.CrawlRequest{}, fmt.Errorf("invalid start date %q", rest[0])
		}
	}

	if len(rest) > 1 {
		if !datePattern.MatchString(rest[1]) {
			return models.CrawlRequest{}, fmt.Errorf("invalid end date %q", rest[1])
		}
		req.EndDate = rest[1]
	}

	if len(rest) > 2 {
		return models.CrawlRequest{}, fmt.Errorf("unexpected trailing tokens %v", rest[2:])
	}

	return req, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
