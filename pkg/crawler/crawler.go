// Package crawler walks user timelines page by page, normalizes the raw feed
// records into posts, and hands the selected posts to the media downloader.
package crawler

import (
	"fmt"
	"math/rand"
	"time"

	"weiboscraper/pkg/config"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
	"weiboscraper/pkg/ui"
)

// Client is the API surface the crawler needs from the transport layer
type Client interface {
	FetchTimeline(userID string, page int) ([]byte, error)
	FetchUserInfo(userID string) (*models.UserInfo, error)
	FetchPostDetail(postID int64) (string, error)
	DownloadFile(url string) ([]byte, error)
}

// Pacing between page fetches. After a random run of pages the crawler
// sleeps a random interval, and never sleeps after the final page.
const (
	paceRunMin = 1
	paceRunMax = 5
	pauseMin   = 6 * time.Second
	pauseMax   = 10 * time.Second
)

// Crawler orchestrates one or more crawl requests end to end
type Crawler struct {
	client Client
	cfg    *config.Config
	log    logger.Logger

	// Injectable for tests; real runs use the clock and real sleeps.
	now   func() time.Time
	sleep func(time.Duration)
	rng   *rand.Rand
}

// New creates a Crawler with the real clock and sleeper
func New(cfg *config.Config, client Client, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{
		client: client,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		sleep:  time.Sleep,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run processes the requests in order. A user-info fetch failure aborts the
// whole batch; everything below that level degrades per page, post or file.
func (c *Crawler) Run(requests []models.CrawlRequest) error {
	for _, req := range requests {
		if err := c.CrawlUser(req); err != nil {
			return fmt.Errorf("crawl for user %s failed: %w", req.UserID, err)
		}
	}
	return nil
}

// CrawlUser crawls one user's timeline and downloads the selected media
func (c *Crawler) CrawlUser(req models.CrawlRequest) error {
	info, err := c.client.FetchUserInfo(req.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch user info: %w", err)
	}

	window, err := c.parseWindow(req)
	if err != nil {
		return err
	}

	ui.PrintUserInfo(info)

	pageCount := (info.StatusesCount + c.cfg.Crawl.PageSize - 1) / c.cfg.Crawl.PageSize
	state := NewCrawlState()

	progress := ui.NewProgress("pages", pageCount)
	pagesSincePause := 0
	pauseAfter := c.paceRun()

	for page := 1; page <= pageCount; page++ {
		outcome := c.walkPage(req, window, page, state)
		progress.Advance(state.Count())
		logger.LogCrawlProgress(c.log, req.UserID, page, pageCount, state.Count())

		if outcome == pagePastWindow || outcome == pageExhausted {
			break
		}
		if page == pageCount {
			break
		}

		pagesSincePause++
		if pagesSincePause >= pauseAfter {
			c.sleep(c.pauseDuration())
			pagesSincePause = 0
			pauseAfter = c.paceRun()
		}
	}
	progress.Done()

	c.log.WithFields(map[string]interface{}{
		"user_id":     req.UserID,
		"screen_name": info.ScreenName,
		"selected":    state.Count(),
	}).Info("Timeline walk complete")

	return c.downloadMedia(info, req, state.Posts())
}

// parseWindow converts the request's date strings to an inclusive window
func (c *Crawler) parseWindow(req models.CrawlRequest) (dateWindow, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return dateWindow{}, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return dateWindow{}, fmt.Errorf("invalid end date %q: %w", req.EndDate, err)
	}
	return dateWindow{start: start, end: end}, nil
}

// paceRun picks how many pages to fetch before the next pause
func (c *Crawler) paceRun() int {
	return paceRunMin + c.rng.Intn(paceRunMax-paceRunMin+1)
}

// pauseDuration picks how long the next pause lasts, in whole seconds
func (c *Crawler) pauseDuration() time.Duration {
	steps := int((pauseMax-pauseMin)/time.Second) + 1
	return pauseMin + time.Duration(c.rng.Intn(steps))*time.Second
}
