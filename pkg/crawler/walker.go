package crawler

import (
	stderrors "errors"
	"time"

	"github.com/tidwall/gjson"

	errs "weiboscraper/pkg/errors"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
)

// postCardType marks feed cards that carry a status record. Other card types
// are ads, follow suggestions and similar filler.
const postCardType = 9

// pinnedTitle is the badge on a pinned post. Pinned posts float above the
// chronological feed, so an old pinned post must not terminate the walk.
const pinnedTitle = "置顶"

// pageOutcome tells the orchestrator how to proceed after one page
type pageOutcome int

const (
	// pageScanned means the page was processed and the walk continues
	pageScanned pageOutcome = iota
	// pagePastWindow means a non-pinned post older than the window was seen
	pagePastWindow
	// pageExhausted means the feed returned no more cards
	pageExhausted
	// pageError means this page failed; the walk continues with the next one
	pageError
)

// dateWindow is the half-open selection window, inclusive on both ends
type dateWindow struct {
	start time.Time
	end   time.Time
}

// walkPage fetches and scans one timeline page into the crawl state.
// A fetch failure or an ok-false payload drops the whole page but not the
// crawl. Entries are filtered in order: card type, per-post resolution,
// dedup, date window with the pinned exemption, forwarded mode.
func (c *Crawler) walkPage(req models.CrawlRequest, window dateWindow, page int, state *CrawlState) pageOutcome {
	body, err := c.client.FetchTimeline(req.UserID, page)
	if err != nil {
		logger.LogSkippedPage(c.log, req.UserID, page, err)
		return pageError
	}

	root := gjson.ParseBytes(body)
	if !root.Get("ok").Bool() {
		logger.LogSkippedPage(c.log, req.UserID, page, &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "feed page returned ok=0",
		})
		return pageError
	}

	cards := root.Get("data.cards").Array()
	if len(cards) == 0 {
		return pageExhausted
	}

	for _, card := range cards {
		if card.Get("card_type").Int() != postCardType {
			continue
		}
		mblog := card.Get("mblog")

		post, err := c.resolvePost(mblog)
		if err != nil {
			var skip *errs.SkipError
			if stderrors.As(err, &skip) {
				logger.LogSkippedPost(c.log, skip.PostID, string(skip.Reason), skip.Err)
			} else {
				logger.LogSkippedPost(c.log, mblog.Get("id").String(), string(errs.SkipMalformed), err)
			}
			continue
		}

		if state.Seen(post.ID) {
			continue
		}

		created, err := time.Parse(dateLayout, post.CreatedAt)
		if err != nil {
			logger.LogSkippedPost(c.log, mblog.Get("id").String(), string(errs.SkipMalformed), err)
			continue
		}

		if created.Before(window.start) {
			if isPinned(mblog) {
				continue
			}
			return pagePastWindow
		}
		if created.After(window.end) {
			continue
		}

		if post.IsForwarded() && !c.cfg.Crawl.IncludeForwarded {
			continue
		}

		state.Add(post)
	}

	return pageScanned
}

// isPinned reports whether a feed record carries the pinned badge
func isPinned(mblog gjson.Result) bool {
	return mblog.Get("title.text").String() == pinnedTitle
}
