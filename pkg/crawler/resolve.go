package crawler

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	errs "weiboscraper/pkg/errors"
	"weiboscraper/pkg/models"
	"weiboscraper/pkg/weibo"
)

// extractEmbeddedStatus pulls the status record out of a detail page. The
// page embeds its render data as a JavaScript object; the status payload sits
// between the status key and the hotScheme key that follows it, with a
// trailing comma to trim before the fragment becomes valid JSON again.
func extractEmbeddedStatus(html string) (gjson.Result, error) {
	i := strings.Index(html, weibo.StatusAnchor)
	if i < 0 {
		return gjson.Result{}, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "detail page has no embedded status",
		}
	}
	html = html[i:]

	if j := strings.LastIndex(html, weibo.StatusAnchorEnd); j >= 0 {
		html = html[:j]
	}
	if k := strings.LastIndex(html, ","); k >= 0 {
		html = html[:k]
	}

	wrapped := "{" + html + "}"
	if !gjson.Valid(wrapped) {
		return gjson.Result{}, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "embedded status fragment is not valid JSON",
		}
	}

	status := gjson.Get(wrapped, "status")
	if !status.Exists() || status.Type == gjson.Null {
		return gjson.Result{}, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "embedded render data has no status object",
		}
	}

	return status, nil
}

// resolveBody returns the record whose text field is complete. Truncated
// records carry isLongText and their full body lives on the detail page.
// When the detail fetch or extraction fails the truncated record is used
// as-is; a shortened body is better than a dropped post.
func (c *Crawler) resolveBody(raw gjson.Result) gjson.Result {
	if !raw.Get("isLongText").Bool() {
		return raw
	}

	id, err := strconv.ParseInt(raw.Get("id").String(), 10, 64)
	if err != nil {
		return raw
	}

	html, err := c.client.FetchPostDetail(id)
	if err != nil {
		c.log.WithField("post_id", id).WithError(err).Debug("full text fetch failed, keeping truncated body")
		return raw
	}

	status, err := extractEmbeddedStatus(html)
	if err != nil {
		c.log.WithField("post_id", id).WithError(err).Debug("full text extraction failed, keeping truncated body")
		return raw
	}

	return status
}

// resolvePost turns one raw feed record into a Post, resolving truncated
// bodies for both the post and, for forwards, the post it forwards. The
// final created_at always comes from the feed record: detail pages serve
// timestamps in their own format and the feed's relative form is the one
// the date rules understand. Any failure comes back as a SkipError so the
// walker can log and move on.
func (c *Crawler) resolvePost(raw gjson.Result) (*models.Post, error) {
	post, err := ParsePost(c.resolveBody(raw), c.now())
	if err == nil {
		post.CreatedAt, err = StandardizeDate(raw.Get("created_at").String(), c.now())
	}
	if err != nil {
		return nil, &errs.SkipError{
			Reason: errs.ClassifySkip(err),
			PostID: raw.Get("id").String(),
			Err:    err,
		}
	}

	if rt := raw.Get("retweeted_status"); rt.Exists() && rt.Type != gjson.Null {
		retweet, err := ParsePost(c.resolveBody(rt), c.now())
		if err == nil {
			retweet.CreatedAt, err = StandardizeDate(rt.Get("created_at").String(), c.now())
		}
		if err != nil {
			return nil, &errs.SkipError{
				Reason: errs.ClassifySkip(err),
				PostID: raw.Get("id").String(),
				Err:    err,
			}
		}
		post.Retweet = retweet
	}

	return post, nil
}
