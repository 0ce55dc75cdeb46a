package crawler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"weiboscraper/pkg/models"
	"weiboscraper/pkg/richtext"
)

const dateLayout = "2006-01-02"

// Ordered preference for video renditions. The first variant present wins.
var videoVariants = []string{"mp4_720p_mp4", "mp4_hd_url", "mp4_sd_url"}

// ParseCount converts an engagement count to an integer. The API abbreviates
// large counts with a 万 suffix (units of ten thousand); those are expanded
// by appending four zeros before conversion, so fractional forms like 1.5万
// do not convert and the post is skipped.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutSuffix(s, "万+"); ok {
		s = rest + "0000"
	} else if rest, ok := strings.CutSuffix(s, "万"); ok {
		s = rest + "0000"
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable count %q: %w", s, err)
	}
	return n, nil
}

// StandardizeDate converts the feed's relative timestamps to YYYY-MM-DD.
// The rules are ordered; the first matching form wins.
func StandardizeDate(created string, now time.Time) (string, error) {
	switch {
	case strings.Contains(created, "刚刚"):
		return now.Format(dateLayout), nil

	case strings.Contains(created, "分钟"):
		n, err := strconv.Atoi(strings.TrimSpace(created[:strings.Index(created, "分钟")]))
		if err != nil {
			return "", fmt.Errorf("unparseable timestamp %q: %w", created, err)
		}
		return now.Add(-time.Duration(n) * time.Minute).Format(dateLayout), nil

	case strings.Contains(created, "小时"):
		n, err := strconv.Atoi(strings.TrimSpace(created[:strings.Index(created, "小时")]))
		if err != nil {
			return "", fmt.Errorf("unparseable timestamp %q: %w", created, err)
		}
		return now.Add(-time.Duration(n) * time.Hour).Format(dateLayout), nil

	case strings.Contains(created, "昨天"):
		return now.AddDate(0, 0, -1).Format(dateLayout), nil

	case strings.Count(created, "-") == 1:
		// Month-day form from the current year
		return fmt.Sprintf("%d-%s", now.Year(), strings.TrimSpace(created)), nil
	}

	return strings.TrimSpace(created), nil
}

// sanitizeString strips zero-width spaces and any byte sequences that are
// not valid UTF-8. The feed occasionally embeds both.
func sanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\u200b", "")
	return strings.ToValidUTF8(s, "")
}

// ParsePost normalizes one raw status record into a Post. The record's body
// arrives as HTML; plain text, check-in location, topics and mentions are all
// lifted out of it. The returned post never has its Retweet set; forwarding
// is resolved by the caller.
func ParsePost(raw gjson.Result, now time.Time) (*models.Post, error) {
	id, err := strconv.ParseInt(raw.Get("id").String(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", raw.Get("id").String(), err)
	}

	post := &models.Post{
		ID:     id,
		Bid:    raw.Get("bid").String(),
		Source: raw.Get("source").String(),
	}

	// Deleted accounts serve posts with a null user.
	if user := raw.Get("user"); user.Exists() && user.Type != gjson.Null {
		post.AuthorID = user.Get("id").String()
		post.AuthorName = user.Get("screen_name").String()
	}

	body := richtext.Parse(raw.Get("text").String())
	post.Text = sanitizeString(strings.TrimSpace(body.PlainText()))
	post.Location = body.Location()
	post.Topics = strings.Join(body.Topics(), ", ")
	post.AtUsers = strings.Join(body.AtUsers(), ", ")

	for _, pic := range raw.Get("pics").Array() {
		if url := pic.Get("large.url").String(); url != "" {
			post.Pictures = append(post.Pictures, url)
		}
	}

	post.VideoURL = videoURL(raw)

	if post.AttitudesCount, err = parseCountValue(raw.Get("attitudes_count")); err != nil {
		return nil, err
	}
	if post.CommentsCount, err = parseCountValue(raw.Get("comments_count")); err != nil {
		return nil, err
	}
	if post.RepostsCount, err = parseCountValue(raw.Get("reposts_count")); err != nil {
		return nil, err
	}

	if post.CreatedAt, err = StandardizeDate(raw.Get("created_at").String(), now); err != nil {
		return nil, err
	}

	return post, nil
}

// parseCountValue handles counts that the API serves as either a number or
// an abbreviated string.
func parseCountValue(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), nil
	case gjson.String:
		return ParseCount(v.String())
	case gjson.Null:
		return 0, nil
	}
	if !v.Exists() {
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count value %q", v.Raw)
}

// videoURL picks the first available rendition from the record's media
// info. Some deployments also mirror the renditions under urls; it is
// probed as a fallback when media_info has none of the known variants.
func videoURL(raw gjson.Result) string {
	pageInfo := raw.Get("page_info")
	if !pageInfo.Exists() {
		return ""
	}

	for _, container := range []gjson.Result{pageInfo.Get("media_info"), pageInfo.Get("urls")} {
		for _, key := range videoVariants {
			if url := container.Get(key).String(); url != "" {
				return url
			}
		}
	}
	return ""
}
