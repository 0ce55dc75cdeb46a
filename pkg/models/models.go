package models

import "fmt"

// Post is the canonical record of one status update, normalized from the
// heterogeneous raw records the timeline API returns.
type Post struct {
	ID             int64
	Bid            string
	AuthorID       string
	AuthorName     string
	Text           string
	Pictures       []string
	VideoURL       string
	Location       string
	CreatedAt      string // always YYYY-MM-DD
	Source         string
	AttitudesCount int
	CommentsCount  int
	RepostsCount   int
	Topics         string
	AtUsers        string

	// Retweet is the original post being forwarded. A nil Retweet means
	// this post is an original.
	Retweet *Post
}

// IsForwarded reports whether the post forwards another post.
func (p *Post) IsForwarded() bool {
	return p.Retweet != nil
}

// UserInfo is a snapshot of the target account, fetched once per crawl
// request and immutable thereafter. The descriptive fields are used for
// output organization, not crawl logic.
type UserInfo struct {
	ID              string
	ScreenName      string
	Gender          string
	StatusesCount   int
	FollowersCount  int
	FollowCount     int
	Description     string
	ProfileURL      string
	ProfileImageURL string
	AvatarHD        string
	Verified        bool
	VerifiedType    int
	VerifiedReason  string
}

// MediaSelector chooses which media kinds to download for a request.
type MediaSelector string

const (
	MediaAll      MediaSelector = "pv"
	MediaPictures MediaSelector = "p"
	MediaVideos   MediaSelector = "v"
)

// ParseMediaSelector parses the input-file media selector token.
func ParseMediaSelector(s string) (MediaSelector, error) {
	switch MediaSelector(s) {
	case MediaAll, MediaPictures, MediaVideos:
		return MediaSelector(s), nil
	}
	return "", fmt.Errorf("invalid media selector %q (want pv, p, or v)", s)
}

// Pictures reports whether picture downloads are selected.
func (m MediaSelector) Pictures() bool {
	return m == MediaAll || m == MediaPictures
}

// Videos reports whether video downloads are selected.
func (m MediaSelector) Videos() bool {
	return m == MediaAll || m == MediaVideos
}

// DefaultStartDate is the epoch floor used when a request has no start date.
const DefaultStartDate = "1900-01-01"

// CrawlRequest is one line of input: a target account plus an optional
// date window and media selection.
type CrawlRequest struct {
	UserID    string
	StartDate string
	EndDate   string
	Media     MediaSelector
}
