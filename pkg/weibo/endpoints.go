package weibo

import "fmt"

// Mobile-site API surface. The m.weibo.cn container endpoint serves both the
// timeline feed and the profile card depending on the containerid prefix.
const (
	// DefaultBaseURL is the mobile site root
	DefaultBaseURL = "https://m.weibo.cn"

	// IndexEndpoint is the container query endpoint
	IndexEndpoint = "/api/container/getIndex"

	// TimelineContainerPrefix selects a user's post feed
	TimelineContainerPrefix = "107603"

	// ProfileContainerPrefix selects a user's profile card
	ProfileContainerPrefix = "100505"

	// DetailEndpoint serves the full HTML page for a single post
	DetailEndpoint = "/detail/"
)

// Anchors that bracket the embedded status JSON inside a detail page. The
// payload sits between a `"status":` assignment and the hotScheme key that
// follows it in the page's render data.
const (
	StatusAnchor    = `"status":`
	StatusAnchorEnd = `"hotScheme"`
)

// TimelineURL builds the feed URL for one page of a user's timeline.
// Page numbers start at 1.
func TimelineURL(baseURL, userID string, page int) string {
	return fmt.Sprintf("%s%s?containerid=%s%s&page=%d",
		baseURL, IndexEndpoint, TimelineContainerPrefix, userID, page)
}

// ProfileURL builds the profile card URL for a user
func ProfileURL(baseURL, userID string) string {
	return fmt.Sprintf("%s%s?containerid=%s%s",
		baseURL, IndexEndpoint, ProfileContainerPrefix, userID)
}

// DetailURL builds the detail page URL for a single post
func DetailURL(baseURL, postID string) string {
	return fmt.Sprintf("%s%s%s", baseURL, DetailEndpoint, postID)
}
