package crawler

import "weiboscraper/pkg/models"

// CrawlState accumulates the posts selected for one request. Duplicate
// detection is by post ID; pinned posts reappear on later pages and the feed
// itself repeats entries near page boundaries.
type CrawlState struct {
	seen  map[int64]struct{}
	posts []*models.Post
}

// NewCrawlState creates an empty state for one crawl request
func NewCrawlState() *CrawlState {
	return &CrawlState{
		seen: make(map[int64]struct{}),
	}
}

// Seen reports whether a post ID has already been collected
func (s *CrawlState) Seen(id int64) bool {
	_, ok := s.seen[id]
	return ok
}

// Add records a post. Posts already collected are ignored.
func (s *CrawlState) Add(post *models.Post) {
	if s.Seen(post.ID) {
		return
	}
	s.seen[post.ID] = struct{}{}
	s.posts = append(s.posts, post)
}

// Posts returns the collected posts in selection order
func (s *CrawlState) Posts() []*models.Post {
	return s.posts
}

// Count returns the number of collected posts
func (s *CrawlState) Count() int {
	return len(s.posts)
}
