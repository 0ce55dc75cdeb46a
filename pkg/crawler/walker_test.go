package crawler

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weiboscraper/pkg/config"
	errs "weiboscraper/pkg/errors"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
)

// fakeClient serves canned responses and records what was requested
type fakeClient struct {
	userInfo *models.UserInfo
	userErr  error

	pages   map[int]string
	pageErr map[int]error
	details map[int64]string

	maxPage   int
	downloads []string
	sleeps    []time.Duration
}

func (f *fakeClient) FetchTimeline(userID string, page int) ([]byte, error) {
	if page > f.maxPage {
		f.maxPage = page
	}
	if err, ok := f.pageErr[page]; ok {
		return nil, err
	}
	body, ok := f.pages[page]
	if !ok {
		return []byte(`{"ok":1,"data":{"cards":[]}}`), nil
	}
	return []byte(body), nil
}

func (f *fakeClient) FetchUserInfo(userID string) (*models.UserInfo, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.userInfo, nil
}

func (f *fakeClient) FetchPostDetail(postID int64) (string, error) {
	html, ok := f.details[postID]
	if !ok {
		return "", &errs.Error{Type: errs.ErrorTypeNotFound, Message: "no detail page"}
	}
	return html, nil
}

func (f *fakeClient) DownloadFile(url string) ([]byte, error) {
	f.downloads = append(f.downloads, url)
	return []byte("content"), nil
}

func newTestCrawler(t *testing.T, client *fakeClient) *Crawler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()

	c := New(cfg, client, logger.NewNopLogger())
	c.now = func() time.Time { return time.Date(2020, 3, 10, 12, 0, 0, 0, time.UTC) }
	c.sleep = func(d time.Duration) { client.sleeps = append(client.sleeps, d) }
	c.rng = rand.New(rand.NewSource(1))
	return c
}

func card(mblog string) string {
	return fmt.Sprintf(`{"card_type":9,"mblog":%s}`, mblog)
}

func mblog(id, createdAt string) string {
	return fmt.Sprintf(`{"id":"%s","created_at":"%s","text":"post %s","user":{"id":42,"screen_name":"tester"}}`, id, createdAt, id)
}

func feedPage(cards ...string) string {
	return `{"ok":1,"data":{"cards":[` + strings.Join(cards, ",") + `]}}`
}

func testWindow() dateWindow {
	return dateWindow{
		start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testRequest() models.CrawlRequest {
	return models.CrawlRequest{UserID: "42", StartDate: "2020-01-01", EndDate: "2020-06-01", Media: models.MediaAll}
}

func TestWalkPagePastWindowTerminates(t *testing.T) {
	client := &fakeClient{pages: map[int]string{
		1: feedPage(card(mblog("100", "2020-02-01")), card(mblog("99", "2019-11-01")), card(mblog("98", "2020-03-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	outcome := c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, pagePastWindow, outcome)
	// The post after the pre-window one is never reached
	assert.Equal(t, 1, state.Count())
	assert.True(t, state.Seen(100))
	assert.False(t, state.Seen(98))
}

func TestWalkPagePinnedDoesNotTerminate(t *testing.T) {
	pinned := `{"id":"50","created_at":"2019-05-01","text":"old pin","title":{"text":"置顶"},"user":{"id":42,"screen_name":"tester"}}`
	client := &fakeClient{pages: map[int]string{
		1: feedPage(card(pinned), card(mblog("100", "2020-02-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	outcome := c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, pageScanned, outcome)
	assert.Equal(t, 1, state.Count())
	assert.False(t, state.Seen(50))
}

func TestWalkPageDedup(t *testing.T) {
	client := &fakeClient{pages: map[int]string{
		1: feedPage(card(mblog("100", "2020-02-01")), card(mblog("100", "2020-02-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, 1, state.Count())
}

func TestWalkPageAfterEndSkipped(t *testing.T) {
	client := &fakeClient{pages: map[int]string{
		1: feedPage(card(mblog("200", "2020-07-01")), card(mblog("100", "2020-02-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	outcome := c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, pageScanned, outcome)
	assert.Equal(t, 1, state.Count())
	assert.False(t, state.Seen(200))
}

func TestWalkPageForwardedFilter(t *testing.T) {
	forwarded := `{"id":"300","created_at":"2020-02-05","text":"看看这个","user":{"id":42,"screen_name":"tester"},"retweeted_status":{"id":"299","created_at":"2020-02-04","text":"original","user":{"id":7,"screen_name":"source"}}}`
	page := feedPage(card(forwarded), card(mblog("100", "2020-02-01")))

	client := &fakeClient{pages: map[int]string{1: page}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()
	c.walkPage(testRequest(), testWindow(), 1, state)
	assert.Equal(t, 1, state.Count())
	assert.False(t, state.Seen(300))

	client = &fakeClient{pages: map[int]string{1: page}}
	c = newTestCrawler(t, client)
	c.cfg.Crawl.IncludeForwarded = true
	state = NewCrawlState()
	c.walkPage(testRequest(), testWindow(), 1, state)
	assert.Equal(t, 2, state.Count())

	posts := state.Posts()
	require.True(t, posts[0].IsForwarded())
	assert.Equal(t, int64(299), posts[0].Retweet.ID)
	assert.Equal(t, "original", posts[0].Retweet.Text)
}

func TestWalkPageNonPostCardsIgnored(t *testing.T) {
	client := &fakeClient{pages: map[int]string{
		1: feedPage(`{"card_type":7,"desc":"follow suggestions"}`, card(mblog("100", "2020-02-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, 1, state.Count())
}

func TestWalkPageBadPostSkipped(t *testing.T) {
	bad := `{"id":"400","created_at":"2020-02-02","text":"x","attitudes_count":"1.2万","user":{"id":42,"screen_name":"tester"}}`
	client := &fakeClient{pages: map[int]string{
		1: feedPage(card(bad), card(mblog("100", "2020-02-01"))),
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	outcome := c.walkPage(testRequest(), testWindow(), 1, state)

	assert.Equal(t, pageScanned, outcome)
	assert.Equal(t, 1, state.Count())
	assert.False(t, state.Seen(400))
}

func TestWalkPageFetchError(t *testing.T) {
	client := &fakeClient{pageErr: map[int]error{
		1: &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"},
	}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	assert.Equal(t, pageError, c.walkPage(testRequest(), testWindow(), 1, state))
	assert.Equal(t, 0, state.Count())
}

func TestWalkPageOkFalse(t *testing.T) {
	client := &fakeClient{pages: map[int]string{1: `{"ok":0}`}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	assert.Equal(t, pageError, c.walkPage(testRequest(), testWindow(), 1, state))
}

func TestWalkPageExhausted(t *testing.T) {
	client := &fakeClient{pages: map[int]string{1: `{"ok":1,"data":{"cards":[]}}`}}
	c := newTestCrawler(t, client)
	state := NewCrawlState()

	assert.Equal(t, pageExhausted, c.walkPage(testRequest(), testWindow(), 1, state))
}
