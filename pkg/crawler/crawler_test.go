package crawler

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weiboscraper/pkg/config"
	errs "weiboscraper/pkg/errors"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
	"weiboscraper/pkg/ui"
	"weiboscraper/pkg/weibo"
)

func TestMain(m *testing.M) {
	ui.SetQuiet(true)
	os.Exit(m.Run())
}

// TestCrawlUserEndToEnd runs a full crawl against a stub API: user info,
// three feed pages, and picture downloads, with videos deselected.
func TestCrawlUserEndToEnd(t *testing.T) {
	var baseURL string
	var videoHits, maxPage int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/container/getIndex", func(w http.ResponseWriter, r *http.Request) {
		cid := r.URL.Query().Get("containerid")
		switch {
		case strings.HasPrefix(cid, "100505"):
			fmt.Fprint(w, `{"ok":1,"data":{"userInfo":{"id":42,"screen_name":"tester","statuses_count":25}}}`)
		case strings.HasPrefix(cid, "107603"):
			var page int
			fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
			if int64(page) > atomic.LoadInt64(&maxPage) {
				atomic.StoreInt64(&maxPage, int64(page))
			}
			switch page {
			case 1:
				fmt.Fprintf(w, `{"ok":1,"data":{"cards":[
					{"card_type":9,"mblog":{"id":"100","created_at":"2020-02-01","text":"first","user":{"id":42,"screen_name":"tester"},"pics":[{"large":{"url":"%s/pic/a.jpg"}},{"large":{"url":"%s/pic/b.jpg"}}]}},
					{"card_type":9,"mblog":{"id":"101","created_at":"2020-01-20","text":"clip","user":{"id":42,"screen_name":"tester"},"page_info":{"type":"video","urls":{"mp4_720p_mp4":"%s/video/v.mp4"}}}}
				]}}`, baseURL, baseURL, baseURL)
			case 2:
				fmt.Fprintf(w, `{"ok":1,"data":{"cards":[
					{"card_type":9,"mblog":{"id":"102","created_at":"2020-01-10","text":"second","user":{"id":42,"screen_name":"tester"},"pics":[{"large":{"url":"%s/pic/c.jpg"}}]}}
				]}}`, baseURL)
			default:
				fmt.Fprint(w, `{"ok":1,"data":{"cards":[]}}`)
			}
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/pic/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	})
	mux.HandleFunc("/video/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&videoHits, 1)
		w.Write([]byte("video-bytes"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()
	baseURL = server.URL

	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Weibo.BaseURL = server.URL

	client := weibo.NewClient(cfg, logger.NewNopLogger())
	c := New(cfg, client, logger.NewNopLogger())
	c.now = func() time.Time { return time.Date(2020, 3, 10, 12, 0, 0, 0, time.UTC) }
	c.sleep = func(time.Duration) {}
	c.rng = rand.New(rand.NewSource(1))

	err := c.Run([]models.CrawlRequest{{
		UserID:    "42",
		StartDate: "2020-01-01",
		EndDate:   "2020-06-01",
		Media:     models.MediaPictures,
	}})
	require.NoError(t, err)

	imagesDir := filepath.Join(cfg.Output.BaseDirectory, "tester", "images")
	for _, name := range []string{"20200201_100_1.jpg", "20200201_100_2.jpg", "20200110_102_1.jpg"} {
		data, err := os.ReadFile(filepath.Join(imagesDir, name))
		require.NoError(t, err, "expected %s to exist", name)
		assert.Equal(t, "image-bytes", string(data))
	}

	// Videos were deselected, so the video host is never contacted
	assert.Equal(t, int64(0), atomic.LoadInt64(&videoHits))

	entries, err := os.ReadDir(filepath.Join(cfg.Output.BaseDirectory, "tester", "videos"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	// ceil(25/10) = 3 pages; the walk never goes past the page budget
	assert.LessOrEqual(t, atomic.LoadInt64(&maxPage), int64(3))
}

func TestRunUserInfoFailureAbortsBatch(t *testing.T) {
	client := &fakeClient{userErr: &errs.Error{Type: errs.ErrorTypeAuth, Message: "account suspended"}}
	c := newTestCrawler(t, client)

	err := c.Run([]models.CrawlRequest{
		{UserID: "42", StartDate: "2020-01-01", EndDate: "2020-06-01", Media: models.MediaAll},
		{UserID: "43", StartDate: "2020-01-01", EndDate: "2020-06-01", Media: models.MediaAll},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
	// The second request is never started
	assert.Equal(t, 0, client.maxPage)
}

func TestCrawlUserInvalidWindow(t *testing.T) {
	client := &fakeClient{userInfo: &models.UserInfo{ID: "42", ScreenName: "tester", StatusesCount: 10}}
	c := newTestCrawler(t, client)

	err := c.CrawlUser(models.CrawlRequest{UserID: "42", StartDate: "not-a-date", EndDate: "2020-06-01"})
	assert.Error(t, err)
}

func TestCrawlUserPacing(t *testing.T) {
	pages := make(map[int]string)
	for i := 1; i <= 10; i++ {
		pages[i] = feedPage(card(mblog(fmt.Sprintf("%d", 1000+i), "2020-02-01")))
	}
	client := &fakeClient{
		userInfo: &models.UserInfo{ID: "42", ScreenName: "tester", StatusesCount: 100},
		pages:    pages,
	}
	c := newTestCrawler(t, client)

	err := c.CrawlUser(models.CrawlRequest{
		UserID: "42", StartDate: "2020-01-01", EndDate: "2020-06-01", Media: models.MediaPictures,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, client.maxPage)

	// Pauses happen between pages, never after the final one
	require.NotEmpty(t, client.sleeps)
	assert.Less(t, len(client.sleeps), 10)
	for _, d := range client.sleeps {
		assert.GreaterOrEqual(t, d, 6*time.Second)
		assert.LessOrEqual(t, d, 10*time.Second)
	}
}

func TestCrawlUserPageErrorContinues(t *testing.T) {
	client := &fakeClient{
		userInfo: &models.UserInfo{ID: "42", ScreenName: "tester", StatusesCount: 20},
		pages: map[int]string{
			2: feedPage(card(mblog("100", "2020-02-01"))),
		},
		pageErr: map[int]error{
			1: &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"},
		},
	}
	c := newTestCrawler(t, client)

	err := c.CrawlUser(models.CrawlRequest{
		UserID: "42", StartDate: "2020-01-01", EndDate: "2020-06-01", Media: models.MediaVideos,
	})
	require.NoError(t, err)

	// Page 1 failed but page 2 was still fetched and its post collected
	assert.Equal(t, 2, client.maxPage)
}
