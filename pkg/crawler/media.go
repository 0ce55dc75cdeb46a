package crawler

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"weiboscraper/internal/downloader"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
	"weiboscraper/pkg/ratelimit"
	"weiboscraper/pkg/storage"
	"weiboscraper/pkg/ui"
)

// downloadMedia fetches the selected media files for a user's collected
// posts. Failures are per file; the crawl result itself never depends on a
// download succeeding.
func (c *Crawler) downloadMedia(info *models.UserInfo, req models.CrawlRequest, posts []*models.Post) error {
	jobs := buildJobs(posts, req.Media)
	if len(jobs) == 0 {
		return nil
	}

	dir := filepath.Join(c.cfg.Output.BaseDirectory, storage.SanitizeName(info.ScreenName))
	store, err := storage.NewManager(dir)
	if err != nil {
		return fmt.Errorf("failed to prepare results directory: %w", err)
	}

	limiter := ratelimit.NewTokenBucket(c.cfg.Download.RequestsPerMinute, time.Minute)
	pool := downloader.NewWorkerPool(c.cfg.Download.ConcurrentDownloads, c.client, store, limiter, c.log)
	pool.Start()

	var wg sync.WaitGroup
	var saved, skipped, failed int
	wg.Add(1)
	go func() {
		defer wg.Done()
		for res := range pool.Results() {
			switch {
			case res.Skipped:
				skipped++
			case res.Success:
				saved++
			default:
				failed++
				logger.LogFailedDownload(c.log, res.Job.URL, res.Error)
			}
		}
	}()

	for _, job := range jobs {
		pool.Submit(job)
	}
	pool.Stop()
	wg.Wait()

	c.log.WithFields(map[string]interface{}{
		"user_id":   req.UserID,
		"directory": dir,
		"saved":     saved,
		"skipped":   skipped,
		"failed":    failed,
	}).Info("Media download complete")
	ui.PrintSuccess("%s: %d files saved, %d already present, %d failed", info.ScreenName, saved, skipped, failed)

	return nil
}

// buildJobs enumerates the files to download for the selected media kinds.
// Every file name starts with the post's compact date and ID so files sort
// chronologically and trace back to their post.
func buildJobs(posts []*models.Post, media models.MediaSelector) []downloader.Job {
	var jobs []downloader.Job

	for _, post := range posts {
		prefix := strings.ReplaceAll(post.CreatedAt, "-", "") + "_" + strconv.FormatInt(post.ID, 10)

		if media.Pictures() {
			for i, url := range post.Pictures {
				jobs = append(jobs, downloader.Job{
					URL:      url,
					Filename: fmt.Sprintf("%s_%d%s", prefix, i+1, pictureExt(url)),
					Kind:     downloader.KindImage,
					PostID:   post.ID,
				})
			}
		}

		if media.Videos() && post.VideoURL != "" {
			jobs = append(jobs, downloader.Job{
				URL:      post.VideoURL,
				Filename: prefix + ".mp4",
				Kind:     downloader.KindVideo,
				PostID:   post.ID,
			})
		}
	}

	return jobs
}

// pictureExt extracts a file extension from a picture URL
func pictureExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if ext := path.Ext(url); ext != "" {
		return ext
	}
	return ".jpg"
}
