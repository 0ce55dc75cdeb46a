package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSkippedPage records a page-level fetch failure. The page is treated as
// empty and the crawl continues, so this is the only durable trace of it.
func LogSkippedPage(log Logger, userID string, page int, err error) {
	log.WithFields(map[string]interface{}{
		"user_id": userID,
		"page":    page,
	}).WithError(err).Warn("Failed to get this page")
}

// LogSkippedPost records a post dropped from a page, with the reason the
// resolution step reported.
func LogSkippedPost(log Logger, postID string, reason string, err error) {
	log.WithFields(map[string]interface{}{
		"post_id": postID,
		"reason":  reason,
	}).WithError(err).Warn("No permission to see this post")
}

// LogFailedDownload records a media file that could not be fetched or saved.
// The remaining files keep downloading.
func LogFailedDownload(log Logger, url string, err error) {
	log.WithField("url", url).WithError(err).Warn("Failed to download this file")
}

// LogCrawlProgress logs timeline-walk progress for one user
func LogCrawlProgress(log Logger, userID string, page, pageCount, selected int) {
	log.WithFields(map[string]interface{}{
		"user_id":  userID,
		"page":     page,
		"pages":    pageCount,
		"selected": selected,
	}).Info("Crawl progress")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
