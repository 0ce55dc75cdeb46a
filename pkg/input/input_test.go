package input

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weiboscraper/pkg/models"
)

var testNow = time.Date(2020, 3, 10, 12, 0, 0, 0, time.UTC)

func TestParseFullLine(t *testing.T) {
	reqs, err := Parse([]string{"1669879400 2020-01-01 2020-06-01 p"}, testNow)
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	assert.Equal(t, models.CrawlRequest{
		UserID:    "1669879400",
		StartDate: "2020-01-01",
		EndDate:   "2020-06-01",
		Media:     models.MediaPictures,
	}, reqs[0])
}

func TestParseDefaults(t *testing.T) {
	reqs, err := Parse([]string{"1669879400"}, testNow)
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	assert.Equal(t, models.DefaultStartDate, reqs[0].StartDate)
	assert.Equal(t, "2020-03-10", reqs[0].EndDate)
	assert.Equal(t, models.MediaAll, reqs[0].Media)
}

func TestParseDashKeepsDefaultStart(t *testing.T) {
	reqs, err := Parse([]string{"1669879400 - 2020-06-01 v"}, testNow)
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	assert.Equal(t, models.DefaultStartDate, reqs[0].StartDate)
	assert.Equal(t, "2020-06-01", reqs[0].EndDate)
	assert.Equal(t, models.MediaVideos, reqs[0].Media)
}

func TestParseSelectorWithoutDates(t *testing.T) {
	reqs, err := Parse([]string{"1669879400 v"}, testNow)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, models.MediaVideos, reqs[0].Media)
	assert.Equal(t, models.DefaultStartDate, reqs[0].StartDate)
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	reqs, err := Parse([]string{
		"# accounts to crawl",
		"",
		"1669879400 2020-01-01 2020-06-01 pv  # main account",
		"   ",
	}, testNow)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestParseNonDigitLinesIgnored(t *testing.T) {
	reqs, err := Parse([]string{
		"user_id start_date end_date media",
		"1669879400",
	}, testNow)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestParseDoubleHashFatal(t *testing.T) {
	_, err := Parse([]string{"1669879400 # one # two"}, testNow)
	assert.Error(t, err)
}

func TestParseInvalidDateFatal(t *testing.T) {
	_, err := Parse([]string{"1669879400 2020/01/01"}, testNow)
	assert.Error(t, err)

	_, err = Parse([]string{"1669879400 2020-01-01 junk"}, testNow)
	assert.Error(t, err)
}

func TestParseTrailingTokensFatal(t *testing.T) {
	_, err := Parse([]string{"1669879400 2020-01-01 2020-06-01 2020-07-01 p"}, testNow)
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte("1669879400 2020-01-01 2020-06-01 p\n9876543210\n"), 0644))

	reqs, err := ParseFile(path, testNow)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt"), testNow)
	assert.Error(t, err)
}
