package weibo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineURL(t *testing.T) {
	url := TimelineURL("https://m.weibo.cn", "1669879400", 3)
	assert.Equal(t, "https://m.weibo.cn/api/container/getIndex?containerid=1076031669879400&page=3", url)
}

func TestProfileURL(t *testing.T) {
	url := ProfileURL("https://m.weibo.cn", "1669879400")
	assert.Equal(t, "https://m.weibo.cn/api/container/getIndex?containerid=1005051669879400", url)
}

func TestDetailURL(t *testing.T) {
	url := DetailURL("https://m.weibo.cn", "4451234567890123")
	assert.Equal(t, "https://m.weibo.cn/detail/4451234567890123", url)
}
