package weibo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"weiboscraper/pkg/config"
	errs "weiboscraper/pkg/errors"
	"weiboscraper/pkg/logger"
	"weiboscraper/pkg/models"
	"weiboscraper/pkg/retry"
)

// Client talks to the m.weibo.cn mobile API. It applies the configured
// timeouts and retries every request with exponential backoff. API calls
// and media downloads go through separate transports: media hosts get the
// download timeouts (short connect, longer read for large files).
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	headers        map[string]string
	retryCfg       *retry.Config
	logger         logger.Logger
}

// NewClient creates a Client from the crawler configuration. The connect
// timeout bounds dial time, the request timeout bounds the whole exchange.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient:     newHTTPClient(cfg.Weibo.ConnectTimeout, cfg.Weibo.RequestTimeout),
		downloadClient: newHTTPClient(cfg.Download.ConnectTimeout, cfg.Download.ReadTimeout),
		baseURL:        cfg.Weibo.BaseURL,
		headers: map[string]string{
			"User-Agent": cfg.Weibo.UserAgent,
		},
		retryCfg: &retry.Config{
			MaxAttempts: cfg.Download.RetryAttempts,
			Backoff:     retry.DefaultExponentialBackoff(),
			RetryIf:     retry.DefaultRetryIf,
			Context:     context.Background(),
			Logger:      log,
		},
		logger: log,
	}
}

// newHTTPClient builds an HTTP client with a dial-time bound and an
// overall request deadline.
func newHTTPClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: connectTimeout,
		},
		Timeout: requestTimeout,
	}
}

// SetBaseURL overrides the API root. Used by tests to point at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHeader sets a request header sent on every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// BaseURL returns the API root currently in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a single GET and returns the body. Transport failures
// and bad status codes are mapped onto the typed error taxonomy so the retry
// predicate can tell them apart.
func (c *Client) doRequest(httpClient *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	return body, nil
}

// checkResponseStatus maps an HTTP status code onto a typed error
func checkResponseStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limited by server",
			Code:    statusCode,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "access denied",
			Code:    statusCode,
		}
	case statusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    statusCode,
		}
	case statusCode >= 500:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    statusCode,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code %d", statusCode),
			Code:    statusCode,
		}
	}
}

// GetBytes fetches a URL with the retry budget and returns the raw body
func (c *Client) GetBytes(url string) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.doRequest(c.httpClient, url)
	}, c.retryCfg)
}

// FetchTimeline fetches one page of a user's timeline and returns the raw
// JSON payload. Callers pick the page apart with gjson because the feed mixes
// record shapes within a single response.
func (c *Client) FetchTimeline(userID string, page int) ([]byte, error) {
	body, err := c.GetBytes(TimelineURL(c.baseURL, userID, page))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FetchUserInfo fetches the profile card for a user. An ok=0 response means
// the account is not visible to us and is returned as an auth error.
func (c *Client) FetchUserInfo(userID string) (*models.UserInfo, error) {
	body, err := c.GetBytes(ProfileURL(c.baseURL, userID))
	if err != nil {
		return nil, err
	}

	var resp userInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode user info: %v", err),
		}
	}

	if !resp.Ok {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: fmt.Sprintf("user info unavailable for %s", userID),
		}
	}

	info := resp.Data.UserInfo
	return &models.UserInfo{
		ID:              info.ID.String(),
		ScreenName:      info.ScreenName,
		Gender:          info.Gender,
		StatusesCount:   info.StatusesCount,
		FollowersCount:  info.FollowersCount,
		FollowCount:     info.FollowCount,
		Description:     info.Description,
		ProfileURL:      info.ProfileURL,
		ProfileImageURL: info.ProfileImageURL,
		AvatarHD:        info.AvatarHD,
		Verified:        info.Verified,
		VerifiedType:    info.VerifiedType,
		VerifiedReason:  info.VerifiedReason,
	}, nil
}

// FetchPostDetail fetches the HTML detail page for a single post. The full
// body of a truncated post is embedded in the page's render data.
func (c *Client) FetchPostDetail(postID int64) (string, error) {
	body, err := c.GetBytes(DetailURL(c.baseURL, strconv.FormatInt(postID, 10)))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile fetches a media file with the retry budget, using the
// download transport's timeouts rather than the API ones.
func (c *Client) DownloadFile(url string) ([]byte, error) {
	return retry.DoWithResult(func() ([]byte, error) {
		return c.doRequest(c.downloadClient, url)
	}, c.retryCfg)
}
