package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"igposts/pkg/errors"
	"igposts/pkg/logger"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client represents an Instagram API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	session    map[string]string
	baseURL    string
	pageSize   int
	logger     logger.Logger
}

// NewClient creates a new Instagram API client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
			"X-IG-App-ID":     WebAppID,
			"Sec-Fetch-Dest":  "empty",
			"Sec-Fetch-Mode":  "cors",
			"Sec-Fetch-Site":  "same-origin",
		},
		baseURL:  BaseURL,
		pageSize: DefaultMediaLimit,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// SetSession attaches a browser session so profiles that need a login can be read.
// The session is only sent to the API host, never to media hosts.
// An empty sessionID leaves the client anonymous.
func (c *Client) SetSession(sessionID, csrfToken string) {
	if sessionID == "" {
		return
	}
	session := map[string]string{"Cookie": "sessionid=" + sessionID}
	if csrfToken != "" {
		session["Cookie"] += "; csrftoken=" + csrfToken
		session["X-CSRFToken"] = csrfToken
	}
	c.session = session
}

// isAPIHost reports whether u points at the host the client talks to
func (c *Client) isAPIHost(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, base.Host)
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if len(c.session) > 0 && c.isAPIHost(req.URL) {
		for key, value := range c.session {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, 0, err, fmt.Sprintf("network error: %v", err))
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, 0, err, fmt.Sprintf("failed to create request: %v", err))
	}

	return c.doRequest(req)
}

// getOK performs a GET request and only returns responses with a successful status
func (c *Client) getOK(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.getOK(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNetwork, resp.StatusCode, err,
			fmt.Sprintf("failed to read response body: %v", err))
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Wrap(errors.ErrorTypeParsing, resp.StatusCode, err, fmt.Sprintf("failed to parse JSON: %v", err))
	}

	return nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		return errors.Wrap(errors.ErrorTypeAuth, resp.StatusCode, errors.ErrLoginRequired, "authentication required")
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return errors.New(errors.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return errors.New(errors.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", fields)
		return errors.New(errors.ErrorTypeServerError, resp.StatusCode, "server error")
	default:
		c.logger.ErrorWithFields("unexpected API error", fields)
		return errors.New(errors.ErrorTypeUnknown, resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
}

// Resolve looks up an account by username.
//
// A missing account yields an error matching errors.ErrProfileNotExists, an
// account hidden behind a login yields errors.ErrLoginRequired.
func (c *Client) Resolve(ctx context.Context, username string) (*Profile, error) {
	url := profileURL(c.baseURL, username)

	c.logger.DebugWithFields("fetching user profile", map[string]interface{}{
		"username": username,
		"url":      url,
	})

	var response InstagramResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		if errors.TypeOf(err) == errors.ErrorTypeNotFound {
			return nil, errors.Wrap(errors.ErrorTypeNotFound, http.StatusNotFound, errors.ErrProfileNotExists,
				fmt.Sprintf("profile %s does not exist", username))
		}
		c.logger.ErrorWithFields("failed to fetch user profile", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}

	if response.RequiresToLogin {
		c.logger.WarnWithFields("authentication required for profile", map[string]interface{}{
			"username": username,
		})
		return nil, errors.Wrap(errors.ErrorTypeAuth, http.StatusUnauthorized, errors.ErrLoginRequired,
			"Instagram requires authentication to view this profile")
	}

	user := response.Data.User
	if user == nil || user.ID == "" {
		return nil, errors.Wrap(errors.ErrorTypeNotFound, http.StatusNotFound, errors.ErrProfileNotExists,
			fmt.Sprintf("profile %s does not exist", username))
	}

	timeline := user.EdgeOwnerToTimelineMedia
	if user.IsPrivate && timeline.Count > 0 && len(timeline.Edges) == 0 {
		return nil, errors.Wrap(errors.ErrorTypeAuth, http.StatusForbidden, errors.ErrLoginRequired,
			fmt.Sprintf("profile %s is private", username))
	}

	if user.Username == "" {
		user.Username = username
	}

	c.logger.DebugWithFields("successfully fetched user profile", map[string]interface{}{
		"username": username,
		"posts":    timeline.Count,
	})

	return newProfile(user), nil
}

// FetchUserMedia fetches one page of a user's timeline
func (c *Client) FetchUserMedia(ctx context.Context, userID string, after string) (*EdgeOwnerToTimelineMedia, error) {
	url := mediaURL(c.baseURL, userID, after, c.pageSize)

	c.logger.DebugWithFields("fetching user media", map[string]interface{}{
		"user_id": userID,
		"after":   after,
		"url":     url,
	})

	var response InstagramResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch user media", map[string]interface{}{
			"user_id": userID,
			"after":   after,
			"error":   err.Error(),
		})
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, errors.Wrap(errors.ErrorTypeAuth, http.StatusUnauthorized, errors.ErrLoginRequired,
			"Instagram requires authentication to page through this profile")
	}
	if response.Data.User == nil {
		return nil, errors.New(errors.ErrorTypeParsing, http.StatusOK, "media response carries no user")
	}

	return &response.Data.User.EdgeOwnerToTimelineMedia, nil
}

// Posts returns the profile's timeline, newest first
func (c *Client) Posts(profile *Profile) *Feed {
	return &Feed{
		client:  c,
		userID:  profile.ID,
		page:    profile.timeline.Edges,
		cursor:  profile.timeline.PageInfo.EndCursor,
		hasNext: profile.timeline.PageInfo.HasNextPage,
	}
}

// Download opens the media at url. The caller closes the returned body.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	c.logger.DebugWithFields("downloading media", map[string]interface{}{
		"url": url,
	})

	resp, err := c.getOK(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
