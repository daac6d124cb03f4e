package modrinth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Modrinth v2 endpoint.
	DefaultBaseURL = "https://api.modrinth.com/v2"

	// defaultTimeout bounds a single request when no option overrides it.
	defaultTimeout = 10 * time.Second

	// maxErrorBody limits how much of a failed response is quoted in the error.
	maxErrorBody = 512
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrEmptyResponse is returned when the catalog answers with an empty body.
	ErrEmptyResponse = errors.New("empty response")

	errProjectRequired = errors.New("project id must be provided")
)

// Client talks to the Modrinth API.
type Client struct {
	// baseURL is the API root, without a trailing slash.
	baseURL string
	// userAgent identifies the program, as Modrinth asks every client to do.
	userAgent string
	// httpClient performs the requests; its Timeout bounds each call.
	httpClient *http.Client
}

// Option configures client behaviour.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. staging or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a Modrinth client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// ListProjectVersions returns the releases of a project in the order the API
// delivers them (newest first). Non-empty loaders and gameVersions are sent
// as server-side filters.
func (c *Client) ListProjectVersions(
	ctx context.Context,
	projectID string,
	loaders []string,
	gameVersions []string,
) ([]Version, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errProjectRequired
	}

	params := url.Values{}

	if err := addArrayParam(params, "loaders", loaders); err != nil {
		return nil, err
	}

	if err := addArrayParam(params, "game_versions", gameVersions); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "/project/"+url.PathEscape(projectID)+"/version", params)
	if err != nil {
		return nil, err
	}

	var versions []Version
	if err = json.Unmarshal(body, &versions); err != nil {
		return nil, fmt.Errorf("decode versions of %s: %w", projectID, err)
	}

	return versions, nil
}

// get performs a GET against the API and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", requestURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", requestURL, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}

		return nil, fmt.Errorf("%s, %s %s: %w",
			requestURL, response.Status, bytes.TrimSpace(body), ErrUnexpectedStatus)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%s: %w", requestURL, ErrEmptyResponse)
	}

	return body, nil
}

// addArrayParam encodes values the way Modrinth expects list filters: a JSON array.
func addArrayParam(params url.Values, key string, values []string) error {
	if len(values) == 0 {
		return nil
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode %s filter: %w", key, err)
	}

	params.Set(key, string(encoded))

	return nil
}
