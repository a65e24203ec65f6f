// Package query checks slug uniqueness through a GROQ-style HTTP query API
// (GET /v{apiVersion}/data/query/{dataset}).
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/service/vo"
)

// UniqueSlugQuery is true when no other document of $type uses one of
// $slugs. Versions of $publishedId are not considered.
const UniqueSlugQuery = `
  !defined(*[
    _type == $type
    && !sanity::versionOf($publishedId)
    && lower(slug.current) in $slugs
  ][0]._id)`

var (
	ErrQueryFailed        = errors.New("query failed")
	ErrMissingAPIVersion  = errors.New("missing api version")
	ErrUnexpectedResponse = errors.New("unexpected query response")
)

type Config struct {
	BaseURL string
	Dataset string
	Token   string
	Timeout time.Duration
}

type Client struct {
	client  *resty.Client
	dataset string
	config  vo.ClientConfig
	logger  *zap.Logger
}

type response struct {
	Result *bool  `json:"result"`
	Ms     int    `json:"ms"`
	Error  string `json:"error,omitempty"`
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		cli.SetAuthToken(cfg.Token)
	}
	return &Client{
		client:  cli,
		dataset: cfg.Dataset,
		logger:  logger,
	}
}

// WithConfig returns a copy pinned to the given api version and perspective.
// The underlying HTTP client is shared.
func (c *Client) WithConfig(config vo.ClientConfig) *Client {
	n := *c
	n.config = config
	return &n
}

func (c *Client) path() (string, error) {
	version := strings.TrimPrefix(c.config.APIVersion, "v")
	if version == "" {
		return "", ErrMissingAPIVersion
	}
	return fmt.Sprintf("/v%s/data/query/%s", version, c.dataset), nil
}

func encodeParams(query vo.SlugQuery) (map[string]string, error) {
	values := map[string]any{
		"publishedId": query.PublishedID,
		"type":        query.Type,
		"slugs":       query.Slugs,
	}
	params := make(map[string]string, len(values))
	for name, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode parameter %s: %w", name, err)
		}
		params["$"+name] = string(encoded)
	}
	return params, nil
}

func (c *Client) IsSlugUnique(ctx context.Context, query vo.SlugQuery) (bool, error) {
	path, err := c.path()
	if err != nil {
		return false, err
	}
	params, err := encodeParams(query)
	if err != nil {
		return false, err
	}

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", UniqueSlugQuery).
		SetQueryParams(params)
	if c.config.Perspective != "" {
		req.SetQueryParam("perspective", string(c.config.Perspective))
	}

	resp, err := req.Get(path)
	if err != nil {
		return false, fmt.Errorf("failed to run slug query: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		c.logger.Error("slug query failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Error(err),
		)
		return false, err
	}

	var body response
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return false, fmt.Errorf("failed to decode query response: %w", err)
	}
	if body.Result == nil {
		return false, ErrUnexpectedResponse
	}
	c.logger.Debug("slug query",
		zap.String("publishedId", query.PublishedID),
		zap.Strings("slugs", query.Slugs),
		zap.Bool("unique", *body.Result),
		zap.Int("ms", body.Ms),
	)
	return *body.Result, nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrQueryFailed, resp.StatusCode(), body)
}
