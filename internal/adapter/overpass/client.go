// Package overpass queries public Overpass API mirrors for the OSM
// features inside a region. Mirrors are rotated per attempt with
// exponential backoff; when every attempt fails the caller sees
// ports.ErrUpstreamUnavailable and is expected to degrade, not crash.
package overpass

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geohex/internal/app/ports"
	"geohex/internal/domain/zone"

	"go.uber.org/zap"
)

var defaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

const (
	defaultAttempts  = 4
	defaultBaseDelay = 500 * time.Millisecond
)

type doFunc func(ctx context.Context, endpoint, query string) (int, []byte, error)

type Client struct {
	endpoints []string
	attempts  int
	baseDelay time.Duration
	do        doFunc
	sleep     func(ctx context.Context, d time.Duration) error
	log       *zap.Logger
}

var _ ports.FeatureQueryService = (*Client)(nil)

func New(endpoints []string, log *zap.Logger) *Client {
	if len(endpoints) == 0 {
		endpoints = defaultEndpoints
	}
	httpClient := &http.Client{Timeout: 20 * time.Second}
	return &Client{
		endpoints: endpoints,
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		do:        httpDo(httpClient),
		sleep:     sleepCtx,
		log:       log,
	}
}

// Query runs the region's feature query against the mirror pool.
// Network errors, 429 and 5xx responses rotate to the next mirror after
// a doubling delay; any other non-200 status is a malformed request and
// fails immediately.
func (c *Client) Query(ctx context.Context, region ports.QueryRegion) ([]zone.Feature, error) {
	query := BuildQuery(region)
	delay := c.baseDelay

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}
		endpoint := c.endpoints[i%len(c.endpoints)]

		status, body, err := c.do(ctx, endpoint, query)
		if err != nil {
			lastErr = err
			c.warn(endpoint, i, err)
			continue
		}
		switch {
		case status == http.StatusOK:
			return parseFeatures(body), nil
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = fmt.Errorf("overpass %s: status %d", endpoint, status)
			c.warn(endpoint, i, lastErr)
			continue
		default:
			return nil, fmt.Errorf("overpass %s: unexpected status %d", endpoint, status)
		}
	}
	return nil, fmt.Errorf("%w: %v", ports.ErrUpstreamUnavailable, lastErr)
}

func (c *Client) warn(endpoint string, attempt int, err error) {
	if c.log != nil {
		c.log.Warn("overpass attempt failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}

func httpDo(client *http.Client) doFunc {
	return func(ctx context.Context, endpoint, query string) (int, []byte, error) {
		form := "data=" + url.QueryEscape(query)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return 0, nil, err
		}
		return resp.StatusCode, body, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
