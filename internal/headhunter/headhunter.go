package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	siteURL = "https://hh.ru"
	// hh.ru answers plain clients with a captcha page, so we look like a browser.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout  = 10 * time.Second
	defaultInterval = time.Second
)

type Client struct {
	logger     *zap.Logger
	interval   time.Duration
	parser     CardParser
	HTTPClient *http.Client
	UserAgent  string
	SiteURL    string
}

// Options tunes the client. Zero values fall back to the defaults.
type Options struct {
	SiteURL   string
	UserAgent string
	Timeout   time.Duration
	// Interval between two search requests. Negative disables throttling.
	Interval time.Duration
	Parser   CardParser
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		logger:    logger,
		parser:    opts.Parser,
		SiteURL:   strings.TrimRight(opts.SiteURL, "/"),
		UserAgent: opts.UserAgent,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}

	if c.SiteURL == "" {
		c.SiteURL = siteURL
	}
	if c.UserAgent == "" {
		c.UserAgent = userAgent
	}
	if c.HTTPClient.Timeout <= 0 {
		c.HTTPClient.Timeout = defaultTimeout
	}
	if c.parser == nil {
		c.parser = NewMarkupParser(c.SiteURL)
	}

	c.interval = opts.Interval
	if c.interval == 0 {
		c.interval = defaultInterval
	}

	return c
}

// Search scrapes the first result page for every (role, city) pair and returns
// listings deduplicated by id. It never fails: broken pairs are logged and skipped.
// Requests of one call are spaced by the configured interval; concurrent calls
// do not wait for each other.
func (c *Client) Search(ctx context.Context, roles, cities []string, minSalary int) *Listings {
	results := c.searchPairs(ctx, c.newLimiter(), roles, cities, minSalary)

	found := &Listings{}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			c.logger.Warn("search request failed",
				zap.String("role", res.Role),
				zap.String("city", res.City),
				zap.Error(res.Err),
			)
			continue
		}

		added := found.Merge(res.Listings)
		c.logger.Debug("search request done",
			zap.String("role", res.Role),
			zap.String("city", res.City),
			zap.Int("parsed", res.Listings.Len()),
			zap.Int("added", added),
		)
	}

	c.logger.Info("search finished",
		zap.Int("requests", len(results)),
		zap.Int("failed", failed),
		zap.Int("listings", found.Len()),
	)

	return found
}

// PairResult is the outcome of a single (role, city) request.
type PairResult struct {
	Role     string
	City     string
	Listings *Listings
	Err      error
}

func (c *Client) searchPairs(ctx context.Context, limiter *rate.Limiter, roles, cities []string, minSalary int) []PairResult {
	var results []PairResult

	for _, role := range roles {
		for _, city := range cities {
			area, ok := RegionCode(city)
			if !ok {
				c.logger.Debug("skipping unknown city", zap.String("city", city))
				continue
			}

			if err := wait(ctx, limiter); err != nil {
				results = append(results, PairResult{Role: role, City: city, Err: err})
				continue
			}

			params := &SearchParams{
				Text:         role,
				Area:         area,
				Salary:       minSalary,
				CurrencyCode: currencyRUR,
			}

			listings, err := c.searchPair(ctx, params)
			results = append(results, PairResult{Role: role, City: city, Listings: listings, Err: err})
		}
	}

	return results
}

func (c *Client) searchPair(ctx context.Context, params *SearchParams) (listings *Listings, err error) {
	defer func() {
		if r := recover(); r != nil {
			listings, err = nil, fmt.Errorf("parsing search page: %v", r)
		}
	}()

	body, err := c.getPage(ctx, c.SiteURL+SearchPath, buildParams(params))
	if err != nil {
		return nil, err
	}

	return c.parser.Parse(body)
}

// newLimiter returns nil when throttling is disabled.
func (c *Client) newLimiter() *rate.Limiter {
	if c.interval < 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(c.interval), 1)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
