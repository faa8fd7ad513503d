package servicesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/service_sync/config"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("bitbucket.org/mmdatafocus/service_sync/servicesync")

// SourceClient pages through the upstream services API.
type SourceClient struct {
	baseURL   string
	pageSize  int
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	interval  time.Duration
	logger    *logrus.Logger
}

func NewSourceClient(settings *config.Settings, logger *logrus.Logger) (*SourceClient, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	if _, err := url.Parse(settings.SourceURL); err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}
	pageSize := settings.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	c := &SourceClient{
		baseURL:   settings.SourceURL,
		pageSize:  pageSize,
		apiKey:    settings.APIKey,
		apiKeyHdr: settings.APIKeyHeader,
		http:      &http.Client{Timeout: settings.HTTPTimeout},
		logger:    logger,
	}
	if settings.RateLimitPerMin > 0 {
		c.interval = time.Minute / time.Duration(settings.RateLimitPerMin)
	}
	return c, nil
}

// FetchAll follows next_page_url from the first page until the API reports
// no further page, returning every record in page order.
func (c *SourceClient) FetchAll(ctx context.Context) ([]SourceService, error) {
	ctx, span := tracer.Start(ctx, "servicesync.FetchAll")
	defer span.End()

	services := []SourceService{}
	next, err := c.pageURL(c.baseURL, nil)
	if err != nil {
		return nil, &TransportError{URL: c.baseURL, Err: err}
	}
	seen := map[string]bool{}
	pages := 0

	var limiter <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		limiter = ticker.C
	}

	for next != "" {
		if seen[next] {
			err := &TransportError{URL: next, Err: errors.New("pagination cycle: page already fetched")}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		seen[next] = true

		// The first page goes out immediately; later pages wait for the limiter.
		if pages > 0 && limiter != nil {
			select {
			case <-ctx.Done():
				return nil, &TransportError{URL: next, Err: ctx.Err()}
			case <-limiter:
			}
		}

		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"field": "FetchAll", "url": next}).Info("Service URL")
		}
		page, err := c.getPage(ctx, next)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		pages++
		services = append(services, page.Data...)

		if page.NextPageURL == nil || strings.TrimSpace(*page.NextPageURL) == "" {
			break
		}
		base, _ := url.Parse(next)
		next, err = c.pageURL(strings.TrimSpace(*page.NextPageURL), base)
		if err != nil {
			return nil, &TransportError{URL: *page.NextPageURL, Err: err}
		}
	}

	span.SetAttributes(attribute.Int("pages", pages), attribute.Int("records", len(services)))
	return services, nil
}

// pageURL resolves raw against base and sets the page-size parameter.
func (c *SourceClient) pageURL(raw string, base *url.URL) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *SourceClient) getPage(ctx context.Context, endpoint string) (sourcePage, error) {
	ctx, span := tracer.Start(ctx, "servicesync.getPage")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return sourcePage{}, &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHdr, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return sourcePage{}, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sourcePage{}, &TransportError{URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sourcePage{}, &TransportError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("services api error: %s", strings.TrimSpace(string(body))),
		}
	}

	var page sourcePage
	if err := json.Unmarshal(body, &page); err != nil {
		return sourcePage{}, &TransportError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode page: %w", err)}
	}
	return page, nil
}
