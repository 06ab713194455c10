// Package orcid reads works, affiliations and person data from the ORCID
// public API and converts them into profile records.
package orcid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	apperrors "github.com/louisbranch/scholarflow/internal/platform/errors"
	"github.com/louisbranch/scholarflow/internal/platform/logging"
	"github.com/louisbranch/scholarflow/internal/platform/telemetry/metrics"
	"github.com/louisbranch/scholarflow/internal/platform/timeouts"
	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the ORCID public API root.
const DefaultBaseURL = "https://pub.orcid.org/v3.0"

const maxResponseBytes = 4 << 20

// Config tunes the client.
type Config struct {
	BaseURL           string        `env:"SCHOLARFLOW_ORCID_API_BASE" envDefault:"https://pub.orcid.org/v3.0"`
	RequestsPerSecond float64       `env:"SCHOLARFLOW_ORCID_RATE" envDefault:"8"`
	Burst             int           `env:"SCHOLARFLOW_ORCID_BURST" envDefault:"8"`
	Concurrency       int           `env:"SCHOLARFLOW_ORCID_CONCURRENCY" envDefault:"4"`
	MaxAttempts       uint          `env:"SCHOLARFLOW_ORCID_MAX_ATTEMPTS" envDefault:"3"`
	RetryInitial      time.Duration `env:"SCHOLARFLOW_ORCID_RETRY_INITIAL" envDefault:"250ms"`
}

// StatusError is a non-2xx ORCID response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ORCID API error: %d", e.StatusCode)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client calls the ORCID public API. A Client is safe for concurrent use;
// WithToken copies share the rate limiter.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	token        string
	limiter      *rate.Limiter
	concurrency  int
	maxAttempts  uint
	retryInitial time.Duration
	metrics      *metrics.Registry
	tracer       trace.Tracer
	now          func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithMetrics records request outcomes on reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) { c.metrics = reg }
}

// New builds a client from cfg, filling zero values with defaults.
func New(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 8
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 3
	}
	initial := cfg.RetryInitial
	if initial <= 0 {
		initial = 250 * time.Millisecond
	}

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeouts.ORCIDRequest},
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		concurrency:  concurrency,
		maxAttempts:  attempts,
		retryInitial: initial,
		tracer:       otel.Tracer("github.com/louisbranch/scholarflow/orcid"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// FetchWorks lists an iD's works and fetches each work's detail. Detail
// failures are logged and skipped. Results are ordered by year, newest
// first, keeping summary order for equal years.
func (c *Client) FetchWorks(ctx context.Context, orcidID string) ([]profile.Publication, error) {
	ctx, span := c.tracer.Start(ctx, "orcid.FetchWorks", trace.WithAttributes(attribute.String("orcid.id", orcidID)))
	defer span.End()

	var listing worksResponse
	if err := c.getJSON(ctx, "works", "/"+orcidID+"/works", &listing); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var putCodes []int64
	for _, group := range listing.groups() {
		for _, summary := range group.WorkSummary {
			putCodes = append(putCodes, summary.PutCode)
		}
	}
	span.SetAttributes(attribute.Int("orcid.work_count", len(putCodes)))
	if len(putCodes) == 0 {
		return []profile.Publication{}, nil
	}

	details := make([]*profile.Publication, len(putCodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, putCode := range putCodes {
		g.Go(func() error {
			pub, err := c.FetchWork(gctx, orcidID, putCode)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logging.FromContext(gctx).Warn("fetch ORCID work details",
					zap.String("orcid_id", orcidID),
					zap.Int64("put_code", putCode),
					zap.Error(err),
				)
				return nil
			}
			details[i] = pub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	publications := make([]profile.Publication, 0, len(details))
	for _, pub := range details {
		if pub != nil {
			publications = append(publications, *pub)
		}
	}
	sort.SliceStable(publications, func(i, j int) bool {
		return publications[i].Year > publications[j].Year
	})
	return publications, nil
}

// FetchWork fetches one work detail. A non-2xx response yields nil without
// error and counts as skipped.
func (c *Client) FetchWork(ctx context.Context, orcidID string, putCode int64) (*profile.Publication, error) {
	body, err := c.fetch(ctx, "work", "/"+orcidID+"/work/"+strconv.FormatInt(putCode, 10))
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.metrics.ObserveORCID("work", metrics.OutcomeSkipped)
			return nil, nil
		}
		c.metrics.ObserveORCID("work", metrics.OutcomeError)
		return nil, err
	}
	c.metrics.ObserveORCID("work", metrics.OutcomeOK)

	var work Work
	if err := decodeJSON("work", body, &work); err != nil {
		return nil, err
	}
	pub := transformWork(work, c.now().Year())
	return &pub, nil
}

// FetchPerson fetches name, biography, emails and researcher URLs.
func (c *Client) FetchPerson(ctx context.Context, orcidID string) (Person, error) {
	ctx, span := c.tracer.Start(ctx, "orcid.FetchPerson", trace.WithAttributes(attribute.String("orcid.id", orcidID)))
	defer span.End()

	var resp personResponse
	if err := c.getJSON(ctx, "person", "/"+orcidID+"/person", &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Person{}, err
	}

	var person Person
	if resp.Name != nil {
		person.GivenNames = resp.Name.GivenNames.String()
		person.FamilyName = resp.Name.FamilyName.String()
		person.CreditName = resp.Name.CreditName.String()
	}
	if resp.Biography != nil {
		person.Biography = strings.TrimSpace(resp.Biography.Content)
	}
	if resp.Emails != nil {
		for _, email := range resp.Emails.Email {
			if email.Email != "" {
				person.Emails = append(person.Emails, email.Email)
			}
		}
	}
	if resp.ResearcherURLs != nil {
		for _, site := range resp.ResearcherURLs.ResearcherURL {
			if link := site.URL.String(); link != "" {
				person.Websites = append(person.Websites, Website{Name: site.URLName, URL: link})
			}
		}
	}
	return person, nil
}

// FetchEducations returns education entries; failures yield an empty list.
func (c *Client) FetchEducations(ctx context.Context, orcidID string) []profile.Education {
	var resp affiliationsResponse
	if err := c.getJSON(ctx, "educations", "/"+orcidID+"/educations", &resp); err != nil {
		logging.FromContext(ctx).Warn("fetch ORCID educations", zap.String("orcid_id", orcidID), zap.Error(err))
		return []profile.Education{}
	}
	out := []profile.Education{}
	for _, summary := range resp.educations() {
		out = append(out, ToEducation(summary))
	}
	return out
}

// FetchEmployments returns positions; failures yield an empty list.
func (c *Client) FetchEmployments(ctx context.Context, orcidID string) []profile.Position {
	var resp affiliationsResponse
	if err := c.getJSON(ctx, "employments", "/"+orcidID+"/employments", &resp); err != nil {
		logging.FromContext(ctx).Warn("fetch ORCID employments", zap.String("orcid_id", orcidID), zap.Error(err))
		return []profile.Position{}
	}
	out := []profile.Position{}
	for _, summary := range resp.employments() {
		out = append(out, ToPosition(summary))
	}
	return out
}

// getJSON fetches path and decodes it into target, recording one outcome.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, target any) error {
	body, err := c.fetch(ctx, endpoint, path)
	if err != nil {
		c.metrics.ObserveORCID(endpoint, metrics.OutcomeError)
		return err
	}
	c.metrics.ObserveORCID(endpoint, metrics.OutcomeOK)
	return decodeJSON(endpoint, body, target)
}

// fetch performs a rate-limited GET with retries on 429 and 5xx. Only
// retries are recorded here.
func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		body, err := c.get(ctx, path)
		if err == nil {
			return body, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.metrics.ObserveORCID(endpoint, metrics.OutcomeRetried)
			logging.FromContext(ctx).Debug("retry ORCID request",
				zap.String("path", path), zap.Duration("wait", wait), zap.Error(err))
		}),
	)
	return body, err
}

func decodeJSON(endpoint string, body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode ORCID %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build ORCID request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeORCIDUnavailable, "ORCID is unavailable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read ORCID response: %w", err)
	}
	return body, nil
}
