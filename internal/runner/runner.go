// Package runner executes a scheduled job against the remote scraping
// service. It translates the stored job into one or more outbound HTTP
// calls, long-polls asynchronous operations to completion, and maps remote
// failures onto a typed error taxonomy. The runner never touches storage;
// run bookkeeping belongs to the scheduler.
package runner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/logger"
)

// Default configuration values.
const (
	defaultScrapeTimeout = 300 * time.Second
	defaultMapTimeout    = 120 * time.Second
	defaultPollInterval  = 5 * time.Second
	defaultPollAttempts  = 120

	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Interface executes one run of a scheduled job and returns the terminal
// artifact from the remote service.
type Interface interface {
	Execute(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error)
}

// Config holds runner timeouts and the poll budget.
type Config struct {
	ScrapeTimeout time.Duration // per-call cap for scrape, crawl, and batch requests
	MapTimeout    time.Duration // per-call cap for map requests
	PollInterval  time.Duration
	PollAttempts  int
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.ScrapeTimeout <= 0 {
		c.ScrapeTimeout = defaultScrapeTimeout
	}
	if c.MapTimeout <= 0 {
		c.MapTimeout = defaultMapTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = defaultPollAttempts
	}
	return c
}

// Client performs job executions over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Interface
}

// NewClient creates a runner client. Request deadlines come from per-call
// contexts, so the underlying client carries no global timeout.
func NewClient(cfg Config, log logger.Interface) *Client {
	return &Client{
		cfg: cfg.WithDefaults(),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
				TLSHandshakeTimeout: tlsHandshakeTimeout,
			},
		},
		logger: log,
	}
}

// Execute runs the job's operation against job.APIEndpoint. It returns the
// terminal artifact as raw JSON, or an error describing the failure. There
// is no retry inside a run; the schedule itself is the retry policy.
func (c *Client) Execute(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error) {
	c.logger.Debug("Executing job", "job_id", job.ID, "job_type", job.JobType, "endpoint", job.APIEndpoint)

	switch job.JobType {
	case domain.JobTypeScrape:
		return c.executeScrape(ctx, job)
	case domain.JobTypeCrawl:
		return c.executeCrawl(ctx, job)
	case domain.JobTypeMap:
		return c.executeMap(ctx, job)
	case domain.JobTypeBatch:
		return c.executeBatch(ctx, job)
	default:
		return nil, fmt.Errorf("unknown job type %q", job.JobType)
	}
}

func (c *Client) executeScrape(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error) {
	url, err := singleURL(job)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"url": url}
	mergeScrapeOptions(payload, job.JobConfig)

	body, err := c.postJSON(ctx, job.APIEndpoint, "/v1/scrape", payload, c.cfg.ScrapeTimeout)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if present(env.Data) {
		return domain.RawJSON(env.Data), nil
	}
	return domain.RawJSON(body), nil
}

func (c *Client) executeCrawl(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error) {
	url, err := singleURL(job)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"url": url}
	for _, key := range []string{"limit", "maxDepth"} {
		if v, ok := job.JobConfig[key]; ok {
			payload[key] = v
		}
	}
	if opts := scrapeOptions(job.JobConfig); len(opts) > 0 {
		payload["scrapeOptions"] = opts
	}

	body, err := c.postJSON(ctx, job.APIEndpoint, "/v1/crawl", payload, c.cfg.ScrapeTimeout)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.ID != "" {
		return c.poll(ctx, job.APIEndpoint, "/v1/crawl/"+env.ID)
	}

	// Remote answered synchronously
	if present(env.Data) {
		return domain.RawJSON(env.Data), nil
	}
	return domain.RawJSON(body), nil
}

func (c *Client) executeMap(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error) {
	url, err := singleURL(job)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"url": url}
	for _, key := range []string{"limit", "search"} {
		if v, ok := job.JobConfig[key]; ok {
			payload[key] = v
		}
	}

	body, err := c.postJSON(ctx, job.APIEndpoint, "/v1/map", payload, c.cfg.MapTimeout)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if present(env.Links) {
		return domain.RawJSON(env.Links), nil
	}
	if present(env.Data) {
		return domain.RawJSON(env.Data), nil
	}
	return domain.RawJSON(body), nil
}

func (c *Client) executeBatch(ctx context.Context, job *domain.ScheduledJob) (domain.RawJSON, error) {
	if len(job.URLs) == 0 {
		return nil, fmt.Errorf("job %s has no urls", job.ID)
	}

	payload := map[string]any{"urls": []string(job.URLs)}
	mergeScrapeOptions(payload, job.JobConfig)

	body, err := c.postJSON(ctx, job.APIEndpoint, "/v1/batch/scrape", payload, c.cfg.ScrapeTimeout)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.ID != "" {
		return c.poll(ctx, job.APIEndpoint, "/v1/batch/scrape/"+env.ID)
	}

	if present(env.Data) {
		return domain.RawJSON(env.Data), nil
	}
	return domain.RawJSON(body), nil
}

func singleURL(job *domain.ScheduledJob) (string, error) {
	if job.URL == nil || *job.URL == "" {
		return "", fmt.Errorf("job %s has no url", job.ID)
	}
	return *job.URL, nil
}
