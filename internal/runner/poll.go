package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// Terminal statuses reported by the remote poll endpoint. Any other status
// means the remote job is still in progress.
const (
	remoteStatusCompleted = "completed"
	remoteStatusFailed    = "failed"
)

// poll follows an asynchronous remote job to completion. The first status
// check happens immediately, then every PollInterval until the remote
// reports a terminal status, the context is cancelled, or the attempt
// budget runs out.
func (c *Client) poll(ctx context.Context, endpoint, path string) (domain.RawJSON, error) {
	for attempt := 1; attempt <= c.cfg.PollAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}

		body, err := c.getJSON(ctx, endpoint, path, c.cfg.ScrapeTimeout)
		if err != nil {
			return nil, err
		}

		env, err := decodeEnvelope(body)
		if err != nil {
			return nil, err
		}

		switch env.Status {
		case remoteStatusCompleted:
			if present(env.Data) {
				return domain.RawJSON(env.Data), nil
			}
			return domain.RawJSON(body), nil

		case remoteStatusFailed:
			if env.Error != "" {
				return nil, fmt.Errorf("remote job failed: %s", env.Error)
			}
			return nil, errors.New("remote job failed")

		default:
			c.logger.Debug("Remote job still in progress",
				"path", path, "status", env.Status, "attempt", attempt, "budget", c.cfg.PollAttempts)
		}
	}

	return nil, fmt.Errorf("%w: %d attempts every %s", ErrPollTimeout, c.cfg.PollAttempts, c.cfg.PollInterval)
}
