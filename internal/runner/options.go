package runner

import (
	"encoding/json"
	"math"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// passthroughOptions are forwarded to the remote verbatim when present in
// job_config.
var passthroughOptions = []string{"formats", "onlyMainContent", "includeTags", "excludeTags"}

// scrapeOptions projects the scraping options the remote understands out of
// job_config. Only keys actually present are forwarded, so the remote
// applies its own defaults for the rest. waitFor and timeout are stored in
// seconds and converted to the milliseconds the remote expects; non-numeric
// values are dropped.
func scrapeOptions(cfg domain.JSONMap) map[string]any {
	opts := make(map[string]any)
	for _, key := range passthroughOptions {
		if v, ok := cfg[key]; ok {
			opts[key] = v
		}
	}
	for _, key := range []string{"waitFor", "timeout"} {
		if v, ok := cfg[key]; ok {
			if ms, numeric := secondsToMillis(v); numeric {
				opts[key] = ms
			}
		}
	}
	return opts
}

// mergeScrapeOptions copies the projection into a top-level payload, as the
// scrape and batch endpoints take their options inline.
func mergeScrapeOptions(payload map[string]any, cfg domain.JSONMap) {
	for k, v := range scrapeOptions(cfg) {
		payload[k] = v
	}
}

func secondsToMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(math.Round(n * 1000)), true
	case int:
		return int64(n) * 1000, true
	case int64:
		return n * 1000, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(math.Round(f * 1000)), true
	default:
		return 0, false
	}
}
