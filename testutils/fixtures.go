package testutils

import (
	"github.com/google/uuid"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// NewScrapeSchedule returns a valid active hourly scrape schedule with a
// fresh ID. Tests adjust fields before persisting as needed.
func NewScrapeSchedule(name string) *domain.ScheduledJob {
	url := "https://example.com"
	return &domain.ScheduledJob{
		ID:             uuid.New().String(),
		Name:           name,
		JobType:        domain.JobTypeScrape,
		JobConfig:      domain.JSONMap{"formats": []any{"markdown"}},
		URL:            &url,
		APIEndpoint:    "http://firecrawl.internal:3002",
		ScheduleType:   domain.ScheduleTypeHourly,
		ScheduleConfig: domain.JSONMap{},
		Timezone:       domain.DefaultTimezone,
		IsActive:       true,
	}
}

// NewBatchSchedule returns a valid active daily batch scrape schedule with
// a fresh ID.
func NewBatchSchedule(name string) *domain.ScheduledJob {
	return &domain.ScheduledJob{
		ID:             uuid.New().String(),
		Name:           name,
		JobType:        domain.JobTypeBatch,
		JobConfig:      domain.JSONMap{"formats": []any{"markdown"}},
		URLs:           domain.StringList{"https://example.com/a", "https://example.com/b"},
		APIEndpoint:    "http://firecrawl.internal:3002",
		ScheduleType:   domain.ScheduleTypeDaily,
		ScheduleConfig: domain.JSONMap{"time": "06:30"},
		Timezone:       domain.DefaultTimezone,
		IsActive:       true,
	}
}
