// Package domain provides domain models used across the application.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Job types selecting the Runner branch.
const (
	JobTypeScrape = "scrape"
	JobTypeCrawl  = "crawl"
	JobTypeMap    = "map"
	JobTypeBatch  = "batch"
)

// Schedule kinds.
const (
	ScheduleTypeInterval = "interval"
	ScheduleTypeHourly   = "hourly"
	ScheduleTypeDaily    = "daily"
	ScheduleTypeWeekly   = "weekly"
	ScheduleTypeMonthly  = "monthly"
)

// DefaultTimezone is applied when a schedule omits its timezone.
const DefaultTimezone = "UTC"

// ErrNotFound is returned by store lookups for missing rows.
var ErrNotFound = errors.New("not found")

// ScheduledJob is a user-defined schedule binding a scraping operation to a
// recurrence rule and timezone.
type ScheduledJob struct {
	ID   string `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`

	// Operation definition
	JobType     string     `db:"job_type"     json:"job_type"`
	JobConfig   JSONMap    `db:"job_config"   json:"job_config"`
	URL         *string    `db:"url"          json:"url,omitempty"`
	URLs        StringList `db:"urls"         json:"urls,omitempty"`
	APIEndpoint string     `db:"api_endpoint" json:"api_endpoint"`

	// Recurrence rule
	ScheduleType   string  `db:"schedule_type"   json:"schedule_type"`
	ScheduleConfig JSONMap `db:"schedule_config" json:"schedule_config"`
	Timezone       string  `db:"timezone"        json:"timezone"`

	IsActive bool `db:"is_active" json:"is_active"`

	CreatedAt time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"  json:"updated_at"`
	LastRunAt *time.Time `db:"last_run_at" json:"last_run_at,omitempty"`
	NextRunAt *time.Time `db:"next_run_at" json:"next_run_at,omitempty"`
}

// ValidJobType reports whether t is one of the supported job types.
func ValidJobType(t string) bool {
	switch t {
	case JobTypeScrape, JobTypeCrawl, JobTypeMap, JobTypeBatch:
		return true
	}
	return false
}

// ValidScheduleType reports whether t is one of the supported schedule kinds.
func ValidScheduleType(t string) bool {
	switch t {
	case ScheduleTypeInterval, ScheduleTypeHourly, ScheduleTypeDaily,
		ScheduleTypeWeekly, ScheduleTypeMonthly:
		return true
	}
	return false
}

// RequiresURLList reports whether the job type operates on a URL list
// rather than a single URL.
func RequiresURLList(jobType string) bool {
	return jobType == JobTypeBatch
}

// Validate checks the structural invariants of a scheduled job: non-empty
// name and endpoint, a known job and schedule type, and exactly one of
// url/urls populated according to the job type. Schedule config shape is
// validated separately by the recurrence package.
func (j *ScheduledJob) Validate() error {
	if j.Name == "" {
		return errors.New("name is required")
	}
	if !ValidJobType(j.JobType) {
		return fmt.Errorf("invalid job type: %q", j.JobType)
	}
	if j.APIEndpoint == "" {
		return errors.New("api endpoint is required")
	}
	if !ValidScheduleType(j.ScheduleType) {
		return fmt.Errorf("invalid schedule type: %q", j.ScheduleType)
	}

	if RequiresURLList(j.JobType) {
		if len(j.URLs) == 0 {
			return fmt.Errorf("job type %q requires a non-empty urls list", j.JobType)
		}
		if j.URL != nil && *j.URL != "" {
			return fmt.Errorf("job type %q takes urls, not url", j.JobType)
		}
		return nil
	}

	if j.URL == nil || *j.URL == "" {
		return fmt.Errorf("job type %q requires url", j.JobType)
	}
	if len(j.URLs) > 0 {
		return fmt.Errorf("job type %q takes url, not urls", j.JobType)
	}
	return nil
}
