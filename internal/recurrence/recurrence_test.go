package recurrence_test

import (
	"errors"
	"testing"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

func scheduleWith(scheduleType string, config domain.JSONMap) *domain.ScheduledJob {
	return &domain.ScheduledJob{
		ID:             "sched-1",
		Name:           "test schedule",
		JobType:        domain.JobTypeScrape,
		ScheduleType:   scheduleType,
		ScheduleConfig: config,
		Timezone:       "UTC",
	}
}

func TestBuildCronSpec_Mapping(t *testing.T) {
	t.Helper()

	tests := []struct {
		name         string
		scheduleType string
		config       domain.JSONMap
		expected     string
	}{
		{"interval minutes", domain.ScheduleTypeInterval, domain.JSONMap{"interval": 15, "unit": "minutes"}, "*/15 * * * *"},
		{"interval hours", domain.ScheduleTypeInterval, domain.JSONMap{"interval": 6, "unit": "hours"}, "0 */6 * * *"},
		{"interval days", domain.ScheduleTypeInterval, domain.JSONMap{"interval": 2, "unit": "days"}, "0 0 */2 * *"},
		{"hourly", domain.ScheduleTypeHourly, domain.JSONMap{}, "0 * * * *"},
		{"daily", domain.ScheduleTypeDaily, domain.JSONMap{"time": "09:30"}, "30 9 * * *"},
		{"weekly", domain.ScheduleTypeWeekly, domain.JSONMap{"time": "09:00", "days": []any{1, 3, 5}}, "0 9 * * 1,3,5"},
		{"monthly", domain.ScheduleTypeMonthly, domain.JSONMap{"time": "23:45", "date": 15}, "45 23 15 * *"},
	}

	for _, tt := range tests {
		spec, err := recurrence.BuildCronSpec(scheduleWith(tt.scheduleType, tt.config))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if spec != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, spec)
		}
	}
}

func TestBuildCronSpec_FloatValuesFromJSON(t *testing.T) {
	t.Helper()

	// Numbers decoded from JSON arrive as float64.
	job := scheduleWith(domain.ScheduleTypeInterval, domain.JSONMap{"interval": float64(15), "unit": "minutes"})

	spec, err := recurrence.BuildCronSpec(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec != "*/15 * * * *" {
		t.Errorf("expected */15 * * * *, got %q", spec)
	}
}

func TestBuildCronSpec_WeeklyDaysSortedAndDeduped(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeWeekly, domain.JSONMap{
		"time": "08:00",
		"days": []any{float64(5), float64(1), float64(3), float64(3)},
	})

	spec, err := recurrence.BuildCronSpec(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec != "0 8 * * 1,3,5" {
		t.Errorf("expected 0 8 * * 1,3,5, got %q", spec)
	}
}

func TestBuildCronSpec_InvalidConfigs(t *testing.T) {
	t.Helper()

	tests := []struct {
		name         string
		scheduleType string
		config       domain.JSONMap
	}{
		{"interval missing", domain.ScheduleTypeInterval, domain.JSONMap{"unit": "minutes"}},
		{"interval zero", domain.ScheduleTypeInterval, domain.JSONMap{"interval": 0, "unit": "minutes"}},
		{"unknown unit", domain.ScheduleTypeInterval, domain.JSONMap{"interval": 5, "unit": "fortnights"}},
		{"daily missing time", domain.ScheduleTypeDaily, domain.JSONMap{}},
		{"daily bad clock", domain.ScheduleTypeDaily, domain.JSONMap{"time": "25:00"}},
		{"weekly missing days", domain.ScheduleTypeWeekly, domain.JSONMap{"time": "09:00"}},
		{"weekly empty days", domain.ScheduleTypeWeekly, domain.JSONMap{"time": "09:00", "days": []any{}}},
		{"weekly day out of range", domain.ScheduleTypeWeekly, domain.JSONMap{"time": "09:00", "days": []any{7}}},
		{"monthly missing date", domain.ScheduleTypeMonthly, domain.JSONMap{"time": "09:00"}},
		{"monthly date zero", domain.ScheduleTypeMonthly, domain.JSONMap{"time": "09:00", "date": 0}},
		{"monthly date too large", domain.ScheduleTypeMonthly, domain.JSONMap{"time": "09:00", "date": 32}},
		{"unknown schedule type", "fortnightly", domain.JSONMap{}},
	}

	for _, tt := range tests {
		_, err := recurrence.BuildCronSpec(scheduleWith(tt.scheduleType, tt.config))
		if err == nil {
			t.Errorf("%s: expected error, got none", tt.name)
			continue
		}
		if !errors.Is(err, recurrence.ErrInvalidScheduleConfig) {
			t.Errorf("%s: expected ErrInvalidScheduleConfig, got %v", tt.name, err)
		}
	}
}
