package recurrence_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func TestNextFireAfter_DailyInNewYork(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeDaily, domain.JSONMap{"time": "09:30"})
	job.Timezone = "America/New_York"

	ref := mustParse(t, "2024-01-01T08:00:00-05:00")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:30 Eastern is 14:30 UTC in January
	expected := mustParse(t, "2024-01-01T14:30:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
	if next.Location() != time.UTC {
		t.Errorf("expected UTC result, got %v", next.Location())
	}
}

func TestNextFireAfter_WeeklyMultipleDays(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeWeekly, domain.JSONMap{
		"time": "09:00",
		"days": []any{1, 3, 5}, // Mon, Wed, Fri
	})

	// Sunday noon; the earliest matching day is Monday
	ref := mustParse(t, "2024-01-07T12:00:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-01-08T09:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_WeeklySameDayLaterTime(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeWeekly, domain.JSONMap{
		"time": "09:00",
		"days": []any{0}, // Sunday
	})

	ref := mustParse(t, "2024-01-07T08:00:00Z") // Sunday 08:00

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-01-07T09:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected same-day fire %v, got %v", expected, next)
	}
}

func TestNextFireAfter_WeeklyWrapsToNextWeek(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeWeekly, domain.JSONMap{
		"time": "09:00",
		"days": []any{0}, // Sunday
	})

	ref := mustParse(t, "2024-01-07T10:00:00Z") // Sunday, past 09:00

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-01-14T09:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected next Sunday %v, got %v", expected, next)
	}
}

func TestNextFireAfter_MonthlySkipsShortMonths(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeMonthly, domain.JSONMap{"time": "00:00", "date": 31})

	// Walking a year of fires from mid-January must skip February, April,
	// June, September, and November, never clamping to month end.
	expected := []string{
		"2024-01-31T00:00:00Z",
		"2024-03-31T00:00:00Z",
		"2024-05-31T00:00:00Z",
		"2024-07-31T00:00:00Z",
		"2024-08-31T00:00:00Z",
		"2024-10-31T00:00:00Z",
		"2024-12-31T00:00:00Z",
	}

	ref := mustParse(t, "2024-01-15T00:00:00Z")
	for _, want := range expected {
		next, err := recurrence.NextFireAfter(job, ref)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !next.Equal(mustParse(t, want)) {
			t.Fatalf("after %v: expected %s, got %v", ref, want, next)
		}
		ref = next
	}
}

func TestNextFireAfter_IntervalMinutes(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeInterval, domain.JSONMap{"interval": 15, "unit": "minutes"})

	ref := mustParse(t, "2024-06-10T12:07:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-06-10T12:15:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_IntervalMinutesOnBoundaryIsStrictlyAfter(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeInterval, domain.JSONMap{"interval": 15, "unit": "minutes"})

	// A reference exactly on a boundary yields the following boundary
	ref := mustParse(t, "2024-06-10T12:15:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-06-10T12:30:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_IntervalHours(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeInterval, domain.JSONMap{"interval": 6, "unit": "hours"})

	ref := mustParse(t, "2024-06-10T13:05:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Hours 0, 6, 12, 18; the first after 13:05 is 18:00
	expected := mustParse(t, "2024-06-10T18:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_IntervalDays(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeInterval, domain.JSONMap{"interval": 5, "unit": "days"})

	ref := mustParse(t, "2024-01-03T07:00:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Days of month 1, 6, 11, ...; the first midnight after Jan 3 is Jan 6
	expected := mustParse(t, "2024-01-06T00:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_Hourly(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeHourly, domain.JSONMap{})

	ref := mustParse(t, "2024-06-10T10:20:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-06-10T11:00:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_DailySkipsSpringForwardGap(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeDaily, domain.JSONMap{"time": "02:30"})
	job.Timezone = "America/New_York"

	// 2024-03-10 has no 02:30 in New York; the fire moves to the 11th
	ref := mustParse(t, "2024-03-09T12:00:00-05:00")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-03-11T06:30:00Z") // 02:30 EDT
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_EmptyTimezoneDefaultsToUTC(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeDaily, domain.JSONMap{"time": "09:30"})
	job.Timezone = ""

	ref := mustParse(t, "2024-01-01T08:00:00Z")

	next, err := recurrence.NextFireAfter(job, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustParse(t, "2024-01-01T09:30:00Z")
	if !next.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, next)
	}
}

func TestNextFireAfter_UnknownTimezone(t *testing.T) {
	t.Helper()

	job := scheduleWith(domain.ScheduleTypeDaily, domain.JSONMap{"time": "09:30"})
	job.Timezone = "Mars/Olympus_Mons"

	_, err := recurrence.NextFireAfter(job, time.Now())
	if err == nil {
		t.Fatal("expected error for unknown timezone, got none")
	}
	if !errors.Is(err, recurrence.ErrInvalidScheduleConfig) {
		t.Errorf("expected ErrInvalidScheduleConfig, got %v", err)
	}
}
