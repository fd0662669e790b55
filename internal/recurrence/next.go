package recurrence

import (
	"fmt"
	"time"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// NextFireAfter computes the smallest instant strictly after ref at which the
// job's recurrence fires. The computation happens in the job's timezone and
// the result is returned in UTC.
//
// Wall-clock times that a daylight-saving transition removes are skipped, the
// same way the cron dispatcher skips them. A monthly schedule on date 31
// skips months that are too short rather than clamping to month end.
func NextFireAfter(job *domain.ScheduledJob, ref time.Time) (time.Time, error) {
	loc, err := loadZone(job.Timezone)
	if err != nil {
		return time.Time{}, err
	}

	switch job.ScheduleType {
	case domain.ScheduleTypeInterval:
		cfg, err := decodeInterval(job.ScheduleConfig)
		if err != nil {
			return time.Time{}, err
		}
		switch cfg.Unit {
		case UnitMinutes:
			return nextMinuteStep(ref, loc, cfg.Interval), nil
		case UnitHours:
			return nextHourStep(ref, loc, cfg.Interval), nil
		case UnitDays:
			return nextDayStep(ref, loc, cfg.Interval), nil
		default:
			return time.Time{}, fmt.Errorf("%w: unknown interval unit %q", ErrInvalidScheduleConfig, cfg.Unit)
		}

	case domain.ScheduleTypeHourly:
		return nextHourStep(ref, loc, 1), nil

	case domain.ScheduleTypeDaily:
		cfg, err := decodeClock(job.ScheduleConfig)
		if err != nil {
			return time.Time{}, err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return time.Time{}, err
		}
		return nextDaily(ref, loc, hour, minute), nil

	case domain.ScheduleTypeWeekly:
		cfg, err := decodeWeekly(job.ScheduleConfig)
		if err != nil {
			return time.Time{}, err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return time.Time{}, err
		}
		return nextWeekly(ref, loc, hour, minute, cfg.Days), nil

	case domain.ScheduleTypeMonthly:
		cfg, err := decodeMonthly(job.ScheduleConfig)
		if err != nil {
			return time.Time{}, err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return time.Time{}, err
		}
		return nextMonthly(ref, loc, hour, minute, cfg.Date), nil

	default:
		return time.Time{}, fmt.Errorf("%w: unknown schedule type %q", ErrInvalidScheduleConfig, job.ScheduleType)
	}
}

func loadZone(name string) (*time.Location, error) {
	if name == "" {
		name = domain.DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidScheduleConfig, name)
	}
	return loc, nil
}

// nextMinuteStep finds the next minute boundary whose wall-clock minute is a
// multiple of n, matching the cron field */n.
func nextMinuteStep(ref time.Time, loc *time.Location, n int) time.Time {
	t := ref.In(loc).Truncate(time.Minute)
	for {
		t = t.Add(time.Minute)
		if t.Minute()%n == 0 {
			return t.UTC()
		}
	}
}

// nextHourStep finds the next top of hour whose wall-clock hour is a
// multiple of n, matching the cron fields "0 */n".
func nextHourStep(ref time.Time, loc *time.Location, n int) time.Time {
	local := ref.In(loc)
	for day := 0; ; day++ {
		base := local.AddDate(0, 0, day)
		for h := 0; h < 24; h++ {
			if h%n != 0 {
				continue
			}
			cand := time.Date(base.Year(), base.Month(), base.Day(), h, 0, 0, 0, loc)
			if cand.After(ref) && cand.Hour() == h && cand.Minute() == 0 {
				return cand.UTC()
			}
		}
	}
}

// nextDayStep finds the next midnight on a day of month matching the cron
// field */n, which selects days 1, 1+n, 1+2n and so on within each month.
func nextDayStep(ref time.Time, loc *time.Location, n int) time.Time {
	local := ref.In(loc)
	for day := 0; ; day++ {
		base := local.AddDate(0, 0, day)
		if (base.Day()-1)%n != 0 {
			continue
		}
		cand := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, loc)
		if cand.After(ref) && cand.Hour() == 0 && cand.Minute() == 0 {
			return cand.UTC()
		}
	}
}

func nextDaily(ref time.Time, loc *time.Location, hour, minute int) time.Time {
	local := ref.In(loc)
	for day := 0; ; day++ {
		base := local.AddDate(0, 0, day)
		cand := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, loc)
		if cand.After(ref) && cand.Hour() == hour && cand.Minute() == minute {
			return cand.UTC()
		}
	}
}

// nextWeekly scans forward from ref's day and returns the earliest matching
// weekday whose target time is after ref. days is non-empty and uses cron
// numbering, 0 for Sunday.
func nextWeekly(ref time.Time, loc *time.Location, hour, minute int, days []int) time.Time {
	wanted := make(map[int]bool, len(days))
	for _, d := range days {
		wanted[d] = true
	}

	local := ref.In(loc)
	for day := 0; ; day++ {
		base := local.AddDate(0, 0, day)
		if !wanted[int(base.Weekday())] {
			continue
		}
		cand := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, loc)
		if cand.After(ref) && cand.Hour() == hour && cand.Minute() == minute {
			return cand.UTC()
		}
	}
}

// nextMonthly fires on the given date each month. Months too short for the
// date are skipped entirely; a schedule on date 31 never fires in February.
func nextMonthly(ref time.Time, loc *time.Location, hour, minute, date int) time.Time {
	local := ref.In(loc)
	for months := 0; ; months++ {
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, months, 0)
		cand := time.Date(first.Year(), first.Month(), date, hour, minute, 0, 0, loc)
		if cand.Month() != first.Month() {
			continue
		}
		if cand.After(ref) && cand.Day() == date && cand.Hour() == hour && cand.Minute() == minute {
			return cand.UTC()
		}
	}
}
