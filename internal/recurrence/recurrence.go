// Package recurrence derives cron expressions and next fire times from a
// scheduled job's recurrence rule. All functions are pure: they read the
// job's schedule_type, schedule_config, and timezone and never touch storage
// or the dispatcher.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ncecere/firecrawl-webui/internal/domain"
)

// ErrInvalidScheduleConfig indicates that schedule_config does not satisfy
// the shape required by schedule_type, or the timezone is unknown. Callers
// match it with errors.Is.
var ErrInvalidScheduleConfig = errors.New("invalid schedule config")

// Interval units accepted for schedule_type "interval".
const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
)

// intervalConfig is the schedule_config shape for interval schedules.
type intervalConfig struct {
	Interval int    `mapstructure:"interval"`
	Unit     string `mapstructure:"unit"`
}

// clockConfig is the schedule_config shape for daily schedules.
type clockConfig struct {
	Time string `mapstructure:"time"`
}

// weeklyConfig is the schedule_config shape for weekly schedules. Days use
// cron numbering: 0 is Sunday.
type weeklyConfig struct {
	Time string `mapstructure:"time"`
	Days []int  `mapstructure:"days"`
}

// monthlyConfig is the schedule_config shape for monthly schedules.
type monthlyConfig struct {
	Time string `mapstructure:"time"`
	Date int    `mapstructure:"date"`
}

// BuildCronSpec derives the five-field cron expression for a scheduled job.
// The expression is meant to be interpreted in the job's timezone, not the
// process default.
func BuildCronSpec(job *domain.ScheduledJob) (string, error) {
	switch job.ScheduleType {
	case domain.ScheduleTypeInterval:
		cfg, err := decodeInterval(job.ScheduleConfig)
		if err != nil {
			return "", err
		}
		switch cfg.Unit {
		case UnitMinutes:
			return fmt.Sprintf("*/%d * * * *", cfg.Interval), nil
		case UnitHours:
			return fmt.Sprintf("0 */%d * * *", cfg.Interval), nil
		case UnitDays:
			return fmt.Sprintf("0 0 */%d * *", cfg.Interval), nil
		default:
			return "", fmt.Errorf("%w: unknown interval unit %q", ErrInvalidScheduleConfig, cfg.Unit)
		}

	case domain.ScheduleTypeHourly:
		return "0 * * * *", nil

	case domain.ScheduleTypeDaily:
		cfg, err := decodeClock(job.ScheduleConfig)
		if err != nil {
			return "", err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %d * * *", minute, hour), nil

	case domain.ScheduleTypeWeekly:
		cfg, err := decodeWeekly(job.ScheduleConfig)
		if err != nil {
			return "", err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return "", err
		}
		days := make([]string, len(cfg.Days))
		for i, d := range cfg.Days {
			days[i] = strconv.Itoa(d)
		}
		return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(days, ",")), nil

	case domain.ScheduleTypeMonthly:
		cfg, err := decodeMonthly(job.ScheduleConfig)
		if err != nil {
			return "", err
		}
		hour, minute, err := parseClock(cfg.Time)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %d %d * *", minute, hour, cfg.Date), nil

	default:
		return "", fmt.Errorf("%w: unknown schedule type %q", ErrInvalidScheduleConfig, job.ScheduleType)
	}
}

func decodeInterval(raw domain.JSONMap) (*intervalConfig, error) {
	var cfg intervalConfig
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Interval < 1 {
		return nil, fmt.Errorf("%w: interval must be at least 1", ErrInvalidScheduleConfig)
	}
	return &cfg, nil
}

func decodeClock(raw domain.JSONMap) (*clockConfig, error) {
	var cfg clockConfig
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Time == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidScheduleConfig)
	}
	return &cfg, nil
}

func decodeWeekly(raw domain.JSONMap) (*weeklyConfig, error) {
	var cfg weeklyConfig
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Time == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidScheduleConfig)
	}
	if len(cfg.Days) == 0 {
		return nil, fmt.Errorf("%w: days must not be empty", ErrInvalidScheduleConfig)
	}
	seen := make(map[int]bool, len(cfg.Days))
	var days []int
	for _, d := range cfg.Days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: day %d out of range 0..6", ErrInvalidScheduleConfig, d)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)
	cfg.Days = days
	return &cfg, nil
}

func decodeMonthly(raw domain.JSONMap) (*monthlyConfig, error) {
	var cfg monthlyConfig
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Time == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidScheduleConfig)
	}
	if cfg.Date < 1 || cfg.Date > 31 {
		return nil, fmt.Errorf("%w: date %d out of range 1..31", ErrInvalidScheduleConfig, cfg.Date)
	}
	return &cfg, nil
}

// decode maps a schedule_config record onto a typed config. Weak typing
// tolerates JSON numbers arriving as floats and numeric strings.
func decode(raw domain.JSONMap, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(raw)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidScheduleConfig, err)
	}
	return nil
}

// parseClock parses an HH:MM wall-clock string in 24-hour notation.
func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidScheduleConfig, s)
	}
	return t.Hour(), t.Minute(), nil
}
