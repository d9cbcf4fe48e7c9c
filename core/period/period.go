// Package period maps class dates to grading periods of an academic cycle.
//
// A cycle has four bimesters grouped in two quarters (1-2 and 3-4).
// Months map to bimesters through a configurable table; intensification windows
// override that table and attribute the date to the last bimester of their quarter.
package period

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
)

const (
	FirstQuarter  = 1
	SecondQuarter = 2
)

type (
	// MonthRange maps the months From..To (inclusive) to Bimester.
	MonthRange struct {
		From     time.Month
		To       time.Month
		Bimester int
	}

	// Window is an intensification window. Start and End are inclusive dates.
	Window struct {
		Quarter int       `json:"quarter" db:"quarter"`
		Start   time.Time `json:"starts_on" db:"starts_on"`
		End     time.Time `json:"ends_on" db:"ends_on"`
	}

	// Calendar is the resolution policy of one cycle year.
	// Fallback is the bimester of months no range covers; 0 means such dates are invalid.
	Calendar struct {
		Ranges   []MonthRange
		Fallback int
		Windows  []Window
	}

	Period struct {
		Bimester          int  `json:"bimester"`
		Quarter           int  `json:"quarter"`
		IsIntensification bool `json:"is_intensification"`
	}

	// CalendarSource loads the calendar of a cycle year.
	CalendarSource interface {
		Calendar(ctx context.Context, year int) (Calendar, error)
	}
)

// InvalidPeriodError is returned when a date maps to no bimester.
type InvalidPeriodError struct {
	Date   time.Time
	Reason string
}

func (err InvalidPeriodError) Error() string {
	return fmt.Sprintf("no period for %s: %s", err.Date.Format(core.DateLayout), err.Reason)
}

func IsInvalidPeriod(err error) bool {
	_, ok := errors.Cause(err).(*InvalidPeriodError)
	return ok
}

// DefaultRanges is the usual school year split: Mar-May, Jun-Jul, Aug-Oct; the rest goes to Fallback.
func DefaultRanges() []MonthRange {
	return []MonthRange{
		{From: time.March, To: time.May, Bimester: 1},
		{From: time.June, To: time.July, Bimester: 2},
		{From: time.August, To: time.October, Bimester: 3},
	}
}

// DefaultCalendar has DefaultRanges, bimester 4 as Fallback and no windows.
func DefaultCalendar() Calendar {
	return Calendar{Ranges: DefaultRanges(), Fallback: 4}
}

// ParseRanges parses "FROM-TO:BIMESTER" items separated by commas, eg. "3-5:1,6-7:2,8-10:3".
func ParseRanges(s string) ([]MonthRange, error) {
	s = core.CleanString(s)
	if s == "" {
		return nil, nil
	}
	var ranges []MonthRange
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid month range %q", item)
		}
		months := strings.SplitN(parts[0], "-", 2)
		if len(months) != 2 {
			return nil, errors.Errorf("invalid month range %q", item)
		}
		from, err := strconv.Atoi(strings.TrimSpace(months[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing month range %q", item)
		}
		to, err := strconv.Atoi(strings.TrimSpace(months[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing month range %q", item)
		}
		bim, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing month range %q", item)
		}
		ranges = append(ranges, MonthRange{From: time.Month(from), To: time.Month(to), Bimester: bim})
	}
	return ranges, nil
}

// Validate checks that ranges and windows are well formed and do not overlap.
// When year is set, windows must also fall within it.
func (cal Calendar) Validate(year int) error {
	var covered [13]bool
	for _, r := range cal.Ranges {
		if r.From < time.January || r.To > time.December || r.From > r.To {
			return errors.Errorf("invalid month range %d-%d", r.From, r.To)
		}
		if !validBimester(r.Bimester) {
			return errors.Errorf("invalid bimester %d for months %d-%d", r.Bimester, r.From, r.To)
		}
		for m := r.From; m <= r.To; m++ {
			if covered[m] {
				return errors.Errorf("month %d is mapped twice", m)
			}
			covered[m] = true
		}
	}
	if cal.Fallback != 0 && !validBimester(cal.Fallback) {
		return errors.Errorf("invalid fallback bimester %d", cal.Fallback)
	}

	windows := make([]Window, len(cal.Windows))
	copy(windows, cal.Windows)
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	for i, w := range windows {
		if w.Quarter != FirstQuarter && w.Quarter != SecondQuarter {
			return errors.Errorf("invalid intensification quarter %d", w.Quarter)
		}
		if w.End.Before(w.Start) {
			return errors.Errorf("intensification window of quarter %d ends before it starts", w.Quarter)
		}
		if year != 0 && (w.Start.Year() != year || w.End.Year() != year) {
			return errors.Errorf("intensification window of quarter %d is outside academic year %d", w.Quarter, year)
		}
		if i > 0 && !toDate(w.Start).After(toDate(windows[i-1].End)) {
			return errors.Errorf("intensification windows of quarters %d and %d overlap", windows[i-1].Quarter, w.Quarter)
		}
	}
	return nil
}

// Resolve maps classDate to its period within the cycle of cycleYear.
func Resolve(cal Calendar, classDate time.Time, cycleYear int) (Period, error) {
	date := toDate(classDate)
	if date.Year() != cycleYear {
		return Period{}, &InvalidPeriodError{Date: date, Reason: fmt.Sprintf("outside academic year %d", cycleYear)}
	}

	for _, w := range cal.Windows {
		if w.Contains(date) {
			return Period{
				Bimester:          LastBimester(w.Quarter),
				Quarter:           w.Quarter,
				IsIntensification: true,
			}, nil
		}
	}

	bim := cal.Fallback
	for _, r := range cal.Ranges {
		if date.Month() >= r.From && date.Month() <= r.To {
			bim = r.Bimester
			break
		}
	}
	if !validBimester(bim) {
		return Period{}, &InvalidPeriodError{Date: date, Reason: "month is not mapped to a bimester"}
	}
	return Period{Bimester: bim, Quarter: QuarterOf(bim)}, nil
}

// Contains reports whether date falls inside the window, both ends included.
func (w Window) Contains(date time.Time) bool {
	d := toDate(date)
	return !d.Before(toDate(w.Start)) && !d.After(toDate(w.End))
}

// QuarterOf returns the quarter of a bimester.
func QuarterOf(bimester int) int {
	if bimester <= 2 {
		return FirstQuarter
	}
	return SecondQuarter
}

// LastBimester returns the closing bimester of a quarter.
func LastBimester(quarter int) int {
	if quarter == FirstQuarter {
		return 2
	}
	return 4
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(core.DateLayout, core.CleanString(s))
	if err != nil {
		return time.Time{}, core.NewValidationError(errors.New("invalid date"), core.FieldError{Field: "date", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	return d, nil
}

func validBimester(b int) bool { return b >= 1 && b <= 4 }

// toDate drops the clock and the location, keeping the calendar date.
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolver resolves dates against a calendar loaded on every call.
type Resolver struct {
	src CalendarSource
}

func NewResolver(src CalendarSource) *Resolver {
	return &Resolver{src: src}
}

func (r *Resolver) Resolve(ctx context.Context, classDate time.Time, cycleYear int) (Period, error) {
	cal, err := r.src.Calendar(ctx, cycleYear)
	if err != nil {
		return Period{}, errors.Wrap(err, "loading calendar")
	}
	return Resolve(cal, classDate, cycleYear)
}
