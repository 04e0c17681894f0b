// Package timeparse converts free-text temporal phrases ("tomorrow
// afternoon", "next tuesday at 2pm") into either an exact bookable instant or
// a bounded availability search range, always in the caller's timezone.
// Parsing never fails: unparseable input degrades to a safe default window.
package timeparse

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultOpenHour  = 8
	defaultCloseHour = 21
	defaultWindow    = 7 // days
)

// Parsed is the outcome of a parse. When IsRange is false the phrase was
// specific enough to book on: StartAt is set and RangeStart == RangeEnd ==
// *StartAt. When IsRange is true, [RangeStart, RangeEnd] bounds an
// availability search. RangeStart <= RangeEnd always holds.
type Parsed struct {
	StartAt       *time.Time
	IsRange       bool
	RangeStart    time.Time
	RangeEnd      time.Time
	HumanReadable string
	// Fallback reports that nothing in the phrase was recognized and the
	// 7-day default window was used.
	Fallback bool
}

// period is a named time-of-day window in local hours.
type period struct {
	name       string
	start, end int
}

// Ordered: first match wins, and "evening" must be checked before "night" so
// phrases carrying both bind to the earlier window.
var periods = []period{
	{name: "morning", start: 8, end: 12},
	{name: "afternoon", start: 12, end: 17},
	{name: "evening", start: 17, end: 21},
	{name: "night", start: 18, end: 22},
}

// Parser combines a date grammar with time-of-day and business-hours range
// logic. It is stateless and safe for concurrent use.
type Parser struct {
	grammar   Grammar
	openHour  int
	closeHour int
}

// NewParser builds a parser around grammar, using openHour/closeHour as the
// business-hours bounds for date-only ranges. Zero values select the defaults
// (8:00 and 21:00); a nil grammar selects DefaultGrammar.
func NewParser(grammar Grammar, openHour, closeHour int) *Parser {
	if grammar == nil {
		grammar = DefaultGrammar{}
	}
	if openHour <= 0 || openHour > 23 {
		openHour = defaultOpenHour
	}
	if closeHour <= openHour || closeHour > 23 {
		closeHour = defaultCloseHour
	}
	return &Parser{grammar: grammar, openHour: openHour, closeHour: closeHour}
}

// Parse resolves phrase in tz relative to ref. A zero ref means now. An
// unknown timezone falls back to UTC rather than failing; supplying a valid
// IANA zone is the caller's contract.
func (p *Parser) Parse(phrase, tz string, ref time.Time) Parsed {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = ref.In(loc)

	text := strings.ToLower(strings.TrimSpace(phrase))
	pd, hasPeriod := findPeriod(text)

	ex, found := p.grammar.Extract(text, ref)
	if !found && !hasPeriod {
		return p.defaultRange(ref)
	}
	if !found {
		// Time-of-day keyword with no date: the next occurrence of that
		// period, today if its window is still ahead.
		ex.Date = midnight(ref)
		if !ex.Date.Add(time.Duration(pd.end) * time.Hour).After(ref) {
			ex.Date = ex.Date.AddDate(0, 0, 1)
		}
	}

	day := ex.Date
	dayLabel := humanDay(day, ref)

	// An explicit certain time with no period keyword is bookable directly.
	if ex.CertainTime && !hasPeriod {
		at := time.Date(day.Year(), day.Month(), day.Day(), ex.Hour, ex.Minute, 0, 0, loc)
		return Parsed{
			StartAt:       &at,
			RangeStart:    at,
			RangeEnd:      at,
			HumanReadable: fmt.Sprintf("%s at %s", dayLabel, clockLabel(at)),
		}
	}

	// Otherwise build a search range on the parsed date.
	startHour, endHour := p.openHour, p.closeHour
	label := dayLabel
	if hasPeriod {
		startHour, endHour = pd.start, pd.end
		label = fmt.Sprintf("%s in the %s", dayLabel, pd.name)
	}

	rangeStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
	endDay := day
	if ex.HasEnd && ex.EndDate.After(day) {
		// Explicit end-of-range expressions close at the business-hours bound.
		endDay = ex.EndDate
		endHour = p.closeHour
		label = fmt.Sprintf("%s through %s", dayLabel, humanDay(endDay, ref))
	}
	rangeEnd := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), endHour, 0, 0, 0, loc)
	if rangeEnd.Before(rangeStart) {
		rangeEnd = rangeStart
	}

	return Parsed{
		IsRange:       true,
		RangeStart:    rangeStart,
		RangeEnd:      rangeEnd,
		HumanReadable: label,
	}
}

// ParseExact returns the exact instant for phrase, or nil when the phrase was
// only specific enough for a search range. A nil result is the caller's
// signal to ask for a specific time before booking.
func (p *Parser) ParseExact(phrase, tz string, ref time.Time) *time.Time {
	parsed := p.Parse(phrase, tz, ref)
	if parsed.IsRange {
		return nil
	}
	return parsed.StartAt
}

// defaultRange is the never-fail fallback: now through seven days out, at
// business-hours bounds.
func (p *Parser) defaultRange(ref time.Time) Parsed {
	end := midnight(ref).AddDate(0, 0, defaultWindow)
	rangeEnd := time.Date(end.Year(), end.Month(), end.Day(), p.closeHour, 0, 0, 0, ref.Location())
	return Parsed{
		IsRange:       true,
		RangeStart:    ref,
		RangeEnd:      rangeEnd,
		HumanReadable: fmt.Sprintf("the next %d days", defaultWindow),
		Fallback:      true,
	}
}

// findPeriod returns the first time-of-day keyword in the table order.
func findPeriod(text string) (period, bool) {
	for _, pd := range periods {
		if strings.Contains(text, pd.name) {
			return pd, true
		}
	}
	return period{}, false
}

// humanDay renders "today", "tomorrow", or "Tuesday, March 3".
func humanDay(day, ref time.Time) string {
	today := midnight(ref)
	switch {
	case day.Equal(today):
		return "today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "tomorrow"
	default:
		return day.Format("Monday, January 2")
	}
}

// clockLabel renders a speakable 12-hour time like "2:00 PM".
func clockLabel(t time.Time) string {
	return t.Format("3:04 PM")
}
