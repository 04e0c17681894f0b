package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extraction is the narrow output contract between the date grammar and the
// range/period logic in the parser. A grammar only recognizes expressions; it
// never decides between exact instants and search ranges.
type Extraction struct {
	// Date is the resolved calendar day at midnight in the reference zone.
	Date time.Time
	// HasTime reports whether a clock time was recognized.
	HasTime bool
	// CertainTime reports whether the hour component was explicit enough to
	// book on (am/pm marker, minutes, or an "at N" form).
	CertainTime bool
	Hour        int
	Minute      int
	// HasEnd and EndDate describe an explicit end-of-range expression such as
	// "this week".
	HasEnd  bool
	EndDate time.Time
}

// Grammar recognizes natural-language date/time expressions relative to a
// reference instant. Implementations must be pure: same text and reference in,
// same extraction out.
type Grammar interface {
	Extract(text string, ref time.Time) (Extraction, bool)
}

// DefaultGrammar is the built-in recognizer for relative dates ("tomorrow",
// "next tuesday"), absolute dates ("march 5", "3/5"), clock times ("2pm",
// "at 2:30"), and week-shaped ranges ("this week"). Ambiguous relative dates
// resolve forward, never to the past.
type DefaultGrammar struct{}

var (
	inDaysRE   = regexp.MustCompile(`\bin\s+(\d{1,2})\s+days?\b`)
	weekdayRE  = regexp.MustCompile(`\b(?:(this|next)\s+)?(sunday|sun|monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat)\b`)
	monthDayRE = regexp.MustCompile(`\b(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthRE = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)\b`)
	numericRE  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

	clockRE  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	meridRE  = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	atHourRE = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)
	noonRE   = regexp.MustCompile(`\bnoon\b|\bmidday\b`)
	midnRE   = regexp.MustCompile(`\bmidnight\b`)
)

var weekdayIndex = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var monthIndex = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Extract recognizes date and time expressions in text. It returns false when
// nothing date- or time-shaped was found.
func (DefaultGrammar) Extract(text string, ref time.Time) (Extraction, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	today := midnight(ref)

	var ex Extraction
	hasDate := false

	// Week-shaped ranges first, since "next week" must not be eaten by the
	// bare-weekday rule.
	switch {
	// "weekend" before "this week": "this weekend" contains both.
	case strings.Contains(text, "weekend"):
		start := today
		if ref.Weekday() != time.Saturday && ref.Weekday() != time.Sunday {
			start = today.AddDate(0, 0, daysUntilEnd(ref.Weekday(), time.Saturday))
		}
		ex.Date = start
		ex.HasEnd = true
		ex.EndDate = start.AddDate(0, 0, daysUntilEnd(start.Weekday(), time.Sunday))
		hasDate = true
	case strings.Contains(text, "next week"):
		start := today.AddDate(0, 0, daysUntilNext(ref.Weekday(), time.Monday))
		ex.Date = start
		ex.HasEnd = true
		ex.EndDate = start.AddDate(0, 0, 6)
		hasDate = true
	case strings.Contains(text, "this week"):
		ex.Date = today
		ex.HasEnd = true
		ex.EndDate = today.AddDate(0, 0, daysUntilEnd(ref.Weekday(), time.Sunday))
		hasDate = true
	}

	if !hasDate {
		switch {
		case strings.Contains(text, "day after tomorrow"):
			ex.Date = today.AddDate(0, 0, 2)
			hasDate = true
		case strings.Contains(text, "tomorrow"):
			ex.Date = today.AddDate(0, 0, 1)
			hasDate = true
		case strings.Contains(text, "today") || strings.Contains(text, "tonight"):
			ex.Date = today
			hasDate = true
		}
	}

	if !hasDate {
		if m := inDaysRE.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			ex.Date = today.AddDate(0, 0, n)
			hasDate = true
		}
	}

	if !hasDate {
		if m := weekdayRE.FindStringSubmatch(text); m != nil {
			target := weekdayIndex[m[2]]
			offset := daysUntilEnd(ref.Weekday(), target) // 0 when today is the target
			if m[1] == "next" {
				offset += 7
			}
			ex.Date = today.AddDate(0, 0, offset)
			hasDate = true
		}
	}

	if !hasDate {
		if d, ok := extractAbsoluteDate(text, ref); ok {
			ex.Date = d
			hasDate = true
		}
	}

	hasTime := extractClockTime(text, &ex)

	if !hasDate && !hasTime {
		return Extraction{}, false
	}

	if !hasDate {
		// Time only: anchor to today, rolling forward if that instant has
		// already passed.
		ex.Date = today
		at := ex.Date.Add(time.Duration(ex.Hour)*time.Hour + time.Duration(ex.Minute)*time.Minute)
		if !at.After(ref) {
			ex.Date = ex.Date.AddDate(0, 0, 1)
		}
	}

	return ex, true
}

// extractAbsoluteDate handles "march 5", "5th of march", and "3/5" forms,
// rolling into next year when the date has already passed.
func extractAbsoluteDate(text string, ref time.Time) (time.Time, bool) {
	var month time.Month
	var day int

	if m := monthDayRE.FindStringSubmatch(text); m != nil {
		month = monthIndex[m[1]]
		day, _ = strconv.Atoi(m[2])
	} else if m := dayMonthRE.FindStringSubmatch(text); m != nil {
		day, _ = strconv.Atoi(m[1])
		month = monthIndex[m[2]]
	} else if m := numericRE.FindStringSubmatch(text); m != nil {
		mm, _ := strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
		if mm < 1 || mm > 12 {
			return time.Time{}, false
		}
		month = time.Month(mm)
	} else {
		return time.Time{}, false
	}

	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(ref.Year(), month, day, 0, 0, 0, 0, ref.Location())
	if d.Before(midnight(ref)) {
		d = d.AddDate(1, 0, 0)
	}
	return d, true
}

// extractClockTime fills the Hour/Minute/CertainTime fields from clock
// expressions. A bare small hour without a meridiem defaults to PM, since
// callers booking appointments overwhelmingly mean daytime hours. Dotted
// meridiems are normalized first so "2 p.m." matches like "2 pm".
func extractClockTime(text string, ex *Extraction) bool {
	text = strings.ReplaceAll(text, "a.m.", "am")
	text = strings.ReplaceAll(text, "p.m.", "pm")
	if noonRE.MatchString(text) {
		ex.HasTime, ex.CertainTime, ex.Hour, ex.Minute = true, true, 12, 0
		return true
	}
	if midnRE.MatchString(text) {
		ex.HasTime, ex.CertainTime, ex.Hour, ex.Minute = true, true, 0, 0
		return true
	}

	if m := clockRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			ex.HasTime, ex.CertainTime = true, true
			ex.Hour, ex.Minute = adjustMeridiem(hour, m[3]), minute
			return true
		}
	}
	if m := meridRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 12 {
			ex.HasTime, ex.CertainTime = true, true
			ex.Hour, ex.Minute = adjustMeridiem(hour, m[2]), 0
			return true
		}
	}
	if m := atHourRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 23 {
			ex.HasTime, ex.CertainTime = true, true
			ex.Hour, ex.Minute = adjustMeridiem(hour, ""), 0
			return true
		}
	}
	return false
}

// adjustMeridiem converts to 24-hour, defaulting bare 1-7 to PM.
func adjustMeridiem(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return hour
}

// daysUntilEnd returns days from cur forward to target within 0..6, where the
// same day yields 0.
func daysUntilEnd(cur, target time.Weekday) int {
	return (int(target) - int(cur) + 7) % 7
}

// daysUntilNext is like daysUntilEnd but the same day yields 7.
func daysUntilNext(cur, target time.Weekday) int {
	d := daysUntilEnd(cur, target)
	if d == 0 {
		return 7
	}
	return d
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
