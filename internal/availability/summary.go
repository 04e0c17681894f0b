package availability

import (
	"fmt"
	"strings"
)

// summarize picks one sentence template based on the shape of the result set.
// A flat "I found N slots" is unusable over voice; the phrasing has to match
// cardinality so the caller never has to parse a list. Cases are ordered and
// the first match wins.
func summarize(res *Result, serviceName, windowLabel string) string {
	if serviceName == "" {
		serviceName = "that service"
	}
	if windowLabel == "" {
		windowLabel = "then"
	}

	if res.TotalSlots == 0 {
		return fmt.Sprintf("I'm sorry, I don't see any openings for %s %s. Would a different day work for you?",
			serviceName, windowLabel)
	}

	oneDate := res.totalDates == 1
	oneStaff := len(res.staffSeen) == 1
	first := res.Dates[0]
	earliest := first.Slots[0].Time

	switch {
	case oneDate && oneStaff && res.TotalSlots == 1:
		return fmt.Sprintf("%s has an opening on %s at %s. Would that work for you?",
			res.staffSeen[0], first.Date, earliest)

	case oneDate && oneStaff && res.TotalSlots <= 3:
		return fmt.Sprintf("%s has %s available on %s. Which time works best for you?",
			res.staffSeen[0], joinWithAnd(times(first)), first.Date)

	case oneDate && oneStaff:
		return fmt.Sprintf("%s has %s openings on %s, starting at %s. What time works for you?",
			res.staffSeen[0], qualitativeCount(res.TotalSlots), first.Date, earliest)

	case oneDate && res.TotalSlots <= 3:
		return fmt.Sprintf("On %s I have %s. Do any of those work for you?",
			first.Date, joinWithAnd(staffTimePairs(first)))

	case oneDate:
		return fmt.Sprintf("I have %s openings on %s with %s, starting at %s. What time works for you?",
			qualitativeCount(res.TotalSlots), first.Date, joinWithAnd(res.staffSeen), earliest)

	case res.totalDates == 2:
		return fmt.Sprintf("I have openings on %s and %s, starting at %s on %s. Which day is better for you?",
			res.Dates[0].Date, res.Dates[1].Date, earliest, first.Date)

	default:
		return fmt.Sprintf("I have openings on %d different days. The earliest is %s at %s. Which day works best for you?",
			res.totalDates, first.Date, earliest)
	}
}

// qualitativeCount maps a slot count to a speakable magnitude.
func qualitativeCount(n int) string {
	switch {
	case n >= 10:
		return "quite a few"
	case n >= 6:
		return "several"
	default:
		return "a few"
	}
}

func times(g DateGroup) []string {
	out := make([]string, 0, len(g.Slots))
	for _, e := range g.Slots {
		out = append(out, e.Time)
	}
	return out
}

// staffTimePairs renders each entry as "Sarah at 10:00 AM", joining shared
// slots as "Sarah or Maya at 10:00 AM".
func staffTimePairs(g DateGroup) []string {
	out := make([]string, 0, len(g.Slots))
	for _, e := range g.Slots {
		out = append(out, fmt.Sprintf("%s at %s", strings.Join(e.Staff, " or "), e.Time))
	}
	return out
}

// joinWithAnd renders "a", "a and b", or "a, b, and c".
func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
