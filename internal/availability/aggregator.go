// Package availability turns raw booking-platform slots into a deduplicated,
// capped, date-grouped result with a spoken summary. The same instant offered
// by several staff members collapses into one entry carrying all their names;
// result volume is capped chronologically so summaries stay speakable.
package availability

import (
	"sort"
	"time"

	"github.com/glowdesk/voice-concierge/internal/catalog"
)

const (
	dateLabelFormat = "Monday, January 2"
	timeLabelFormat = "3:04 PM"
)

// TimeEntry is one offered time on a date, with every staff member offering it.
type TimeEntry struct {
	Time  string   `json:"time"`
	Staff []string `json:"staff"`
}

// DateGroup holds a date label and its time entries, both in chronological
// order.
type DateGroup struct {
	Date  string      `json:"date"`
	Slots []TimeEntry `json:"slots"`
}

// Result is the aggregated availability for one search. Dates preserves
// chronological order; TotalSlots counts distinct (date, time) pairs before
// capping and SlotsShown after. Constructed fresh per request, never stored.
type Result struct {
	Dates      []DateGroup `json:"dates"`
	TotalSlots int         `json:"total_slots"`
	SlotsShown int         `json:"slots_shown"`
	Summary    string      `json:"summary"`

	// DroppedSlots counts raw slots discarded because their staff ID was not
	// in the directory. Surfaced for metrics only, never to the caller.
	DroppedSlots int `json:"-"`

	totalDates int
	staffSeen  []string
}

// Request carries everything one aggregation needs. ServiceName and
// WindowLabel are used verbatim in the spoken summary.
type Request struct {
	Slots           []catalog.RawSlot
	StaffDirectory  map[string]string
	Timezone        string
	MaxDates        int
	MaxSlotsPerDate int
	ServiceName     string
	WindowLabel     string
}

// Aggregate groups, dedupes, caps, and summarizes raw slots. Slots whose
// staff ID is missing from the directory are dropped: an unnamed slot is
// worse than an omitted one.
func Aggregate(req Request) Result {
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		loc = time.UTC
	}
	maxDates := req.MaxDates
	if maxDates <= 0 {
		maxDates = 3
	}
	maxPerDate := req.MaxSlotsPerDate
	if maxPerDate <= 0 {
		maxPerDate = 4
	}

	var res Result

	named := make([]catalog.RawSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		if _, ok := req.StaffDirectory[s.StaffID]; !ok {
			res.DroppedSlots++
			continue
		}
		named = append(named, s)
	}
	sort.SliceStable(named, func(i, j int) bool {
		return named[i].StartAt.Before(named[j].StartAt)
	})

	groups := make([]DateGroup, 0)
	dateIndex := make(map[string]int)
	staffSeen := make(map[string]bool)

	for _, s := range named {
		local := s.StartAt.In(loc)
		dateLabel := local.Format(dateLabelFormat)
		timeLabel := local.Format(timeLabelFormat)
		staffName := req.StaffDirectory[s.StaffID]

		gi, ok := dateIndex[dateLabel]
		if !ok {
			gi = len(groups)
			dateIndex[dateLabel] = gi
			groups = append(groups, DateGroup{Date: dateLabel})
		}

		entry := findEntry(&groups[gi], timeLabel)
		if !containsString(entry.Staff, staffName) {
			entry.Staff = append(entry.Staff, staffName)
		}
		if !staffSeen[staffName] {
			staffSeen[staffName] = true
			res.staffSeen = append(res.staffSeen, staffName)
		}
	}

	for _, g := range groups {
		res.TotalSlots += len(g.Slots)
	}
	res.totalDates = len(groups)

	// Chronological truncation: first maxDates dates, first maxPerDate times.
	if len(groups) > maxDates {
		groups = groups[:maxDates]
	}
	for i := range groups {
		if len(groups[i].Slots) > maxPerDate {
			groups[i].Slots = groups[i].Slots[:maxPerDate]
		}
		res.SlotsShown += len(groups[i].Slots)
	}
	res.Dates = groups

	res.Summary = summarize(&res, req.ServiceName, req.WindowLabel)
	return res
}

// findEntry returns the group's entry for timeLabel, appending one if needed.
func findEntry(g *DateGroup, timeLabel string) *TimeEntry {
	for i := range g.Slots {
		if g.Slots[i].Time == timeLabel {
			return &g.Slots[i]
		}
	}
	g.Slots = append(g.Slots, TimeEntry{Time: timeLabel})
	return &g.Slots[len(g.Slots)-1]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
