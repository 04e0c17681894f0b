// Package catalog models the read-only booking-platform data the concierge
// resolves against: services, staff members, locations, and raw availability
// slots. Entities are immutable per-request snapshots; nothing in this package
// caches between calls.
package catalog

import "time"

const defaultGraphQLEndpoint = "https://api.bookingplatform.com/2024-05/graphql"

// Service is a bookable catalog service.
type Service struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VariationName string `json:"variationName,omitempty"`
	DurationMin   int    `json:"durationMin,omitempty"`
}

// SearchStrings returns every phrase a caller might use to name this service:
// the bare name, the variation composite ("Swedish Massage"), and the duration
// composite ("60 Minute Massage"). Multiple angles let "swedish massage" and
// "60 minute massage" both land on the same entity.
func (s Service) SearchStrings() []string {
	out := []string{s.Name}
	if s.VariationName != "" {
		out = append(out, s.VariationName+" "+s.Name)
	}
	if s.DurationMin > 0 {
		out = append(out, formatMinutes(s.DurationMin)+" Minute "+s.Name)
	}
	return out
}

// StaffMember is a provider who can perform services.
type StaffMember struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
}

// SearchStrings returns the full name plus the first name, since callers
// usually ask for staff by first name only ("with Sarah").
func (m StaffMember) SearchStrings() []string {
	out := []string{m.Name}
	if m.FirstName != "" && m.FirstName != m.Name {
		out = append(out, m.FirstName)
	}
	return out
}

// Location is a physical business location.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// SearchStrings returns the location name plus address fragments, so
// "the downtown one" or "the Main Street location" can resolve.
func (l Location) SearchStrings() []string {
	out := []string{l.Name}
	if l.Address != "" {
		out = append(out, l.Address)
	}
	if l.City != "" {
		out = append(out, l.City)
	}
	return out
}

// RawSlot is one bookable opening as reported by the platform: an exact
// instant offered by one staff member. The same instant may appear once per
// eligible staff member; merging is the aggregator's job.
type RawSlot struct {
	StartAt time.Time `json:"startAt"`
	StaffID string    `json:"staffId"`
}

// AvailabilityQuery bounds an availability search.
type AvailabilityQuery struct {
	ServiceID  string
	StaffIDs   []string
	LocationID string
	RangeStart time.Time
	RangeEnd   time.Time
}

func formatMinutes(n int) string {
	if n <= 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 && i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

type graphQLRequest struct {
	OperationName string `json:"operationName,omitempty"`
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Narrow response payloads for each API operation.
type servicesData struct {
	Services []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		VariationName string `json:"variationName"`
		Duration      int    `json:"duration"`
	} `json:"services"`
}

type staffData struct {
	Staff []struct {
		ID        string `json:"id"`
		FullName  string `json:"fullName"`
		FirstName string `json:"firstName"`
	} `json:"staff"`
}

type locationsData struct {
	Locations []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
	} `json:"locations"`
}

type availabilityData struct {
	AvailableSlots []struct {
		StartAt string `json:"startAt"`
		StaffID string `json:"staffId"`
	} `json:"availableSlots"`
}
