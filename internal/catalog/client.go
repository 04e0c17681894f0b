package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glowdesk/voice-concierge/pkg/logging"
)

const (
	defaultTimeout = 15 * time.Second

	queryServices = `query Services($businessId: ID!) {
  services(businessId: $businessId) {
    id
    name
    variationName
    duration
  }
}`

	queryStaff = `query Staff($businessId: ID!, $locationId: ID) {
  staff(businessId: $businessId, locationId: $locationId) {
    id
    fullName
    firstName
  }
}`

	queryLocations = `query Locations($businessId: ID!) {
  locations(businessId: $businessId) {
    id
    name
    address
    city
  }
}`

	queryAvailability = `query Availability($businessId: ID!, $serviceId: ID!, $staffIds: [ID!], $locationId: ID, $rangeStart: DateTime!, $rangeEnd: DateTime!) {
  availableSlots(businessId: $businessId, serviceId: $serviceId, staffIds: $staffIds, locationId: $locationId, rangeStart: $rangeStart, rangeEnd: $rangeEnd) {
    startAt
    staffId
  }
}`
)

// Client is a lightweight GraphQL client for the booking platform's read
// surface: catalog listings and availability search. Every call fetches fresh
// data; resolution correctness is preferred over fetch latency.
type Client struct {
	endpoint   string
	httpClient *http.Client
	apiKey     string
	businessID string
	logger     *logging.Logger
}

// NewClient creates a booking-platform client. baseURL may be empty to use
// the production endpoint.
func NewClient(baseURL, apiKey, businessID string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultGraphQLEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:     apiKey,
		businessID: businessID,
		logger:     logger,
	}
}

// ListServices returns the current bookable services.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	out, err := do[servicesData](ctx, c, "Services", queryServices, map[string]any{"businessId": c.businessID})
	if err != nil {
		return nil, err
	}
	services := make([]Service, 0, len(out.Services))
	for _, s := range out.Services {
		services = append(services, Service{
			ID:            s.ID,
			Name:          s.Name,
			VariationName: s.VariationName,
			DurationMin:   s.Duration,
		})
	}
	return services, nil
}

// ListStaff returns staff members, optionally filtered to one location.
func (c *Client) ListStaff(ctx context.Context, locationID string) ([]StaffMember, error) {
	vars := map[string]any{"businessId": c.businessID}
	if strings.TrimSpace(locationID) != "" {
		vars["locationId"] = locationID
	}
	out, err := do[staffData](ctx, c, "Staff", queryStaff, vars)
	if err != nil {
		return nil, err
	}
	staff := make([]StaffMember, 0, len(out.Staff))
	for _, m := range out.Staff {
		staff = append(staff, StaffMember{ID: m.ID, Name: m.FullName, FirstName: m.FirstName})
	}
	return staff, nil
}

// ListLocations returns the business locations.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	out, err := do[locationsData](ctx, c, "Locations", queryLocations, map[string]any{"businessId": c.businessID})
	if err != nil {
		return nil, err
	}
	locations := make([]Location, 0, len(out.Locations))
	for _, l := range out.Locations {
		locations = append(locations, Location{ID: l.ID, Name: l.Name, Address: l.Address, City: l.City})
	}
	return locations, nil
}

// StaffDirectory returns the id → display-name lookup the aggregator uses to
// attribute slots. Slots whose staff ID is missing from this map are dropped.
func (c *Client) StaffDirectory(ctx context.Context, locationID string) (map[string]string, error) {
	staff, err := c.ListStaff(ctx, locationID)
	if err != nil {
		return nil, err
	}
	dir := make(map[string]string, len(staff))
	for _, m := range staff {
		dir[m.ID] = m.Name
	}
	return dir, nil
}

// SearchAvailability returns raw slots for a service inside [RangeStart,
// RangeEnd]. Slots with unparseable timestamps are skipped.
func (c *Client) SearchAvailability(ctx context.Context, q AvailabilityQuery) ([]RawSlot, error) {
	if strings.TrimSpace(q.ServiceID) == "" {
		return nil, fmt.Errorf("platform: availability search requires a service id")
	}
	vars := map[string]any{
		"businessId": c.businessID,
		"serviceId":  q.ServiceID,
		"rangeStart": q.RangeStart.Format(time.RFC3339),
		"rangeEnd":   q.RangeEnd.Format(time.RFC3339),
	}
	if len(q.StaffIDs) > 0 {
		vars["staffIds"] = q.StaffIDs
	}
	if strings.TrimSpace(q.LocationID) != "" {
		vars["locationId"] = q.LocationID
	}

	out, err := do[availabilityData](ctx, c, "Availability", queryAvailability, vars)
	if err != nil {
		return nil, err
	}

	slots := make([]RawSlot, 0, len(out.AvailableSlots))
	for _, s := range out.AvailableSlots {
		start, err := time.Parse(time.RFC3339, s.StartAt)
		if err != nil {
			c.logger.Warn("skipping slot with bad timestamp", "start_at", s.StartAt, "error", err)
			continue
		}
		slots = append(slots, RawSlot{StartAt: start, StaffID: s.StaffID})
	}
	return slots, nil
}

// do executes one GraphQL operation and unwraps the envelope, surfacing the
// first GraphQL error as a Go error.
func do[T any](ctx context.Context, c *Client, operationName, query string, variables any) (T, error) {
	var zero T
	if strings.TrimSpace(c.apiKey) == "" {
		return zero, fmt.Errorf("platform: missing api key")
	}
	if strings.TrimSpace(c.businessID) == "" {
		return zero, fmt.Errorf("platform: missing business id")
	}

	body, err := json.Marshal(graphQLRequest{OperationName: operationName, Query: query, Variables: variables})
	if err != nil {
		return zero, fmt.Errorf("platform: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("platform: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Business-Id", c.businessID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("platform: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("platform: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return zero, fmt.Errorf("platform: status %d: %s", resp.StatusCode, msg)
	}

	var env graphQLResponse[T]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return zero, fmt.Errorf("platform: unmarshal response: %w", err)
	}
	if len(env.Errors) > 0 {
		return zero, fmt.Errorf("platform: graphql error: %s", env.Errors[0].Message)
	}
	return env.Data, nil
}
