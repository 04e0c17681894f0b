package concierge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/voice-concierge/internal/catalog"
	"github.com/glowdesk/voice-concierge/internal/resolve"
)

type fakePlatform struct {
	services  []catalog.Service
	staff     []catalog.StaffMember
	locations []catalog.Location
	directory map[string]string
	slots     []catalog.RawSlot
	err       error

	searchCalls []catalog.AvailabilityQuery
}

func (f *fakePlatform) ListServices(ctx context.Context) ([]catalog.Service, error) {
	return f.services, f.err
}

func (f *fakePlatform) ListStaff(ctx context.Context, locationID string) ([]catalog.StaffMember, error) {
	return f.staff, f.err
}

func (f *fakePlatform) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	return f.locations, f.err
}

func (f *fakePlatform) StaffDirectory(ctx context.Context, locationID string) (map[string]string, error) {
	return f.directory, f.err
}

func (f *fakePlatform) SearchAvailability(ctx context.Context, q catalog.AvailabilityQuery) ([]catalog.RawSlot, error) {
	f.searchCalls = append(f.searchCalls, q)
	return f.slots, f.err
}

func testRef(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return time.Date(2026, 3, 2, 10, 0, 0, 0, loc)
}

func newTestPlatform() *fakePlatform {
	return &fakePlatform{
		services: []catalog.Service{
			{ID: "svc_1", Name: "Swedish Massage", VariationName: "60 Minute", DurationMin: 60},
			{ID: "svc_2", Name: "Deep Tissue Massage", VariationName: "60 Minute", DurationMin: 60},
			{ID: "svc_3", Name: "Hydrafacial", DurationMin: 45},
		},
		staff: []catalog.StaffMember{
			{ID: "stf_a", Name: "Sarah Kim", FirstName: "Sarah"},
			{ID: "stf_b", Name: "Maya Lopez", FirstName: "Maya"},
		},
		locations: []catalog.Location{
			{ID: "loc_1", Name: "Downtown", City: "Portland"},
		},
		directory: map[string]string{"stf_a": "Sarah Kim", "stf_b": "Maya Lopez"},
	}
}

func newTestService(p *fakePlatform) *Service {
	return NewService(p, nil, nil, nil, Options{Timezone: "America/Los_Angeles"})
}

func TestResolveService(t *testing.T) {
	svc := newTestService(newTestPlatform())

	match, err := svc.ResolveService(context.Background(), "hydrafacial")
	require.NoError(t, err)
	assert.Equal(t, resolve.ConfidenceExact, match.Confidence)
	require.NotNil(t, match.Entity)
	assert.Equal(t, "svc_3", match.Entity.ID)
}

func TestResolveService_PlatformErrorPropagates(t *testing.T) {
	p := newTestPlatform()
	p.err = errors.New("connection refused")
	svc := newTestService(p)

	_, err := svc.ResolveService(context.Background(), "massage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list services")
}

func TestResolveStaff(t *testing.T) {
	svc := newTestService(newTestPlatform())

	match, err := svc.ResolveStaff(context.Background(), "sarah", "")
	require.NoError(t, err)
	assert.Equal(t, resolve.ConfidenceExact, match.Confidence)
	require.NotNil(t, match.Entity)
	assert.Equal(t, "stf_a", match.Entity.ID)
}

func TestResolveLocation(t *testing.T) {
	svc := newTestService(newTestPlatform())

	match, err := svc.ResolveLocation(context.Background(), "the downtown one")
	require.NoError(t, err)
	assert.Equal(t, resolve.ConfidenceFuzzy, match.Confidence)
	require.NotNil(t, match.Entity)
	assert.Equal(t, "loc_1", match.Entity.ID)
}

func TestParseWhen_UsesConfiguredTimezone(t *testing.T) {
	svc := newTestService(newTestPlatform())
	ref := testRef(t)

	parsed := svc.ParseWhen("tomorrow at 2pm", "", ref)
	require.NotNil(t, parsed.StartAt)
	assert.Equal(t, "America/Los_Angeles", parsed.StartAt.Location().String())
	assert.Equal(t, 14, parsed.StartAt.Hour())
}

func TestCheckAvailability_EndToEnd(t *testing.T) {
	p := newTestPlatform()
	ref := testRef(t)
	p.slots = []catalog.RawSlot{
		{StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, ref.Location()), StaffID: "stf_a"},
		{StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, ref.Location()), StaffID: "stf_b"},
		{StartAt: time.Date(2026, 3, 3, 14, 0, 0, 0, ref.Location()), StaffID: "stf_a"},
	}
	svc := newTestService(p)

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		ServicePhrase: "swedish massage",
		WhenPhrase:    "tomorrow",
		Ref:           ref,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ResolvedService)
	assert.Equal(t, "svc_1", resp.ResolvedService.ID)
	assert.True(t, resp.Parsed.IsRange)
	assert.Equal(t, "tomorrow", resp.Parsed.HumanReadable)

	require.Len(t, p.searchCalls, 1)
	q := p.searchCalls[0]
	assert.Equal(t, "svc_1", q.ServiceID)
	assert.Empty(t, q.StaffIDs)
	assert.Equal(t, resp.Parsed.RangeStart, q.RangeStart)
	assert.Equal(t, resp.Parsed.RangeEnd, q.RangeEnd)

	assert.Equal(t, 2, resp.Service.TotalSlots)
	require.Len(t, resp.Service.Dates, 1)
	assert.Equal(t, []string{"Sarah Kim", "Maya Lopez"}, resp.Service.Dates[0].Slots[0].Staff)
	assert.Contains(t, resp.Service.Summary, "Tuesday, March 3")
}

func TestCheckAvailability_StaffPhraseNarrowsSearch(t *testing.T) {
	p := newTestPlatform()
	svc := newTestService(p)

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		ServicePhrase: "hydrafacial",
		StaffPhrase:   "with maya",
		WhenPhrase:    "friday",
		Ref:           testRef(t),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ResolvedStaff)
	assert.Equal(t, "stf_b", resp.ResolvedStaff.ID)
	require.Len(t, p.searchCalls, 1)
	assert.Equal(t, []string{"stf_b"}, p.searchCalls[0].StaffIDs)
}

func TestCheckAvailability_AmbiguousServiceShortCircuits(t *testing.T) {
	p := newTestPlatform()
	svc := newTestService(p)

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		ServicePhrase: "massage",
		WhenPhrase:    "tomorrow",
		Ref:           testRef(t),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ResolvedService)
	assert.Equal(t, resolve.ConfidenceAmbiguous, resp.ServiceMatch.Confidence)
	assert.Len(t, resp.ServiceMatch.Alternatives, 2)
	assert.Empty(t, p.searchCalls)
}

func TestCheckAvailability_ZeroSlotsSummaryNamesWindow(t *testing.T) {
	p := newTestPlatform()
	svc := newTestService(p)

	resp, err := svc.CheckAvailability(context.Background(), AvailabilityRequest{
		ServicePhrase: "hydrafacial",
		WhenPhrase:    "tomorrow afternoon",
		Ref:           testRef(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Service.TotalSlots)
	assert.Contains(t, resp.Service.Summary, "Hydrafacial")
	assert.Contains(t, resp.Service.Summary, "tomorrow in the afternoon")
}
