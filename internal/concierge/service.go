// Package concierge orchestrates one booking-assistant turn: fetch catalog
// candidates, resolve the caller's phrases, parse the requested window, search
// availability, and aggregate the result into a speakable payload.
package concierge

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/glowdesk/voice-concierge/internal/availability"
	"github.com/glowdesk/voice-concierge/internal/catalog"
	"github.com/glowdesk/voice-concierge/internal/observability/metrics"
	"github.com/glowdesk/voice-concierge/internal/resolve"
	"github.com/glowdesk/voice-concierge/internal/timeparse"
	"github.com/glowdesk/voice-concierge/pkg/logging"
)

var conciergeTracer = otel.Tracer("concierge.internal.concierge")

const defaultFetchTimeout = 10 * time.Second

// Platform is the read surface of the booking platform the concierge needs.
// *catalog.Client satisfies it.
type Platform interface {
	ListServices(ctx context.Context) ([]catalog.Service, error)
	ListStaff(ctx context.Context, locationID string) ([]catalog.StaffMember, error)
	ListLocations(ctx context.Context) ([]catalog.Location, error)
	StaffDirectory(ctx context.Context, locationID string) (map[string]string, error)
	SearchAvailability(ctx context.Context, q catalog.AvailabilityQuery) ([]catalog.RawSlot, error)
}

// Options tunes the concierge. Zero values select sensible defaults.
type Options struct {
	Resolve         resolve.Options
	Timezone        string
	MaxDates        int
	MaxSlotsPerDate int
	FetchTimeout    time.Duration
}

// Service wires the pure components to the booking platform. Candidates are
// fetched fresh per request; the service itself holds no catalog state.
type Service struct {
	platform Platform
	parser   *timeparse.Parser
	logger   *logging.Logger
	metrics  *metrics.ConciergeMetrics
	opts     Options
}

// NewService constructs a concierge service. parser may be nil to use the
// default grammar and business hours; metrics may be nil to disable
// instrumentation.
func NewService(platform Platform, parser *timeparse.Parser, logger *logging.Logger, m *metrics.ConciergeMetrics, opts Options) *Service {
	if platform == nil {
		panic("concierge: platform required")
	}
	if parser == nil {
		parser = timeparse.NewParser(nil, 0, 0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Resolve.Threshold <= 0 {
		opts.Resolve = resolve.DefaultOptions()
	}
	if opts.Timezone == "" {
		opts.Timezone = "America/New_York"
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Service{platform: platform, parser: parser, logger: logger, metrics: m, opts: opts}
}

// ResolveService matches a spoken phrase against the current service catalog.
func (s *Service) ResolveService(ctx context.Context, query string) (resolve.Match[catalog.Service], error) {
	ctx, span := conciergeTracer.Start(ctx, "concierge.resolve_service")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	services, err := s.platform.ListServices(ctx)
	if err != nil {
		span.RecordError(err)
		return resolve.Match[catalog.Service]{}, fmt.Errorf("concierge: list services: %w", err)
	}
	match := resolve.Resolve(query, services, catalog.Service.SearchStrings, s.opts.Resolve)
	s.observeResolution(span, "service", query, match.Confidence)
	return match, nil
}

// ResolveStaff matches a spoken phrase against staff members, optionally
// scoped to one location.
func (s *Service) ResolveStaff(ctx context.Context, query, locationID string) (resolve.Match[catalog.StaffMember], error) {
	ctx, span := conciergeTracer.Start(ctx, "concierge.resolve_staff")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	staff, err := s.platform.ListStaff(ctx, locationID)
	if err != nil {
		span.RecordError(err)
		return resolve.Match[catalog.StaffMember]{}, fmt.Errorf("concierge: list staff: %w", err)
	}
	match := resolve.Resolve(query, staff, catalog.StaffMember.SearchStrings, s.opts.Resolve)
	s.observeResolution(span, "staff", query, match.Confidence)
	return match, nil
}

// ResolveLocation matches a spoken phrase against business locations.
func (s *Service) ResolveLocation(ctx context.Context, query string) (resolve.Match[catalog.Location], error) {
	ctx, span := conciergeTracer.Start(ctx, "concierge.resolve_location")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	locations, err := s.platform.ListLocations(ctx)
	if err != nil {
		span.RecordError(err)
		return resolve.Match[catalog.Location]{}, fmt.Errorf("concierge: list locations: %w", err)
	}
	match := resolve.Resolve(query, locations, catalog.Location.SearchStrings, s.opts.Resolve)
	s.observeResolution(span, "location", query, match.Confidence)
	return match, nil
}

// ParseWhen parses a temporal phrase in tz (the configured default when
// empty). A zero ref means now.
func (s *Service) ParseWhen(phrase, tz string, ref time.Time) timeparse.Parsed {
	if tz == "" {
		tz = s.opts.Timezone
	}
	parsed := s.parser.Parse(phrase, tz, ref)
	s.metrics.ObserveParse(parseOutcome(parsed))
	return parsed
}

// AvailabilityRequest is one end-to-end availability question. ServicePhrase
// is required; StaffPhrase and LocationID narrow the search; WhenPhrase
// defaults to the 7-day window when empty or unparseable.
type AvailabilityRequest struct {
	ServicePhrase string
	StaffPhrase   string
	LocationID    string
	WhenPhrase    string
	Timezone      string
	Ref           time.Time
}

// AvailabilityResponse pairs the aggregated result with what was resolved
// along the way, so the caller can confirm entities back to the user.
type AvailabilityResponse struct {
	Service availability.Result
	Parsed  timeparse.Parsed

	ResolvedService *catalog.Service
	ResolvedStaff   *catalog.StaffMember

	// ServiceMatch carries the full resolution outcome; an ambiguous service
	// stops the search and the caller should disambiguate instead.
	ServiceMatch resolve.Match[catalog.Service]
	StaffMatch   resolve.Match[catalog.StaffMember]
}

// CheckAvailability runs the full pipeline: resolve the service (and staff if
// phrased), parse the window, search the platform, aggregate and summarize.
// A service that does not resolve to a single entity short-circuits with the
// match so the caller can ask a clarifying question.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (AvailabilityResponse, error) {
	ctx, span := conciergeTracer.Start(ctx, "concierge.check_availability")
	defer span.End()

	var resp AvailabilityResponse

	svcMatch, err := s.ResolveService(ctx, req.ServicePhrase)
	if err != nil {
		return resp, err
	}
	resp.ServiceMatch = svcMatch
	if svcMatch.Entity == nil {
		// Ambiguous or none: nothing to search yet.
		return resp, nil
	}
	resp.ResolvedService = svcMatch.Entity

	var staffIDs []string
	if req.StaffPhrase != "" {
		staffMatch, err := s.ResolveStaff(ctx, req.StaffPhrase, req.LocationID)
		if err != nil {
			return resp, err
		}
		resp.StaffMatch = staffMatch
		if staffMatch.Entity != nil {
			resp.ResolvedStaff = staffMatch.Entity
			staffIDs = []string{staffMatch.Entity.ID}
		}
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.opts.Timezone
	}
	resp.Parsed = s.ParseWhen(req.WhenPhrase, tz, req.Ref)

	directory, err := s.platform.StaffDirectory(ctx, req.LocationID)
	if err != nil {
		span.RecordError(err)
		return resp, fmt.Errorf("concierge: staff directory: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	started := time.Now()
	slots, err := s.platform.SearchAvailability(searchCtx, catalog.AvailabilityQuery{
		ServiceID:  resp.ResolvedService.ID,
		StaffIDs:   staffIDs,
		LocationID: req.LocationID,
		RangeStart: resp.Parsed.RangeStart,
		RangeEnd:   resp.Parsed.RangeEnd,
	})
	if err != nil {
		s.metrics.ObserveSearchLatency("error", time.Since(started).Seconds())
		span.RecordError(err)
		return resp, fmt.Errorf("concierge: search availability: %w", err)
	}
	s.metrics.ObserveSearchLatency("ok", time.Since(started).Seconds())

	resp.Service = availability.Aggregate(availability.Request{
		Slots:           slots,
		StaffDirectory:  directory,
		Timezone:        tz,
		MaxDates:        s.opts.MaxDates,
		MaxSlotsPerDate: s.opts.MaxSlotsPerDate,
		ServiceName:     resp.ResolvedService.Name,
		WindowLabel:     resp.Parsed.HumanReadable,
	})
	s.metrics.ObserveDroppedSlots(resp.Service.DroppedSlots)

	s.logger.Info("availability checked",
		"service_id", resp.ResolvedService.ID,
		"total_slots", resp.Service.TotalSlots,
		"slots_shown", resp.Service.SlotsShown,
		"dropped_slots", resp.Service.DroppedSlots,
		"window", resp.Parsed.HumanReadable,
	)
	return resp, nil
}

func (s *Service) observeResolution(span trace.Span, kind, query string, conf resolve.Confidence) {
	span.SetAttributes(
		attribute.String("concierge.resolve.kind", kind),
		attribute.String("concierge.resolve.confidence", string(conf)),
	)
	s.metrics.ObserveResolution(kind, string(conf))
	s.logger.Debug("resolved phrase", "kind", kind, "query", query, "confidence", string(conf))
}

func parseOutcome(p timeparse.Parsed) string {
	switch {
	case p.Fallback:
		return "fallback"
	case p.IsRange:
		return "range"
	default:
		return "exact"
	}
}
