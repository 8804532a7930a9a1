// Package batch runs a list of short links through the resolver and the
// coordinate extractor, isolating per-link failures.
package batch

import (
	"context"
	"fmt"
	"mapslinks/internal/resolver"
	"mapslinks/pkg/browser"
	"mapslinks/pkg/domain"
	"mapslinks/pkg/logger"
	"mapslinks/pkg/mapsurl"
	"mapslinks/pkg/metrics"
	"mapslinks/pkg/serrors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "mapslinks/internal/batch"

// Outcomes recorded on metrics and spans.
const (
	OutcomeCoordinates = "coordinates"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

// Options carry the telemetry providers. Nil values fall back to the global
// otel providers.
type Options struct {
	Meter  metric.Meter
	Tracer trace.Tracer
}

type service struct {
	launcher browser.Launcher
	resolver *resolver.Resolver
	tracer   trace.Tracer

	processed metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a Runner that launches one browser session per batch.
func New(launcher browser.Launcher, resolver *resolver.Resolver, options Options) (Runner, error) {
	if options.Meter == nil {
		options.Meter = otel.Meter(instrumentationName)
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(instrumentationName)
	}

	processed, err := options.Meter.Int64Counter("mapslinks.links.processed",
		metric.WithDescription("Links processed, by outcome."),
		metric.WithUnit("{link}"))
	if err != nil {
		return nil, fmt.Errorf("could not create processed counter: %w", err)
	}

	duration, err := options.Meter.Float64Histogram("mapslinks.link.resolve.duration",
		metric.WithDescription("Time spent resolving and parsing a single link."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &service{
		launcher:  launcher,
		resolver:  resolver,
		tracer:    options.Tracer,
		processed: processed,
		duration:  duration,
	}, nil
}

// Run implements Runner. The browser session is acquired before the first
// link, also for an empty batch, and is always closed before Run returns.
func (s *service) Run(ctx context.Context, links []string) ([]domain.ResolvedLocation, error) {
	ctx = logger.WithFields(ctx, zap.String("batchID", uuid.NewString()))

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not launch browser")
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn(ctx, "could not close browser session", zap.Error(err))
		}
	}()

	start := time.Now()
	results := make([]domain.ResolvedLocation, 0, len(links))
	var found, failed int
	for i, link := range links {
		res := s.process(logger.WithFields(ctx, zap.Int("index", i), zap.String("link", link)), session, link)
		switch {
		case res.Failed():
			failed++
		case res.HasCoordinates():
			found++
		}
		results = append(results, res)
	}

	logger.Info(ctx, "batch processed",
		zap.Int("links", len(links)),
		zap.Int("withCoordinates", found),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))

	return results, nil
}

// process resolves a single link. It never fails: errors and panics end up
// in the result's Error field.
func (s *service) process(ctx context.Context,
	session browser.Session,
	link string) (res domain.ResolvedLocation) {
	ctx, span := s.tracer.Start(ctx, "batch.process_link", trace.WithAttributes(attribute.String("link", link)))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic while processing link", zap.Any("panic", p))
			res = domain.ResolvedLocation{
				OriginalLink: link,
				Error:        serrors.Describe(serrors.With(serrors.ErrBrowser, "unexpected failure"), serrors.ErrBrowser),
			}
			span.SetStatus(codes.Error, "panic")
		}

		outcome := Outcome(res)
		attrs := metric.WithAttributes(attribute.String("outcome", outcome))
		s.processed.Add(ctx, 1, attrs)
		s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
	}()

	res.OriginalLink = link

	finalURL, err := s.resolver.Resolve(ctx, session, link)
	if err != nil {
		logger.Warn(ctx, "could not resolve link", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		res.Error = serrors.Describe(err, serrors.ErrBrowser)

		return res
	}

	res.FinalURL = finalURL
	span.SetAttributes(attribute.String("final_url", finalURL))

	if c, ok := mapsurl.ExtractCoordinates(finalURL); ok {
		res.Coordinates = &c
	} else {
		logger.Info(ctx, "no coordinates in resolved URL", zap.String("finalURL", finalURL))
	}

	return res
}

// Outcome classifies a result for metrics.
func Outcome(res domain.ResolvedLocation) string {
	switch {
	case res.Failed():
		return OutcomeError
	case res.HasCoordinates():
		return OutcomeCoordinates
	default:
		return OutcomeNotFound
	}
}

// ParseLinks splits newline separated text into links, trimming surrounding
// whitespace and dropping blank lines.
func ParseLinks(text string) []string {
	return NormalizeLinks(strings.Split(text, "\n"))
}

// NormalizeLinks trims every link and drops empty ones, keeping order.
func NormalizeLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}

	return out
}
