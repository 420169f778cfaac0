package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds the check-in service instrument set.
type OTelMetrics struct {
	CheckInTotal        metric.Int64Counter
	CheckInDuration     metric.Float64Histogram
	CapacityDenialTotal metric.Int64Counter
	PagerPageTotal      metric.Int64Counter
	PickupBlockedTotal  metric.Int64Counter

	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	metrics *OTelMetrics
	meter   = otel.Meter("flockcheck")
)

// InitMetrics registers the service instruments against the global meter.
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.CheckInTotal, err = meter.Int64Counter(
		"checkin_total",
		metric.WithDescription("Total number of processed check-in items"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return err
	}

	metrics.CheckInDuration, err = meter.Float64Histogram(
		"checkin_batch_duration_seconds",
		metric.WithDescription("Time spent processing a check-in batch in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.CapacityDenialTotal, err = meter.Int64Counter(
		"capacity_denial_total",
		metric.WithDescription("Total number of check-ins denied by capacity resolution"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return err
	}

	metrics.PagerPageTotal, err = meter.Int64Counter(
		"pager_page_total",
		metric.WithDescription("Total number of guardian page requests"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return err
	}

	metrics.PickupBlockedTotal, err = meter.Int64Counter(
		"pickup_blocked_total",
		metric.WithDescription("Total number of pickup verifications blocked by the failure limiter"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerDuration, err = meter.Float64Histogram(
		"http_server_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics returns the global instrument set, nil before InitMetrics.
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordCheckIn counts one admitted check-in item.
func RecordCheckIn(ctx context.Context, redirected, overridden bool) {
	if metrics == nil {
		return
	}
	metrics.CheckInTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("redirected", redirected),
		attribute.Bool("overridden", overridden),
	))
}

// RecordCapacityDenial counts one denied item by denial reason code.
func RecordCapacityDenial(ctx context.Context, reason string) {
	if metrics == nil {
		return
	}
	metrics.CapacityDenialTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordBatchDuration records end-to-end batch processing time.
func RecordBatchDuration(ctx context.Context, seconds float64, size int) {
	if metrics == nil {
		return
	}
	metrics.CheckInDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.Int("batch_size", size),
	))
}

// RecordPagerPage counts one guardian page by delivery outcome.
func RecordPagerPage(ctx context.Context, status string) {
	if metrics == nil {
		return
	}
	metrics.PagerPageTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordPickupBlocked counts one limiter block on pickup verification.
func RecordPickupBlocked(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.PickupBlockedTotal.Add(ctx, 1)
}
