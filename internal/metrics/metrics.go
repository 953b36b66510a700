// Package metrics collects and exposes Prometheus metrics for the auth and
// booking flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers record against.
type Recorder interface {
	RecordSignIn(method, outcome string)
	RecordRegistration(outcome string)
	RecordSessionUpdate(outcome string)
	RecordBookingCreated(activity string)
	RecordRateLimited(route string)
	RecordRequest(method, route string, status int, duration time.Duration)
}

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

type Collector struct {
	signIns         *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	sessionUpdates  *prometheus.CounterVec
	bookingsCreated *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_sign_ins_total",
			Help: "Sign-in attempts by method (credentials or provider name) and outcome",
		}, []string{"method", "outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		sessionUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_session_updates_total",
			Help: "Session update requests by outcome",
		}, []string{"outcome"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_bookings_created_total",
			Help: "Bookings created by activity",
		}, []string{"activity"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"route"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.signIns,
		c.registrations,
		c.sessionUpdates,
		c.bookingsCreated,
		c.rateLimited,
		c.requestDuration,
	)

	return c
}

func (c *Collector) RecordSignIn(method, outcome string) {
	c.signIns.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSessionUpdate(outcome string) {
	c.sessionUpdates.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordBookingCreated(activity string) {
	c.bookingsCreated.WithLabelValues(activity).Inc()
}

func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
