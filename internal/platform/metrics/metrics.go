package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing, so tests can skip wiring a registry.
type Metrics struct {
	ContactsCreated     prometheus.Counter
	ContactsUpdated     prometheus.Counter
	ContactsDeleted     prometheus.Counter
	BirthdayMatches     prometheus.Histogram
	AvatarUploads       *prometheus.CounterVec
	AvatarCacheLookups  *prometheus.CounterVec
	RateLimited         *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ContactsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_created_total",
			Help: "Total number of contacts created",
		}),
		ContactsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_updated_total",
			Help: "Total number of contacts updated",
		}),
		ContactsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "contactbook_contacts_deleted_total",
			Help: "Total number of contacts deleted",
		}),
		BirthdayMatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "contactbook_upcoming_birthdays_matches",
			Help:    "Number of contacts returned per upcoming-birthdays query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		AvatarUploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_avatar_uploads_total",
			Help: "Avatar uploads by outcome",
		}, []string{"result"}),
		AvatarCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_avatar_cache_lookups_total",
			Help: "Account snapshot cache lookups by result (hit, miss)",
		}, []string{"result"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactbook_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactbook_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.ExponentialBuckets(1e-3, 5, 6),
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementContactsCreated() {
	if m == nil {
		return
	}
	m.ContactsCreated.Inc()
}

func (m *Metrics) IncrementContactsUpdated() {
	if m == nil {
		return
	}
	m.ContactsUpdated.Inc()
}

func (m *Metrics) IncrementContactsDeleted() {
	if m == nil {
		return
	}
	m.ContactsDeleted.Inc()
}

func (m *Metrics) ObserveBirthdayMatches(n int) {
	if m == nil {
		return
	}
	m.BirthdayMatches.Observe(float64(n))
}

// IncrementAvatarUploads records an upload outcome ("success" or "failure").
func (m *Metrics) IncrementAvatarUploads(result string) {
	if m == nil {
		return
	}
	m.AvatarUploads.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementAvatarCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AvatarCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementRateLimited(class string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(class).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
