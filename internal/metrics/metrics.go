package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the land brokerage API.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	RecordsCreated      prometheus.Counter
	RecordsUpdated      *prometheus.CounterVec
	VerificationChanges *prometheus.CounterVec
	LedgerEntriesOpened *prometheus.CounterVec
	LandCodesGenerated  prometheus.Counter
	LandCodeRetries     prometheus.Counter
	PurchaseRequests    *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
	RecordWriteDuration prometheus.Histogram
	PanicsRecovered     *prometheus.CounterVec
}

// New creates and registers all metrics with the default Prometheus registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates metrics registered with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landbroker_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		RecordsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "landbroker_land_records_created_total",
			Help: "Total number of land records created",
		}),
		RecordsUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_land_records_updated_total",
			Help: "Total number of land record updates by mode",
		}, []string{"mode"}),
		VerificationChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_verification_transitions_total",
			Help: "Verification state transitions by target state",
		}, []string{"state"}),
		LedgerEntriesOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_ledger_entries_opened_total",
			Help: "Ledger entries opened by kind",
		}, []string{"kind"}),
		LandCodesGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "landbroker_land_codes_generated_total",
			Help: "Total number of land codes generated",
		}),
		LandCodeRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "landbroker_land_code_conflict_retries_total",
			Help: "Code numbers skipped because another writer already held them",
		}),
		PurchaseRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_purchase_requests_total",
			Help: "Purchase request attempts by outcome",
		}, []string{"outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_record_cache_lookups_total",
			Help: "Record cache lookups by result",
		}, []string{"result"}),
		RecordWriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "landbroker_land_record_write_duration_seconds",
			Help:    "Duration of land record create and update transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PanicsRecovered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landbroker_http_panics_recovered_total",
			Help: "Handler panics converted to 500 responses, by route",
		}, []string{"route"}),
	}
}

// ObserveHTTP records a completed HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// IncrementRecordsCreated records a committed land record creation.
func (m *Metrics) IncrementRecordsCreated() {
	if m == nil {
		return
	}
	m.RecordsCreated.Inc()
}

// IncrementRecordsUpdated records a committed land record update.
func (m *Metrics) IncrementRecordsUpdated(mode string) {
	if m == nil {
		return
	}
	m.RecordsUpdated.WithLabelValues(mode).Inc()
}

// IncrementVerification records a verification state change.
func (m *Metrics) IncrementVerification(state string) {
	if m == nil {
		return
	}
	m.VerificationChanges.WithLabelValues(state).Inc()
}

// IncrementLedgerOpened records a newly inserted ledger entry.
func (m *Metrics) IncrementLedgerOpened(kind string) {
	if m == nil {
		return
	}
	m.LedgerEntriesOpened.WithLabelValues(kind).Inc()
}

// AddLandCodesGenerated records a committed generation batch.
func (m *Metrics) AddLandCodesGenerated(n int) {
	if m == nil {
		return
	}
	m.LandCodesGenerated.Add(float64(n))
}

// IncrementLandCodeRetries records a code number lost to a concurrent writer.
func (m *Metrics) IncrementLandCodeRetries() {
	if m == nil {
		return
	}
	m.LandCodeRetries.Inc()
}

// IncrementPurchaseRequests records a purchase request outcome ("created", "duplicate").
func (m *Metrics) IncrementPurchaseRequests(outcome string) {
	if m == nil {
		return
	}
	m.PurchaseRequests.WithLabelValues(outcome).Inc()
}

// IncrementCacheLookup records a cache "hit", "miss" or "error".
func (m *Metrics) IncrementCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveRecordWrite records the duration of a record write transaction.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRecordWrite(start time.Time) {
	if m == nil {
		return
	}
	m.RecordWriteDuration.Observe(time.Since(start).Seconds())
}

// IncrementPanics records a recovered handler panic.
func (m *Metrics) IncrementPanics(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.PanicsRecovered.WithLabelValues(route).Inc()
}
