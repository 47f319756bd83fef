package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

const defaultNamespace = "pmo"

// Prometheus is a Recorder backed by client_golang collectors.
type Prometheus struct {
	grabs            *prometheus.CounterVec
	releases         *prometheus.CounterVec
	releaseConflicts prometheus.Counter
	timelineBuilds   *prometheus.CounterVec
	timelineLatency  prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}

	p := &Prometheus{
		grabs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "grabs_total",
			Help:      "Assignment records opened, by role.",
		}, []string{"role"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "releases_total",
			Help:      "Assignment records closed, by role.",
		}, []string{"role"}),
		releaseConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "release_conflicts_total",
			Help:      "Release attempts against records that were already closed.",
		}),
		timelineBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "builds_total",
			Help:      "Timeline views served, by cache outcome.",
		}, []string{"cache"}),
		timelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "build_seconds",
			Help:      "Time spent assembling a timeline view.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{
		p.grabs, p.releases, p.releaseConflicts,
		p.timelineBuilds, p.timelineLatency,
		p.httpRequests, p.httpLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Prometheus) AssignmentGrabbed(role models.AssignmentRole) {
	p.grabs.WithLabelValues(string(role)).Inc()
}

func (p *Prometheus) AssignmentReleased(role models.AssignmentRole) {
	p.releases.WithLabelValues(string(role)).Inc()
}

func (p *Prometheus) ReleaseConflict() {
	p.releaseConflicts.Inc()
}

func (p *Prometheus) TimelineBuilt(cached bool, d time.Duration) {
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	p.timelineBuilds.WithLabelValues(outcome).Inc()
	if !cached {
		p.timelineLatency.Observe(d.Seconds())
	}
}

func (p *Prometheus) HTTPRequest(method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
