package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	// Job is the Pushgateway job label the delivery metrics are grouped under.
	Job = "webhook_push"

	pushTimeout = 10 * time.Second
)

type Recorder struct {
	registry *prometheus.Registry

	webhooksSuccess prometheus.Counter
	webhooksErrors  prometheus.Counter
	lastStatus      prometheus.Gauge
	duration        prometheus.Histogram
}

func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		webhooksSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: "webhook",
			Name:      "success_total",
			Help:      "Total number of successfully delivered push webhooks",
		}),
		webhooksErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: "webhook",
			Name:      "errors_total",
			Help:      "Total number of failed push webhooks",
		}),
		lastStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Subsystem: "webhook",
			Name:      "last_status_code",
			Help:      "HTTP status code of the last delivery, 0 on transport failure",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: "webhook",
			Name:      "duration_seconds",
			Help:      "How long in seconds the delivery took.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	for _, c := range []prometheus.Collector{r.webhooksSuccess, r.webhooksErrors, r.lastStatus, r.duration} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("prometheus: %w", err)
		}
	}

	return r, nil
}

func (r *Recorder) Observe(statusCode int, duration time.Duration, err error) {
	if err != nil {
		r.webhooksErrors.Inc()
	} else {
		r.webhooksSuccess.Inc()
	}

	r.lastStatus.Set(float64(statusCode))
	r.duration.Observe(duration.Seconds())
}

// Push replaces the Job group on the Pushgateway at url with the recorded metrics.
func (r *Recorder) Push(url string) error {
	client := &http.Client{Timeout: pushTimeout}

	if err := push.New(url, Job).Client(client).Gatherer(r.registry).Push(); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}

	return nil
}
