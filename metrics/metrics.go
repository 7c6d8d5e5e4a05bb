package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "partsdesk"

// Collector owns the service's Prometheus instruments
type Collector struct {
	// parseTotal counts parse attempts.
	// Labels: outcome (table, not_attempted, locator_miss, parse_failure, shape_unrecognized),
	// locator (none, period_separator, separator, partinfo_scan, whole_content),
	// decoder (none, json, python_literal, jsonrepair)
	parseTotal *prometheus.CounterVec

	// messagesRendered counts rendered messages by role (assistant, user, other)
	messagesRendered *prometheus.CounterVec

	// httpRequests counts HTTP responses by route template and status code
	httpRequests *prometheus.CounterVec

	// parseContentBytes observes the size of assistant content handed to the parser
	parseContentBytes prometheus.Histogram
}

// NewCollector registers every instrument on reg. Pass a fresh registry in tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		parseTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Embedded table parse attempts by outcome, locator strategy and decoder",
		}, []string{"outcome", "locator", "decoder"}),

		messagesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_rendered_total",
			Help:      "Chat messages rendered by role",
		}, []string{"role"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status code",
		}, []string{"route", "code"}),

		parseContentBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_content_bytes",
			Help:      "Size of assistant message content passed to the parser",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}
}

// NewNop returns a collector backed by a private registry that nobody scrapes
func NewNop() *Collector {
	return NewCollector(prometheus.NewRegistry())
}

// RecordParse records one parser invocation
func (c *Collector) RecordParse(outcome, locator, decoder string, contentBytes int) {
	c.parseTotal.WithLabelValues(outcome, locator, decoder).Inc()
	c.parseContentBytes.Observe(float64(contentBytes))
}

// RecordMessage records one rendered message. The role comes from the client, so it is
// folded into a fixed label set.
func (c *Collector) RecordMessage(role string) {
	c.messagesRendered.WithLabelValues(roleLabel(role)).Inc()
}

func roleLabel(role string) string {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case "assistant", "user":
		return r
	default:
		return "other"
	}
}

// RecordHTTP records one HTTP response
func (c *Collector) RecordHTTP(route string, code int) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
