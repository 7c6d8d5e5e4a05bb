package metrics

import (
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordParse("table", "separator", "json", 120)
	c.RecordParse("table", "separator", "json", 300)
	c.RecordParse("locator_miss", "none", "none", 40)
	c.RecordMessage("assistant")
	c.RecordMessage("user")
	c.RecordMessage("assistant")
	c.RecordHTTP("/v1/messages/parse", 200)
	c.RecordHTTP("/v1/messages/parse", 400)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.parseTotal.WithLabelValues("table", "separator", "json")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.parseTotal.WithLabelValues("locator_miss", "none", "none")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.messagesRendered.WithLabelValues("assistant")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.messagesRendered.WithLabelValues("user")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.httpRequests.WithLabelValues("/v1/messages/parse", "400")))

	assert.Equal(t, 2, testutil.CollectAndCount(c.parseTotal))
}

func TestRecordMessageFoldsRoles(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	for i := 0; i < 50; i++ {
		c.RecordMessage("r" + strconv.Itoa(i))
	}
	c.RecordMessage(" Assistant ")
	c.RecordMessage("USER")
	c.RecordMessage("")

	assert.Equal(t, 3, testutil.CollectAndCount(c.messagesRendered))
	assert.Equal(t, float64(51), testutil.ToFloat64(c.messagesRendered.WithLabelValues("other")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.messagesRendered.WithLabelValues("assistant")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.messagesRendered.WithLabelValues("user")))
}

func TestCollectorHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordParse("table", "whole_content", "json", 100)

	expected := `
# HELP partsdesk_parse_content_bytes Size of assistant message content passed to the parser
# TYPE partsdesk_parse_content_bytes histogram
partsdesk_parse_content_bytes_bucket{le="64"} 0
partsdesk_parse_content_bytes_bucket{le="256"} 1
partsdesk_parse_content_bytes_bucket{le="1024"} 1
partsdesk_parse_content_bytes_bucket{le="4096"} 1
partsdesk_parse_content_bytes_bucket{le="16384"} 1
partsdesk_parse_content_bytes_bucket{le="65536"} 1
partsdesk_parse_content_bytes_bucket{le="262144"} 1
partsdesk_parse_content_bytes_bucket{le="1.048576e+06"} 1
partsdesk_parse_content_bytes_bucket{le="+Inf"} 1
partsdesk_parse_content_bytes_sum 100
partsdesk_parse_content_bytes_count 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "partsdesk_parse_content_bytes"))
}

func TestCollectorRegistersOnInjectedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) }, "duplicate registration must fail on the same registry")
	assert.NotPanics(t, func() { NewNop(); NewNop() })
}
