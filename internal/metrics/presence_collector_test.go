package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"slackin/internal/slack"
)

func TestCollector_ErrorStopsCollection(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("CheckConnection", mock.Anything).Return(assert.AnError)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{}, assert.AnError)

	registry := prometheus.NewRegistry()
	collector := NewPresenceCollector(mockSlack)
	require.NoError(t, registry.Register(collector))

	metricsCount := testutil.CollectAndCount(collector)
	assert.Equal(t, 2, metricsCount)

	assertGauge(t, registry, "slackin_presence_last_scrape_success", 0.0)
	assertGauge(t, registry, "slackin_slack_connected", 0.0)

	mockSlack.AssertExpectations(t)
}

func TestCollector_SuccessMetrics(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("CheckConnection", mock.Anything).Return(nil)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{Total: 345, Active: 12}, nil)

	registry := prometheus.NewRegistry()
	collector := NewPresenceCollector(mockSlack)
	require.NoError(t, registry.Register(collector))

	metricsCount := testutil.CollectAndCount(collector)
	assert.Equal(t, 4, metricsCount)

	assertGauge(t, registry, "slackin_presence_last_scrape_success", 1.0)
	assertGauge(t, registry, "slackin_slack_connected", 1.0)
	assertGauge(t, registry, "slackin_users_total", 345.0)
	assertGauge(t, registry, "slackin_users_active", 12.0)

	mockSlack.AssertExpectations(t)
}

func TestInviteCounter(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := NewInviteCounter()
	require.NoError(t, registry.Register(counter))

	counter.WithLabelValues("sent").Inc()
	counter.WithLabelValues("sent").Inc()
	counter.WithLabelValues("invalid").Inc()

	assert.InDelta(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("sent")), 0.0001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("invalid")), 0.0001)
}

func assertGauge(t *testing.T, registry *prometheus.Registry, name string, expected float64) {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		assert.InDelta(t, expected, gaugeValue(family.GetMetric()[0]), 0.0001)
		return
	}
	t.Fatalf("gauge %s not found", name)
}

func gaugeValue(metric *dto.Metric) float64 {
	return metric.GetGauge().GetValue()
}
