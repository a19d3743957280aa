package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWidgetMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWidgetMetrics(reg)
	m.ObserveChat("success")
	m.ObserveChat("failure")
	m.ObserveLead("rejected")
	m.ObserveOpen()
	m.ObservePopup()
}

func TestWidgetMetricsNilSafe(t *testing.T) {
	var m *WidgetMetrics
	m.ObserveChat("success")
	m.ObserveLead("success")
	m.ObserveOpen()
	m.ObservePopup()
}
