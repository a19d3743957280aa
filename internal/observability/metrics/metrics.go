package metrics

import "github.com/prometheus/client_golang/prometheus"

// WidgetMetrics exposes counters for the widget engine. Hosts that run
// the engine server-side scrape these; a nil receiver disables all
// observation.
type WidgetMetrics struct {
	chatTotal  *prometheus.CounterVec
	leadTotal  *prometheus.CounterVec
	openTotal  prometheus.Counter
	popupTotal prometheus.Counter
}

func NewWidgetMetrics(reg prometheus.Registerer) *WidgetMetrics {
	m := &WidgetMetrics{
		chatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "widget",
			Name:      "chat_requests_total",
			Help:      "Total chat exchanges attempted by the widget",
		}, []string{"outcome"}),
		leadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "widget",
			Name:      "lead_submissions_total",
			Help:      "Total lead submissions attempted by the widget",
		}, []string{"outcome"}),
		openTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "widget",
			Name:      "opens_total",
			Help:      "Times the chat surface was opened",
		}),
		popupTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "widget",
			Name:      "popup_shown_total",
			Help:      "Times the proactive popup was shown",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatTotal, m.leadTotal, m.openTotal, m.popupTotal)
	return m
}

func (m *WidgetMetrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.chatTotal.WithLabelValues(outcome).Inc()
}

func (m *WidgetMetrics) ObserveLead(outcome string) {
	if m == nil {
		return
	}
	m.leadTotal.WithLabelValues(outcome).Inc()
}

func (m *WidgetMetrics) ObserveOpen() {
	if m == nil {
		return
	}
	m.openTotal.Inc()
}

func (m *WidgetMetrics) ObservePopup() {
	if m == nil {
		return
	}
	m.popupTotal.Inc()
}
