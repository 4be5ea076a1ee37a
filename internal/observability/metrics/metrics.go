package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "concierge"

// MessagingMetrics exposes counters/histograms for channel webhooks and outbound sends.
type MessagingMetrics struct {
	inboundTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "inbound_total",
			Help:      "Total inbound messages by channel",
		}, []string{"channel", "status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound sends by channel",
		}, []string{"channel", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "messaging",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.webhookLatency)
	return m
}

func (m *MessagingMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *MessagingMetrics) ObserveOutbound(channel, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *MessagingMetrics) ObserveWebhookLatency(channel string, d time.Duration) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(channel).Observe(d.Seconds())
}

// ConversationMetrics tracks dialogue turns, recoverable errors and collaborator calls.
type ConversationMetrics struct {
	turns         *prometheus.CounterVec
	errors        *prometheus.CounterVec
	collaborators *prometheus.HistogramVec
	sideEffects   *prometheus.CounterVec
}

// CollaboratorLatencyMetric is the full metric family name for collaborator latency.
const CollaboratorLatencyMetric = namespace + "_conversation_collaborator_latency_seconds"

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Dialogue turns by source and destination state",
		}, []string{"from", "to"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "errors_total",
			Help:      "Recoverable dialogue errors by kind",
		}, []string{"kind"}),
		collaborators: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "collaborator_latency_seconds",
			Help:      "Latency of catalog, booking, extractor and sender calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"collaborator", "status"}),
		sideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "side_effects_total",
			Help:      "Post-booking side effects by name and status",
		}, []string{"effect", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turns, m.errors, m.collaborators, m.sideEffects)
	return m
}

func (m *ConversationMetrics) ObserveTurn(from, to string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(from, to).Inc()
}

func (m *ConversationMetrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *ConversationMetrics) ObserveCollaborator(name, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.collaborators.WithLabelValues(name, status).Observe(d.Seconds())
}

func (m *ConversationMetrics) ObserveSideEffect(name, status string) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(name, status).Inc()
}
