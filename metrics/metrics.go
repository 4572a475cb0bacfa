package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics counts booking outcomes, inbound events, operator notifications
// and calendar returns. A nil *BotMetrics is a valid no-op.
type BotMetrics struct {
	confirmTotal  *prometheus.CounterVec
	cancelTotal   *prometheus.CounterVec
	inboundTotal  *prometheus.CounterVec
	notifyTotal   *prometheus.CounterVec
	handoffTotal  *prometheus.CounterVec
	notifyDropped prometheus.Counter
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		confirmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbot",
			Subsystem: "booking",
			Name:      "confirm_total",
			Help:      "Booking confirmations by outcome",
		}, []string{"outcome"}),
		cancelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbot",
			Subsystem: "booking",
			Name:      "cancel_total",
			Help:      "Appointment cancellations by outcome",
		}, []string{"outcome"}),
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbot",
			Name:      "inbound_events_total",
			Help:      "Decoded inbound events by kind",
		}, []string{"kind"}),
		notifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbot",
			Name:      "notifications_total",
			Help:      "Operator notification sends by channel and status",
		}, []string{"channel", "status"}),
		handoffTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbot",
			Name:      "handoff_returns_total",
			Help:      "Calendar picker returns by status",
		}, []string{"status"}),
		notifyDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotbot",
			Name:      "notifications_dropped_total",
			Help:      "Announcements dropped because the notification queue was full",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.confirmTotal, m.cancelTotal, m.inboundTotal, m.notifyTotal, m.handoffTotal, m.notifyDropped)
	return m
}

func (m *BotMetrics) ObserveConfirm(outcome string) {
	if m == nil {
		return
	}
	m.confirmTotal.WithLabelValues(outcome).Inc()
}

func (m *BotMetrics) ObserveCancel(outcome string) {
	if m == nil {
		return
	}
	m.cancelTotal.WithLabelValues(outcome).Inc()
}

func (m *BotMetrics) ObserveInbound(kind string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(channel, status).Inc()
}

func (m *BotMetrics) ObserveNotificationDropped() {
	if m == nil {
		return
	}
	m.notifyDropped.Inc()
}

func (m *BotMetrics) ObserveHandoffReturn(status string) {
	if m == nil {
		return
	}
	m.handoffTotal.WithLabelValues(status).Inc()
}
