// Package metrics holds the client's Prometheus instrumentation behind a
// private registry. Nothing here registers globally; callers mount the
// registry themselves.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Failure kind labels used by RequestFailures.
const (
	KindNetwork    = "network"
	KindAuth       = "auth"
	KindServer     = "server"
	KindUnexpected = "unexpected"
)

// Metrics bundles every counter the client maintains. A nil *Metrics is a
// valid no-op instance, so instrumented code never branches on enablement.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   prometheus.Counter
	requestFailures *prometheus.CounterVec

	refreshAttempts prometheus.Counter
	refreshSuccess  prometheus.Counter
	refreshFailures prometheus.Counter
	refreshRejected prometheus.Counter
	sessionExpired  prometheus.Counter

	signInOutcomes  *prometheus.CounterVec
	signOutTotal    prometheus.Counter
	registrations   *prometheus.CounterVec
	sessionProbes   prometheus.Counter
}

// New builds a Metrics instance backed by a fresh private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_requests_total",
			Help: "Outbound API requests issued by the transport.",
		}),
		requestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ravenauth_request_failures_total",
			Help: "Failed API requests by failure kind.",
		}, []string{"kind"}),
		refreshAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_refresh_attempts_total",
			Help: "Session refresh attempts started by the coordinator.",
		}),
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_refresh_success_total",
			Help: "Session refreshes that rotated the credential.",
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_refresh_failures_total",
			Help: "Session refreshes that failed and expired the session.",
		}),
		refreshRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_refresh_rejected_total",
			Help: "Requests rejected because a refresh was already in flight.",
		}),
		sessionExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_session_expired_total",
			Help: "Session-expired signals emitted to the presentation layer.",
		}),
		signInOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ravenauth_sign_in_total",
			Help: "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
		signOutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_sign_out_total",
			Help: "Sign-out operations, remote failures included.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ravenauth_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		sessionProbes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ravenauth_session_probes_total",
			Help: "Current-user session probes issued.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestFailures,
		m.refreshAttempts,
		m.refreshSuccess,
		m.refreshFailures,
		m.refreshRejected,
		m.sessionExpired,
		m.signInOutcomes,
		m.signOutTotal,
		m.registrations,
		m.sessionProbes,
	)

	return m
}

// Registry exposes the private registry for callers that want to serve the
// metrics, e.g. via promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncRequest() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

func (m *Metrics) IncRequestFailure(kind string) {
	if m == nil {
		return
	}
	m.requestFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncRefreshAttempt() {
	if m == nil {
		return
	}
	m.refreshAttempts.Inc()
}

func (m *Metrics) IncRefreshSuccess() {
	if m == nil {
		return
	}
	m.refreshSuccess.Inc()
}

func (m *Metrics) IncRefreshFailure() {
	if m == nil {
		return
	}
	m.refreshFailures.Inc()
}

func (m *Metrics) IncRefreshRejected() {
	if m == nil {
		return
	}
	m.refreshRejected.Inc()
}

func (m *Metrics) IncSessionExpired() {
	if m == nil {
		return
	}
	m.sessionExpired.Inc()
}

func (m *Metrics) IncSignIn(success bool) {
	if m == nil {
		return
	}
	m.signInOutcomes.WithLabelValues(outcome(success)).Inc()
}

func (m *Metrics) IncSignOut() {
	if m == nil {
		return
	}
	m.signOutTotal.Inc()
}

func (m *Metrics) IncRegistration(success bool) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome(success)).Inc()
}

func (m *Metrics) IncSessionProbe() {
	if m == nil {
		return
	}
	m.sessionProbes.Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
