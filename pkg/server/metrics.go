package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/semaphore"
	"dominicbreuker/gorelay/pkg/streamio"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server counters. Each server has its own registry.
type Metrics struct {
	registry *prometheus.Registry

	accepted       prometheus.Counter
	acceptErrors   prometheus.Counter
	rejected       prometheus.Counter
	active         prometheus.Gauge
	bytes          *prometheus.CounterVec // label direction: in, out
	transferErrors *prometheus.CounterVec // label kind: timeout, failure
	slotsFree      prometheus.GaugeFunc
}

// NewMetrics creates the counters and registers them together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gorelay_connections_accepted_total",
			Help: "Connections returned by Accept.",
		}),
		acceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gorelay_accept_errors_total",
			Help: "Failed Accept calls.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gorelay_connections_rejected_total",
			Help: "Connections closed because no slot was free.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gorelay_connections_active",
			Help: "Connections currently being handled.",
		}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gorelay_bytes_total",
			Help: "Bytes read from (in) and written to (out) accepted connections.",
		}, []string{"direction"}),
		transferErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gorelay_transfer_errors_total",
			Help: "Connections that ended with a transfer error.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.accepted,
		m.acceptErrors,
		m.rejected,
		m.active,
		m.bytes,
		m.transferErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// trackSlots exports the number of free connection slots of sem, -1 when
// the number of connections is not limited.
func (m *Metrics) trackSlots(sem *semaphore.ConnSemaphore) {
	m.slotsFree = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gorelay_connection_slots_free",
		Help: "Connection slots not in use, -1 if unlimited.",
	}, func() float64 {
		return float64(sem.Available())
	})
	m.registry.MustRegister(m.slotsFree)
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observe counts err if it is a transfer error.
func (m *Metrics) observe(err error) {
	switch {
	case err == nil:
	case streamio.IsTimeout(err):
		m.transferErrors.WithLabelValues("timeout").Inc()
	case errors.Is(err, streamio.ErrTransfer):
		m.transferErrors.WithLabelValues("failure").Inc()
	}
}

func (m *Metrics) countConn(conn net.Conn) net.Conn {
	return &countingConn{
		Conn: conn,
		in:   m.bytes.WithLabelValues("in"),
		out:  m.bytes.WithLabelValues("out"),
	}
}

type countingConn struct {
	net.Conn
	in, out prometheus.Counter
}

func (c *countingConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.in.Add(float64(n))
	}
	return n, err
}

func (c *countingConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if n > 0 {
		c.out.Add(float64(n))
	}
	return n, err
}

// ServeMetrics exposes m on addr under /metrics until ctx is cancelled.
func ServeMetrics(ctx context.Context, addr string, m *Metrics, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.InfoMsg("Serving metrics on http://%s/metrics\n", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}
