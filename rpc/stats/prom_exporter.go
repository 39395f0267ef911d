/*
Copyright (c) shv-go authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PrometheusExporter periodically snapshots a Stats and republishes it as
// Prometheus gauges on /metrics.
type PrometheusExporter struct {
	registry   *prometheus.Registry
	stats      *Stats
	listenPort int
	interval   time.Duration

	gauges map[string]prometheus.Gauge
}

// NewPrometheusExporter builds an exporter for stats, serving on listenPort
// and re-scraping the in-process counters every scrapeInterval.
func NewPrometheusExporter(stats *Stats, listenPort int, scrapeInterval time.Duration) *PrometheusExporter {
	return &PrometheusExporter{
		registry:   prometheus.NewRegistry(),
		stats:      stats,
		listenPort: listenPort,
		interval:   scrapeInterval,
		gauges:     make(map[string]prometheus.Gauge),
	}
}

// Start begins the scrape loop and serves /metrics; it blocks, so callers
// typically run it in its own goroutine.
func (e *PrometheusExporter) Start() error {
	go func() {
		for {
			e.scrape()
			time.Sleep(e.interval)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	log.Debugf("rpc stats exporter listening on :%d", e.listenPort)
	return http.ListenAndServe(fmt.Sprintf(":%d", e.listenPort), mux)
}

func (e *PrometheusExporter) set(name string, v int64) {
	g, ok := e.gauges[name]
	if !ok {
		g = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
		if err := e.registry.Register(g); err != nil {
			log.Errorf("rpc stats: registering metric %s: %v", name, err)
			return
		}
		e.gauges[name] = g
	}
	g.Set(float64(v))
}

func (e *PrometheusExporter) scrape() {
	snap := e.stats.Snapshot()
	e.set("shv_rpc_messages_sent_total", snap.MessagesSent)
	e.set("shv_rpc_messages_received_total", snap.MessagesReceived)
	e.set("shv_rpc_bytes_sent_total", snap.BytesSent)
	e.set("shv_rpc_bytes_received_total", snap.BytesReceived)
	e.set("shv_rpc_protocol_errors_total", snap.ProtocolErrors)
	e.set("shv_rpc_reconnects_total", snap.Reconnects)
	e.set("shv_rpc_login_state", snap.LoginState)
	e.set("shv_rpc_requests_pending", snap.RequestsPending)
	e.set("shv_rpc_request_timeouts_total", snap.RequestTimeouts)
}
