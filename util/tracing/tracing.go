// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing assists with reporting OpenTracing traces, backing the
// per-phase spans service.Instance.execute starts (spec section 4.5) and
// the per-node spans the scheduler attaches (spec section 4.4).
package tracing

import (
	"fmt"
	"strings"
	"sync"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	jaeger "github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"

	"github.com/jyz0309/nebula/config"
)

// Tracer reports OpenTracing traces to a Jaeger agent.
type Tracer struct {
	close func()
}

// New constructs a tracer and sets it as the global opentracing tracer. Call
// this early from cmd/queryexecd/main.go. Unlike the teacher's locator-based
// collector discovery (out of scope here - metadata/discovery is an explicit
// external collaborator, spec section 1), the agent address comes straight
// from cfg.AgentHostPort.
func New(serviceName string, cfg config.Tracing) (*Tracer, error) {
	if cfg.AgentHostPort == "" {
		log.Warn("Skipping Jaeger setup: no agent_host_port configured")
		return &Tracer{}, nil
	}
	jcfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: cfg.SamplerParam,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentHostPort,
		},
	}
	logger := (*logrusAdapter)(log.WithFields(log.Fields{"component": "jaeger"}))
	tracer, closer, err := jcfg.NewTracer(
		jaegercfg.Logger(logger),
		jaegercfg.ContribObserver(&contribObserver{}),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Jaeger tracer: %v", err)
	}
	opentracing.SetGlobalTracer(tracer)
	return &Tracer{
		close: func() {
			if err := closer.Close(); err != nil {
				log.WithError(err).Warn("Error shutting down Jaeger tracer")
			}
		},
	}, nil
}

// Close stops the Tracer and cleans up resources. Not thread-safe.
func (t *Tracer) Close() {
	if t.close != nil {
		t.close()
	}
	t.close = nil
}

type logrusAdapter log.Entry

func (l *logrusAdapter) Error(msg string) {
	(*log.Entry)(l).Error(strings.TrimSpace(msg))
}

func (l *logrusAdapter) Infof(msg string, args ...interface{}) {
	(*log.Entry)(l).Infof(strings.TrimSpace(msg), args...)
}

type contribObserver struct{}

// OnStartSpan implements jaeger.ContribObserver.
func (m *contribObserver) OnStartSpan(
	span opentracing.Span,
	operationName string,
	options opentracing.StartSpanOptions,
) (jaeger.ContribSpanObserver, bool) {
	return &spanObserver{span: span, operationName: operationName, start: options.StartTime}, true
}

// spanObserver implements jaeger.ContribSpanObserver.
type spanObserver struct {
	span          opentracing.Span
	start         time.Time
	operationName string

	metricLock sync.Mutex
	metric     Metric
}

func (o *spanObserver) OnSetOperationName(name string) {}

func (o *spanObserver) OnSetTag(key string, value interface{}) {
	if key == "metric" {
		if metric, ok := value.(Metric); ok {
			o.metricLock.Lock()
			o.metric = metric
			o.metricLock.Unlock()
		}
	}
}

func (o *spanObserver) OnFinish(options opentracing.FinishOptions) {
	dur := options.FinishTime.Sub(o.start)
	o.metricLock.Lock()
	if o.metric != nil {
		o.metric.Observe(dur.Seconds())
	}
	o.metricLock.Unlock()
}

// UpdateMetric arranges for metric to be updated with the span's duration,
// in seconds, when it finishes. service.Instance.execute tags its
// "optimize" span this way so optimizer_latency_us and the span agree on
// measured duration.
func UpdateMetric(span opentracing.Span, metric Metric) {
	span.SetTag("metric", stringableMetric{metric})
}

// Metric is satisfied by prometheus.Summary and prometheus.Histogram.
type Metric interface {
	prometheus.Metric
	Observe(float64)
}

type stringableMetric struct {
	Metric
}

func (metric stringableMetric) String() string {
	s := metric.Desc().String()
	s = strings.TrimPrefix(s, `Desc{fqName: "`)
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return ""
	}
	return s[:i]
}
