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

// Command queryexecd runs the query execution core as a standalone daemon:
// it loads configuration, wires up tracing and metrics, and serves a debug
// HTTP endpoint (spec section 6, SPEC_FULL's [AMBIENT] Metrics) while
// accepting queries on stdin, one raw query string per line, the simplest
// possible external interface for a module whose real client protocol
// (gRPC/HTTP query API) is explicitly out of this core's scope.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	docopt "github.com/docopt/docopt-go"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/jyz0309/nebula/config"
	"github.com/jyz0309/nebula/executor"
	"github.com/jyz0309/nebula/metrics"
	"github.com/jyz0309/nebula/optimizer"
	"github.com/jyz0309/nebula/plan"
	"github.com/jyz0309/nebula/service"
	"github.com/jyz0309/nebula/session"
	"github.com/jyz0309/nebula/status"
	"github.com/jyz0309/nebula/util/clocks"
	"github.com/jyz0309/nebula/util/debuglog"
	"github.com/jyz0309/nebula/util/graphviz"
	"github.com/jyz0309/nebula/util/profiling"
	"github.com/jyz0309/nebula/util/random"
	"github.com/jyz0309/nebula/util/tracing"
	"github.com/jyz0309/nebula/util/web"
)

const usage = `queryexecd runs the query execution core.

Usage:
  queryexecd [--cfg CFGFILE]

Options:
  --cfg CFGFILE  Path to a JSON configuration file [default: config.json].
`

type cliOptions struct {
	CfgFile string `docopt:"--cfg"`
}

func parseArgs(args []string) (*cliOptions, error) {
	parsed, err := docopt.ParseArgs(usage, args, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing command-line arguments: %v", err)
	}
	var opts cliOptions
	if err := parsed.Bind(&opts); err != nil {
		return nil, fmt.Errorf("error binding command-line arguments: %v", err)
	}
	return &opts, nil
}

func main() {
	debuglog.Configure(debuglog.Options{})
	random.SeedMath()

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(opts.CfgFile)
	if err != nil {
		log.WithError(err).Warnf("unable to load %v, using defaults", opts.CfgFile)
		defaultCfg := config.Default()
		cfg = &defaultCfg
	}

	tracer, err := tracing.New("queryexecd", cfg.Tracing)
	if err != nil {
		log.Fatalf("unable to initialize distributed tracing: %v", err)
	}
	defer tracer.Close()

	mg := metrics.Default
	registry := service.NewRegistry()

	if cfg.Metrics.ListenAddr != "" {
		go serveDebugHTTP(cfg.Metrics.ListenAddr, registry)
	}

	sess := session.New(random.SecureInt64(), "cli")
	execRegistry := executor.NewDefaultRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	go waitForQuit(cancel)

	runREPL(ctx, os.Stdin, sess, execRegistry, mg, *cfg, registry)
	log.Info("queryexecd exiting")
}

// runREPL executes one query per line of stdin until ctx is cancelled or
// stdin closes. It stands in for the out-of-scope client protocol: enough
// of an external interface to drive service.Instance end to end.
func runREPL(ctx context.Context, in *os.File, sess *session.Session, execRegistry *executor.Registry, mg *metrics.Graph, cfg config.Config, reg *service.Registry) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		rawQuery := scanner.Text()
		if rawQuery == "" {
			continue
		}
		id := random.SecureInt64()
		instance := service.New(id, rawQuery, sess, stubParser, stubValidator, stubOptimizer{}, execRegistry, mg, cfg, clocks.Wall)
		reg.Register(instance)
		resp := instance.Execute(ctx)
		reg.Unregister(id)
		log.WithFields(log.Fields{
			"query_id":   id,
			"error_code": resp.ErrorCode,
			"latency_us": resp.LatencyInUs,
		}).Info("query finished")
	}
}

// serveDebugHTTP exposes /metrics and /debug/plan/:id the way
// api/impl/http.go exposes its own diagnostic endpoints, matching
// SPEC_FULL's [AMBIENT] Metrics section.
func serveDebugHTTP(addr string, reg *service.Registry) {
	m := httprouter.New()
	m.Handler("GET", "/metrics", promhttp.Handler())
	m.GET("/debug/plan/:id", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var id int64
		if _, err := fmt.Sscanf(ps.ByName("id"), "%d", &id); err != nil {
			web.WriteError(w, http.StatusBadRequest, "invalid id: %v", err)
			return
		}
		instance := reg.Get(id)
		if instance == nil {
			http.NotFound(w, r)
			return
		}
		desc := instance.Explain()
		if desc == nil {
			web.WriteError(w, http.StatusServiceUnavailable, "plan not ready yet")
			return
		}
		for _, d := range desc {
			fmt.Fprintf(w, "%s(%s) <- %v\n", d.Name, d.OutVar, d.Inputs)
		}
	})
	m.POST("/debug/profile", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		dur := 10 * time.Second
		if s := r.URL.Query().Get("d"); s != "" {
			parsed, err := time.ParseDuration(s)
			if err != nil {
				web.WriteError(w, http.StatusBadRequest, "invalid duration %q: %v", s, err)
				return
			}
			dur = parsed
		}
		filename := path.Join(os.TempDir(), "queryexecd.cpu.prof")
		if err := profiling.CPUProfileForDuration(filename, dur); err != nil {
			web.WriteError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		web.Write(w, fmt.Sprintf("profiling for %v to %v\n", dur, filename))
	})
	m.GET("/debug/plan/:id/graphviz", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var id int64
		if _, err := fmt.Sscanf(ps.ByName("id"), "%d", &id); err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		instance := reg.Get(id)
		if instance == nil {
			http.NotFound(w, r)
			return
		}
		desc := instance.Explain()
		if desc == nil {
			http.Error(w, "plan not ready yet", http.StatusServiceUnavailable)
			return
		}
		filename := path.Join(os.TempDir(), fmt.Sprintf("plan-%d.pdf", id))
		if err := graphviz.Create(filename, func(out io.Writer) { writeDot(out, desc) }, graphviz.Options{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "wrote %v\n", filename)
	})
	log.Infof("serving debug HTTP on %v", addr)
	if err := http.ListenAndServe(addr, m); err != nil {
		log.WithError(err).Error("debug HTTP server exited")
	}
}

// writeDot renders a plan's Explain rows as a Graphviz spec: one node per
// row, one edge per data-dependency input, in the style of the teacher's
// space.Graphviz method that api's failed-planner path dumps for debugging.
func writeDot(w io.Writer, rows []*plan.Description) {
	fmt.Fprintln(w, "digraph plan {")
	for _, row := range rows {
		fmt.Fprintf(w, "  n%d [label=\"%s\\n%s\"];\n", row.ID, row.Name, row.OutVar)
		for _, in := range row.Inputs {
			fmt.Fprintf(w, "  n%d -> n%d;\n", in, row.ID)
		}
	}
	fmt.Fprintln(w, "}")
}

func waitForQuit(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("received shutdown signal")
	cancel()
}

// stubParser/stubValidator/stubOptimizer stand in for the out-of-scope
// parser, validator, and optimizer (spec section 1's Non-goals: "query
// planning itself" is excluded). They let this binary demonstrate the
// full Query Instance lifecycle without depending on a real AkutanQL-style
// grammar or cost-based planner.
func stubParser(ctx context.Context, rawQuery string) (optimizer.Sentence, status.Status) {
	return nil, status.New(status.NotSupported, "queryexecd has no parser wired; see storageclient/optimizer for the real collaborators")
}

func stubValidator(ctx context.Context, sentence optimizer.Sentence) status.Status {
	return status.OKStatus
}

type stubOptimizer struct{}

func (stubOptimizer) FindBestPlan(ctx context.Context, sentence optimizer.Sentence) (*plan.Plan, status.Status) {
	return nil, status.New(status.NotSupported, "queryexecd has no optimizer wired")
}
