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

// Package config holds the configuration knobs for the query execution
// core: whether to emit space-labeled metric variants and the slow-query
// threshold, plus the metrics/tracing sub-configuration needed to wire up
// the ambient stack (see spec section 6).
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top level configuration for the query execution service.
type Config struct {
	// EnableSpaceLevelMetrics gates emission of the space-labeled metric
	// variants described in spec section 6. Off by default: most
	// deployments don't want per-space cardinality on their metrics.
	EnableSpaceLevelMetrics bool `json:"enable_space_level_metrics"`
	// SlowQueryThresholdUs is the microsecond latency above which a query
	// is counted and histogrammed as a slow query.
	SlowQueryThresholdUs uint64 `json:"slow_query_threshold_us"`
	// Metrics configures the Prometheus HTTP endpoint.
	Metrics Metrics `json:"metrics"`
	// Tracing configures the distributed tracer.
	Tracing Tracing `json:"tracing"`
}

// Metrics configures where the Prometheus handler is served.
type Metrics struct {
	// ListenAddr is the address the /metrics (and /debug/plan/:id) HTTP
	// handler binds to, e.g. ":9090". Empty disables the HTTP server.
	ListenAddr string `json:"listen_addr"`
}

// Tracing configures the opentracing/Jaeger tracer.
type Tracing struct {
	// ServiceName identifies this process to the tracing backend.
	ServiceName string `json:"service_name"`
	// SamplerParam is the Jaeger const-sampler parameter: any non-zero value
	// samples every trace, 0 samples none.
	SamplerParam float64 `json:"sampler_param"`
	// AgentHostPort is the Jaeger agent's host:port, e.g. "localhost:6831".
	AgentHostPort string `json:"agent_host_port"`
}

// Default returns a Config with the defaults used when no config file is
// supplied: space-level metrics off, a 200ms slow-query threshold.
func Default() Config {
	return Config{
		SlowQueryThresholdUs: 200 * 1000,
	}
}

// Load parses the configuration from the given JSON file. Upon success, it
// returns a non-nil configuration. Otherwise, it returns an error, which
// already includes the filename.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := bufio.NewReader(f)
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	cfg := new(Config)
	// This **Config double-pointer appears to be required to detect an
	// invalid input of "null". See Test_Load/file_contains_null.
	err = decoder.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error decoding JSON value in %v: %v", filename, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("loading %v resulted in nil config", filename)
	}
	if decoder.More() {
		return nil, fmt.Errorf("found unexpected data after config in %v", filename)
	}
	return cfg, nil
}

// Write marshals the configuration as JSON to the given file. It truncates
// the file if it already exists. It returns nil upon success. Otherwise, it
// returns an error, which already includes the filename.
func Write(cfg *Config, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "\t")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write %v: %v", filename, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write %v: %v", filename, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %v: %v", filename, err)
	}
	return nil
}
