package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type requestKey struct {
	handler string
	method  string
	code    string
}

type dispatchKey struct {
	operation string
	status    string
}

type latencyKey struct {
	handler string
	method  string
}

type histogram struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type collector struct {
	mu       sync.Mutex
	requests map[requestKey]uint64
	dispatch map[dispatchKey]uint64
	latency  map[latencyKey]*histogram
}

var defaultCollector = &collector{
	requests: make(map[requestKey]uint64),
	dispatch: make(map[dispatchKey]uint64),
	latency:  make(map[latencyKey]*histogram),
}

// ObserveHTTPRequest records metrics about an HTTP request lifecycle.
func ObserveHTTPRequest(handler, method string, status int, duration time.Duration) {
	c := defaultCollector
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests[requestKey{handler: handler, method: method, code: strconv.Itoa(status)}]++

	key := latencyKey{handler: handler, method: method}
	hist := c.latency[key]
	if hist == nil {
		hist = newHistogram()
		c.latency[key] = hist
	}
	hist.observe(duration.Seconds())
}

// ObserveDispatch counts dispatched agent operations by outcome status.
func ObserveDispatch(operation, status string) {
	c := defaultCollector
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch[dispatchKey{operation: operation, status: status}]++
}

func newHistogram() *histogram {
	buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) observe(value float64) {
	h.count++
	h.sum += value
	for idx, bound := range h.buckets {
		if value <= bound {
			for i := idx; i < len(h.counts); i++ {
				h.counts[i]++
			}
			break
		}
	}
	// Values above the last bound only show up in the +Inf bucket via h.count.
}

// Handler exposes the metrics in Prometheus text exposition format.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = fmt.Fprint(w, defaultCollector.render())
	})
}

func (c *collector) render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var builder strings.Builder
	builder.Grow(1024)

	reqKeys := make([]requestKey, 0, len(c.requests))
	for key := range c.requests {
		reqKeys = append(reqKeys, key)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].handler != reqKeys[j].handler {
			return reqKeys[i].handler < reqKeys[j].handler
		}
		if reqKeys[i].method != reqKeys[j].method {
			return reqKeys[i].method < reqKeys[j].method
		}
		return reqKeys[i].code < reqKeys[j].code
	})
	builder.WriteString("# HELP econagent_http_requests_total Total number of HTTP requests processed.\n")
	builder.WriteString("# TYPE econagent_http_requests_total counter\n")
	for _, key := range reqKeys {
		builder.WriteString(fmt.Sprintf("econagent_http_requests_total{handler=\"%s\",method=\"%s\",code=\"%s\"} %d\n",
			escape(key.handler), escape(key.method), escape(key.code), c.requests[key]))
	}

	dispKeys := make([]dispatchKey, 0, len(c.dispatch))
	for key := range c.dispatch {
		dispKeys = append(dispKeys, key)
	}
	sort.Slice(dispKeys, func(i, j int) bool {
		if dispKeys[i].operation != dispKeys[j].operation {
			return dispKeys[i].operation < dispKeys[j].operation
		}
		return dispKeys[i].status < dispKeys[j].status
	})
	builder.WriteString("# HELP econagent_dispatch_operations_total Total number of dispatched agent operations by outcome.\n")
	builder.WriteString("# TYPE econagent_dispatch_operations_total counter\n")
	for _, key := range dispKeys {
		builder.WriteString(fmt.Sprintf("econagent_dispatch_operations_total{operation=\"%s\",status=\"%s\"} %d\n",
			escape(key.operation), escape(key.status), c.dispatch[key]))
	}

	latKeys := make([]latencyKey, 0, len(c.latency))
	for key := range c.latency {
		latKeys = append(latKeys, key)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].handler != latKeys[j].handler {
			return latKeys[i].handler < latKeys[j].handler
		}
		return latKeys[i].method < latKeys[j].method
	})
	builder.WriteString("# HELP econagent_http_request_duration_seconds HTTP request duration in seconds.\n")
	builder.WriteString("# TYPE econagent_http_request_duration_seconds histogram\n")
	for _, key := range latKeys {
		hist := c.latency[key]
		for idx, bound := range hist.buckets {
			builder.WriteString(fmt.Sprintf("econagent_http_request_duration_seconds_bucket{handler=\"%s\",method=\"%s\",le=\"%s\"} %d\n",
				escape(key.handler), escape(key.method), formatFloat(bound), hist.counts[idx]))
		}
		builder.WriteString(fmt.Sprintf("econagent_http_request_duration_seconds_bucket{handler=\"%s\",method=\"%s\",le=\"+Inf\"} %d\n",
			escape(key.handler), escape(key.method), hist.count))
		builder.WriteString(fmt.Sprintf("econagent_http_request_duration_seconds_sum{handler=\"%s\",method=\"%s\"} %s\n",
			escape(key.handler), escape(key.method), formatFloat(hist.sum)))
		builder.WriteString(fmt.Sprintf("econagent_http_request_duration_seconds_count{handler=\"%s\",method=\"%s\"} %d\n",
			escape(key.handler), escape(key.method), hist.count))
	}

	return builder.String()
}

func escape(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return strings.ReplaceAll(value, "\n", "")
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// StartServer launches a standalone HTTP server exposing the /metrics endpoint.
func StartServer(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("metrics address is empty")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
