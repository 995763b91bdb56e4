package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"EconAgent/internal/dispatch"
	"EconAgent/internal/observability/metrics"
	"EconAgent/internal/pricing"
)

// Server 负责暴露 REST 接口，供外部驱动经济代理执行操作。
type Server struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	prices     pricing.Provider
}

// NewServer 构造 API 服务实例。prices 可以为 nil，此时价格接口返回 404。
func NewServer(addr string, dispatcher *dispatch.Dispatcher, prices pricing.Provider) *Server {
	return &Server{addr: addr, dispatcher: dispatcher, prices: prices}
}

// Handler 返回挂载了全部路由的处理器，便于测试复用。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/invoke", s.handleInvoke)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	return mux
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	// 配置 HTTP 服务器。
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 启动服务器并监听关闭信号。
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// handleInvoke 处理统一的操作入口。响应体总是调度器返回的响应包，
// HTTP 状态码恒为 200，错误通过包内的 status/code 字段表达。
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		http.Error(w, "仅支持 POST", http.StatusMethodNotAllowed)
		metrics.ObserveHTTPRequest("invoke", r.Method, http.StatusMethodNotAllowed, time.Since(start))
		return
	}
	if s.dispatcher == nil {
		http.Error(w, "调度器未初始化", http.StatusServiceUnavailable)
		metrics.ObserveHTTPRequest("invoke", r.Method, http.StatusServiceUnavailable, time.Since(start))
		return
	}

	// 解析请求体。
	var req dispatch.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		metrics.ObserveHTTPRequest("invoke", r.Method, http.StatusBadRequest, time.Since(start))
		return
	}

	env := s.dispatcher.Handle(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
	metrics.ObserveHTTPRequest("invoke", r.Method, http.StatusOK, time.Since(start))
}

// handlePrices 返回运维配置的静态价格表。
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		metrics.ObserveHTTPRequest("prices", r.Method, http.StatusMethodNotAllowed, time.Since(start))
		return
	}
	if s.prices == nil {
		http.Error(w, "未配置价格表", http.StatusNotFound)
		metrics.ObserveHTTPRequest("prices", r.Method, http.StatusNotFound, time.Since(start))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.prices.Feeds())
	metrics.ObserveHTTPRequest("prices", r.Method, http.StatusOK, time.Since(start))
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	// 包装处理器以检查上下文状态。
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
