package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"EconAgent/internal/dispatch"
	"EconAgent/internal/pricing"
	"EconAgent/internal/registry"
)

func newTestServer(t *testing.T, prices pricing.Provider) *Server {
	t.Helper()
	dispatcher := dispatch.New(registry.NewMemoryStore())
	return NewServer(":0", dispatcher, prices)
}

func postInvoke(t *testing.T, handler http.Handler, body string) dispatch.Envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoke", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}
	var env dispatch.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestInvokeCreateAndBalance(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	env := postInvoke(t, handler, `{
  "operation": "create",
  "caller_key": "caller-a",
  "arguments": {"initial_holdings": {"ETH": 1.5}}
}`)
	if env.Status() != "success" {
		t.Fatalf("create failed: %+v", env)
	}
	if _, ok := env["agent_id"].(string); !ok {
		t.Fatalf("missing agent_id: %+v", env)
	}

	env = postInvoke(t, handler, `{
  "operation": "get_token_balance",
  "caller_key": "caller-a",
  "arguments": {"symbol": "ETH"}
}`)
	if env.Status() != "success" {
		t.Fatalf("balance failed: %+v", env)
	}
	if balance, _ := env["balance"].(float64); balance != 1.5 {
		t.Fatalf("unexpected balance: %+v", env)
	}
}

func TestInvokeErrorStaysHTTP200(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	env := postInvoke(t, handler, `{
  "operation": "get_token_balance",
  "caller_key": "caller-b",
  "arguments": {"symbol": "ETH"}
}`)
	if env.Status() != "error" {
		t.Fatalf("expected error envelope: %+v", env)
	}
	if env["message"] != "Agent not initialized. Call create first." {
		t.Fatalf("unexpected message: %+v", env)
	}
}

func TestInvokeRejectsBadInput(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoke", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET should be rejected, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/invoke", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body should be rejected, got %d", rec.Code)
	}
}

func TestPricesEndpoint(t *testing.T) {
	provider := pricing.NewStaticProvider(map[string]float64{"ETH": 2000})
	handler := newTestServer(t, provider).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var feeds map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &feeds); err != nil {
		t.Fatalf("decode feeds: %v", err)
	}
	if feeds["ETH"] != 2000 {
		t.Fatalf("unexpected feeds: %+v", feeds)
	}
}

func TestPricesWithoutProvider(t *testing.T) {
	handler := newTestServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without provider, got %d", rec.Code)
	}
}
