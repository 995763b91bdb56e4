package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"EconAgent/sdk/go/econagent"
)

func main() {
	// 本示例用一个内存 HTTP 服务模拟 econagentd，演示 SDK 的典型调用序列。
	balances := map[string]float64{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/invoke", func(w http.ResponseWriter, r *http.Request) {
		var req econagent.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Operation {
		case "create":
			if seed, ok := req.Arguments["initial_holdings"].(map[string]any); ok {
				for symbol, amount := range seed {
					if f, ok := amount.(float64); ok {
						balances[symbol] = f
					}
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "agent_id": "agent-demo"})
		case "add_transaction":
			symbol, _ := req.Arguments["symbol"].(string)
			amount, _ := req.Arguments["amount"].(float64)
			balances[symbol] += amount
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "transaction": req.Arguments})
		case "get_token_balance":
			symbol, _ := req.Arguments["symbol"].(string)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "symbol": symbol, "balance": balances[symbol]})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "code": "UNKNOWN_OPERATION", "message": "Invalid operation"})
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := econagent.NewClient(srv.URL, "demo-workspace", srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	env, err := client.Create(ctx, map[string]float64{"ETH": 1.5})
	if err != nil {
		panic(err)
	}
	fmt.Printf("created agent %v\n", env.Fields["agent_id"])

	if _, err := client.AddTransaction(ctx, "reward", "NAPTHA", 100, map[string]any{"reason": "task"}); err != nil {
		panic(err)
	}

	balance, err := client.TokenBalance(ctx, "NAPTHA")
	if err != nil {
		panic(err)
	}
	fmt.Printf("NAPTHA balance: %v\n", balance)
}
