package wallet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEnsureValidGeneratesKeypair(t *testing.T) {
	w := New("", ChainParams{})

	if err := w.EnsureValid(); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}
	if w.Chain != DefaultChain {
		t.Fatalf("unexpected chain: %q", w.Chain)
	}
	if w.PrivateKey == "" || w.Address == "" {
		t.Fatalf("expected generated keypair, got %+v", w)
	}
	if !strings.HasPrefix(w.PrivateKey, "0x") {
		t.Fatalf("private key should be hex encoded: %q", w.PrivateKey)
	}
	if !common.IsHexAddress(w.Address) {
		t.Fatalf("invalid address: %q", w.Address)
	}
}

func TestEnsureValidIsIdempotent(t *testing.T) {
	w := New("ethereum", DefaultParams())
	if err := w.EnsureValid(); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}
	addr, key := w.Address, w.PrivateKey

	if err := w.EnsureValid(); err != nil {
		t.Fatalf("second ensure valid: %v", err)
	}
	if w.Address != addr || w.PrivateKey != key {
		t.Fatalf("keypair changed on second call")
	}
}

func TestSignTransactionAppliesDefaults(t *testing.T) {
	w := New("ethereum", DefaultParams())
	if err := w.EnsureValid(); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}

	signed := w.SignTransaction(map[string]any{
		"to":    "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"value": 0.5,
	})

	if signed["signed"] != true {
		t.Fatalf("expected signed flag, got %+v", signed)
	}
	if signed["address"] != w.Address {
		t.Fatalf("unexpected address: %v", signed["address"])
	}
	if signed["status"] != "signed" || signed["network"] != "ethereum" {
		t.Fatalf("unexpected envelope fields: %+v", signed)
	}

	tx, ok := signed["tx_data"].(map[string]any)
	if !ok {
		t.Fatalf("tx_data missing: %+v", signed)
	}
	if tx["from"] != w.Address {
		t.Fatalf("unexpected from: %v", tx["from"])
	}
	if tx["to"] != "0x742d35Cc6634C0532925a3b844Bc454e4438f44e" {
		t.Fatalf("unexpected to: %v", tx["to"])
	}
	if tx["value"] != 0.5 {
		t.Fatalf("supplied value should be kept: %v", tx["value"])
	}
	if tx["data"] != "0x" || tx["chainId"] != int64(1) || tx["nonce"] != 0 {
		t.Fatalf("unexpected defaults: %+v", tx)
	}
	if tx["gas"] != int64(21000) {
		t.Fatalf("unexpected gas default: %v", tx["gas"])
	}
	if tx["maxFeePerGas"] != int64(20_000_000_000) || tx["maxPriorityFeePerGas"] != int64(1_500_000_000) {
		t.Fatalf("unexpected fee defaults: %+v", tx)
	}
}

func TestSignTransactionNilPayload(t *testing.T) {
	w := New("ethereum", DefaultParams())
	if err := w.EnsureValid(); err != nil {
		t.Fatalf("ensure valid: %v", err)
	}

	signed := w.SignTransaction(nil)
	tx, ok := signed["tx_data"].(map[string]any)
	if !ok {
		t.Fatalf("tx_data missing for nil payload: %+v", signed)
	}
	if tx["to"] != nil {
		t.Fatalf("expected nil to, got %v", tx["to"])
	}
	if tx["value"] != 0 || tx["data"] != "0x" {
		t.Fatalf("unexpected defaults for nil payload: %+v", tx)
	}
}

func TestLoadChainDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chains.yaml")
	content := []byte(`chains:
  ethereum:
    chain_id: 1
    gas: 21000
    max_fee_per_gas: 20000000000
    max_priority_fee_per_gas: 1500000000
    description: mainnet
  base:
    chain_id: 8453
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write chains file: %v", err)
	}

	defs, err := LoadChainDefinitions(path)
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}

	eth := defs.ParamsFor("ethereum")
	if eth.ChainID != 1 || eth.Gas != 21000 {
		t.Fatalf("unexpected ethereum params: %+v", eth)
	}

	base := defs.ParamsFor("base")
	if base.ChainID != 8453 {
		t.Fatalf("unexpected base chain id: %+v", base)
	}
	if base.Gas != 21000 {
		t.Fatalf("missing fields should fall back to defaults: %+v", base)
	}

	unknown := defs.ParamsFor("solana")
	if unknown != DefaultParams() {
		t.Fatalf("unknown chain should use defaults: %+v", unknown)
	}
}

func TestLoadChainDefinitionsEmptyPath(t *testing.T) {
	defs, err := LoadChainDefinitions("")
	if err != nil {
		t.Fatalf("empty path should not fail: %v", err)
	}
	if len(defs.Chains) != 0 {
		t.Fatalf("expected empty definitions, got %+v", defs)
	}
}
