package portfolio

import (
	"math"
	"testing"
)

func TestRecordKeepsBalancesInSyncWithHistory(t *testing.T) {
	p := New()

	txs := []Transaction{
		{Type: TypeDeposit, Symbol: "ETH", Amount: 2.0},
		{Type: TypeTrade, Symbol: "NAPTHA", Amount: 50.0},
		{Type: TypeTrade, Symbol: "USDC", Amount: -500.0},
		{Type: TypeReward, Symbol: "NAPTHA", Amount: 10.0},
		{Type: TypeWithdraw, Symbol: "ETH", Amount: -0.5},
	}
	for _, tx := range txs {
		p.Record(tx)
	}

	sums := make(map[string]float64)
	for _, tx := range p.History() {
		sums[tx.Symbol] += tx.Amount
	}
	for symbol, want := range sums {
		if got := p.Balance(symbol); math.Abs(got-want) > 1e-9 {
			t.Fatalf("balance(%s) = %v, history sum = %v", symbol, got, want)
		}
	}
	if len(p.History()) != len(txs) {
		t.Fatalf("expected %d history entries, got %d", len(txs), len(p.History()))
	}
}

func TestSeedDoesNotTouchHistory(t *testing.T) {
	p := New()
	p.Seed(map[string]float64{"ETH": 1.0, "NAPTHA": 100.0})

	if got := p.Balance("ETH"); got != 1.0 {
		t.Fatalf("seeded balance: %v", got)
	}
	if len(p.History()) != 0 {
		t.Fatalf("seeding must not create history entries: %+v", p.History())
	}

	// Seeding again overwrites per symbol and leaves others alone.
	p.Seed(map[string]float64{"ETH": 3.0})
	if got := p.Balance("ETH"); got != 3.0 {
		t.Fatalf("reseeded balance: %v", got)
	}
	if got := p.Balance("NAPTHA"); got != 100.0 {
		t.Fatalf("untouched balance changed: %v", got)
	}
}

func TestBalanceUnknownSymbolIsZero(t *testing.T) {
	p := New()
	if got := p.Balance("DOGE"); got != 0 {
		t.Fatalf("unseen symbol should be 0, got %v", got)
	}
}

func TestRecordWithoutSymbolOnlyAppendsHistory(t *testing.T) {
	p := New()
	p.Record(Transaction{Type: TypeDeposit, Amount: 5})

	if len(p.History()) != 1 {
		t.Fatalf("expected one history entry")
	}
	if balances := p.Balances(); len(balances) != 0 {
		t.Fatalf("balances should be untouched: %+v", balances)
	}
}

func TestTotalValue(t *testing.T) {
	p := New()
	p.Seed(map[string]float64{"ETH": 1.0, "NAPTHA": 100.0, "USDC": 1000.0})

	got := p.TotalValue(map[string]float64{"ETH": 2000, "NAPTHA": 10}, 0)
	if math.Abs(got-3000.0) > 1e-9 {
		t.Fatalf("value with feeds = %v, want 3000", got)
	}

	got = p.TotalValue(nil, 1.0)
	if math.Abs(got-1101.0) > 1e-9 {
		t.Fatalf("value with default price = %v, want 1101", got)
	}

	got = p.TotalValue(nil, 0)
	if got != 0 {
		t.Fatalf("value with zero default = %v, want 0", got)
	}
}

func TestIsValidType(t *testing.T) {
	for _, valid := range []Type{TypeWithdraw, TypeReward, TypeDeposit, TypeTrade} {
		if !IsValidType(valid) {
			t.Fatalf("type %q should be valid", valid)
		}
	}
	if IsValidType("invalid") {
		t.Fatalf("unexpected valid type")
	}
}
