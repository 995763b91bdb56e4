package portfolio

import (
	"sync"
)

// Type 表示交易类型。
type Type string

const (
	TypeWithdraw Type = "withdraw"
	TypeReward   Type = "reward"
	TypeDeposit  Type = "deposit"
	TypeTrade    Type = "trade"
)

// IsValidType 检查给定的交易类型是否为支持的枚举值。
func IsValidType(t Type) bool {
	switch t {
	case TypeWithdraw, TypeReward, TypeDeposit, TypeTrade:
		return true
	default:
		return false
	}
}

// Transaction 描述一次影响余额的事件，记录后不可变更。
type Transaction struct {
	Type     Type           `json:"type"`
	Symbol   string         `json:"symbol"`
	Amount   float64        `json:"amount"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Portfolio 维护每个代币的余额与按序追加的交易历史。
type Portfolio struct {
	mu       sync.RWMutex
	balances map[string]float64
	history  []Transaction
}

// New 创建一个空的投资组合。
func New() *Portfolio {
	return &Portfolio{balances: make(map[string]float64)}
}

// Seed 直接写入初始余额，不产生交易历史。
// 按符号逐项覆盖，已有的其他符号余额保持不变。
func (p *Portfolio) Seed(balances map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for symbol, amount := range balances {
		p.balances[symbol] = amount
	}
}

// Record 将交易原样追加到历史，并同步调整对应符号的余额。
// 不带符号的交易只进入历史，不影响余额。记录阶段不做校验。
func (p *Portfolio) Record(tx Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx.Metadata = cloneMetadata(tx.Metadata)
	p.history = append(p.history, tx)
	if tx.Symbol != "" {
		p.balances[tx.Symbol] += tx.Amount
	}
}

// Balance 返回指定符号的当前余额，未出现过的符号余额为 0。
func (p *Portfolio) Balance(symbol string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balances[symbol]
}

// TotalValue 按价格映射计算组合总价值。
// 缺少报价的符号使用 defaultPrice 估值。
func (p *Portfolio) TotalValue(priceFeeds map[string]float64, defaultPrice float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	total := 0.0
	for symbol, balance := range p.balances {
		price, ok := priceFeeds[symbol]
		if !ok {
			price = defaultPrice
		}
		total += balance * price
	}
	return total
}

// Balances 返回当前余额的副本。
func (p *Portfolio) Balances() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	clone := make(map[string]float64, len(p.balances))
	for symbol, amount := range p.balances {
		clone[symbol] = amount
	}
	return clone
}

// History 返回交易历史的副本，保持追加顺序。
func (p *Portfolio) History() []Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	history := make([]Transaction, len(p.history))
	copy(history, p.history)
	for i := range history {
		history[i].Metadata = cloneMetadata(history[i].Metadata)
	}
	return history
}

// Snapshot 返回投资组合字段的普通映射，用于对外序列化。
func (p *Portfolio) Snapshot() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"token_balances":      p.Balances(),
		"transaction_history": p.History(),
	}
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]any, len(metadata))
	for key, value := range metadata {
		cloned[key] = value
	}
	return cloned
}
