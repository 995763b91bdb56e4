package agent

import (
	"sync"

	"github.com/google/uuid"

	"EconAgent/internal/portfolio"
	"EconAgent/internal/wallet"
)

// Agent 聚合钱包、投资组合与奖励账本，是系统的业务核心。
// id 在创建时分配且不可变；钱包与持仓仅在请求生成钱包时存在。
type Agent struct {
	id       string
	wallet   *wallet.Wallet
	holdings *portfolio.Portfolio

	mu          sync.Mutex
	rewards     []float64
	totalReward float64
}

// Option 定义可选的 Agent 配置。
type Option func(*config)

type config struct {
	generateWallet  bool
	chain           string
	chainParams     wallet.ChainParams
	initialHoldings map[string]float64
}

// WithGeneratedWallet 要求在创建时生成钱包与配套的投资组合。
func WithGeneratedWallet(chain string, params wallet.ChainParams) Option {
	return func(c *config) {
		c.generateWallet = true
		c.chain = chain
		c.chainParams = params
	}
}

// WithInitialHoldings 设置初始持仓。余额直接写入，不产生交易历史。
func WithInitialHoldings(holdings map[string]float64) Option {
	return func(c *config) {
		c.initialHoldings = holdings
	}
}

// New 创建一个 Agent。生成钱包失败是致命错误，直接返回给调用方。
func New(opts ...Option) (*Agent, error) {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ag := &Agent{id: uuid.NewString()}
	if cfg.generateWallet {
		w := wallet.New(cfg.chain, cfg.chainParams)
		if err := w.EnsureValid(); err != nil {
			return nil, err
		}
		ag.wallet = w
		ag.holdings = portfolio.New()
		if cfg.initialHoldings != nil {
			ag.holdings.Seed(cfg.initialHoldings)
		}
	}
	return ag, nil
}

// ID 返回 Agent 的唯一标识。
func (a *Agent) ID() string {
	return a.id
}

// AddReward 追加一笔奖励并累加总额。金额不做校验，允许为负。
func (a *Agent) AddReward(amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rewards = append(a.rewards, amount)
	a.totalReward += amount
}

// TotalReward 返回累计奖励。
func (a *Agent) TotalReward() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalReward
}

// Rewards 返回奖励流水的副本。
func (a *Agent) Rewards() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	rewards := make([]float64, len(a.rewards))
	copy(rewards, a.rewards)
	return rewards
}

// AddTransaction 将交易委托给持仓记录。没有持仓时静默忽略。
func (a *Agent) AddTransaction(tx portfolio.Transaction) {
	if a.holdings == nil {
		return
	}
	a.holdings.Record(tx)
}

// TokenBalance 返回指定符号的余额。没有持仓时返回 0。
func (a *Agent) TokenBalance(symbol string) float64 {
	if a.holdings == nil {
		return 0
	}
	return a.holdings.Balance(symbol)
}

// PortfolioValue 返回组合总价值。没有持仓时返回 0。
func (a *Agent) PortfolioValue(priceFeeds map[string]float64, defaultPrice float64) float64 {
	if a.holdings == nil {
		return 0
	}
	return a.holdings.TotalValue(priceFeeds, defaultPrice)
}

// SignTransaction 委托钱包签名。没有钱包时返回空结果。
func (a *Agent) SignTransaction(txData map[string]any) map[string]any {
	if a.wallet == nil {
		return nil
	}
	return a.wallet.SignTransaction(txData)
}

// Holdings 返回 Agent 持有的投资组合，可能为 nil。
func (a *Agent) Holdings() *portfolio.Portfolio {
	return a.holdings
}

// WalletSnapshot 返回钱包的序列化映射，没有钱包时为 nil。
func (a *Agent) WalletSnapshot() map[string]any {
	return a.wallet.Snapshot()
}

// HoldingsSnapshot 返回持仓的序列化映射，没有持仓时为 nil。
func (a *Agent) HoldingsSnapshot() map[string]any {
	return a.holdings.Snapshot()
}
