package dispatch

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"

	"EconAgent/internal/agent"
	xerrors "EconAgent/internal/errors"
	"EconAgent/internal/observability/metrics"
	"EconAgent/internal/portfolio"
	"EconAgent/internal/registry"
	"EconAgent/internal/wallet"
	"EconAgent/pkg/logger"
)

// Dispatcher 将请求路由到调用方专属的 Agent，并把结果规范化为统一响应包。
type Dispatcher struct {
	agents      registry.Store
	chain       string
	chainParams wallet.ChainParams
	log         *slog.Logger
}

// Option 定义可选的 Dispatcher 配置。
type Option func(*Dispatcher)

// WithChain 设置新建 Agent 钱包使用的链及其交易默认参数。
func WithChain(chain string, params wallet.ChainParams) Option {
	return func(d *Dispatcher) {
		d.chain = chain
		d.chainParams = params
	}
}

// New 创建一个 Dispatcher。
func New(agents registry.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		agents:      agents,
		chain:       wallet.DefaultChain,
		chainParams: wallet.DefaultParams(),
		log:         logger.Named("dispatch"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Handle 处理一个请求并返回响应包。任何内部异常都会被捕获并转换为
// INTERNAL 错误响应，调度路径绝不向上抛出。
func (d *Dispatcher) Handle(ctx context.Context, req Request) (env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("请求处理发生异常", slog.Any("panic", r), slog.String("operation", string(req.Operation)))
			env = failure(xerrors.New(xerrors.CodeInternal, fmt.Sprintf("%v", r)), nil)
		}
		metrics.ObserveDispatch(string(req.Operation), env.Status())
	}()

	if d.agents == nil {
		return failure(xerrors.New(xerrors.CodeInitializationFailure, "调度器未配置 Agent 存储"), nil)
	}

	switch req.Operation {
	case OpCreate:
		return d.handleCreate(ctx, req)
	case OpAddTransaction:
		return d.handleAddTransaction(ctx, req)
	case OpTokenBalance:
		return d.handleTokenBalance(ctx, req)
	case OpPortfolioValue:
		return d.handlePortfolioValue(ctx, req)
	case OpSignTransaction:
		return d.handleSignTransaction(ctx, req)
	default:
		return failure(xerrors.New(CodeUnknownOperation,
			fmt.Sprintf("Invalid operation: %s", req.Operation)),
			map[string]any{"operation": string(req.Operation)})
	}
}

// handleCreate 解析或创建调用方专属的 Agent，并合并初始持仓。
// 对同一调用方重复执行是幂等的：返回同一个 agent_id。
func (d *Dispatcher) handleCreate(ctx context.Context, req Request) Envelope {
	ag, created, err := d.agents.GetOrCreate(ctx, req.CallerKey, func() (*agent.Agent, error) {
		return agent.New(agent.WithGeneratedWallet(d.chain, d.chainParams))
	})
	if err != nil {
		return failure(err, nil)
	}

	initial := toFloatMap(req.Arguments["initial_holdings"])
	if len(initial) > 0 {
		if holdings := ag.Holdings(); holdings != nil {
			holdings.Seed(initial)
		}
	}

	if created {
		d.log.Info("已创建 Agent",
			slog.String("agent_id", ag.ID()),
			slog.String("caller_key", req.CallerKey),
			slog.String("chain", d.chain))
	}

	return success(map[string]any{
		"agent_id": ag.ID(),
		"wallet":   ag.WalletSnapshot(),
		"holdings": ag.HoldingsSnapshot(),
	})
}

// handleAddTransaction 在触及 Agent 之前按顺序完成全部校验。
// 校验失败立即短路返回错误响应，不会写入账本。
func (d *Dispatcher) handleAddTransaction(ctx context.Context, req Request) Envelope {
	ag, env := d.resolve(ctx, req.CallerKey)
	if env != nil {
		return env
	}

	tx := req.Arguments
	if tx == nil {
		return failure(xerrors.New(CodeInvalidTransaction,
			"Invalid transaction data - must include type, symbol and amount"), nil)
	}
	for _, key := range []string{"type", "symbol", "amount"} {
		if _, ok := tx[key]; !ok {
			return failure(xerrors.New(CodeInvalidTransaction,
				"Invalid transaction data - must include type, symbol and amount"), nil)
		}
	}

	symbol, ok := tx["symbol"].(string)
	if !ok {
		return failure(xerrors.New(CodeInvalidTransaction, "Transaction symbol must be a string"),
			map[string]any{"transaction": tx})
	}
	amount, ok := toFloat(tx["amount"])
	if !ok {
		return failure(xerrors.New(CodeInvalidTransaction, "Transaction amount must be a number"),
			map[string]any{"transaction": tx})
	}

	txType, _ := tx["type"].(string)
	if !portfolio.IsValidType(portfolio.Type(txType)) {
		return failure(xerrors.New(CodeInvalidTransactionType,
			"Invalid transaction type - only withdraw and deposit allowed"),
			map[string]any{"transaction": tx})
	}

	// 余额检查只在金额为负时触发：正金额的 trade/withdraw 会完全绕过它。
	// 这是沿用的既有行为，待产品澄清前不得修正。
	if (txType == string(portfolio.TypeWithdraw) || txType == string(portfolio.TypeTrade)) && amount < 0 {
		required := math.Abs(amount)
		current := ag.TokenBalance(symbol)
		if current < required {
			return failure(xerrors.New(CodeInsufficientBalance,
				fmt.Sprintf("Insufficient %s balance. Have %v, need %v", symbol, current, required),
				xerrors.WithMetadata("symbol", symbol),
				xerrors.WithMetadata("available", fmt.Sprintf("%v", current)),
				xerrors.WithMetadata("required", fmt.Sprintf("%v", required))),
				map[string]any{"transaction": tx})
		}
	}

	metadata, _ := tx["metadata"].(map[string]any)
	ag.AddTransaction(portfolio.Transaction{
		Type:     portfolio.Type(txType),
		Symbol:   symbol,
		Amount:   amount,
		Metadata: metadata,
	})

	logger.Audit().Info("transaction recorded",
		slog.String("agent_id", ag.ID()),
		slog.String("caller_key", req.CallerKey),
		slog.String("type", txType),
		slog.String("symbol", symbol),
		slog.Float64("amount", amount))

	return success(map[string]any{"transaction": tx})
}

func (d *Dispatcher) handleTokenBalance(ctx context.Context, req Request) Envelope {
	ag, env := d.resolve(ctx, req.CallerKey)
	if env != nil {
		return env
	}

	symbol, _ := req.Arguments["symbol"].(string)
	return success(map[string]any{
		"symbol":  symbol,
		"balance": ag.TokenBalance(symbol),
	})
}

func (d *Dispatcher) handlePortfolioValue(ctx context.Context, req Request) Envelope {
	ag, env := d.resolve(ctx, req.CallerKey)
	if env != nil {
		return env
	}

	priceFeeds := toFloatMap(req.Arguments["price_feeds"])
	defaultPrice := 0.0
	if raw, ok := req.Arguments["default_price"]; ok {
		price, ok := toFloat(raw)
		if !ok {
			return failure(xerrors.New(xerrors.CodeInvalidArgument, "default_price must be a number"), nil)
		}
		defaultPrice = price
	}

	return success(map[string]any{
		"value": ag.PortfolioValue(priceFeeds, defaultPrice),
	})
}

func (d *Dispatcher) handleSignTransaction(ctx context.Context, req Request) Envelope {
	ag, env := d.resolve(ctx, req.CallerKey)
	if env != nil {
		return env
	}

	signed := ag.SignTransaction(req.Arguments)
	if len(signed) == 0 {
		return failure(xerrors.New(CodeSignFailure, "Failed to sign transaction"), nil)
	}
	return success(signed)
}

// resolve 返回调用方已初始化的 Agent；未初始化时返回错误响应。
func (d *Dispatcher) resolve(ctx context.Context, callerKey string) (*agent.Agent, Envelope) {
	ag, err := d.agents.Get(ctx, callerKey)
	if err != nil {
		if stdErrors.Is(err, registry.ErrAgentNotFound) {
			return nil, failure(xerrors.New(CodeNotInitialized,
				"Agent not initialized. Call create first."), nil)
		}
		return nil, failure(err, nil)
	}
	return ag, nil
}

// toFloat 将 JSON 解码或 SDK 直接传入的数值统一为 float64。
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// toFloatMap 将符号到数值的任意映射转换为 map[string]float64，
// 非数值条目被忽略。输入不是映射时返回 nil。
func toFloatMap(value any) map[string]float64 {
	switch raw := value.(type) {
	case map[string]float64:
		clone := make(map[string]float64, len(raw))
		for symbol, amount := range raw {
			clone[symbol] = amount
		}
		return clone
	case map[string]any:
		result := make(map[string]float64, len(raw))
		for symbol, amount := range raw {
			if f, ok := toFloat(amount); ok {
				result[symbol] = f
			}
		}
		return result
	default:
		return nil
	}
}
