package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"EconAgent/internal/api"
	"EconAgent/internal/config"
	"EconAgent/internal/dispatch"
	"EconAgent/internal/observability/metrics"
	"EconAgent/internal/pricing"
	"EconAgent/internal/registry"
	"EconAgent/internal/wallet"
	"EconAgent/pkg/logger"
)

// main 是 econagentd 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("econagentd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("ECONAGENT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "econagent.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// 初始化日志与审计流。
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// 加载链参数定义。
	chains, err := wallet.LoadChainDefinitions(cfg.Wallet.ChainsPath)
	if err != nil {
		return err
	}

	// 构建 Agent 注册表。
	var agents registry.Store
	switch cfg.Registry.Driver {
	case "", "memory":
		agents = registry.NewMemoryStore()
	default:
		return fmt.Errorf("未知的注册表驱动: %s", cfg.Registry.Driver)
	}
	defer func() {
		if agents != nil {
			_ = agents.Close()
		}
	}()

	// 静态价格表可选。
	var prices pricing.Provider
	if cfg.Pricing.Source != "" {
		provider, err := pricing.LoadStaticProvider(cfg.Pricing.Source)
		if err != nil {
			return err
		}
		prices = provider
	}

	dispatcher := dispatch.New(agents,
		dispatch.WithChain(cfg.Wallet.Chain, chains.ParamsFor(cfg.Wallet.Chain)),
	)

	// 指标服务单独监听，留空则不启动。
	if cfg.Server.MetricsAddress != "" {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Server.MetricsAddress); err != nil && !errors.Is(err, context.Canceled) {
				logger.L().Error("指标服务异常退出", slog.Any("error", err))
			}
		}()
	}

	logger.L().Info("econagentd 启动",
		slog.String("address", cfg.Server.Address),
		slog.String("chain", cfg.Wallet.Chain))

	server := api.NewServer(cfg.Server.Address, dispatcher, prices)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
