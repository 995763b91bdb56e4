package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Config 描述了 econagentd 在启动阶段需要加载的核心配置。
type Config struct {
	Server   ServerConfig   `json:"server"`
	Registry RegistryConfig `json:"registry"`
	Wallet   WalletConfig   `json:"wallet"`
	Pricing  PricingConfig  `json:"pricing"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig 控制 API 服务与指标服务的监听地址。
type ServerConfig struct {
	Address        string `json:"address"`
	MetricsAddress string `json:"metrics_address"`
}

// RegistryConfig 选择 Agent 注册表的存储驱动。目前只提供内存实现。
type RegistryConfig struct {
	Driver string `json:"driver"`
}

// WalletConfig 指定新建钱包使用的链与链参数文件。
type WalletConfig struct {
	Chain      string `json:"chain"`
	ChainsPath string `json:"chains_path"`
}

// PricingConfig 指定静态价格表文件，留空则不提供价格查询。
type PricingConfig struct {
	Source string `json:"source"`
}

// LoggingConfig 控制日志输出与审计流。
type LoggingConfig struct {
	Level       string      `json:"level"`
	Format      string      `json:"format"`
	OutputPaths []string    `json:"output_paths"`
	Audit       AuditConfig `json:"audit"`
}

// AuditConfig 控制账本审计日志。
type AuditConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Registry.Driver == "" {
		c.Registry.Driver = "memory"
	}

	if c.Wallet.Chain == "" {
		c.Wallet.Chain = "ethereum"
	}
	if c.Wallet.ChainsPath != "" && !filepath.IsAbs(c.Wallet.ChainsPath) {
		c.Wallet.ChainsPath = filepath.Join(baseDir, c.Wallet.ChainsPath)
	}

	if c.Pricing.Source != "" && !filepath.IsAbs(c.Pricing.Source) {
		c.Pricing.Source = filepath.Join(baseDir, c.Pricing.Source)
	}

	if c.Logging.Audit.Enabled && c.Logging.Audit.Path != "" && !filepath.IsAbs(c.Logging.Audit.Path) {
		c.Logging.Audit.Path = filepath.Join(baseDir, c.Logging.Audit.Path)
	}
}
