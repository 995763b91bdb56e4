package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider 定义价格查询的通用接口。
type Provider interface {
	Feeds() map[string]float64
	Price(symbol string) (float64, bool)
}

// StaticProvider 通过加载 JSON 文件提供静态价格表。
// 价格表只读，仅供运维查询，不会隐式注入估值请求。
type StaticProvider struct {
	feeds map[string]float64
}

// NewStaticProvider 创建静态价格表实例。
func NewStaticProvider(feeds map[string]float64) *StaticProvider {
	if feeds == nil {
		feeds = map[string]float64{}
	}
	return &StaticProvider{feeds: feeds}
}

// LoadStaticProvider 从 JSON 文件加载符号到价格的映射。
func LoadStaticProvider(path string) (*StaticProvider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("价格表文件路径不能为空")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("解析价格表路径失败: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("读取价格表文件失败: %w", err)
	}
	defer file.Close()

	var feeds map[string]float64
	if err := json.NewDecoder(file).Decode(&feeds); err != nil {
		return nil, fmt.Errorf("解析价格表文件失败: %w", err)
	}

	return NewStaticProvider(feeds), nil
}

// Feeds 返回价格表的副本。
func (p *StaticProvider) Feeds() map[string]float64 {
	if p == nil {
		return nil
	}
	clone := make(map[string]float64, len(p.feeds))
	for symbol, price := range p.feeds {
		clone[symbol] = price
	}
	return clone
}

// Price 返回指定符号的报价。
func (p *StaticProvider) Price(symbol string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	price, ok := p.feeds[symbol]
	return price, ok
}

// Ensure StaticProvider 实现 Provider 接口。
var _ Provider = (*StaticProvider)(nil)
