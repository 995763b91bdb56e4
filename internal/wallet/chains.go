package wallet

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChainParams carries the per-chain defaults applied when a transaction
// payload omits a field.
type ChainParams struct {
	ChainID              int64 `yaml:"chain_id"`
	Gas                  int64 `yaml:"gas"`
	MaxFeePerGas         int64 `yaml:"max_fee_per_gas"`
	MaxPriorityFeePerGas int64 `yaml:"max_priority_fee_per_gas"`
}

// ChainDefinitions models the structure of configs/chains.yaml.
type ChainDefinitions struct {
	Chains map[string]ChainDefinition `yaml:"chains"`
}

// ChainDefinition describes a single chain entry.
type ChainDefinition struct {
	ChainParams `yaml:",inline"`
	Description string `yaml:"description"`
}

// DefaultParams returns the built-in Ethereum mainnet defaults.
func DefaultParams() ChainParams {
	return ChainParams{
		ChainID:              1,
		Gas:                  21000,
		MaxFeePerGas:         20_000_000_000,
		MaxPriorityFeePerGas: 1_500_000_000,
	}
}

func (p ChainParams) withDefaults() ChainParams {
	def := DefaultParams()
	if p.ChainID == 0 {
		p.ChainID = def.ChainID
	}
	if p.Gas == 0 {
		p.Gas = def.Gas
	}
	if p.MaxFeePerGas == 0 {
		p.MaxFeePerGas = def.MaxFeePerGas
	}
	if p.MaxPriorityFeePerGas == 0 {
		p.MaxPriorityFeePerGas = def.MaxPriorityFeePerGas
	}
	return p
}

// LoadChainDefinitions parses the YAML file containing chain parameters.
// An empty path yields an empty definition set; callers fall back to
// DefaultParams for unknown chains.
func LoadChainDefinitions(path string) (ChainDefinitions, error) {
	if strings.TrimSpace(path) == "" {
		return ChainDefinitions{Chains: map[string]ChainDefinition{}}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ChainDefinitions{}, fmt.Errorf("读取链配置失败: %w", err)
	}

	var defs ChainDefinitions
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return ChainDefinitions{}, fmt.Errorf("解析链配置失败: %w", err)
	}
	if defs.Chains == nil {
		defs.Chains = map[string]ChainDefinition{}
	}
	return defs, nil
}

// ParamsFor returns the configured parameters for a chain, falling back to
// the built-in defaults when the chain is not defined.
func (d ChainDefinitions) ParamsFor(chain string) ChainParams {
	if def, ok := d.Chains[chain]; ok {
		return def.ChainParams.withDefaults()
	}
	return DefaultParams()
}
