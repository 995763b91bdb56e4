package wallet

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	xerrors "EconAgent/internal/errors"
)

// DefaultChain 是未显式配置时使用的链名称。
const DefaultChain = "ethereum"

// Wallet 保存链标识、地址与私钥。地址与私钥在首次生成后不再变更。
type Wallet struct {
	Chain      string `json:"chain"`
	Address    string `json:"address,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`

	params ChainParams
}

// New 创建一个尚未生成密钥的钱包。
func New(chain string, params ChainParams) *Wallet {
	if chain == "" {
		chain = DefaultChain
	}
	return &Wallet{Chain: chain, params: params.withDefaults()}
}

// EnsureValid 在私钥缺失时生成新的密钥对并推导链地址。
// 已生成过密钥的钱包上调用是幂等的。
func (w *Wallet) EnsureValid() error {
	if w.PrivateKey != "" {
		return nil
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return xerrors.Wrap(xerrors.CodeInternal, err, "生成钱包密钥失败")
	}
	w.PrivateKey = hexutil.Encode(crypto.FromECDSA(key))
	w.Address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	return nil
}

// FormatTransaction 将原始交易载荷规范化为链上交易体。
// 输入缺失的字段按链参数填充默认值，已有字段原样保留。
func (w *Wallet) FormatTransaction(txData map[string]any) map[string]any {
	get := func(key string, fallback any) any {
		if v, ok := txData[key]; ok {
			return v
		}
		return fallback
	}
	return map[string]any{
		"from":                 w.Address,
		"to":                   txData["to"],
		"value":                get("value", 0),
		"data":                 get("data", "0x"),
		"chainId":              w.params.ChainID,
		"nonce":                get("nonce", 0),
		"gas":                  get("gas", w.params.Gas),
		"maxFeePerGas":         get("maxFeePerGas", w.params.MaxFeePerGas),
		"maxPriorityFeePerGas": get("maxPriorityFeePerGas", w.params.MaxPriorityFeePerGas),
	}
}

// SignTransaction 对交易载荷做确定性的格式化签名，无任何副作用。
// 这里不做真实的密码学签名，只产出带 signed 标记的规范化交易记录。
func (w *Wallet) SignTransaction(txData map[string]any) map[string]any {
	if txData == nil {
		txData = map[string]any{}
	}
	return map[string]any{
		"signed":  true,
		"chain":   w.Chain,
		"address": w.Address,
		"tx_data": w.FormatTransaction(txData),
		"network": w.Chain,
		"chainId": w.params.ChainID,
		"status":  "signed",
	}
}

// Snapshot 返回钱包字段的普通映射，用于对外序列化。
func (w *Wallet) Snapshot() map[string]any {
	if w == nil {
		return nil
	}
	return map[string]any{
		"chain":       w.Chain,
		"address":     w.Address,
		"private_key": w.PrivateKey,
	}
}
