package registry

import (
	"context"

	"EconAgent/internal/agent"
	xerrors "EconAgent/internal/errors"
)

// Factory 构造一个新的 Agent，在首次访问某个调用方时执行。
type Factory func() (*agent.Agent, error)

// Store 定义调用方标识到 Agent 实例的存储接口。
// Agent 的生命周期与宿主进程一致，目前只提供内存实现。
type Store interface {
	// Get 返回已初始化的 Agent，不存在时返回 ErrAgentNotFound。
	Get(ctx context.Context, callerKey string) (*agent.Agent, error)
	// GetOrCreate 原子地按调用方标识解析或创建 Agent。
	// 返回值的布尔位表示本次调用是否创建了新实例。
	GetOrCreate(ctx context.Context, callerKey string, create Factory) (*agent.Agent, bool, error)
	Close() error
}

// ErrAgentNotFound 表示指定调用方尚未初始化 Agent。
var ErrAgentNotFound = xerrors.New(xerrors.CodeNotFound, "agent not initialized")
