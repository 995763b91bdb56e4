package registry

import (
	"context"
	"sync"

	"EconAgent/internal/agent"
	xerrors "EconAgent/internal/errors"
)

// MemoryStore 以内存方式保存 Agent 实例，按调用方标识索引。
// 创建采用写锁内的检查加插入，同一调用方并发首次访问也只会创建一个 Agent。
type MemoryStore struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
}

// NewMemoryStore 创建 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{agents: make(map[string]*agent.Agent)}
}

// Get 实现 Store 接口。
func (m *MemoryStore) Get(_ context.Context, callerKey string) (*agent.Agent, error) {
	if callerKey == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "调用方标识不能为空")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ag, ok := m.agents[callerKey]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return ag, nil
}

// GetOrCreate 实现 Store 接口。工厂函数在临界区内执行，
// 保证每个调用方标识至多创建一次。
func (m *MemoryStore) GetOrCreate(_ context.Context, callerKey string, create Factory) (*agent.Agent, bool, error) {
	if callerKey == "" {
		return nil, false, xerrors.New(xerrors.CodeInvalidArgument, "调用方标识不能为空")
	}
	if create == nil {
		return nil, false, xerrors.New(xerrors.CodeInvalidArgument, "缺少 Agent 工厂函数")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ag, ok := m.agents[callerKey]; ok {
		return ag, false, nil
	}
	ag, err := create()
	if err != nil {
		return nil, false, err
	}
	m.agents[callerKey] = ag
	return ag, true, nil
}

// Close 对内存存储无需操作。
func (m *MemoryStore) Close() error {
	return nil
}

// ensure interface compliance at compile time
var _ Store = (*MemoryStore)(nil)
