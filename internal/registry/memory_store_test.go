package registry

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"

	"EconAgent/internal/agent"
)

func newAgent() (*agent.Agent, error) {
	return agent.New()
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, created, err := store.GetOrCreate(ctx, "consumer-1", newAgent)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatalf("expected first access to create the agent")
	}

	second, created, err := store.GetOrCreate(ctx, "consumer-1", newAgent)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if created {
		t.Fatalf("second access must reuse the agent")
	}
	if first.ID() != second.ID() {
		t.Fatalf("agent recreated: %s != %s", first.ID(), second.ID())
	}

	other, _, err := store.GetOrCreate(ctx, "consumer-2", newAgent)
	if err != nil {
		t.Fatalf("other caller: %v", err)
	}
	if other.ID() == first.ID() {
		t.Fatalf("distinct callers must get distinct agents")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nobody")
	if !stdErrors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestMemoryStoreConcurrentFirstAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 32
	ids := make([]string, goroutines)
	var createdCount sync.Map
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ag, created, err := store.GetOrCreate(ctx, "same-key", newAgent)
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			ids[idx] = ag.ID()
			if created {
				createdCount.Store(idx, true)
			}
		}(i)
	}
	wg.Wait()

	creations := 0
	createdCount.Range(func(_, _ any) bool {
		creations++
		return true
	})
	if creations != 1 {
		t.Fatalf("expected exactly one creation, got %d", creations)
	}
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent callers observed different agents")
		}
	}
}

func TestMemoryStoreEmptyKey(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), ""); err == nil {
		t.Fatalf("empty key should be rejected")
	}
	if _, _, err := store.GetOrCreate(context.Background(), "", newAgent); err == nil {
		t.Fatalf("empty key should be rejected")
	}
}
