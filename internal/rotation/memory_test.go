package rotation

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreAdvanceCycles(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	want := []int{0, 1, 2, 0, 1}
	for i, expected := range want {
		idx, err := store.Advance(ctx, "rule-1", 3)
		if err != nil {
			t.Fatalf("advance %d: unexpected error: %v", i, err)
		}
		if idx != expected {
			t.Fatalf("advance %d: expected index %d, got %d", i, expected, idx)
		}
	}
}

func TestMemoryStorePeekDoesNotConsume(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		idx, err := store.Peek(ctx, "rule-1", 3)
		if err != nil {
			t.Fatalf("peek %d: unexpected error: %v", i, err)
		}
		if idx != 0 {
			t.Fatalf("peek %d: expected 0, got %d", i, idx)
		}
	}

	idx, err := store.Advance(ctx, "rule-1", 3)
	if err != nil || idx != 0 {
		t.Fatalf("expected first advance to consume 0, got %d (%v)", idx, err)
	}
	idx, err = store.Peek(ctx, "rule-1", 3)
	if err != nil || idx != 1 {
		t.Fatalf("expected peek after one advance to be 1, got %d (%v)", idx, err)
	}
}

func TestMemoryStorePoolResizeClamps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Consume indices 0 and 1 from a pool of three.
	for i := 0; i < 2; i++ {
		if _, err := store.Advance(ctx, "rule-1", 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The pool shrinks to two; the stored position clamps via modulo.
	idx, err := store.Advance(ctx, "rule-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected clamped index 0 after resize, got %d", idx)
	}
}

func TestMemoryStoreRulesAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Advance(ctx, "rule-1", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, err := store.Advance(ctx, "rule-2", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected rule-2 to start at 0, got %d", idx)
	}
}

func TestMemoryStoreInvalidPoolSize(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Advance(ctx, "rule-1", 0); err != ErrInvalidPoolSize {
		t.Fatalf("expected ErrInvalidPoolSize, got %v", err)
	}
	if _, err := store.Peek(ctx, "rule-1", -1); err != ErrInvalidPoolSize {
		t.Fatalf("expected ErrInvalidPoolSize, got %v", err)
	}
}

func TestMemoryStoreConcurrentAdvanceNoRepeatsNoSkips(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const callers = 30
	const poolSize = 3

	var wg sync.WaitGroup
	indices := make(chan int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := store.Advance(ctx, "rule-1", poolSize)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			indices <- idx
		}()
	}
	wg.Wait()
	close(indices)

	// Thirty consecutive counters over a pool of three hit each index
	// exactly ten times.
	counts := make(map[int]int)
	for idx := range indices {
		counts[idx]++
	}
	for i := 0; i < poolSize; i++ {
		if counts[i] != callers/poolSize {
			t.Fatalf("expected index %d consumed %d times, got %d", i, callers/poolSize, counts[i])
		}
	}
}
