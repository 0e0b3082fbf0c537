package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMemoryExclusive(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(ctx, "client:1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if n := m.held(); n != 0 {
		t.Errorf("held keys = %d, want 0", n)
	}
}

func TestMemoryIndependentKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	unlockA, err := m.Lock(ctx, "client:1")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx2, "client:2")
	if err != nil {
		t.Fatalf("lock b should not wait on a: %v", err)
	}
	unlockB()
}

func TestMemoryContextCancel(t *testing.T) {
	m := NewMemory()
	unlock, err := m.Lock(context.Background(), "client:1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Lock(ctx, "client:1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}

	unlock()
	unlock()
	if n := m.held(); n != 0 {
		t.Errorf("held keys = %d, want 0", n)
	}
}

func TestRedisLock(t *testing.T) {
	addr := os.Getenv("HOMEEASY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOMEEASY_TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(addr, "", 0, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer r.Close()
	r.prefix = "homeeasy:test:" + time.Now().Format("150405.000000") + ":"

	ctx := context.Background()
	unlock, err := r.Lock(ctx, "client:1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx2, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if _, err := r.Lock(ctx2, "client:1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second lock err = %v, want deadline exceeded", err)
	}

	unlock()
	unlock2, err := r.Lock(ctx, "client:1")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}
