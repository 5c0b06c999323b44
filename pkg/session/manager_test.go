package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/session"
)

func TestManager_SerializesSameInstance(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()
	key := domain.StateKey{SessionID: "s", WizardID: "w"}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(ctx, key, func(context.Context) error {
				// Read, pause, write: loses updates without the lock.
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
	assert.Zero(t, mgr.Active())
}

func TestManager_IndependentInstances(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	inside := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = mgr.WithLock(ctx, domain.StateKey{SessionID: "a", WizardID: "w"}, func(context.Context) error {
			close(inside)
			<-done
			return nil
		})
	}()
	<-inside

	err := mgr.WithLock(ctx, domain.StateKey{SessionID: "b", WizardID: "w"}, func(context.Context) error {
		return nil
	})
	close(done)
	assert.NoError(t, err)
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := session.NewManager()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		key := domain.StateKey{SessionID: fmt.Sprintf("session-%d", i), WizardID: "w"}
		_ = mgr.WithLock(ctx, key, func(context.Context) error { return nil })
	}
	assert.Zero(t, mgr.Active(), "locks are released once unused")
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
	err      error
}

func (f *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.locked = append(f.locked, key)
	f.ttl = ttl
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked = append(f.unlocked, key)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	mgr := session.NewManager(session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	key := domain.StateKey{SessionID: "s", WizardID: "w"}

	fnErr := errors.New("boom")
	err := mgr.WithLock(context.Background(), key, func(context.Context) error { return fnErr })
	assert.ErrorIs(t, err, fnErr)

	assert.Equal(t, []string{"s:w"}, locker.locked)
	assert.Equal(t, []string{"s:w"}, locker.unlocked, "released even when fn fails")
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := &fakeLocker{err: context.DeadlineExceeded}
	mgr := session.NewManager(session.WithLocker(locker))

	called := false
	err := mgr.WithLock(context.Background(), domain.StateKey{SessionID: "s", WizardID: "w"}, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	assert.Zero(t, mgr.Active())
}
