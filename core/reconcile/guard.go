package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Lock is a held distributed lock.
type Lock interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// Locker obtains a distributed lock.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (Lock, error)
}

// RedisLocker adapts a redislock client to Locker.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redislock.Client) RedisLocker {
	return RedisLocker{client: client}
}

func (l RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, opt)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// Guard keeps cycles from overlapping. Callers in the same process join the
// cycle already in flight; a cycle running in another process makes the call
// return a skipped result. The lock is refreshed every half TTL while a cycle
// runs, so cycles may outlast the TTL.
type Guard struct {
	sf      singleflight.Group
	locker  Locker
	lockKey string
	ttl     time.Duration
	owner   string
	logger  *zap.Logger
}

// NewGuard creates a guard. A nil locker limits it to this process.
func NewGuard(locker Locker, lockKey string, ttl time.Duration, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{locker: locker, lockKey: lockKey, ttl: ttl, logger: logger}
}

// WithOwner records owner as the lock metadata, so operators can see which
// replica holds the lock.
func (g *Guard) WithOwner(owner string) *Guard {
	g.owner = owner
	return g
}

// Wrap returns a runner whose cycles go through the guard.
func (g *Guard) Wrap(r Runner) Runner {
	return guardedRunner{guard: g, runner: r}
}

// Run executes fn unless a cycle is already running.
// The second return value reports whether the result was shared with another caller.
func (g *Guard) Run(ctx context.Context, fn func(context.Context) CycleResult) (CycleResult, bool) {
	v, _, shared := g.sf.Do("cycle", func() (any, error) {
		lock, ok := g.obtain(ctx)
		if !ok {
			return CycleResult{OK: false, Error: ErrCycleRunning.Error(), Skipped: true}, nil
		}
		if lock != nil {
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
					g.logger.Warn("Failed to release cycle lock", zap.Error(err))
				}
			}()
			defer g.keepAlive(ctx, lock)()
		}
		return fn(ctx), nil
	})
	return v.(CycleResult), shared
}

// keepAlive refreshes lock until the returned stop function is called.
func (g *Guard) keepAlive(ctx context.Context, lock Lock) (stop func()) {
	if g.ttl <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(g.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := lock.Refresh(ctx, g.ttl, nil)
				if errors.Is(err, redislock.ErrNotObtained) {
					g.logger.Warn("Cycle lock lost", zap.String("key", g.lockKey))
					return
				}
				if err != nil {
					g.logger.Warn("Failed to refresh cycle lock", zap.Error(err))
				}
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

// obtain takes the distributed lock. It returns ok=false only when another
// process holds it; if Redis fails the cycle runs unlocked.
func (g *Guard) obtain(ctx context.Context) (Lock, bool) {
	if g.locker == nil {
		return nil, true
	}
	var opts *redislock.Options
	if g.owner != "" {
		opts = &redislock.Options{Metadata: g.owner}
	}
	lock, err := g.locker.Obtain(ctx, g.lockKey, g.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		g.logger.Info("Cycle skipped, lock held elsewhere", zap.String("key", g.lockKey))
		return nil, false
	}
	if err != nil {
		g.logger.Warn("Error obtaining cycle lock; proceeding without it", zap.Error(err))
		return nil, true
	}
	return lock, true
}

type guardedRunner struct {
	guard  *Guard
	runner Runner
}

func (r guardedRunner) RunCycle(ctx context.Context) CycleResult {
	result, _ := r.guard.Run(ctx, r.runner.RunCycle)
	return result
}
