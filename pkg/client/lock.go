package client

import (
	"context"
	"sync"
	"time"
)

// Lock is a held lock. It carries the holder token returned by the server
// and can renew or release that specific holding.
type Lock struct {
	client *Client
	name   string
	token  string

	mu        sync.Mutex
	expiresAt time.Time
	stopCh    chan struct{}
}

func (l *Lock) Name() string { return l.name }

func (l *Lock) Token() string { return l.token }

// ExpiresAt returns the last lease expiry reported by the server.
func (l *Lock) ExpiresAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expiresAt
}

// Renew extends the lease once.
func (l *Lock) Renew(ctx context.Context) error {
	expiresAt, err := l.client.Renew(ctx, l.name, l.token)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.expiresAt = expiresAt
	l.mu.Unlock()
	return nil
}

// Release drops the holding and stops any keep-alive loop.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	if l.stopCh != nil {
		close(l.stopCh)
		l.stopCh = nil
	}
	l.mu.Unlock()
	return l.client.Release(ctx, l.name, l.token)
}

// KeepAlive renews the lease on a third of its remaining lifetime until the
// context is cancelled or the lock is released. Renewal failures are logged
// and retried on the next tick; after the lease lapses server-side the loop
// keeps failing with not-found until stopped.
func (l *Lock) KeepAlive(ctx context.Context) {
	l.mu.Lock()
	ttl := time.Until(l.expiresAt)
	if l.stopCh != nil {
		close(l.stopCh)
	}
	stopCh := make(chan struct{})
	l.stopCh = stopCh
	l.mu.Unlock()

	if ttl <= 0 {
		ttl = time.Second
	}

	go func() {
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()

		var failureCount int
		for {
			select {
			case <-ticker.C:
				if err := l.Renew(ctx); err != nil {
					failureCount++
					l.client.logger.Warn("keepalive.renew_failed",
						"name", l.name, "attempt", failureCount, "error", err)
					continue
				}
				if failureCount > 0 {
					l.client.logger.Info("keepalive.recovered",
						"name", l.name, "failures", failureCount)
					failureCount = 0
				}
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
