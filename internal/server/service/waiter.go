package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout is the maximum time a client can wait for notifications
const WaitTimeout = 25 * time.Second

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*waitRequest // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// waitRequest is released by closing notify, exactly once
type waitRequest struct {
	version int
	notify  chan struct{}
	once    sync.Once
}

func (r *waitRequest) release() {
	r.once.Do(func() { close(r.notify) })
}

func NewWaitRegistry(timeout time.Duration) *WaitRegistry {
	if timeout <= 0 {
		timeout = WaitTimeout
	}
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		timeout:  timeout,
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel closed when the game moves past version,
// the game is removed, the wait times out, ctx ends or the registry shuts
// down. Callers re-read the game after it closes.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	req := &waitRequest{
		version: version,
		notify:  make(chan struct{}),
	}

	w.mu.Lock()
	select {
	case <-w.shutdown:
		w.mu.Unlock()
		req.release()
		return req.notify
	default:
	}
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(w.timeout)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
		case <-w.shutdown:
		case <-req.notify:
		}
		w.removeWaiter(gameID, req)
		req.release()
	}()

	return req.notify
}

// NotifyGame releases every waiter that has not seen version
func (w *WaitRegistry) NotifyGame(gameID string, version int) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	w.mu.Unlock()

	for _, req := range waitList {
		if req.version < version {
			req.release()
		}
	}
}

// RemoveGame releases all waiters of a deleted game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.release()
	}
}

// Waiting counts the clients currently parked on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown releases everyone and waits for the watcher goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.once.Do(func() {
		w.mu.Lock()
		close(w.shutdown)
		w.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out after %s", timeout)
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
