// Package broadcast maintains the registry of connected client handles and
// pushes collection snapshots to them whenever the user or project state
// changes.
package broadcast

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// Subscriber is one connected client able to receive asynchronous pushes.
// A non-nil error from either method marks the subscriber unreachable.
type Subscriber interface {
	NotifyUserEvent(users []protocol.User) error
	NotifyChatsEvent(projects []protocol.Project) error
}

// Broadcaster delivers snapshots synchronously, in the calling goroutine of
// whichever operation triggered the change. A subscriber that fails delivery
// is removed and never retried; its failure never propagates to the caller.
type Broadcaster struct {
	mu     sync.Mutex
	subs   []Subscriber
	logger logging.Logger
}

func New(logger logging.Logger) *Broadcaster {
	return &Broadcaster{logger: logger.With("module", "broadcast")}
}

// Subscribe registers s (no-op when already present) and immediately delivers
// the current user and project snapshots to s alone, so a newly connected
// client catches up before the next broadcast.
func (b *Broadcaster) Subscribe(s Subscriber, users []protocol.User, projects []protocol.Project) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.subs {
		if existing == s {
			return
		}
	}
	b.subs = append(b.subs, s)

	if err := s.NotifyUserEvent(users); err != nil {
		b.logger.Warn(context.Background(), "catch-up user push failed", "error", err)
		b.removeLocked(s)
		return
	}
	if err := s.NotifyChatsEvent(projects); err != nil {
		b.logger.Warn(context.Background(), "catch-up project push failed", "error", err)
		b.removeLocked(s)
	}
}

// Unsubscribe removes s unconditionally. After return s is never pushed to
// again.
func (b *Broadcaster) Unsubscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(s)
}

// BroadcastUsers pushes the user snapshot to every subscriber, pruning the
// unreachable ones.
func (b *Broadcaster) BroadcastUsers(users []protocol.User) {
	b.deliver(func(s Subscriber) error { return s.NotifyUserEvent(users) })
}

// BroadcastProjects pushes the project snapshot to every subscriber, pruning
// the unreachable ones.
func (b *Broadcaster) BroadcastProjects(projects []protocol.Project) {
	b.deliver(func(s Subscriber) error { return s.NotifyChatsEvent(projects) })
}

// Count reports the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) deliver(push func(Subscriber) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// index loop: removing the current element must not skip the element
	// that takes its place
	i := 0
	for i < len(b.subs) {
		if err := push(b.subs[i]); err != nil {
			b.logger.Warn(context.Background(), "subscriber unreachable, pruning", "error", err)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			continue
		}
		i++
	}
}

func (b *Broadcaster) removeLocked(s Subscriber) {
	for i, existing := range b.subs {
		if existing == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
