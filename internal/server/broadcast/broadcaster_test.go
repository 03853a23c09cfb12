package broadcast

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	userPushes    [][]protocol.User
	projectPushes [][]protocol.Project
	failAfter     int // fail every push once this many have succeeded; -1 never
	pushes        int
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{failAfter: -1}
}

func (f *fakeSubscriber) push() error {
	if f.failAfter >= 0 && f.pushes >= f.failAfter {
		return errors.New("connection reset")
	}
	f.pushes++
	return nil
}

func (f *fakeSubscriber) NotifyUserEvent(users []protocol.User) error {
	if err := f.push(); err != nil {
		return err
	}
	f.userPushes = append(f.userPushes, users)
	return nil
}

func (f *fakeSubscriber) NotifyChatsEvent(projects []protocol.Project) error {
	if err := f.push(); err != nil {
		return err
	}
	f.projectPushes = append(f.projectPushes, projects)
	return nil
}

func newBroadcaster() *Broadcaster {
	return New(logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestSubscribe_DeliversCatchUp(t *testing.T) {
	b := newBroadcaster()
	s := newFakeSubscriber()

	users := []protocol.User{{Nickname: "alice", Online: true}}
	projects := []protocol.Project{{Name: "P", Members: []string{"alice"}}}
	b.Subscribe(s, users, projects)

	require.Len(t, s.userPushes, 1)
	require.Len(t, s.projectPushes, 1)
	assert.Equal(t, users, s.userPushes[0])
	assert.Equal(t, projects, s.projectPushes[0])
	assert.Equal(t, 1, b.Count())
}

func TestSubscribe_Idempotent(t *testing.T) {
	b := newBroadcaster()
	s := newFakeSubscriber()

	b.Subscribe(s, nil, nil)
	b.Subscribe(s, nil, nil)

	assert.Equal(t, 1, b.Count())
	assert.Len(t, s.userPushes, 1, "catch-up delivered only on first subscribe")
}

func TestSubscribe_FailedCatchUpPrunes(t *testing.T) {
	b := newBroadcaster()
	s := newFakeSubscriber()
	s.failAfter = 0

	b.Subscribe(s, nil, nil)
	assert.Zero(t, b.Count())
}

func TestBroadcast_ReachesEverySubscriber(t *testing.T) {
	b := newBroadcaster()
	s1 := newFakeSubscriber()
	s2 := newFakeSubscriber()
	b.Subscribe(s1, nil, nil)
	b.Subscribe(s2, nil, nil)

	b.BroadcastUsers([]protocol.User{{Nickname: "alice"}})
	b.BroadcastProjects([]protocol.Project{{Name: "P"}})

	assert.Len(t, s1.userPushes, 2) // catch-up + broadcast
	assert.Len(t, s2.userPushes, 2)
	assert.Len(t, s1.projectPushes, 2)
	assert.Len(t, s2.projectPushes, 2)
}

func TestBroadcast_PrunesFailedWithoutSkippingNext(t *testing.T) {
	b := newBroadcaster()
	ok1 := newFakeSubscriber()
	bad := newFakeSubscriber()
	ok2 := newFakeSubscriber()
	b.Subscribe(ok1, nil, nil)
	b.Subscribe(bad, nil, nil)
	b.Subscribe(ok2, nil, nil)
	bad.failAfter = 0

	b.BroadcastUsers(nil)

	assert.Equal(t, 2, b.Count())
	// ok2 took bad's place mid-iteration and still got the push
	assert.Len(t, ok1.userPushes, 2)
	assert.Len(t, ok2.userPushes, 2)

	// the pruned handle is never pushed to again
	bad.failAfter = -1
	b.BroadcastUsers(nil)
	assert.Len(t, bad.userPushes, 1)
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	b := newBroadcaster()
	s := newFakeSubscriber()
	b.Subscribe(s, nil, nil)

	b.Unsubscribe(s)
	b.Unsubscribe(s) // unconditional, repeat is harmless
	b.BroadcastUsers(nil)

	assert.Zero(t, b.Count())
	assert.Len(t, s.userPushes, 1, "only the catch-up push was received")
}
