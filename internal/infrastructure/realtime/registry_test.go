package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id string

	mu      sync.Mutex
	sent    [][]byte
	failing bool
	closed  int
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeConn) Close(int, string) {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)
	conn := newFakeConn("c1")

	// Given the same connection registered twice
	reg.Register("alice", conn)
	reg.Register("alice", conn)

	// Then presence counts it once
	req.True(reg.IsOnline("alice"))
	req.Equal([]string{"alice"}, reg.OnlineUsers())
	req.Equal(1, reg.SendToUser("alice", []byte("x")))
}

func TestRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)
	reg.Register("alice", newFakeConn("c1"))

	reg.Unregister("alice", newFakeConn("other"))
	reg.Unregister("bob", newFakeConn("c2"))

	req.True(reg.IsOnline("alice"))
	req.False(reg.IsOnline("bob"))
	req.ElementsMatch([]string{"alice"}, reg.OnlineUsers())
}

func TestRegistry_PresenceFollowsLastConnection(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)
	phone, laptop := newFakeConn("phone"), newFakeConn("laptop")

	// Given a user with two devices
	reg.Register("alice", phone)
	reg.Register("alice", laptop)

	// When one closes the user stays online
	reg.Unregister("alice", phone)
	req.True(reg.IsOnline("alice"))

	// When the last closes the user is gone
	reg.Unregister("alice", laptop)
	req.False(reg.IsOnline("alice"))
	req.Empty(reg.OnlineUsers())
}

func TestRegistry_SendToUserFansOutAndSwallowsFailures(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)
	ok1, ok2, broken := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	broken.failing = true
	for _, c := range []*fakeConn{ok1, ok2, broken} {
		reg.Register("bob", c)
	}

	delivered := reg.SendToUser("bob", []byte("hello"))

	req.Equal(2, delivered)
	req.Equal([][]byte{[]byte("hello")}, ok1.messages())
	req.Equal([][]byte{[]byte("hello")}, ok2.messages())
	// removal is close-driven, a failed send leaves the connection registered
	req.True(reg.IsOnline("bob"))
	req.Zero(reg.SendToUser("nobody", []byte("hello")))
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)

	const users, conns = 20, 10
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for c := 0; c < conns; c++ {
			wg.Add(1)
			go func(u, c int) {
				defer wg.Done()
				user := fmt.Sprintf("user-%d", u)
				conn := newFakeConn(fmt.Sprintf("%d-%d", u, c))
				reg.Register(user, conn)
				reg.SendToUser(user, []byte("ping"))
				_ = reg.IsOnline(user)
				_ = reg.OnlineUsers()
				if c%2 == 0 {
					reg.Unregister(user, conn)
				}
			}(u, c)
		}
	}
	wg.Wait()

	req.Len(reg.OnlineUsers(), users)
	for u := 0; u < users; u++ {
		req.Equal(conns/2, reg.SendToUser(fmt.Sprintf("user-%d", u), []byte("x")))
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry(nil)
	a, b := newFakeConn("a"), newFakeConn("b")
	reg.Register("alice", a)
	reg.Register("bob", b)

	reg.CloseAll(CloseGoingAway, "server shutdown")

	req.Equal(1, a.closed)
	req.Equal(1, b.closed)
}
