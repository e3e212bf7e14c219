package realtime

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

// connSet is an immutable set of live connections of one user. Mutations replace
// the whole set, so a value read from the map can be iterated without locking.
type connSet map[string]Conn

// Registry maps user identities to their live connections (presence).
//
// The map is sharded: register/unregister for one user serialize on that user's
// shard only, and reads never wait on writers for unrelated users.
type Registry struct {
	users  cmap.ConcurrentMap[string, connSet]
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		users:  cmap.New[connSet](),
		logger: logger.Named("registry"),
	}
}

// Register adds conn to the user's live set. Registering the same connection twice is a no-op.
func (r *Registry) Register(userID string, conn Conn) {
	r.users.Upsert(userID, nil, func(exist bool, current connSet, _ connSet) connSet {
		if exist {
			if _, ok := current[conn.ID()]; ok {
				return current
			}
		}
		next := make(connSet, len(current)+1)
		for id, c := range current {
			next[id] = c
		}
		next[conn.ID()] = conn
		return next
	})
	r.logger.Debug("connection registered", zap.String("user_id", userID), zap.String("conn_id", conn.ID()))
}

// Unregister removes conn; the user is dropped entirely once no connection remains.
// Unregistering an unknown connection is a no-op.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.users.Upsert(userID, nil, func(exist bool, current connSet, _ connSet) connSet {
		if !exist {
			return connSet{}
		}
		if _, ok := current[conn.ID()]; !ok {
			return current
		}
		next := make(connSet, len(current))
		for id, c := range current {
			if id != conn.ID() {
				next[id] = c
			}
		}
		return next
	})
	r.users.RemoveCb(userID, func(_ string, v connSet, exists bool) bool {
		return exists && len(v) == 0
	})
	r.logger.Debug("connection unregistered", zap.String("user_id", userID), zap.String("conn_id", conn.ID()))
}

// IsOnline reports whether the user has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	set, ok := r.users.Get(userID)
	return ok && len(set) > 0
}

// OnlineUsers returns a snapshot of every user with a live connection.
func (r *Registry) OnlineUsers() []string {
	users := make([]string, 0, r.users.Count())
	for item := range r.users.IterBuffered() {
		if len(item.Val) > 0 {
			users = append(users, item.Key)
		}
	}
	return users
}

// SendToUser pushes payload to every live connection of userID and returns how many
// accepted it. Failures are logged and never returned.
func (r *Registry) SendToUser(userID string, payload []byte) int {
	set, ok := r.users.Get(userID)
	if !ok {
		return 0
	}
	delivered := 0
	for _, conn := range set {
		if err := conn.Send(payload); err != nil {
			r.logger.Debug("delivery failed",
				zap.String("user_id", userID),
				zap.String("conn_id", conn.ID()),
				zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll closes every registered connection with the given code. Sessions observe
// the close on their read side and unregister themselves.
func (r *Registry) CloseAll(code int, reason string) {
	for item := range r.users.IterBuffered() {
		for _, conn := range item.Val {
			conn.Close(code, reason)
		}
	}
}
