package chat

import "time"

// Pair is an unordered participant pair kept in canonical (sorted) order, so
// (x, y) and (y, x) always address the same conversation.
type Pair struct {
	A string
	B string
}

// CanonicalPair orders x and y. A user cannot hold a conversation with themselves.
func CanonicalPair(x, y string) (Pair, error) {
	if x == "" || y == "" {
		return Pair{}, ErrMissingParticipant
	}
	if x == y {
		return Pair{}, ErrSelfConversation
	}
	if x > y {
		x, y = y, x
	}
	return Pair{A: x, B: y}, nil
}

// Slice returns the pair as stored by document stores.
func (p Pair) Slice() []string { return []string{p.A, p.B} }

// Key is a single scalar naming the pair, for stores that index one field.
// Identities never contain '|'.
func (p Pair) Key() string { return p.A + "|" + p.B }

func (p Pair) Has(user string) bool { return p.A == user || p.B == user }

// Conversation is the single thread between two users.
type Conversation struct {
	ID           string    `db:"id"`
	Participants Pair      `db:"-"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
