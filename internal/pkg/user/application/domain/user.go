package user

import "time"

// User is an account known to the directory. PasswordHash never leaves the server.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Status is the presence label exposed by the listing endpoint.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

func StatusOf(online bool) Status {
	if online {
		return StatusOnline
	}
	return StatusOffline
}
