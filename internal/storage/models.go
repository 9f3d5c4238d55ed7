package storage

import "time"

// Entry describes one stored blob without its payload.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}
