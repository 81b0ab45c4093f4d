package history

import "github.com/google/uuid"

// IDGenerator hands out entry ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 entry ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// the order in which edits were recorded.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequencer numbers entries.
type Sequencer interface {
	Next() int64
}

// counter is the default Sequencer: entries are numbered from 1 in the
// order they were recorded.
type counter struct {
	n int64
}

func (c *counter) Next() int64 {
	c.n++
	return c.n
}
