package library

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a song or key does not exist.
var ErrNotFound = errors.New("library: not found")

// keySeparator joins the segments of a Key. Segments are UUIDs and fixed
// words, so they never contain it.
const keySeparator = ":"

// Key is a hierarchical backend key such as {"song", "<uuid>"}.
type Key []string

func (k Key) String() string { return strings.Join(k, keySeparator) }

func (k Key) bytes() []byte { return []byte(k.String()) }

// scanPrefix is the encoded prefix matching every key below k. The trailing
// separator keeps {"song"} from matching {"songs", ...}.
func (k Key) scanPrefix() []byte {
	if len(k) == 0 {
		return nil
	}
	return []byte(k.String() + keySeparator)
}

func parseKey(b []byte) Key {
	return Key(strings.Split(string(b), keySeparator))
}

// Entry is a key and its value.
type Entry struct {
	Key   Key
	Value []byte
}

// Batch is a set of writes applied atomically.
type Batch struct {
	Set    []Entry
	Delete []Key
}

// Backend is the byte store a Library keeps its songs in.
type Backend interface {
	// Get returns the value of key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// Scan yields the entries below prefix in lexicographic key order.
	Scan(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Write applies b atomically.
	Write(ctx context.Context, b Batch) error

	Close() error
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
