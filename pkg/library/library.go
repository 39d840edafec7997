// Package library is a caller-owned repository of songs.
//
// Songs are stored as msgpack-encoded persistence trees under
// "song:<id>". A publisher index under "publisher:<publisher>:<id>" relates
// publishers to their songs; it is a lookup, not ownership, and deleting a
// song only drops its own index entry.
//
// The package ships an in-memory backend and a BadgerDB backend.
package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/haivivi/songbook/pkg/codec"
	"github.com/haivivi/songbook/pkg/score"
)

const (
	songPrefix      = "song"
	publisherPrefix = "publisher"
)

func songKey(id uuid.UUID) Key { return Key{songPrefix, id.String()} }

func publisherKey(publisher, id uuid.UUID) Key {
	return Key{publisherPrefix, publisher.String(), id.String()}
}

// Options configures a Library.
type Options struct {
	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Library stores songs in a Backend. It is safe for concurrent use when the
// backend is.
type Library struct {
	backend Backend
	logger  *slog.Logger
}

// New returns a Library over backend. The library takes ownership of the
// backend and closes it in Close.
func New(backend Backend, opts *Options) *Library {
	l := &Library{backend: backend, logger: slog.Default()}
	if opts != nil && opts.Logger != nil {
		l.logger = opts.Logger
	}
	return l
}

// Put stores song, replacing any song with the same id.
func (l *Library) Put(ctx context.Context, song *score.Song) error {
	value, err := codec.MarshalSong(song)
	if err != nil {
		return fmt.Errorf("library: encode %s: %w", song.ID, err)
	}
	batch := Batch{Set: []Entry{
		{Key: songKey(song.ID), Value: value},
		{Key: publisherKey(song.PublisherID, song.ID), Value: []byte{}},
	}}
	old, err := l.Get(ctx, song.ID)
	switch {
	case err == nil:
		if old.PublisherID != song.PublisherID {
			batch.Delete = append(batch.Delete, publisherKey(old.PublisherID, old.ID))
		}
	case !isNotFound(err):
		return err
	}
	if err := l.backend.Write(ctx, batch); err != nil {
		return fmt.Errorf("library: put %s: %w", song.ID, err)
	}
	l.logger.Debug("library: put", "id", song.ID, "title", song.Title)
	return nil
}

// Get returns the song with the given id, or ErrNotFound.
func (l *Library) Get(ctx context.Context, id uuid.UUID) (*score.Song, error) {
	value, err := l.backend.Get(ctx, songKey(id))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("library: song %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("library: get %s: %w", id, err)
	}
	song, err := codec.UnmarshalSong(value)
	if err != nil {
		return nil, fmt.Errorf("library: decode %s: %w", id, err)
	}
	return song, nil
}

// Delete removes the song with the given id, or returns ErrNotFound.
func (l *Library) Delete(ctx context.Context, id uuid.UUID) error {
	song, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	batch := Batch{Delete: []Key{songKey(id), publisherKey(song.PublisherID, id)}}
	if err := l.backend.Write(ctx, batch); err != nil {
		return fmt.Errorf("library: delete %s: %w", id, err)
	}
	l.logger.Debug("library: deleted", "id", id)
	return nil
}

// List returns every song ordered by id.
func (l *Library) List(ctx context.Context) ([]*score.Song, error) {
	var songs []*score.Song
	for e, err := range l.backend.Scan(ctx, Key{songPrefix}) {
		if err != nil {
			return nil, fmt.Errorf("library: list: %w", err)
		}
		song, err := codec.UnmarshalSong(e.Value)
		if err != nil {
			return nil, fmt.Errorf("library: decode %s: %w", e.Key, err)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// ByPublisher returns the songs of publisher ordered by id.
func (l *Library) ByPublisher(ctx context.Context, publisher uuid.UUID) ([]*score.Song, error) {
	var songs []*score.Song
	for e, err := range l.backend.Scan(ctx, Key{publisherPrefix, publisher.String()}) {
		if err != nil {
			return nil, fmt.Errorf("library: by publisher: %w", err)
		}
		id, err := uuid.Parse(e.Key[len(e.Key)-1])
		if err != nil {
			l.logger.Debug("library: skipping bad index key", "key", e.Key.String())
			continue
		}
		song, err := l.Get(ctx, id)
		if isNotFound(err) {
			l.logger.Debug("library: dangling publisher entry", "key", e.Key.String())
			continue
		}
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// Close closes the backend.
func (l *Library) Close() error {
	return l.backend.Close()
}
