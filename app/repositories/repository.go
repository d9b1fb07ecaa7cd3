package repositories

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
)

var (
	_ AccountRepository = (*BadgerAccountRepository)(nil)
	_ PostRepository    = (*BadgerPostRepository)(nil)
	_ CommentRepository = (*BadgerCommentRepository)(nil)
)

// Options controls how a Store is opened.
type Options struct {
	// OpenTimeout bounds how long Open keeps retrying while another
	// process holds the directory lock. Zero means a single attempt.
	OpenTimeout time.Duration
	// InMemory keeps the whole store in memory; path is ignored.
	InMemory bool
}

// Store bundles the Badger database with the repositories built on it.
type Store struct {
	db *badger.DB

	Accounts *BadgerAccountRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
}

func newOpenBackoff(timeout time.Duration) backoff.BackOff {
	if timeout <= 0 {
		return &backoff.StopBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = timeout
	return bo
}

// isLockError reports whether badger refused to open because the
// directory is locked by another process.
func isLockError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "directory lock")
}

// Open opens (creating if needed) the content store at path.
func Open(path string, opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(nil)
	}

	var db *badger.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = badger.Open(badgerOpts)
		if err != nil && isLockError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, newOpenBackoff(opts.OpenTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open store %q: %w", path, err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already open database.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:       db,
		Accounts: NewBadgerAccountRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}
}

// DB exposes the underlying database for administration commands.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Clear drops every key in the store.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Backup writes a full backup of the store to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup store: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into the store.
func (s *Store) Restore(r io.Reader) error {
	if err := s.db.Load(r, 256); err != nil {
		return fmt.Errorf("failed to restore store: %w", err)
	}
	return nil
}
