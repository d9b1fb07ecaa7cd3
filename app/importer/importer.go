// Package importer reconciles a blog export with the content store. Posts
// are matched to earlier imports by permalink, comments by position and
// authors by name and email, so importing the same export twice converges.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"blogport/app/models"
	"blogport/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultSyndicationMarker ends the author name of comments that were
	// syndicated from the blog's own feed.
	DefaultSyndicationMarker = "| The Effective Altruism Blog"

	DefaultMaxAccountAttempts = 100
)

// Options configures an Importer. Zero values fall back to defaults.
type Options struct {
	// SiteURL prefixes the canonical URLs written to the rewrite map.
	SiteURL string
	// Location is the zone export timestamps are written in.
	Location *time.Location
	// SyndicationMarker ends the author name of comments to skip. An empty
	// marker means DefaultSyndicationMarker.
	SyndicationMarker string
	// KeepSyndicated imports syndicated comments like any other.
	KeepSyndicated bool
	// MaxAccountAttempts caps the usernames tried for one new account.
	MaxAccountAttempts int
	PasswordCost       int
	// Passwords generates placeholder passwords for new accounts.
	Passwords func() string
	Logger    *log.Logger
}

// Result counts what a run did.
type Result struct {
	PostsDeleted      int
	PostsCreated      int
	PostsUpdated      int
	CommentsDeleted   int
	CommentsCreated   int
	CommentsUpdated   int
	CommentsSkipped   int
	AccountsCreated   int
	AccountsStamped   int
	RewriteEntries    int
	RewriteSkipped    int
	PostsRewritten    int
	CommentsRewritten int
}

// Importer imports exports into one content store.
type Importer struct {
	accounts repositories.AccountRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	opts     Options
}

// New returns an Importer writing through the given repositories.
func New(accounts repositories.AccountRepository, posts repositories.PostRepository, comments repositories.CommentRepository, opts Options) *Importer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SyndicationMarker == "" {
		opts.SyndicationMarker = DefaultSyndicationMarker
	}
	if opts.MaxAccountAttempts <= 0 {
		opts.MaxAccountAttempts = DefaultMaxAccountAttempts
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	if opts.Passwords == nil {
		opts.Passwords = GeneratePassword
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Importer{
		accounts: accounts,
		posts:    posts,
		comments: comments,
		opts:     opts,
	}
}

// Run holds the state of one import into a collection. Account lookups are
// cached for the lifetime of the run.
type Run struct {
	*Importer
	collection string
	usernames  map[identity]*models.Account
	result     *Result
	logger     *log.Logger
}

// NewRun starts a run importing into collection.
func (im *Importer) NewRun(collection string) *Run {
	return &Run{
		Importer:   im,
		collection: collection,
		usernames:  make(map[identity]*models.Account),
		result:     &Result{},
		logger:     im.opts.Logger,
	}
}

// Result returns the counters accumulated so far.
func (r *Run) Result() *Result {
	return r.result
}

// Validate checks every record, including its timestamps, without touching
// the store.
func (im *Importer) Validate(records []models.ExternalPost) error {
	for i := range records {
		record := &records[i]
		if err := record.Validate(); err != nil {
			return fmt.Errorf("record %d (%q): %w", i, record.Title, err)
		}
		if _, err := ParseTimestamp(record.DateCreated, im.opts.Location); err != nil {
			return fmt.Errorf("record %d (%q): %w", i, record.Title, err)
		}
		for j := range record.Comments {
			if _, err := ParseTimestamp(record.Comments[j].DateCreated, im.opts.Location); err != nil {
				return fmt.Errorf("record %d (%q) comment %d: %w", i, record.Title, j, err)
			}
		}
	}
	return nil
}

// Import replaces the contents of collection with records, then rewrites
// links to old permalinks across all imported posts. The rewrite table is
// written to rewriteOut when it is non-nil.
func (im *Importer) Import(collection string, records []models.ExternalPost, rewriteOut io.Writer) (*Result, error) {
	if collection == "" {
		return nil, errors.New("collection is required")
	}
	if err := im.Validate(records); err != nil {
		return nil, err
	}

	run := im.NewRun(collection)
	if err := run.ClearCollection(); err != nil {
		return run.Result(), err
	}

	for i := range records {
		record := &records[i]
		run.logger.Printf("%s", record.Title)
		if _, err := run.UpsertPost(record); err != nil {
			run.logger.Printf("Unable to create post:\n%T\n%v\n%+v", err, err, *record)
			return run.Result(), &RecordImportError{Title: record.Title, Record: record, Err: err}
		}
	}

	if _, err := run.RewriteURLs(rewriteOut); err != nil {
		return run.Result(), err
	}
	return run.Result(), nil
}

// ClearCollection deletes every post in the run's collection along with
// its comments.
func (r *Run) ClearCollection() error {
	posts, err := r.posts.ListByCollection(r.collection)
	if err != nil {
		return fmt.Errorf("list posts in %q: %w", r.collection, err)
	}
	for _, post := range posts {
		comments, err := r.comments.ListByPost(post.ID)
		if err != nil {
			return fmt.Errorf("list comments of post %d: %w", post.ID, err)
		}
		// Children first so no comment outlives its parent.
		for i := len(comments) - 1; i >= 0; i-- {
			if err := r.comments.Delete(comments[i].ID); err != nil {
				return fmt.Errorf("delete comment %d: %w", comments[i].ID, err)
			}
			r.result.CommentsDeleted++
		}
		if err := r.posts.Delete(post.ID); err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		r.result.PostsDeleted++
	}
	return nil
}
