package repositories

import (
	"fmt"
	"strconv"
	"strings"

	"blogport/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	var id int
	err := r.db.Update(func(txn *badger.Txn) error {
		if post.ObPermalink != "" {
			if _, err := txn.Get(postPermalinkKey(post.ObPermalink)); err == nil {
				return ErrDuplicatePermalink
			} else if err != badger.ErrKeyNotFound {
				return err
			}
		}

		// Get next ID
		var err error
		id, err = getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}

		created := *post
		created.ID = id
		created.Comments = nil
		data, err := marshalEntity(&created)
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(id), data); err != nil {
			return err
		}
		if post.ObPermalink != "" {
			return txn.Set(postPermalinkKey(post.ObPermalink), encodeID(id))
		}
		return nil
	})
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves a paginated list of posts ordered by id
func (r *BadgerPostRepository) List(limit, offset int) ([]*models.Post, error) {
	posts, err := r.filter(func(*models.Post) bool { return true })
	if err != nil {
		return nil, err
	}

	if offset >= len(posts) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		// Verify post exists
		var existing models.Post
		if err := getEntity(txn, postKey(post.ID), &existing); err != nil {
			return err
		}

		if existing.ObPermalink != post.ObPermalink {
			if post.ObPermalink != "" {
				if _, err := txn.Get(postPermalinkKey(post.ObPermalink)); err == nil {
					return ErrDuplicatePermalink
				} else if err != badger.ErrKeyNotFound {
					return err
				}
				if err := txn.Set(postPermalinkKey(post.ObPermalink), encodeID(post.ID)); err != nil {
					return err
				}
			}
			if existing.ObPermalink != "" {
				if err := txn.Delete(postPermalinkKey(existing.ObPermalink)); err != nil {
					return err
				}
			}
		}

		updated := *post
		updated.Comments = nil
		data, err := marshalEntity(&updated)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// Delete deletes a post and its comments by ID
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, postKey(id), &existing); err != nil {
			return err
		}

		var commentKeys [][]byte
		prefix := postCommentsPrefix(id)
		err := scanPrefix(txn, prefix, func(key, _ []byte) error {
			commentKeys = append(commentKeys, key)
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range commentKeys {
			commentID, err := strconv.Atoi(strings.TrimPrefix(string(key), prefix))
			if err != nil {
				return fmt.Errorf("malformed comment key %q: %w", key, err)
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(commentIndexKey(commentID)); err != nil {
				return err
			}
		}

		if existing.ObPermalink != "" {
			if err := txn.Delete(postPermalinkKey(existing.ObPermalink)); err != nil {
				return err
			}
		}
		return txn.Delete(postKey(id))
	})
}

// FindByPermalink returns the post imported from permalink
func (r *BadgerPostRepository) FindByPermalink(permalink string) (*models.Post, error) {
	if permalink == "" {
		return nil, ErrNotFound
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := readIndex(txn, postPermalinkKey(permalink))
		if err != nil {
			return err
		}
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListImported returns every post carrying an ObPermalink
func (r *BadgerPostRepository) ListImported() ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.ObPermalink != "" })
}

// ListByCollection returns every post in collection
func (r *BadgerPostRepository) ListByCollection(collection string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.Collection == collection })
}

func (r *BadgerPostRepository) filter(keep func(*models.Post) bool) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, PostKeyPrefix, func(_, val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortPosts(posts)
	return posts, nil
}
