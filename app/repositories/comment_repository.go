package repositories

import (
	"fmt"

	"blogport/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("invalid comment: %w", err)
	}

	var id int
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := checkCommentLinks(txn, comment); err != nil {
			return err
		}

		// Get next ID
		var err error
		id, err = getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}

		created := *comment
		created.ID = id
		data, err := marshalEntity(&created)
		if err != nil {
			return err
		}

		// Save comment with post ID in key for efficient listing
		if err := txn.Set(commentKey(comment.PostID, id), data); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(id), encodeID(comment.PostID))
	})
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		_, found, err := findComment(txn, id)
		comment = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost retrieves all comments for a post ordered by id
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.listByPost(postID, func(*models.Comment) bool { return true })
}

// ListImportedByPost retrieves the imported comments of a post ordered by id
func (r *BadgerCommentRepository) ListImportedByPost(postID int) ([]*models.Comment, error) {
	return r.listByPost(postID, func(c *models.Comment) bool { return c.ObImported })
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("invalid comment: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key, existing, err := findComment(txn, comment.ID)
		if err != nil {
			return err
		}
		if existing.PostID != comment.PostID {
			return fmt.Errorf("comment %d cannot move from post %d to post %d",
				comment.ID, existing.PostID, comment.PostID)
		}
		if err := checkCommentLinks(txn, comment); err != nil {
			return err
		}

		// Marshal and save updated comment
		updated := *comment
		updated.Post = nil
		data, err := marshalEntity(&updated)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, _, err := findComment(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(commentIndexKey(id))
	})
}

func (r *BadgerCommentRepository) listByPost(postID int, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, postCommentsPrefix(postID), func(_, val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			if keep(&comment) {
				comments = append(comments, &comment)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortComments(comments)
	return comments, nil
}

// findComment locates a comment through the id index.
func findComment(txn *badger.Txn, id int) ([]byte, *models.Comment, error) {
	postID, err := readIndex(txn, commentIndexKey(id))
	if err != nil {
		return nil, nil, err
	}
	key := commentKey(postID, id)
	var comment models.Comment
	if err := getEntity(txn, key, &comment); err != nil {
		return nil, nil, err
	}
	return key, &comment, nil
}

// checkCommentLinks verifies the post exists and the parent is a comment on it.
func checkCommentLinks(txn *badger.Txn, comment *models.Comment) error {
	if _, err := txn.Get(postKey(comment.PostID)); err == badger.ErrKeyNotFound {
		return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
	} else if err != nil {
		return err
	}
	if comment.ParentID == 0 {
		return nil
	}
	if _, err := txn.Get(commentKey(comment.PostID, comment.ParentID)); err == badger.ErrKeyNotFound {
		return fmt.Errorf("comment %d: %w", comment.ParentID, ErrInvalidParent)
	} else if err != nil {
		return err
	}
	return nil
}
