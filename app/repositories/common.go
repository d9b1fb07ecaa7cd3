package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"blogport/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrAccountExists is returned when creating an account whose username is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrDuplicatePermalink is returned when a second post claims an ObPermalink.
	ErrDuplicatePermalink = errors.New("permalink already imported")
	// ErrInvalidParent is returned when a comment's parent is not a comment of the same post.
	ErrInvalidParent = errors.New("parent comment not found on post")
)

const (
	// Key prefixes for different entity types
	AccountKeyPrefix = "account:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Secondary index prefixes
	AccountNameIndexPrefix   = "idx:account:name:"
	PostPermalinkIndexPrefix = "idx:post:permalink:"
	// CommentIndexPrefix maps a comment id to the post it lives under.
	CommentIndexPrefix = "idx:comment:"

	// Sequence keys for auto-incrementing IDs
	AccountSeqKey = "seq:account"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id = decodeID(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	if err := txn.Set([]byte(seqKey), encodeID(id)); err != nil {
		return 0, err
	}

	return id, nil
}

func encodeID(id int) []byte {
	return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

func decodeID(val []byte) int {
	if len(val) != 4 {
		return 0
	}
	return int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
}

// readIndex resolves a secondary index key to the id it points at.
func readIndex(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id = decodeID(val)
		return nil
	})
	return id, err
}

// getEntity loads and decodes the value stored at key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// scanPrefix calls fn with the key and value of every entry under prefix.
func scanPrefix(txn *badger.Txn, prefix string, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			return fn(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func accountKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", AccountKeyPrefix, id))
}

func accountNameKey(name string) []byte {
	return []byte(AccountNameIndexPrefix + strings.ToLower(name))
}

func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", PostKeyPrefix, id))
}

func postPermalinkKey(permalink string) []byte {
	return []byte(PostPermalinkIndexPrefix + permalink)
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func commentIndexKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%d", CommentIndexPrefix, id))
}

func postCommentsPrefix(postID int) string {
	return fmt.Sprintf("%s%d:", CommentKeyPrefix, postID)
}

func sortPosts(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
}

func sortComments(comments []*models.Comment) {
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}
