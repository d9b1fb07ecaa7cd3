package repositories

import (
	"fmt"
	"strings"

	"blogport/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAccountRepository implements AccountRepository using BadgerDB
type BadgerAccountRepository struct {
	db *badger.DB
}

// NewBadgerAccountRepository creates a new BadgerAccountRepository
func NewBadgerAccountRepository(db *badger.DB) *BadgerAccountRepository {
	return &BadgerAccountRepository{db: db}
}

// Create creates a new account
func (r *BadgerAccountRepository) Create(account *models.Account) error {
	account.BeforeCreate()
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	var id int
	err := r.db.Update(func(txn *badger.Txn) error {
		nameKey := accountNameKey(account.Name)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrAccountExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		var err error
		id, err = getNextID(txn, AccountSeqKey)
		if err != nil {
			return err
		}

		created := *account
		created.ID = id
		data, err := marshalEntity(&created)
		if err != nil {
			return err
		}
		if err := txn.Set(accountKey(id), data); err != nil {
			return err
		}
		return txn.Set(nameKey, encodeID(id))
	})
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// GetByID retrieves an account by ID
func (r *BadgerAccountRepository) GetByID(id int) (*models.Account, error) {
	var account models.Account
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, accountKey(id), &account)
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Update updates an existing account, moving its name index if the name changed
func (r *BadgerAccountRepository) Update(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Account
		if err := getEntity(txn, accountKey(account.ID), &existing); err != nil {
			return err
		}

		if !strings.EqualFold(existing.Name, account.Name) {
			nameKey := accountNameKey(account.Name)
			if _, err := txn.Get(nameKey); err == nil {
				return ErrAccountExists
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Delete(accountNameKey(existing.Name)); err != nil {
				return err
			}
			if err := txn.Set(nameKey, encodeID(account.ID)); err != nil {
				return err
			}
		}

		data, err := marshalEntity(account)
		if err != nil {
			return err
		}
		return txn.Set(accountKey(account.ID), data)
	})
}

// FindByObAccountName returns the lowest-id account stamped with name and email
func (r *BadgerAccountRepository) FindByObAccountName(name, email string) (*models.Account, error) {
	var found *models.Account
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, AccountKeyPrefix, func(_, val []byte) error {
			var account models.Account
			if err := unmarshalEntity(val, &account); err != nil {
				return err
			}
			if account.ObAccountName == name && account.Email == email {
				if found == nil || account.ID < found.ID {
					found = &account
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// FindByName looks the username up through the name index
func (r *BadgerAccountRepository) FindByName(name, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := readIndex(txn, accountNameKey(name))
		if err != nil {
			return err
		}
		return getEntity(txn, accountKey(id), &account)
	})
	if err != nil {
		return nil, err
	}
	if account.Name != name || account.Email != email {
		return nil, ErrNotFound
	}
	return &account, nil
}
