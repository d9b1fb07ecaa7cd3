package repositories

import (
	"testing"
	"time"

	"blogport/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Accounts

	t.Run("create and get account", func(t *testing.T) {
		account := &models.Account{Name: "Jane_Doe", Email: "jane@example.com", ObAccountName: "Jane Doe"}
		require.NoError(t, repo.Create(account))
		assert.Greater(t, account.ID, 0)
		assert.False(t, account.CreatedAt.IsZero())

		retrieved, err := repo.GetByID(account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane_Doe", retrieved.Name)
		assert.Equal(t, "Jane Doe", retrieved.ObAccountName)
	})

	t.Run("username is unique case-insensitively", func(t *testing.T) {
		err := repo.Create(&models.Account{Name: "jane_doe", Email: "other@example.com"})
		assert.ErrorIs(t, err, ErrAccountExists)
	})

	t.Run("rejects usernames with whitespace", func(t *testing.T) {
		err := repo.Create(&models.Account{Name: "Jane Doe"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAccountExists)
	})

	t.Run("get missing account", func(t *testing.T) {
		_, err := repo.GetByID(9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update stamps and renames", func(t *testing.T) {
		account := newTestAccount(t, store, "Bob", "bob@example.com")

		account.ObAccountName = "Bob"
		require.NoError(t, repo.Update(account))

		account.Name = "Robert"
		require.NoError(t, repo.Update(account))

		_, err := repo.FindByName("Bob", "bob@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		found, err := repo.FindByName("Robert", "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)

		account.Name = "JANE_DOE"
		assert.ErrorIs(t, repo.Update(account), ErrAccountExists)
	})

	t.Run("update missing account", func(t *testing.T) {
		err := repo.Update(&models.Account{ID: 9999, Name: "ghost", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccountRepositoryFind(t *testing.T) {
	store := newTestStore(t)
	repo := store.Accounts

	first := &models.Account{Name: "Jane_Doe", Email: "jane@example.com", ObAccountName: "Jane Doe"}
	require.NoError(t, repo.Create(first))
	second := &models.Account{Name: "Jane_Doe2", Email: "jane@example.com", ObAccountName: "Jane Doe"}
	require.NoError(t, repo.Create(second))

	t.Run("by import name returns lowest id", func(t *testing.T) {
		found, err := repo.FindByObAccountName("Jane Doe", "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("by import name requires matching email", func(t *testing.T) {
		_, err := repo.FindByObAccountName("Jane Doe", "other@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("by name requires exact name and email", func(t *testing.T) {
		found, err := repo.FindByName("Jane_Doe", "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		_, err = repo.FindByName("jane_doe", "jane@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.FindByName("Jane_Doe", "")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.FindByName("Nobody", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
