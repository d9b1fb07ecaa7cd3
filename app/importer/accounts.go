package importer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"blogport/app/models"
	"blogport/app/repositories"
)

// maxUsernameLength matches the limit on models.Account.Name, in runes.
const maxUsernameLength = 100

type identity struct {
	name  string
	email string
}

// ResolveAccount returns the account for an export author, creating one if
// no earlier import or existing user matches. The same (name, email) pair
// always resolves to the same account.
func (r *Run) ResolveAccount(name, email string) (*models.Account, error) {
	key := identity{name: name, email: email}
	if account, ok := r.usernames[key]; ok {
		return account, nil
	}

	account, err := r.findAccount(name, email)
	if errors.Is(err, repositories.ErrNotFound) {
		account, err = r.createAccount(name, email)
	}
	if err != nil {
		return nil, err
	}

	r.usernames[key] = account
	return account, nil
}

func (r *Run) findAccount(name, email string) (*models.Account, error) {
	account, err := r.accounts.FindByObAccountName(name, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find account by import name %q: %w", name, err)
	}

	for _, candidate := range usernameCandidates(name) {
		account, err := r.accounts.FindByName(candidate, email)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find account %q: %w", candidate, err)
		}

		account.ObAccountName = name
		if err := r.accounts.Update(account); err != nil {
			return nil, fmt.Errorf("stamp account %q: %w", account.Name, err)
		}
		r.result.AccountsStamped++
		return account, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *Run) createAccount(name, email string) (*models.Account, error) {
	var hash models.Account
	if err := hash.SetPassword(r.opts.Passwords(), r.opts.PasswordCost); err != nil {
		return nil, fmt.Errorf("hash password for %q: %w", name, err)
	}

	base := usernameFromName(name)
	for attempt := 1; attempt <= r.opts.MaxAccountAttempts; attempt++ {
		suffix := ""
		if attempt > 1 {
			suffix = fmt.Sprint(attempt)
		}
		username := truncateRunes(base, maxUsernameLength-len(suffix)) + suffix

		account := &models.Account{
			Name:          username,
			Email:         email,
			PasswordHash:  hash.PasswordHash,
			ObAccountName: name,
		}
		err := r.accounts.Create(account)
		if errors.Is(err, repositories.ErrAccountExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create account %q: %w", username, err)
		}

		r.result.AccountsCreated++
		r.logger.Printf("Created account %s for %q", account.Name, name)
		return account, nil
	}
	return nil, &ExhaustedRetriesError{Name: name, Attempts: r.opts.MaxAccountAttempts}
}

// usernameCandidates lists the usernames an existing user may have
// registered under, in lookup order.
func usernameCandidates(name string) []string {
	return []string{
		name,
		strings.Join(strings.Fields(name), ""),
		usernameFromName(name),
	}
}

// usernameFromName replaces every whitespace rune with an underscore.
func usernameFromName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
