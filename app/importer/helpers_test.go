package importer

import (
	"io"
	"log"
	"testing"
	"time"

	"blogport/app/models"
	"blogport/app/repositories/mock"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSiteURL = "https://new.example.com"

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func testOptions(t *testing.T) Options {
	return Options{
		SiteURL:           testSiteURL,
		Location:          newYork(t),
		SyndicationMarker: DefaultSyndicationMarker,
		PasswordCost:      bcrypt.MinCost,
		Logger:            log.New(io.Discard, "", 0),
	}
}

func newMockImporter(t *testing.T) (*Importer, *mock.Store) {
	store := mock.NewStore()
	return New(store.Accounts, store.Posts, store.Comments, testOptions(t)), store
}

// spyAccounts records the username lookups made against the wrapped store.
type spyAccounts struct {
	*mock.AccountRepository
	obLookups   int
	nameLookups []string
}

func (s *spyAccounts) FindByObAccountName(name, email string) (*models.Account, error) {
	s.obLookups++
	return s.AccountRepository.FindByObAccountName(name, email)
}

func (s *spyAccounts) FindByName(name, email string) (*models.Account, error) {
	s.nameLookups = append(s.nameLookups, name)
	return s.AccountRepository.FindByName(name, email)
}

func samplePost(title, permalink string, comments ...models.ExternalComment) models.ExternalPost {
	return models.ExternalPost{
		Title:       title,
		Description: "<p>Body of " + title + "</p>",
		DateCreated: "03/15/2011 02:30:00 PM",
		Author:      "Jane Doe",
		AuthorEmail: "j@x.com",
		Permalink:   permalink,
		Comments:    comments,
	}
}

func sampleComment(id, parent, author, body string) models.ExternalComment {
	return models.ExternalComment{
		CommentID:     models.ExternalID(id),
		CommentParent: models.ExternalID(parent),
		Body:          body,
		DateCreated:   "03/16/2011 09:00:00 AM",
		Author:        author,
		AuthorEmail:   author + "@example.com",
	}
}
