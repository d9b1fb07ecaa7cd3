package repositories

import "blogport/app/models"

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create stores a new account. It returns ErrAccountExists when the
	// username is taken, compared case-insensitively.
	Create(account *models.Account) error
	GetByID(id int) (*models.Account, error)
	Update(account *models.Account) error
	// FindByObAccountName returns the account previously stamped with the
	// given import name and email.
	FindByObAccountName(name, email string) (*models.Account, error)
	// FindByName returns the account whose username is exactly name and
	// whose email matches.
	FindByName(name, email string) (*models.Account, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List(limit, offset int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
	FindByPermalink(permalink string) (*models.Post, error)
	// ListImported returns every post carrying an ObPermalink, by id.
	ListImported() ([]*models.Post, error)
	ListByCollection(collection string) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	// ListByPost returns the comments of a post ordered by id.
	ListByPost(postID int) ([]*models.Comment, error)
	// ListImportedByPost is ListByPost restricted to ObImported comments.
	ListImportedByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
}
