package mock

import (
	"sort"
	"strings"
	"sync"

	"blogport/app/models"
	"blogport/app/repositories"
)

var (
	_ repositories.AccountRepository = (*AccountRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)

// Store groups in-memory repositories that share one post table, so
// comment parent checks behave like the Badger store.
type Store struct {
	Accounts *AccountRepository
	Posts    *PostRepository
	Comments *CommentRepository
}

func NewStore() *Store {
	posts := NewPostRepository()
	comments := NewCommentRepository()
	comments.posts = posts
	return &Store{
		Accounts: NewAccountRepository(),
		Posts:    posts,
		Comments: comments,
	}
}

type AccountRepository struct {
	accounts map[int]*models.Account
	nextID   int
	mutex    sync.RWMutex
}

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
	posts    *PostRepository
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[int]*models.Account),
		nextID:   1,
	}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

// AccountRepository implementation
func (m *AccountRepository) Create(account *models.Account) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	account.BeforeCreate()
	if err := account.Validate(); err != nil {
		return err
	}
	if m.nameTaken(account.Name, 0) {
		return repositories.ErrAccountExists
	}

	account.ID = m.nextID
	m.nextID++
	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *AccountRepository) GetByID(id int) (*models.Account, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	account, exists := m.accounts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *account
	return &found, nil
}

func (m *AccountRepository) Update(account *models.Account) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := account.Validate(); err != nil {
		return err
	}
	if _, exists := m.accounts[account.ID]; !exists {
		return repositories.ErrNotFound
	}
	if m.nameTaken(account.Name, account.ID) {
		return repositories.ErrAccountExists
	}
	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *AccountRepository) FindByObAccountName(name, email string) (*models.Account, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, id := range m.ids() {
		account := m.accounts[id]
		if account.ObAccountName == name && account.Email == email {
			found := *account
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *AccountRepository) FindByName(name, email string) (*models.Account, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, account := range m.accounts {
		if account.Name == name && account.Email == email {
			found := *account
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// All returns a copy of every account ordered by id.
func (m *AccountRepository) All() []*models.Account {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	accounts := make([]*models.Account, 0, len(m.accounts))
	for _, id := range m.ids() {
		account := *m.accounts[id]
		accounts = append(accounts, &account)
	}
	return accounts
}

func (m *AccountRepository) nameTaken(name string, except int) bool {
	for id, account := range m.accounts {
		if id != except && strings.EqualFold(account.Name, name) {
			return true
		}
	}
	return false
}

func (m *AccountRepository) ids() []int {
	ids := make([]int, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}
	if post.ObPermalink != "" && m.findByPermalink(post.ObPermalink) != nil {
		return repositories.ErrDuplicatePermalink
	}

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := post.Validate(); err != nil {
		return err
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if other := m.findByPermalink(post.ObPermalink); post.ObPermalink != "" && other != nil && other.ID != post.ID {
		return repositories.ErrDuplicatePermalink
	}
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	count := 0
	for id := 1; id <= m.nextID-1; id++ {
		if post, exists := m.posts[id]; exists {
			if count >= offset && len(posts) < limit {
				posts = append(posts, copyPost(post))
			}
			count++
		}
	}
	return posts, nil
}

func (m *PostRepository) FindByPermalink(permalink string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if permalink == "" {
		return nil, repositories.ErrNotFound
	}
	post := m.findByPermalink(permalink)
	if post == nil {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) ListImported() ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.ObPermalink != "" }), nil
}

func (m *PostRepository) ListByCollection(collection string) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.Collection == collection }), nil
}

func (m *PostRepository) findByPermalink(permalink string) *models.Post {
	for _, post := range m.posts {
		if post.ObPermalink == permalink {
			return post
		}
	}
	return nil
}

func (m *PostRepository) filter(keep func(*models.Post) bool) []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for id := 1; id <= m.nextID-1; id++ {
		if post, exists := m.posts[id]; exists && keep(post) {
			posts = append(posts, copyPost(post))
		}
	}
	return posts
}

func (m *PostRepository) exists(id int) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.posts[id]
	return ok
}

func copyPost(post *models.Post) *models.Post {
	c := *post
	c.Comments = nil
	c.Tags = append([]string(nil), post.Tags...)
	return &c
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return err
	}
	if err := m.checkLinks(comment); err != nil {
		return err
	}

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = copyComment(comment)
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyComment(comment), nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := comment.Validate(); err != nil {
		return err
	}
	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	if err := m.checkLinks(comment); err != nil {
		return err
	}
	m.comments[comment.ID] = copyComment(comment)
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return m.filter(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (m *CommentRepository) ListImportedByPost(postID int) ([]*models.Comment, error) {
	return m.filter(func(c *models.Comment) bool { return c.PostID == postID && c.ObImported }), nil
}

func (m *CommentRepository) filter(keep func(*models.Comment) bool) []*models.Comment {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for id := 1; id <= m.nextID-1; id++ {
		if comment, exists := m.comments[id]; exists && keep(comment) {
			comments = append(comments, copyComment(comment))
		}
	}
	return comments
}

func (m *CommentRepository) checkLinks(comment *models.Comment) error {
	if m.posts != nil && !m.posts.exists(comment.PostID) {
		return repositories.ErrNotFound
	}
	if comment.ParentID == 0 {
		return nil
	}
	parent, exists := m.comments[comment.ParentID]
	if !exists || parent.PostID != comment.PostID {
		return repositories.ErrInvalidParent
	}
	return nil
}

func copyComment(comment *models.Comment) *models.Comment {
	c := *comment
	c.Post = nil
	return &c
}
