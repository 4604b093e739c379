package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"library-catalog/internal/domain/book"
	"library-catalog/internal/domain/user"
	"library-catalog/internal/usecase/library"
	apperrors "library-catalog/pkg/errors"
)

// catalog is the unguarded state: entities keyed by ID plus insertion order.
type catalog struct {
	books     map[int64]book.Book
	bookOrder []int64
	users     map[int64]*user.User
	userOrder []int64
}

func newCatalog() *catalog {
	return &catalog{
		books: make(map[int64]book.Book),
		users: make(map[int64]*user.User),
	}
}

func (c *catalog) clone() *catalog {
	cp := &catalog{
		books:     make(map[int64]book.Book, len(c.books)),
		bookOrder: append([]int64(nil), c.bookOrder...),
		users:     make(map[int64]*user.User, len(c.users)),
		userOrder: append([]int64(nil), c.userOrder...),
	}
	for id, b := range c.books {
		cp.books[id] = b
	}
	for id, u := range c.users {
		cp.users[id] = u.Clone()
	}
	return cp
}

// CatalogRepoMem implements library.Store in process memory.
type CatalogRepoMem struct {
	mu  *sync.Mutex // nil inside a transaction, where the parent already holds the lock
	cat *catalog
	log *zap.Logger
}

// NewCatalogRepoMem creates an empty in-memory store.
func NewCatalogRepoMem(log *zap.Logger) *CatalogRepoMem {
	return &CatalogRepoMem{mu: &sync.Mutex{}, cat: newCatalog(), log: log}
}

var _ library.Store = (*CatalogRepoMem)(nil)

func (r *CatalogRepoMem) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// InsertBook adds a book, rejecting a duplicate ID.
func (r *CatalogRepoMem) InsertBook(ctx context.Context, b *book.Book) error {
	defer r.lock()()

	if _, ok := r.cat.books[b.ID]; ok {
		return apperrors.NewAlreadyExistsError("book", "")
	}
	r.cat.books[b.ID] = *b
	r.cat.bookOrder = append(r.cat.bookOrder, b.ID)
	return nil
}

// InsertUser adds a user, rejecting a duplicate ID.
func (r *CatalogRepoMem) InsertUser(ctx context.Context, u *user.User) error {
	defer r.lock()()

	if _, ok := r.cat.users[u.ID]; ok {
		return apperrors.NewAlreadyExistsError("user", "")
	}
	r.cat.users[u.ID] = u.Clone()
	r.cat.userOrder = append(r.cat.userOrder, u.ID)
	return nil
}

// SaveBook overwrites an existing book.
func (r *CatalogRepoMem) SaveBook(ctx context.Context, b *book.Book) error {
	defer r.lock()()

	if _, ok := r.cat.books[b.ID]; !ok {
		return apperrors.NewNotFoundError("book", b.ID)
	}
	r.cat.books[b.ID] = *b
	return nil
}

// SaveUser overwrites an existing user.
func (r *CatalogRepoMem) SaveUser(ctx context.Context, u *user.User) error {
	defer r.lock()()

	if _, ok := r.cat.users[u.ID]; !ok {
		return apperrors.NewNotFoundError("user", u.ID)
	}
	r.cat.users[u.ID] = u.Clone()
	return nil
}

// GetBook returns a copy of the book.
func (r *CatalogRepoMem) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	defer r.lock()()

	b, ok := r.cat.books[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("book", id)
	}
	return &b, nil
}

// GetUser returns a copy of the user.
func (r *CatalogRepoMem) GetUser(ctx context.Context, id int64) (*user.User, error) {
	defer r.lock()()

	u, ok := r.cat.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	return u.Clone(), nil
}

// ListBooks returns all books in insertion order.
func (r *CatalogRepoMem) ListBooks(ctx context.Context) ([]book.Book, error) {
	defer r.lock()()

	books := make([]book.Book, 0, len(r.cat.bookOrder))
	for _, id := range r.cat.bookOrder {
		books = append(books, r.cat.books[id])
	}
	return books, nil
}

// ListUsers returns all users in insertion order.
func (r *CatalogRepoMem) ListUsers(ctx context.Context) ([]user.User, error) {
	defer r.lock()()

	users := make([]user.User, 0, len(r.cat.userOrder))
	for _, id := range r.cat.userOrder {
		users = append(users, *r.cat.users[id].Clone())
	}
	return users, nil
}

// UserExists reports whether id is taken.
func (r *CatalogRepoMem) UserExists(ctx context.Context, id int64) (bool, error) {
	defer r.lock()()

	_, ok := r.cat.users[id]
	return ok, nil
}

// Transact runs fn against a private copy and publishes it only if fn succeeds.
func (r *CatalogRepoMem) Transact(ctx context.Context, fn func(tx library.Store) error) error {
	if r.mu == nil {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &CatalogRepoMem{cat: r.cat.clone(), log: r.log}
	if err := fn(tx); err != nil {
		r.log.Debug("memory transaction discarded", zap.Error(err))
		return err
	}

	r.cat = tx.cat
	return nil
}
