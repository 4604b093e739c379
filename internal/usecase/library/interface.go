package library

import (
	"context"

	"library-catalog/internal/domain/book"
	"library-catalog/internal/domain/user"
)

// Usecase defines the catalog operations offered to the console.
type Usecase interface {
	AddBook(ctx context.Context, in AddBookRequest) (*AddBookResponse, error)
	AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error)
	FindBook(ctx context.Context, id int64) (*book.Book, error)
	FindUser(ctx context.Context, id int64) (*user.User, error)
	IssueBook(ctx context.Context, in IssueBookRequest) error
	ReturnBook(ctx context.Context, in ReturnBookRequest) error
	ListBooks(ctx context.Context) (*ListBooksResponse, error)
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	HeldBooks(ctx context.Context, userID int64) (*HeldBooksResponse, error)
}

// Store is the single source of truth for books and users.
// Entities returned by a Store are copies; changes are persisted with Save*.
type Store interface {
	InsertBook(ctx context.Context, b *book.Book) error          // AlreadyExistsError on duplicate ID
	InsertUser(ctx context.Context, u *user.User) error          // AlreadyExistsError on duplicate ID
	SaveBook(ctx context.Context, b *book.Book) error            // NotFoundError if absent
	SaveUser(ctx context.Context, u *user.User) error            // NotFoundError if absent
	GetBook(ctx context.Context, id int64) (*book.Book, error)   // NotFoundError if absent
	GetUser(ctx context.Context, id int64) (*user.User, error)   // NotFoundError if absent
	ListBooks(ctx context.Context) ([]book.Book, error)          // insertion order
	ListUsers(ctx context.Context) ([]user.User, error)          // insertion order
	UserExists(ctx context.Context, id int64) (bool, error)      // used by ID allocation
	Transact(ctx context.Context, fn func(tx Store) error) error // all of fn's writes or none
}
