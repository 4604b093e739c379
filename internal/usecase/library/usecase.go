package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"library-catalog/internal/domain/book"
	"library-catalog/internal/domain/lending"
	"library-catalog/internal/domain/user"
	apperrors "library-catalog/pkg/errors"
	"library-catalog/pkg/logger"
)

// Library implements the catalog operations on top of a Store.
// It is the only writer of book issue flags and user held sets.
type Library struct {
	store    Store               // Store holds all books and users
	ids      *IDAllocator        // ids allocates user IDs
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Library)(nil)

// New creates a Library. A nil allocator uses the default [100, 999) range.
func New(s Store, ids *IDAllocator, log *zap.Logger) *Library {
	if ids == nil {
		ids = NewIDAllocator(100, 999, 32, nil)
	}
	return &Library{store: s, ids: ids, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError("", strings.Join(messages, ", "))
}

// logFailure logs expected rejections quietly and everything else as an error.
func logFailure(log *zap.Logger, msg string, err error) {
	var nf *apperrors.NotFoundError
	var se *apperrors.StateError
	var ve *apperrors.ValidationError
	var ae *apperrors.AlreadyExistsError
	switch {
	case errors.As(err, &nf), errors.As(err, &se), errors.As(err, &ve), errors.As(err, &ae):
		log.Info(msg, zap.Error(err))
	default:
		log.Error(msg, zap.Error(err))
	}
}

// AddBook stores a new available book under the caller-supplied ID.
func (l *Library) AddBook(ctx context.Context, in AddBookRequest) (*AddBookResponse, error) {
	log := logger.WithContext(ctx, l.log).With(zap.Int64("book_id", in.ID))
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)

	if err := l.validate.Struct(in); err != nil {
		err = formatValidationError(err)
		logFailure(log, "add book rejected", err)
		return nil, err
	}

	if err := l.store.InsertBook(ctx, book.New(in.ID, in.Title, in.Author)); err != nil {
		logFailure(log, "failed to add book", err)
		return nil, err
	}

	log.Info("book added", zap.String("title", in.Title))
	return &AddBookResponse{ID: in.ID}, nil
}

// AddUser registers a user under a freshly allocated ID.
func (l *Library) AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error) {
	log := logger.WithContext(ctx, l.log)
	in.Name = strings.TrimSpace(in.Name)

	if err := l.validate.Struct(in); err != nil {
		err = formatValidationError(err)
		logFailure(log, "add user rejected", err)
		return nil, err
	}

	var id int64
	err := l.store.Transact(ctx, func(tx Store) error {
		var err error
		id, err = l.ids.Next(ctx, tx.UserExists)
		if err != nil {
			return err
		}
		return tx.InsertUser(ctx, user.New(id, in.Name))
	})
	if err != nil {
		logFailure(log, "failed to add user", err)
		return nil, err
	}

	log.Info("user added", zap.Int64("user_id", id), zap.String("name", in.Name))
	return &AddUserResponse{ID: id}, nil
}

// FindBook returns the book with the given ID.
func (l *Library) FindBook(ctx context.Context, id int64) (*book.Book, error) {
	return l.store.GetBook(ctx, id)
}

// FindUser returns the user with the given ID.
func (l *Library) FindUser(ctx context.Context, id int64) (*user.User, error) {
	return l.store.GetUser(ctx, id)
}

// IssueBook issues a book to a user. The book flag and the held set change together or not at all.
func (l *Library) IssueBook(ctx context.Context, in IssueBookRequest) error {
	log := logger.WithContext(ctx, l.log).With(zap.Int64("book_id", in.BookID), zap.Int64("user_id", in.UserID))

	err := l.store.Transact(ctx, func(tx Store) error {
		b, u, err := loadPair(ctx, tx, in.BookID, in.UserID)
		if err != nil {
			return err
		}
		if err := lending.DecideIssue(b, u); err != nil {
			return err
		}
		lending.ApplyIssue(b, u)
		return savePair(ctx, tx, b, u)
	})
	if err != nil {
		logFailure(log, "issue rejected", err)
		return err
	}

	log.Info("book issued")
	return nil
}

// ReturnBook takes a book back from the user holding it.
func (l *Library) ReturnBook(ctx context.Context, in ReturnBookRequest) error {
	log := logger.WithContext(ctx, l.log).With(zap.Int64("book_id", in.BookID), zap.Int64("user_id", in.UserID))

	err := l.store.Transact(ctx, func(tx Store) error {
		b, u, err := loadPair(ctx, tx, in.BookID, in.UserID)
		if err != nil {
			return err
		}
		if err := lending.DecideReturn(b, u); err != nil {
			return err
		}
		lending.ApplyReturn(b, u)
		return savePair(ctx, tx, b, u)
	})
	if err != nil {
		logFailure(log, "return rejected", err)
		return err
	}

	log.Info("book returned")
	return nil
}

func loadPair(ctx context.Context, s Store, bookID, userID int64) (*book.Book, *user.User, error) {
	b, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return b, u, nil
}

func savePair(ctx context.Context, s Store, b *book.Book, u *user.User) error {
	if err := s.SaveBook(ctx, b); err != nil {
		return err
	}
	return s.SaveUser(ctx, u)
}

// ListBooks returns every book in insertion order.
func (l *Library) ListBooks(ctx context.Context) (*ListBooksResponse, error) {
	books, err := l.store.ListBooks(ctx)
	if err != nil {
		logFailure(logger.WithContext(ctx, l.log), "failed to list books", err)
		return nil, err
	}

	views := make([]BookView, len(books))
	for i, b := range books {
		views[i] = BookView{ID: b.ID, Title: b.Title, Author: b.Author, Issued: b.Issued, Status: b.Status()}
	}

	return &ListBooksResponse{Total: len(views), Books: slices.Values(views)}, nil
}

// ListUsers returns every user in insertion order.
func (l *Library) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	users, err := l.store.ListUsers(ctx)
	if err != nil {
		logFailure(logger.WithContext(ctx, l.log), "failed to list users", err)
		return nil, err
	}

	views := make([]UserView, len(users))
	for i, u := range users {
		views[i] = toUserView(&u)
	}

	return &ListUsersResponse{Total: len(views), Users: slices.Values(views)}, nil
}

// HeldBooks resolves the titles a user currently holds.
func (l *Library) HeldBooks(ctx context.Context, userID int64) (*HeldBooksResponse, error) {
	log := logger.WithContext(ctx, l.log).With(zap.Int64("user_id", userID))

	u, err := l.store.GetUser(ctx, userID)
	if err != nil {
		logFailure(log, "failed to load held books", err)
		return nil, err
	}

	titles := make([]string, 0, len(u.HeldBookIDs))
	for id := range u.Held() {
		b, err := l.store.GetBook(ctx, id)
		if err != nil {
			err = apperrors.NewInternalError(fmt.Sprintf("held book %d cannot be resolved", id), err)
			logFailure(log, "failed to load held books", err)
			return nil, err
		}
		titles = append(titles, b.Title)
	}

	return &HeldBooksResponse{User: toUserView(u), Total: len(titles), Titles: slices.Values(titles)}, nil
}

func toUserView(u *user.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, HeldCount: len(u.HeldBookIDs)}
}
