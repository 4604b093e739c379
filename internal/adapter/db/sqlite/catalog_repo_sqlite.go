package sqlite

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-catalog/internal/domain/book"
	"library-catalog/internal/domain/user"
	"library-catalog/internal/usecase/library"
	apperrors "library-catalog/pkg/errors"
)

// BookSchema represents the books table. Seq preserves insertion order.
type BookSchema struct {
	ID     int64  `gorm:"primaryKey;autoIncrement:false"`
	Seq    int64  `gorm:"not null;index"`
	Title  string `gorm:"not null"`
	Author string `gorm:"not null"`
	Issued bool   `gorm:"not null"`
}

// TableName specifies the table name for BookSchema.
func (BookSchema) TableName() string {
	return "books"
}

// UserSchema represents the users table. Seq preserves insertion order.
type UserSchema struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Seq  int64  `gorm:"not null;index"`
	Name string `gorm:"not null"`
}

// TableName specifies the table name for UserSchema.
func (UserSchema) TableName() string {
	return "users"
}

// LoanSchema represents one held book. BookID is the primary key, so a book has at most one holder.
type LoanSchema struct {
	BookID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"not null;index"`
	Seq    int64 `gorm:"not null"` // position in the user's held set
}

// TableName specifies the table name for LoanSchema.
func (LoanSchema) TableName() string {
	return "loans"
}

// Migrate creates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&BookSchema{}, &UserSchema{}, &LoanSchema{})
}

// CatalogRepoSQLite implements library.Store using GORM.
type CatalogRepoSQLite struct {
	db   *gorm.DB
	log  *zap.Logger
	inTx bool
}

// NewCatalogRepoSQLite creates a store on an already migrated database.
func NewCatalogRepoSQLite(db *gorm.DB, log *zap.Logger) *CatalogRepoSQLite {
	return &CatalogRepoSQLite{db: db, log: log}
}

var _ library.Store = (*CatalogRepoSQLite)(nil)

func (r *CatalogRepoSQLite) nextSeq(ctx context.Context, model any) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Model(model).Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error
	return seq + 1, err
}

func (r *CatalogRepoSQLite) exists(ctx context.Context, model any, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// InsertBook adds a book, rejecting a duplicate ID.
func (r *CatalogRepoSQLite) InsertBook(ctx context.Context, b *book.Book) error {
	return r.withTx(ctx, func(t *CatalogRepoSQLite) error {
		taken, err := t.exists(ctx, &BookSchema{}, b.ID)
		if err != nil {
			return t.internal("failed to check book id", err, zap.Int64("book_id", b.ID))
		}
		if taken {
			return apperrors.NewAlreadyExistsError("book", "")
		}

		seq, err := t.nextSeq(ctx, &BookSchema{})
		if err != nil {
			return t.internal("failed to allocate book sequence", err)
		}

		model := BookSchema{ID: b.ID, Seq: seq, Title: b.Title, Author: b.Author, Issued: b.Issued}
		if err := t.db.WithContext(ctx).Create(&model).Error; err != nil {
			return t.internal("failed to create book", err, zap.Int64("book_id", b.ID))
		}
		return nil
	})
}

// InsertUser adds a user, rejecting a duplicate ID.
func (r *CatalogRepoSQLite) InsertUser(ctx context.Context, u *user.User) error {
	return r.withTx(ctx, func(t *CatalogRepoSQLite) error {
		taken, err := t.exists(ctx, &UserSchema{}, u.ID)
		if err != nil {
			return t.internal("failed to check user id", err, zap.Int64("user_id", u.ID))
		}
		if taken {
			return apperrors.NewAlreadyExistsError("user", "")
		}

		seq, err := t.nextSeq(ctx, &UserSchema{})
		if err != nil {
			return t.internal("failed to allocate user sequence", err)
		}

		model := UserSchema{ID: u.ID, Seq: seq, Name: u.Name}
		if err := t.db.WithContext(ctx).Create(&model).Error; err != nil {
			return t.internal("failed to create user", err, zap.Int64("user_id", u.ID))
		}
		return t.replaceLoans(ctx, u)
	})
}

// SaveBook overwrites the mutable columns of an existing book.
func (r *CatalogRepoSQLite) SaveBook(ctx context.Context, b *book.Book) error {
	res := r.db.WithContext(ctx).Model(&BookSchema{}).Where("id = ?", b.ID).Updates(map[string]any{
		"title":  b.Title,
		"author": b.Author,
		"issued": b.Issued,
	})
	if res.Error != nil {
		return r.internal("failed to update book", res.Error, zap.Int64("book_id", b.ID))
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("book", b.ID)
	}
	return nil
}

// SaveUser overwrites the name and held set of an existing user.
func (r *CatalogRepoSQLite) SaveUser(ctx context.Context, u *user.User) error {
	return r.withTx(ctx, func(t *CatalogRepoSQLite) error {
		res := t.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Update("name", u.Name)
		if res.Error != nil {
			return t.internal("failed to update user", res.Error, zap.Int64("user_id", u.ID))
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFoundError("user", u.ID)
		}
		return t.replaceLoans(ctx, u)
	})
}

func (r *CatalogRepoSQLite) replaceLoans(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", u.ID).Delete(&LoanSchema{}).Error; err != nil {
		return r.internal("failed to clear held books", err, zap.Int64("user_id", u.ID))
	}
	if len(u.HeldBookIDs) == 0 {
		return nil
	}

	loans := make([]LoanSchema, len(u.HeldBookIDs))
	for i, bookID := range u.HeldBookIDs {
		loans[i] = LoanSchema{BookID: bookID, UserID: u.ID, Seq: int64(i)}
	}
	if err := r.db.WithContext(ctx).Create(&loans).Error; err != nil {
		return r.internal("failed to store held books", err, zap.Int64("user_id", u.ID))
	}
	return nil
}

// GetBook retrieves a book by ID.
func (r *CatalogRepoSQLite) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	var model BookSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("book", id)
		}
		return nil, r.internal("failed to get book", err, zap.Int64("book_id", id))
	}
	return toBook(model), nil
}

// GetUser retrieves a user and their held set by ID.
func (r *CatalogRepoSQLite) GetUser(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, r.internal("failed to get user", err, zap.Int64("user_id", id))
	}

	var loans []LoanSchema
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).Order("seq").Find(&loans).Error; err != nil {
		return nil, r.internal("failed to get held books", err, zap.Int64("user_id", id))
	}

	u := user.New(model.ID, model.Name)
	for _, l := range loans {
		u.AddHeld(l.BookID)
	}
	return u, nil
}

// ListBooks retrieves all books in insertion order.
func (r *CatalogRepoSQLite) ListBooks(ctx context.Context) ([]book.Book, error) {
	var models []BookSchema
	if err := r.db.WithContext(ctx).Order("seq").Find(&models).Error; err != nil {
		return nil, r.internal("failed to list books", err)
	}

	books := make([]book.Book, len(models))
	for i, m := range models {
		books[i] = *toBook(m)
	}
	return books, nil
}

// ListUsers retrieves all users with their held sets in insertion order.
func (r *CatalogRepoSQLite) ListUsers(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("seq").Find(&models).Error; err != nil {
		return nil, r.internal("failed to list users", err)
	}

	var loans []LoanSchema
	if err := r.db.WithContext(ctx).Order("user_id, seq").Find(&loans).Error; err != nil {
		return nil, r.internal("failed to list held books", err)
	}
	held := make(map[int64][]int64, len(models))
	for _, l := range loans {
		held[l.UserID] = append(held[l.UserID], l.BookID)
	}

	users := make([]user.User, len(models))
	for i, m := range models {
		users[i] = user.User{ID: m.ID, Name: m.Name, HeldBookIDs: held[m.ID]}
	}
	return users, nil
}

// UserExists reports whether id is taken.
func (r *CatalogRepoSQLite) UserExists(ctx context.Context, id int64) (bool, error) {
	taken, err := r.exists(ctx, &UserSchema{}, id)
	if err != nil {
		return false, r.internal("failed to check user id", err, zap.Int64("user_id", id))
	}
	return taken, nil
}

// Transact runs fn inside a database transaction. Nested calls join the outer transaction.
func (r *CatalogRepoSQLite) Transact(ctx context.Context, fn func(tx library.Store) error) error {
	return r.withTx(ctx, func(t *CatalogRepoSQLite) error {
		return fn(t)
	})
}

func (r *CatalogRepoSQLite) withTx(ctx context.Context, fn func(t *CatalogRepoSQLite) error) error {
	if r.inTx {
		return fn(r)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CatalogRepoSQLite{db: tx, log: r.log, inTx: true})
	})
}

func (r *CatalogRepoSQLite) internal(msg string, err error, fields ...zap.Field) error {
	r.log.Error(msg, append(fields, zap.Error(err))...)
	return apperrors.NewInternalError(msg, err)
}

func toBook(m BookSchema) *book.Book {
	return &book.Book{ID: m.ID, Title: m.Title, Author: m.Author, Issued: m.Issued}
}
