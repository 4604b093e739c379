package library

import "iter"

// AddBookRequest represents a new catalog entry. The caller picks the ID.
type AddBookRequest struct {
	ID     int64  `validate:"gt=0"`
	Title  string `validate:"required,max=200"`
	Author string `validate:"max=200"`
}

// AddBookResponse carries the stored book ID.
type AddBookResponse struct {
	ID int64
}

// AddUserRequest represents a new member registration.
type AddUserRequest struct {
	Name string `validate:"required,max=100"`
}

// AddUserResponse carries the allocated user ID.
type AddUserResponse struct {
	ID int64
}

// IssueBookRequest asks to issue a book to a user.
type IssueBookRequest struct {
	BookID int64
	UserID int64
}

// ReturnBookRequest asks to take a book back from a user.
type ReturnBookRequest struct {
	BookID int64
	UserID int64
}

// BookView is a display record for a book.
type BookView struct {
	ID     int64
	Title  string
	Author string
	Issued bool
	Status string
}

// UserView is a display record for a user.
type UserView struct {
	ID        int64
	Name      string
	HeldCount int
}

// ListBooksResponse lists books in insertion order. Total == 0 means the catalog is empty.
type ListBooksResponse struct {
	Total int
	Books iter.Seq[BookView]
}

// ListUsersResponse lists users in insertion order. Total == 0 means nobody is registered.
type ListUsersResponse struct {
	Total int
	Users iter.Seq[UserView]
}

// HeldBooksResponse lists the titles a user holds, in acquisition order.
type HeldBooksResponse struct {
	User   UserView
	Total  int
	Titles iter.Seq[string]
}
