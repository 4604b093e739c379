package book

import "fmt"

// Book represents a single catalog entry.
type Book struct {
	ID     int64  // ID is assigned by whoever adds the book
	Title  string // Title is the display title
	Author string // Author is the display author
	Issued bool   // Issued is true while some user holds the book
}

// New creates an available book.
func New(id int64, title, author string) *Book {
	return &Book{ID: id, Title: title, Author: author}
}

// Issue marks the book as issued. Callers check availability first.
func (b *Book) Issue() {
	b.Issued = true
}

// Return marks the book as available.
func (b *Book) Return() {
	b.Issued = false
}

// Status returns "Issued" or "Available".
func (b Book) Status() string {
	if b.Issued {
		return "Issued"
	}
	return "Available"
}

func (b Book) String() string {
	return fmt.Sprintf("%d - %s by %s [%s]", b.ID, b.Title, b.Author, b.Status())
}
