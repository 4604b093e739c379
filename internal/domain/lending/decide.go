// Package lending holds the pure issue/return rules. Decisions never mutate their inputs;
// the library applies the state change only when a decision returns nil.
package lending

import (
	"library-catalog/internal/domain/book"
	"library-catalog/internal/domain/user"
	apperrors "library-catalog/pkg/errors"
)

// DecideIssue checks whether b may be issued to u.
func DecideIssue(b *book.Book, u *user.User) error {
	if b.Issued {
		return apperrors.ErrAlreadyIssued
	}
	return nil
}

// DecideReturn checks whether u may return b.
func DecideReturn(b *book.Book, u *user.User) error {
	if !b.Issued {
		return apperrors.ErrNotIssued
	}
	if !u.Holds(b.ID) {
		return apperrors.ErrNotHeld
	}
	return nil
}

// ApplyIssue performs the issue transition on both sides.
func ApplyIssue(b *book.Book, u *user.User) {
	b.Issue()
	u.AddHeld(b.ID)
}

// ApplyReturn performs the return transition on both sides.
func ApplyReturn(b *book.Book, u *user.User) {
	b.Return()
	u.RemoveHeld(b.ID)
}
