package user

import (
	"fmt"
	"iter"
	"slices"
)

// User represents a library member and the books they currently hold.
type User struct {
	ID          int64   // ID is allocated by the library
	Name        string  // Name is the display name
	HeldBookIDs []int64 // HeldBookIDs lists held books in acquisition order
}

// New creates a user holding no books.
func New(id int64, name string) *User {
	return &User{ID: id, Name: name}
}

// AddHeld records bookID as held.
func (u *User) AddHeld(bookID int64) {
	u.HeldBookIDs = append(u.HeldBookIDs, bookID)
}

// RemoveHeld drops bookID from the held set. Absent IDs are ignored.
func (u *User) RemoveHeld(bookID int64) {
	if i := slices.Index(u.HeldBookIDs, bookID); i >= 0 {
		u.HeldBookIDs = slices.Delete(u.HeldBookIDs, i, i+1)
	}
}

// Holds reports whether bookID is in the held set.
func (u *User) Holds(bookID int64) bool {
	return slices.Contains(u.HeldBookIDs, bookID)
}

// Held yields held book IDs in acquisition order, reading current state on each iteration.
func (u *User) Held() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, id := range u.HeldBookIDs {
			if !yield(id) {
				return
			}
		}
	}
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	c := *u
	c.HeldBookIDs = slices.Clone(u.HeldBookIDs)
	return &c
}

func (u User) String() string {
	return fmt.Sprintf("%d - %s", u.ID, u.Name)
}
