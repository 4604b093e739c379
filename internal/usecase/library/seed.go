package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SampleBooks is the catalog every fresh library starts with when seeding is enabled.
var SampleBooks = []AddBookRequest{
	{ID: 1, Title: "Java Basics", Author: "James Gosling"},
	{ID: 2, Title: "Python Crash Course", Author: "Eric Matthes"},
}

// SampleUsers are registered after the sample books.
var SampleUsers = []string{"Alice", "Bob"}

// Seed adds the sample books and users and returns the allocated user IDs in order.
func (l *Library) Seed(ctx context.Context) ([]int64, error) {
	for _, b := range SampleBooks {
		if _, err := l.AddBook(ctx, b); err != nil {
			return nil, fmt.Errorf("seed book %d: %w", b.ID, err)
		}
	}

	ids := make([]int64, 0, len(SampleUsers))
	for _, name := range SampleUsers {
		resp, err := l.AddUser(ctx, AddUserRequest{Name: name})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", name, err)
		}
		ids = append(ids, resp.ID)
	}

	l.log.Debug("sample data seeded", zap.Int("books", len(SampleBooks)), zap.Int64s("user_ids", ids))
	return ids, nil
}
