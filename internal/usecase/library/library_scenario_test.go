package library_test

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"library-catalog/internal/adapter/db/memory"
	"library-catalog/internal/usecase/library"
	apperrors "library-catalog/pkg/errors"
)

func newSeededLibrary(t *testing.T) (*library.Library, int64, int64) {
	log := zaptest.NewLogger(t)
	lib := library.New(
		memory.NewCatalogRepoMem(log),
		library.NewIDAllocator(100, 999, 32, rand.New(rand.NewPCG(42, 42))),
		log,
	)

	ids, err := lib.Seed(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 2)
	return lib, ids[0], ids[1]
}

type snapshot struct {
	books []library.BookView
	users []library.UserView
	held  map[int64][]string
}

func takeSnapshot(t *testing.T, lib *library.Library) snapshot {
	ctx := context.Background()
	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	users, err := lib.ListUsers(ctx)
	require.NoError(t, err)

	s := snapshot{
		books: slices.Collect(books.Books),
		users: slices.Collect(users.Users),
		held:  map[int64][]string{},
	}
	for _, u := range s.users {
		resp, err := lib.HeldBooks(ctx, u.ID)
		require.NoError(t, err)
		s.held[u.ID] = slices.Collect(resp.Titles)
	}
	return s
}

// assertIssuedMatchesHolders checks that a book is issued iff exactly one user holds it.
func assertIssuedMatchesHolders(t *testing.T, lib *library.Library) {
	t.Helper()
	ctx := context.Background()

	users, err := lib.ListUsers(ctx)
	require.NoError(t, err)
	holders := map[int64]int{}
	for u := range users.Users {
		full, err := lib.FindUser(ctx, u.ID)
		require.NoError(t, err)
		for id := range full.Held() {
			holders[id]++
		}
	}

	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	for b := range books.Books {
		if b.Issued {
			assert.Equal(t, 1, holders[b.ID], "book %d", b.ID)
		} else {
			assert.Zero(t, holders[b.ID], "book %d", b.ID)
		}
	}
}

func TestScenario_IssueConflictReturn(t *testing.T) {
	lib, alice, bob := newSeededLibrary(t)
	ctx := context.Background()

	require.NoError(t, lib.IssueBook(ctx, library.IssueBookRequest{BookID: 1, UserID: alice}))

	b, err := lib.FindBook(ctx, 1)
	require.NoError(t, err)
	assert.True(t, b.Issued)
	held, err := lib.HeldBooks(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Java Basics"}, slices.Collect(held.Titles))
	assertIssuedMatchesHolders(t, lib)

	before := takeSnapshot(t, lib)
	err = lib.IssueBook(ctx, library.IssueBookRequest{BookID: 1, UserID: bob})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyIssued)
	assert.Equal(t, before, takeSnapshot(t, lib))

	require.NoError(t, lib.ReturnBook(ctx, library.ReturnBookRequest{BookID: 1, UserID: alice}))

	b, err = lib.FindBook(ctx, 1)
	require.NoError(t, err)
	assert.False(t, b.Issued)
	held, err = lib.HeldBooks(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, held.Total)
	assert.Empty(t, slices.Collect(held.Titles))
	assertIssuedMatchesHolders(t, lib)
}

func TestScenario_RoundTripRestoresState(t *testing.T) {
	lib, alice, _ := newSeededLibrary(t)
	ctx := context.Background()
	require.NoError(t, lib.IssueBook(ctx, library.IssueBookRequest{BookID: 2, UserID: alice}))

	before := takeSnapshot(t, lib)
	require.NoError(t, lib.IssueBook(ctx, library.IssueBookRequest{BookID: 1, UserID: alice}))
	require.NoError(t, lib.ReturnBook(ctx, library.ReturnBookRequest{BookID: 1, UserID: alice}))

	assert.Equal(t, before, takeSnapshot(t, lib))
}

func TestScenario_ReturnNotIssuedLeavesStateUnchanged(t *testing.T) {
	lib, alice, _ := newSeededLibrary(t)
	ctx := context.Background()

	before := takeSnapshot(t, lib)
	err := lib.ReturnBook(ctx, library.ReturnBookRequest{BookID: 2, UserID: alice})

	assert.ErrorIs(t, err, apperrors.ErrNotIssued)
	assert.Equal(t, before, takeSnapshot(t, lib))
}

func TestScenario_ReturnByNonHolder(t *testing.T) {
	lib, alice, bob := newSeededLibrary(t)
	ctx := context.Background()
	require.NoError(t, lib.IssueBook(ctx, library.IssueBookRequest{BookID: 1, UserID: alice}))

	before := takeSnapshot(t, lib)
	err := lib.ReturnBook(ctx, library.ReturnBookRequest{BookID: 1, UserID: bob})

	assert.ErrorIs(t, err, apperrors.ErrNotHeld)
	assert.Equal(t, before, takeSnapshot(t, lib))
	assertIssuedMatchesHolders(t, lib)
}

func TestScenario_FindMissing(t *testing.T) {
	lib, _, _ := newSeededLibrary(t)
	ctx := context.Background()

	_, err := lib.FindBook(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = lib.FindUser(ctx, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = lib.IssueBook(ctx, library.IssueBookRequest{BookID: 999, UserID: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScenario_SeedOrderAndIDs(t *testing.T) {
	lib, alice, bob := newSeededLibrary(t)
	ctx := context.Background()

	assert.NotEqual(t, alice, bob)

	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, books.Total)
	titles := []string{}
	for b := range books.Books {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Java Basics", "Python Crash Course"}, titles)

	users, err := lib.ListUsers(ctx)
	require.NoError(t, err)
	names := []string{}
	for u := range users.Users {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob"}, names)
}

func TestScenario_EmptyLibrary(t *testing.T) {
	log := zaptest.NewLogger(t)
	lib := library.New(memory.NewCatalogRepoMem(log), nil, log)
	ctx := context.Background()

	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, books.Total)
	assert.Empty(t, slices.Collect(books.Books))

	users, err := lib.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, users.Total)
}

func TestScenario_AddUserIDsDistinctAndInRange(t *testing.T) {
	log := zaptest.NewLogger(t)
	lib := library.New(
		memory.NewCatalogRepoMem(log),
		library.NewIDAllocator(100, 999, 32, rand.New(rand.NewPCG(9, 9))),
		log,
	)
	ctx := context.Background()
	seen := map[int64]bool{}

	for range 300 {
		resp, err := lib.AddUser(ctx, library.AddUserRequest{Name: "member"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, resp.ID, int64(100))
		assert.Less(t, resp.ID, int64(999))
		assert.False(t, seen[resp.ID])
		seen[resp.ID] = true
	}
}

func TestScenario_FillIDSpace(t *testing.T) {
	log := zaptest.NewLogger(t)
	lib := library.New(
		memory.NewCatalogRepoMem(log),
		library.NewIDAllocator(100, 110, 4, rand.New(rand.NewPCG(1, 2))),
		log,
	)
	ctx := context.Background()

	for range 10 {
		_, err := lib.AddUser(ctx, library.AddUserRequest{Name: "member"})
		require.NoError(t, err)
	}

	_, err := lib.AddUser(ctx, library.AddUserRequest{Name: "one too many"})
	assert.ErrorIs(t, err, apperrors.ErrIDSpaceExhausted)

	users, err := lib.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, users.Total)
}

func TestScenario_AddBookDuplicateKeepsOriginal(t *testing.T) {
	lib, _, _ := newSeededLibrary(t)
	ctx := context.Background()

	_, err := lib.AddBook(ctx, library.AddBookRequest{ID: 1, Title: "Go in Action", Author: "William Kennedy"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	b, err := lib.FindBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Java Basics", b.Title)

	books, err := lib.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, books.Total)
}
