package library_test

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"library-catalog/internal/adapter/db/memory"
	"library-catalog/internal/adapter/db/sqlite"
	"library-catalog/internal/usecase/library"
)

func benchStores(b *testing.B) map[string]library.Store {
	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		b.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	b.Cleanup(func() { _ = sqlDB.Close() })
	if err := sqlite.Migrate(db); err != nil {
		b.Fatal(err)
	}

	return map[string]library.Store{
		"memory": memory.NewCatalogRepoMem(zap.NewNop()),
		"sqlite": sqlite.NewCatalogRepoSQLite(db, zap.NewNop()),
	}
}

func BenchmarkIssueReturnCycle(b *testing.B) {
	for name, store := range benchStores(b) {
		b.Run(name, func(b *testing.B) {
			lib := library.New(store, nil, zap.NewNop())
			ctx := context.Background()
			ids, err := lib.Seed(ctx)
			if err != nil {
				b.Fatal(err)
			}

			for b.Loop() {
				if err := lib.IssueBook(ctx, library.IssueBookRequest{BookID: 1, UserID: ids[0]}); err != nil {
					b.Fatal(err)
				}
				if err := lib.ReturnBook(ctx, library.ReturnBookRequest{BookID: 1, UserID: ids[0]}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkListBooks(b *testing.B) {
	for name, store := range benchStores(b) {
		b.Run(name, func(b *testing.B) {
			lib := library.New(store, nil, zap.NewNop())
			ctx := context.Background()
			for i := range 200 {
				req := library.AddBookRequest{ID: int64(i + 1), Title: "Title", Author: "Author"}
				if _, err := lib.AddBook(ctx, req); err != nil {
					b.Fatal(err)
				}
			}

			for b.Loop() {
				resp, err := lib.ListBooks(ctx)
				if err != nil {
					b.Fatal(err)
				}
				for range resp.Books {
				}
			}
		})
	}
}
