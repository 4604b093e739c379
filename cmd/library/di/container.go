package di

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-catalog/cmd/library/infrastructure"
	"library-catalog/internal/adapter/console"
	"library-catalog/internal/adapter/db/memory"
	sqlitestore "library-catalog/internal/adapter/db/sqlite"
	"library-catalog/internal/config"
	"library-catalog/internal/usecase/library"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB // nil unless the sqlite store is selected
	Store   library.Store
	Library *library.Library
	Console *console.Console
}

// NewContainer creates and initializes all application dependencies.
// The console reads commands from in and writes results to out.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger, in io.Reader, out io.Writer) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := infrastructure.NewDatabase(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		c.Store = sqlitestore.NewCatalogRepoSQLite(db, l.Named("store"))
	default:
		c.Store = memory.NewCatalogRepoMem(l.Named("store"))
	}

	ids := library.NewIDAllocator(cfg.Catalog.UserIDMin, cfg.Catalog.UserIDMax, cfg.Catalog.UserIDMaxAttempts, nil)
	c.Library = library.New(c.Store, ids, l.Named("library"))

	if cfg.Catalog.SeedSampleData {
		if _, err := c.Library.Seed(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	c.Console = console.New(c.Library, in, out, l, console.Options{Color: cfg.App.ConsoleColor})

	l.Info("container initialized", zap.String("store", cfg.Store.Driver))
	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
