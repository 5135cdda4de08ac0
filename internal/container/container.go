package container

import (
	"context"
	"fmt"
	"log"

	"slicefinder/adapters/postgres"
	"slicefinder/adapters/stats/slicing"
	"slicefinder/app"
	domain "slicefinder/domain/slicing"
	"slicefinder/internal/config"
	"slicefinder/internal/testkit"
	"slicefinder/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.SliceRunRepository

	// Services
	DiscoveryService *app.SliceDiscoveryService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	return c, nil
}

// InitWithDatabase initializes components backed by PostgreSQL
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.RunRepo = postgres.NewSliceRunRepository(c.DB)
	c.initServices()

	log.Printf("Container initialized successfully with database connection")
	return nil
}

// InitInMemory initializes components with process-local run storage
func (c *Container) InitInMemory() {
	c.RunRepo = testkit.NewInMemoryRunRepository()
	c.initServices()
	log.Printf("Container initialized with in-memory run storage; runs are lost on restart")
}

func (c *Container) initServices() {
	c.DiscoveryService = app.NewSliceDiscoveryService(c.RunRepo, SlicingDefaults(c.Config.Slicing), c.Config.Slicing.BatchConcurrency)
}

// SlicingDefaults converts validated configuration into comparator options
func SlicingDefaults(cfg config.SlicingConfig) slicing.Options {
	options := slicing.DefaultOptions()
	options.Alpha = cfg.Alpha
	options.MinNumExamples = cfg.MinNumExamples
	options.TopK = cfg.TopK
	if cfg.RankBy != "" {
		options.RankBy = domain.RankBy(cfg.RankBy)
	}
	return options
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
