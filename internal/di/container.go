package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contacts-api/internal/contacts"
	"contacts-api/internal/contacts/config"
	"contacts-api/internal/shared/database"
	"contacts-api/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

const closeTimeout = 30 * time.Second

// Container owns the process-wide resources and modules, and shuts them
// down in reverse order of initialization.
type Container struct {
	mu sync.RWMutex

	Config         *config.Config
	Logger         logger.Logger
	Database       *database.Manager
	RedisClient    *redis.Client
	ContactsModule *contacts.ContactsModule
}

// NewContainer creates a container for cfg
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{
		Config:   cfg,
		Logger:   log,
		Database: database.NewManager(cfg.MongoDBURI, cfg.DatabaseName, log),
	}
}

// InitializeContacts connects to the database (and Redis when enabled) and
// builds the contacts module
func (c *Container) InitializeContacts(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.Database.Database(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if c.Config.Redis.Enabled && c.RedisClient == nil {
		client := config.NewRedisClient(c.Config.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to Redis at %s: %w", c.Config.Redis.GetAddr(), err)
		}
		c.RedisClient = client
		c.Logger.Infof("Redis connection established at %s", c.Config.Redis.GetAddr())
	}

	module, err := contacts.NewContactsModule(ctx, c.Config, db, c.RedisClient, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create contacts module: %w", err)
	}
	c.ContactsModule = module
	return nil
}

// GetContactsModule returns the contacts module, or nil before initialization
func (c *Container) GetContactsModule() *contacts.ContactsModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ContactsModule
}

// HealthCheck pings the database and, when enabled, Redis. It never opens a
// new database connection.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.Database.Ping(ctx); err != nil {
		return err
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup stops modules and releases connections
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.ContactsModule != nil {
		c.ContactsModule.Stop()
		c.ContactsModule = nil
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
		}
		c.RedisClient = nil
	}

	if err := c.Database.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close shuts down everything with a bounded timeout
func (c *Container) Close() error {
	c.Logger.Info("Closing container resources...")

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}

	c.Logger.Info("Container resources closed")
	return nil
}
