package database

import (
	"context"
	"fmt"
	"sync"

	"contacts-api/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectFunc opens a MongoDB client. It is a seam for tests.
type ConnectFunc func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error)

// Manager owns the process-wide MongoDB client. The connection is established
// lazily on the first call to Database and reused afterwards; a failed attempt
// is not cached, so the next caller retries.
type Manager struct {
	uri    string
	dbName string

	mu      sync.Mutex
	client  *mongo.Client
	db      *mongo.Database
	connect ConnectFunc
	logger  logger.Logger
}

// NewManager creates a manager for the given connection string and database name
func NewManager(uri, dbName string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Manager{
		uri:     uri,
		dbName:  dbName,
		connect: mongo.Connect,
		logger:  log.WithComponent("database"),
	}
}

// WithConnectFunc replaces the driver connect function
func (m *Manager) WithConnectFunc(fn ConnectFunc) *Manager {
	m.connect = fn
	return m
}

// Database returns the shared database handle, connecting on first use
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}
	if m.uri == "" {
		return nil, fmt.Errorf("mongodb connection string is empty")
	}
	if m.dbName == "" {
		return nil, fmt.Errorf("database name is empty")
	}

	client, err := m.connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.db = client.Database(m.dbName)
	m.logger.WithFields(map[string]interface{}{
		"database_name": m.dbName,
	}).Info("MongoDB connection established")

	return m.db, nil
}

// Connected reports whether a client has been established
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil
}

// Ping checks the established connection. It does not connect.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil {
		return fmt.Errorf("MongoDB client is not connected")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB health check failed: %w", err)
	}
	return nil
}

// Close disconnects the client if one was established
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	m.logger.Info("MongoDB connection closed")
	return nil
}
