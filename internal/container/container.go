// Package container manages application dependencies and lifecycle.
// Components initialize in dependency order and tear down in reverse.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/contractdesk/negotiation/internal/application/dispatcher"
	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/application/service"
	"github.com/contractdesk/negotiation/internal/config"
	"github.com/contractdesk/negotiation/internal/infrastructure/persistence/repository"
	"github.com/contractdesk/negotiation/internal/infrastructure/persistence/sqlite"
	"github.com/contractdesk/negotiation/internal/notification"
	"github.com/contractdesk/negotiation/pkg/database"
	"go.uber.org/zap"
)

// Container wires repositories, services and the event dispatcher over a
// single database handle.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle

	// Application
	dispatcher dispatcher.Dispatcher
	notifier   *notification.Notifier
	services   *ServiceBundle

	// Lifecycle
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Negotiation port.NegotiationRepository
	Entry       port.EntryRepository
	Contract    port.ContractRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Negotiation service.NegotiationService
	Contract    service.ContractService
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations and repositories
// 2. Event dispatcher and notification handlers
// 3. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.initDispatcher()
	c.initServices()
	c.logger.Info("Services initialized")

	c.ready.Store(true)
	return nil
}

// Stop shuts down components in reverse initialization order.
func (c *Container) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.ready.Store(false)

	var firstErr error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close dispatcher: %w", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Info("Container stopped")
	return firstErr
}

// Ready reports whether the container finished initialization.
func (c *Container) Ready() bool {
	return c.ready.Load() && !c.closed.Load()
}

// Services returns the application service bundle.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.db = db

	migrator := database.NewMigrator(db, c.logger)
	if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.txManager = sqlite.NewDB(db.DB, c.logger)

	c.repositories = &RepositoryBundle{
		Negotiation: repository.NewNegotiationRepository(db.DB, c.logger),
		Entry:       repository.NewEntryRepository(db.DB, c.logger),
		Contract:    repository.NewContractRepository(db.DB, c.logger),
	}

	return nil
}

func (c *Container) initDispatcher() {
	c.dispatcher = dispatcher.NewDispatcher(
		dispatcher.WithLogger(&dispatcherLoggerAdapter{logger: c.logger}),
	)

	c.notifier = notification.NewNotifier(c.repositories.Negotiation, c.logger)
	c.notifier.Register(c.dispatcher)
}

func (c *Container) initServices() {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}

	applier := service.NewTermsApplier(c.repositories.Contract, serviceLogger)

	c.services = &ServiceBundle{
		Negotiation: service.NewNegotiationService(
			c.repositories.Negotiation,
			c.repositories.Entry,
			c.repositories.Contract,
			applier,
			c.txManager,
			c.dispatcher,
			serviceLogger,
		),
		Contract: service.NewContractService(c.repositories.Contract, serviceLogger),
	}
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}

// dispatcherLoggerAdapter adapts zap.Logger to the dispatcher.Logger interface.
type dispatcherLoggerAdapter struct {
	logger *zap.Logger
}

func (a *dispatcherLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *dispatcherLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}
