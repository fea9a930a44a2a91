// Package container wires applytrack's repositories, session handling, and
// services from configuration.
package container

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/applytrack/applytrack/internal/config"
	"github.com/applytrack/applytrack/internal/domain/position/adapters"
	"github.com/applytrack/applytrack/internal/domain/position/app"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
	"github.com/applytrack/applytrack/internal/errors"
	"github.com/applytrack/applytrack/internal/session"
)

// defaultShutdownTimeout is the default timeout for graceful shutdown of components.
const defaultShutdownTimeout = 10 * time.Second

// Closeable represents a component that can be closed/shutdown.
type Closeable interface {
	Close() error
}

// App holds the wired application.
type App struct {
	config *config.Config
	logger *log.Logger
	mu     sync.RWMutex
	closed bool

	// Infrastructure
	clock      ports.Clock
	tokenStore ports.TokenStore
	resolver   *session.Resolver
	apiClient  *adapters.APIClient
	positions  ports.PositionRepository
	comments   ports.CommentRepository

	// Application layer
	positionService *app.PositionService
	commentService  *app.CommentService
	detailUC        *app.GetPositionDetailUseCase

	closeables []Closeable
}

// Option customizes an App before initialization.
type Option func(*App)

// WithLogger sets the logger shared with the API client.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithTokenStore replaces the configured token store.
func WithTokenStore(s ports.TokenStore) Option {
	return func(a *App) { a.tokenStore = s }
}

// WithClock replaces the real clock.
func WithClock(c ports.Clock) Option {
	return func(a *App) { a.clock = c }
}

// New creates an uninitialized App.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.Config("container.New", "configuration is required")
	}

	a := &App{
		config:     cfg,
		logger:     log.New(io.Discard),
		clock:      adapters.NewRealClock(),
		closeables: make([]Closeable, 0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NewInitialized creates and initializes an App.
func NewInitialized(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// registerCloseable registers a component for cleanup during shutdown.
func (a *App) registerCloseable(closeable Closeable) {
	if closeable != nil {
		a.closeables = append(a.closeables, closeable)
	}
}

// RegisterCloseable allows external components to register for cleanup during shutdown.
// Components are closed in reverse order of registration (LIFO).
func (a *App) RegisterCloseable(closeable Closeable) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.registerCloseable(closeable)
}

// Initialize builds the token store, repositories, and services.
func (a *App) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errors.Internal("container.Initialize", "container is closed")
	}

	if err := a.initSession(); err != nil {
		return err
	}
	if err := a.initRepositories(ctx); err != nil {
		return err
	}
	a.initApplicationLayer()
	return nil
}

func (a *App) initSession() error {
	if a.tokenStore == nil {
		store, err := newTokenStore(a.config.Session)
		if err != nil {
			return err
		}
		a.tokenStore = store
	}
	a.resolver = session.NewResolver(a.tokenStore, a.clock.Now)
	return nil
}

func newTokenStore(cfg config.SessionConfig) (ports.TokenStore, error) {
	switch cfg.Store {
	case config.SessionStoreKeyring, "":
		return adapters.NewKeyringTokenStore(cfg.KeyringService, ""), nil
	case config.SessionStoreFile:
		return adapters.NewFileTokenStore(cfg.File), nil
	case config.SessionStoreMemory:
		return adapters.NewMemoryTokenStore(""), nil
	default:
		return nil, errors.Config("container.newTokenStore", "unknown session store: "+cfg.Store)
	}
}

func (a *App) initRepositories(ctx context.Context) error {
	switch a.config.Repository.Mode {
	case config.RepositoryModeMemory:
		return a.initMemoryRepositories(ctx)
	case config.RepositoryModeAPI, "":
		a.initAPIRepositories()
		return nil
	default:
		return errors.Config("container.initRepositories", "unknown repository mode: "+a.config.Repository.Mode)
	}
}

func (a *App) initMemoryRepositories(ctx context.Context) error {
	opts := []adapters.MemoryOption{
		adapters.WithClock(a.clock),
		adapters.WithLatency(a.config.Repository.MemoryLatency),
	}
	positions := adapters.NewMemoryPositionRepository(opts...)
	samples, err := adapters.SamplePositions(a.clock)
	if err != nil {
		return errors.InternalWrap(err, "container.initMemoryRepositories", "failed to build sample positions")
	}
	positions.Seed(samples...)

	a.positions = positions
	a.comments = adapters.NewMemoryCommentRepository(append(opts, adapters.WithPositions(positions))...)
	a.logger.Debug("using in-memory repositories", "seeded", len(samples), "latency", a.config.Repository.MemoryLatency)
	return ctx.Err()
}

func (a *App) initAPIRepositories() {
	api := a.config.API
	a.apiClient = adapters.NewAPIClient(adapters.APIClientConfig{
		BaseURL:                   api.BaseURL,
		Timeout:                   api.Timeout,
		RateLimitRPM:              api.RateLimitRPM,
		CircuitBreakerEnabled:     api.CircuitBreaker.Enabled,
		CircuitBreakerThreshold:   api.CircuitBreaker.Threshold,
		CircuitBreakerTimeout:     api.CircuitBreaker.Timeout,
		CircuitBreakerMaxRequests: 1,
	}, a.resolver, adapters.WithLogger(a.logger))
	a.registerCloseable(a.apiClient)

	a.positions = adapters.NewAPIPositionRepository(a.apiClient)
	a.comments = adapters.NewAPICommentRepository(a.apiClient)
	a.logger.Debug("using tracker API", "base_url", a.apiClient.BaseURL())
}

func (a *App) initApplicationLayer() {
	a.positionService = app.NewPositionService(a.positions, app.WithServiceClock(a.clock))
	a.commentService = app.NewCommentService(a.comments)
	a.detailUC = app.NewGetPositionDetailUseCase(a.positions, a.comments)
}

// Positions returns the position service.
func (a *App) Positions() *app.PositionService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.positionService
}

// Comments returns the comment service.
func (a *App) Comments() *app.CommentService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.commentService
}

// PositionDetail returns the use case behind `positions show`.
func (a *App) PositionDetail() *app.GetPositionDetailUseCase {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detailUC
}

// TokenStore returns the configured token store.
func (a *App) TokenStore() ports.TokenStore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokenStore
}

// Resolver returns the session token resolver.
func (a *App) Resolver() *session.Resolver {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolver
}

// APIClient returns the tracker API client, or nil in memory mode.
func (a *App) APIClient() *adapters.APIClient {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiClient
}

// InMemory reports whether repositories are in-memory.
func (a *App) InMemory() bool {
	return a.config.Repository.Mode == config.RepositoryModeMemory
}

// Config returns the configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Close gracefully shuts down the container and all its components.
func (a *App) Close() error {
	return a.CloseWithTimeout(defaultShutdownTimeout)
}

// CloseWithTimeout gracefully shuts down the container with a custom timeout.
func (a *App) CloseWithTimeout(timeout time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}

	a.closed = true
	a.logger.Debug("initiating container shutdown", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for i := len(a.closeables) - 1; i >= 0; i-- {
		if err := a.closeWithContext(ctx, a.closeables[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		a.logger.Warn("some components failed to close cleanly", "error_count", len(errs))
		return errs[0]
	}

	a.logger.Debug("container shutdown completed")
	return nil
}

// closeWithContext closes a component with context cancellation support.
func (a *App) closeWithContext(ctx context.Context, closeable Closeable) error {
	done := make(chan error, 1)
	go func() {
		done <- closeable.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		a.logger.Warn("component close timed out", "error", ctx.Err())
		return ctx.Err()
	}
}
