// Package cli defines interfaces for injecting the container into commands.
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/applytrack/applytrack/internal/config"
	"github.com/applytrack/applytrack/internal/container"
	"github.com/applytrack/applytrack/internal/domain/position/app"
	"github.com/applytrack/applytrack/internal/domain/position/ports"
)

type authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type cliApp interface {
	Close() error
	Positions() *app.PositionService
	Comments() *app.CommentService
	PositionDetail() *app.GetPositionDetailUseCase
	TokenStore() ports.TokenStore
	// Authenticator is nil when repositories are in-memory.
	Authenticator() authenticator
	InMemory() bool
}

var newContainerApp = func(ctx context.Context, cfg *config.Config) (cliApp, error) {
	a, err := container.NewInitialized(ctx, cfg, container.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &containerAppWrapper{App: a}, nil
}

type containerAppWrapper struct {
	*container.App
}

func (w *containerAppWrapper) Authenticator() authenticator {
	if c := w.App.APIClient(); c != nil {
		return c
	}
	return nil
}

var (
	activeMu  sync.Mutex
	activeApp cliApp
)

// openApp builds the application for cmd. It stays open until
// closeActiveApp so the error presenter can still reach the token store.
func openApp(cmd *cobra.Command) (cliApp, error) {
	a, err := newContainerApp(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	activeMu.Lock()
	activeApp = a
	activeMu.Unlock()
	return a, nil
}

func currentApp() cliApp {
	activeMu.Lock()
	defer activeMu.Unlock()
	return activeApp
}

func closeActiveApp() {
	activeMu.Lock()
	a := activeApp
	activeApp = nil
	activeMu.Unlock()

	if a == nil {
		return
	}
	if err := a.Close(); err != nil {
		logger.Debug("failed to close application", "error", err)
	}
}
