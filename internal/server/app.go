// Package server initializes and runs the main application server.
// It wires the storage backend, the completion client, and the HTTP
// surface, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/confidant/internal/logging"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
	"github.com/dmitrijs2005/confidant/internal/server/config"
	"github.com/dmitrijs2005/confidant/internal/server/httpapi"
	"github.com/dmitrijs2005/confidant/internal/server/llm"
	"github.com/dmitrijs2005/confidant/internal/server/sessions"
	"github.com/dmitrijs2005/confidant/internal/server/users"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	server     *httpapi.Server
	closeStore func() error
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	var repo users.Repository
	var closeStore func() error

	switch c.StorageBackend {
	case "bolt":
		b, err := users.NewBoltRepository(c.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("store init error: %w", err)
		}
		repo = b
		closeStore = b.Close
	default:
		repo = users.NewJSONFileRepository(c.UsersFile)
	}

	var completer llm.Completer
	if c.UseMockLLM {
		logger.Info(context.Background(), "Using mock completer")
		completer = llm.NewMock()
	} else {
		completer = llm.NewAnthropic(c.APIKey, c.BaseURL, c.Model, c.CompletionTimeout)
	}
	completer = llm.NewFailSoft(completer, logger)

	us := users.NewService(repo, logger)
	cs := chat.NewService(completer, logger)
	ss := sessions.NewStore()

	srv := httpapi.NewServer(c, logger, us, cs, ss)

	return &App{config: c, logger: logger, server: srv, closeStore: closeStore}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.closeStore != nil {
		if err := app.closeStore(); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}
}
