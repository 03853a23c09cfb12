// Package server initializes and runs the application server. It wires the
// persistence layer, the chat-address pool, the broadcaster and the core
// service together, restores the last durable snapshot and starts the TCP
// front, handling graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/server/addrpool"
	"github.com/dmitrijs2005/worthboard/internal/server/broadcast"
	"github.com/dmitrijs2005/worthboard/internal/server/chat"
	"github.com/dmitrijs2005/worthboard/internal/server/config"
	"github.com/dmitrijs2005/worthboard/internal/server/core"
	"github.com/dmitrijs2005/worthboard/internal/server/storage"
	"github.com/dmitrijs2005/worthboard/internal/server/tcp"
)

type App struct {
	config *config.Config
	logger logging.Logger
	core   *core.Service
}

func NewApp(cfg *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	pool, err := addrpool.New(cfg.ChatBaseAddress, cfg.ChatPoolSize)
	if err != nil {
		return nil, fmt.Errorf("chat address pool init error: %w", err)
	}

	notifier := chat.NewMulticastNotifier(cfg.ChatPort)
	bcast := broadcast.New(logger)
	svc := core.NewService(cfg, store, pool, bcast, notifier, logger)

	return &App{config: cfg, logger: logger, core: svc}, nil
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

func (app *App) startTCPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := tcp.NewServer(app.config.EndpointAddr, app.core, app.logger, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.core.Load(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startTCPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
