package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/botwire/go-wa-gateway/auth"
	"github.com/botwire/go-wa-gateway/chatbots"
	"github.com/botwire/go-wa-gateway/credentials/filestore"
	"github.com/botwire/go-wa-gateway/flows"
	"github.com/botwire/go-wa-gateway/internal/config"
	"github.com/botwire/go-wa-gateway/profiles"
	"github.com/botwire/go-wa-gateway/server"
	"github.com/botwire/go-wa-gateway/session"
	"github.com/botwire/go-wa-gateway/transport/wsbridge"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server, restarting")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := newLogger(c)
	displayAppname(c.GetAppName())

	profileRepo := profiles.NewInMemoryRepo()
	flowRepo := flows.NewInMemoryRepo()
	chatbotRepo := chatbots.NewInMemoryRepo()

	manager, err := session.NewManager(
		session.Repos{
			Profiles: profileRepo,
			Flows:    flowRepo,
			Chatbots: chatbotRepo,
		},
		filestore.New(c.GetDataFolder()),
		wsbridge.NewDialer(c.GetBridgeURL(), logger),
		c,
		logger,
	)
	if err != nil {
		return errors.Wrap(err, "session.NewManager")
	}
	defer manager.Shutdown()

	authService, err := auth.NewService(profileRepo, c.GetJWTSecret())
	if err != nil {
		return errors.Wrap(err, "auth.NewService")
	}

	srv, err := server.New(c, manager, authService, profileRepo, flowRepo, logger)
	if err != nil {
		return errors.Wrap(err, "server.New")
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func newLogger(c config.Config) zerolog.Logger {
	if c.GetEnv() == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
