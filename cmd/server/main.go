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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imshq/go-ims-server/auth"
	"github.com/imshq/go-ims-server/internal/config"
	"github.com/imshq/go-ims-server/internal/metrics"
	organisationsrepo "github.com/imshq/go-ims-server/organisations/mongorepo"
	policiesrepo "github.com/imshq/go-ims-server/policies/mongorepo"
	"github.com/imshq/go-ims-server/server"
	"github.com/imshq/go-ims-server/token"
	usersrepo "github.com/imshq/go-ims-server/users/mongorepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	initLogging(cfg)
	displayAppname(cfg.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.GetMongoURI()))
	if err != nil {
		return errors.Wrap(err, "mongo.Connect")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := client.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "mongo.Ping")
	}
	db := client.Database(cfg.GetMongoDatabase())

	codec := token.NewCodec()
	authService, err := auth.NewService(auth.Repos{
		Users:         usersrepo.New(db),
		Organisations: organisationsrepo.New(db),
		Policies:      policiesrepo.New(db),
	}, codec, cfg, auth.NewLogNotifier())
	if err != nil {
		return errors.Wrap(err, "auth.NewService")
	}

	metrics.Init()

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: server.New(cfg, authService, codec)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func initLogging(cfg config.Config) {
	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
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

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
