package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-booking-server/internal/config"
	"github.com/jrsteele09/go-booking-server/providers"
	"github.com/jrsteele09/go-booking-server/server"
	"github.com/jrsteele09/go-booking-server/server/authflowrepo"
	"github.com/jrsteele09/go-booking-server/storage/mongostore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

// errStopped means the process received a stop signal.
var errStopped = errors.New("stopped")

func main() {
	for {
		err := run()
		if err == nil {
			break
		}
		log.Error().Err(err).Msg("Error running server, restarting")
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		// Configuration does not change between restarts.
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := mongostore.Connect(startupCtx, c.GetMongoURI())
	if err != nil {
		return fmt.Errorf("[run] %w", err)
	}
	defer disconnect(client)

	repos, err := mongostore.NewRepos(startupCtx, client.Database(c.GetMongoDatabase()))
	if err != nil {
		return fmt.Errorf("[run] %w", err)
	}

	registry, err := providers.FromConfig(startupCtx, c)
	if err != nil {
		return fmt.Errorf("[run] %w", err)
	}

	authState := authflowrepo.NewInMemoryRepo(c.GetAuthFlowTimeout())
	srv, err := server.New(c, server.Repos{
		Users:    repos.Users,
		Accounts: repos.Accounts,
		Bookings: repos.Bookings,
	}, registry, authState)
	if err != nil {
		return fmt.Errorf("[run] %w", err)
	}
	defer srv.Close()

	generatedPassword, err := srv.InitialiseSystem(startupCtx)
	if err != nil {
		return fmt.Errorf("[run] %w", err)
	}
	if generatedPassword != "" {
		log.Warn().Str("email", c.GetSystemAdminEmail()).Str("password", generatedPassword).Msg("Generated admin password, it will not be displayed again")
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepExpiredStates(sweepCtx, authState, c.GetAuthFlowTimeout())

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}

	return shutdown(httpServer)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return errStopped
}

// sweepExpiredStates drops abandoned OAuth flows so the store stays bounded.
func sweepExpiredStates(ctx context.Context, repo authflowrepo.Repo, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := repo.DeleteExpired(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("expired auth flow states removed")
			}
		}
	}
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Err(err).Msg("failed to disconnect from mongodb")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
