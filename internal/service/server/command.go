package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/timursak/alarm-clock/internal/api/http/alarmclock"
	"github.com/timursak/alarm-clock/internal/config"
	"github.com/timursak/alarm-clock/internal/logger"
	repository "github.com/timursak/alarm-clock/internal/repository/alarms"
	"github.com/timursak/alarm-clock/internal/scheduler/local"
	"github.com/timursak/alarm-clock/internal/service/engine"
	"github.com/timursak/alarm-clock/internal/service/ringer"
	"github.com/timursak/alarm-clock/internal/sideeffect"
)

// Options controls the alarm-clock-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP server.
	ListenAddress string
	// StoreFile specifies an optional override for the alarm collection path.
	StoreFile string
}

// shutdownTimeout bounds the graceful drain of in-flight HTTP requests.
const shutdownTimeout = 10 * time.Second

// Run starts the alarm server and blocks until the context is canceled or the
// server stops. Loads configuration first, then wires persistence, the local
// notification scheduler and the HTTP API.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock-server")

	// Load configuration first to get server settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Command line options override paths from config.
	if opts.StoreFile != "" {
		settings.StoreFile = opts.StoreFile
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	// Initialize the alarm repository for persistence.
	repo, closeRepo, err := newRepository(settings)
	if err != nil {
		return fmt.Errorf("initialise repository: %w", err)
	}
	defer closeRepo()

	// The local scheduler owns the delivery timers.
	sched := local.New()
	defer sched.Close()

	rng := ringer.NewService(sched, sideeffect.LogHaptics{}, newPayer(ctx, settings), ringer.Options{
		SnoozeDelay:    settings.SnoozeDelay,
		Channel:        settings.Channel,
		DefaultSound:   settings.DefaultSound,
		PaymentAddress: settings.PaymentAddress,
		PaymentAmount:  settings.PaymentAmount,
	})

	eng := engine.NewService(repo, sched, rng, engine.Options{
		Channel:      settings.Channel,
		DefaultSound: settings.DefaultSound,
	})

	// Schedule every enabled alarm before accepting traffic, so deliveries
	// survive a restart.
	if err = eng.Rearm(ctx); err != nil {
		return fmt.Errorf("rearm alarms: %w", err)
	}

	// Drain scheduler fires into the engine until the scheduler closes.
	go func() {
		for ev := range sched.Fires() {
			eng.HandleFire(ctx, ev)
		}
	}()

	router := alarmclock.NewRouter(alarmclock.NewHandler(eng, rng))

	srv := &http.Server{
		Addr:    listenAddress,
		Handler: router,
	}

	logger.InfoKV(ctx, "Alarm server listening",
		"listen_address", listenAddress,
		"store_backend", settings.StoreBackend,
		"store_file", settings.StoreFile)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until in-flight requests drain before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WarnKV(ctx, "HTTP server shutdown", "error", shutdownErr)
		}

		close(done)
	}()

	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// newRepository selects the persistence backend from configuration.
// The returned closer releases backend resources and is safe to call once.
func newRepository(settings *config.Config) (repository.Repository, func(), error) {
	switch settings.StoreBackend {
	case config.BackendSQLite:
		repo, err := repository.NewSQLRepository(settings.DatabaseFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open database %s: %w", settings.DatabaseFile, err)
		}

		return repo, func() { _ = repo.Close() }, nil
	default:
		return repository.NewFileRepository(settings.StoreFile), func() {}, nil
	}
}

// newPayer returns the snooze payment sink. Without a payment address the
// side effect is disabled entirely.
func newPayer(ctx context.Context, settings *config.Config) sideeffect.Payer {
	if settings.PaymentAddress == "" {
		return sideeffect.NopPayer{}
	}

	logger.InfoKV(ctx, "Snooze payments enabled",
		"payment_address", settings.PaymentAddress,
		"payment_amount", settings.PaymentAmount)

	return sideeffect.DevPayer{}
}
