package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tourbook/tourbook/internal/application/payment/usecases"
	"github.com/tourbook/tourbook/internal/infrastructure/cardgateway"
	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/infrastructure/database"
	"github.com/tourbook/tourbook/internal/infrastructure/repository"
	"github.com/tourbook/tourbook/internal/infrastructure/scheduler"
	"github.com/tourbook/tourbook/internal/shared/biztime"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

func main() {
	// Parse environment from command line or env variable
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger().Named("worker")
	log.Infow("starting authorization release worker", "environment", env)

	if err := biztime.Init(cfg.Timezone); err != nil {
		log.Fatalw("failed to initialize business timezone", "error", err)
	}

	db, err := database.Init(cfg.Database, log.Named("database"))
	if err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	gateway, err := cardgateway.NewClient(cfg.Gateway, log.Named("cardgateway"))
	if err != nil {
		log.Fatalw("failed to create gateway client", "error", err)
	}

	releaseUC, err := usecases.NewReleaseStaleAuthorizationsUseCase(
		repository.NewReservationRepository(db),
		gateway,
		cfg.Scheduler.HoldWindow,
		cfg.Scheduler.BatchSize,
		log,
	)
	if err != nil {
		log.Fatalw("failed to create release use case", "error", err)
	}

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Fatalw("failed to create scheduler", "error", err)
	}
	if err := manager.RegisterReleaseJob(releaseUC, cfg.Scheduler.ReleaseInterval); err != nil {
		log.Fatalw("failed to register release job", "error", err)
	}
	manager.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	if err := manager.Stop(); err != nil {
		log.Errorw("scheduler did not stop cleanly", "error", err)
	}
	log.Infow("authorization release worker stopped")
}
