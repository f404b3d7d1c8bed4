package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-quiz-room/internal/app"
	"ai-quiz-room/internal/config"
	"ai-quiz-room/internal/infra/memory"
	pgloader "ai-quiz-room/internal/infra/postgres"
	redisbank "ai-quiz-room/internal/infra/redis"
	transport "ai-quiz-room/internal/transport/http"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(memory.DefaultQuestionPool())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisbank.NewQuestionBank(redisClient, loader, questionTTL)
	} else {
		bank = memory.NewQuestionBank(loader, questionTTL)
	}

	service := app.NewRoomService(bank, durationsFromConfig(cfg), cfg.Questions.PerCycle)
	defer service.Stop()

	tokens, err := transport.NewTokenManager()
	if err != nil {
		return err
	}
	handler := transport.NewHandler(service, tokens)
	wsHandler := transport.NewWSHandler(service)

	router := mux.NewRouter()
	handler.RegisterRoutes(router, wsHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// The room opens for registration as soon as the process is up.
	service.StartRegistration()

	go func() {
		log.Printf("starting quiz room on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// durationsFromConfig fills defaults for any stage the config leaves at zero.
func durationsFromConfig(cfg config.Config) app.Durations {
	d := app.DefaultDurations()
	if cfg.Stages.Registration > 0 {
		d.Registration = cfg.Stages.Registration
	}
	if cfg.Stages.AutoRegistration > 0 {
		d.AutoRegistration = cfg.Stages.AutoRegistration
	}
	if cfg.Stages.Preparation > 0 {
		d.Preparation = cfg.Stages.Preparation
	}
	if cfg.Stages.Quiz > 0 {
		d.Quiz = cfg.Stages.Quiz
	}
	if cfg.Stages.Pause > 0 {
		d.Pause = cfg.Stages.Pause
	}
	if cfg.Stages.Results > 0 {
		d.Results = cfg.Stages.Results
	}
	if cfg.Stages.Waiting > 0 {
		d.Waiting = cfg.Stages.Waiting
	}
	return d
}
