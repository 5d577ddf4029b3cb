// @title           Task Tracker API
// @version         1.0
// @description     Multi-user task tracking with assignments and comments.
// @host            localhost:5000
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"task-tracker/auth"
	"task-tracker/config"
	"task-tracker/db"
	_ "task-tracker/docs"
	"task-tracker/events"
	"task-tracker/handlers"
	"task-tracker/middlewares"
	"task-tracker/repository"
	"task-tracker/uploads"
	"task-tracker/utils"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, loadedEnv, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)
	if !loadedEnv {
		log.Debug().Msg("no .env file, using process environment")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	deps := handlers.Deps{
		Tasks:    repository.NewTaskRepository(pool),
		Users:    repository.NewUserRepository(pool),
		Comments: repository.NewCommentRepository(pool),
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Log:      log,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		deps.Sessions = auth.NewRedisSessions(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("sessions stored in redis")
	} else {
		deps.Sessions = auth.NoSessions{}
		log.Warn().Msg("REDIS_ADDR not set; logout will not revoke tokens")
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer pub.Close()
		deps.Events = pub
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing task events")
	}

	if cfg.SMTP.Enabled() {
		deps.Mailer = utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)
	}

	local := uploads.NewLocal(cfg.UploadDir, "/uploads")
	if cfg.Cloudinary.Enabled() {
		cld, err := uploads.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, "tasks")
		if err != nil {
			return err
		}
		deps.Images = cld
	} else {
		deps.Images = local
	}

	h := handlers.New(deps)
	r := handlers.NewRouter(h, middlewares.RequireAuth(deps.Tokens, deps.Sessions, log))
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", local.FileServer()))

	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	var handler http.Handler = r
	handler = limiter.Middleware(handler)
	handler = middlewares.Logger(log)(handler)
	handler = cors(handler)
	handler = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(middlewares.RecoveryLogger{Log: log}),
		gorillahandlers.PrintRecoveryStack(true),
	)(handler)
	handler = middlewares.ClientAddr(cfg.TrustProxy)(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("cors", strings.Join(cfg.CORSOrigins, ",")).Msg("server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
