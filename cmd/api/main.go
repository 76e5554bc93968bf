package main

import (
	"context"
	"movie_browser/api"
	"movie_browser/api/middleware"
	"movie_browser/configs"
	"movie_browser/db/mongodb"
	"movie_browser/db/redis"
	"movie_browser/internal/handler"
	"movie_browser/internal/repository"
	"movie_browser/internal/service"
	"movie_browser/pkg/federated"
	"movie_browser/pkg/logger"
	"movie_browser/pkg/mailer"
	"movie_browser/pkg/omdb"
	"movie_browser/pkg/tmdb"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

func main() {
	configs.LoadEnvVariables()
	logger.Init(configs.GetConfigs().LogLevel, configs.GetConfigs().LogPretty)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              configs.GetConfigs().SentryDns,
		Release:          configs.GetConfigs().SentryRelease,
		TracesSampleRate: 1,
		EnableTracing:    true,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	if configs.GetConfigs().JwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	go redis.ConnectRedis()
	defer redis.CloseRedis()

	mongoDB, err := mongodb.NewDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize mongodb database connection")
	}
	defer mongoDB.Close()

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err = mongoDB.EnsureIndexes(indexCtx); err != nil {
		log.Error().Err(err).Msg("could not create mongodb indexes")
	}
	cancel()
	go configs.LoadDbConfigs(mongoDB.GetDB())

	omdbClient := omdb.NewClient(configs.GetConfigs().OmdbApiKey, omdb.WithBaseURL(configs.GetConfigs().OmdbApiUrl))
	var tmdbSource service.TmdbSource
	if configs.GetConfigs().TmdbApiKey != "" {
		tmdbSource = tmdb.NewClient(configs.GetConfigs().TmdbApiKey, tmdb.WithBaseURL(configs.GetConfigs().TmdbApiUrl))
	}

	var mailSender mailer.Mailer = mailer.LogMailer{}
	if url := configs.GetConfigs().RabbitmqUrl; url != "" {
		amqpMailer, err := mailer.NewAmqpMailer(url)
		if err != nil {
			log.Error().Err(err).Msg("could not connect to rabbitmq, reset mails will only be logged")
		} else {
			mailSender = amqpMailer
		}
	}
	defer mailSender.Close()

	verifier, err := federated.NewVerifier(
		context.Background(),
		configs.GetConfigs().FederatedProvider,
		configs.GetConfigs().GoogleClientId,
		configs.GetConfigs().FirebaseCredentialsFile,
	)
	if err != nil {
		log.Warn().Err(err).Msg("federated login is disabled")
	}

	photoStore := service.NewPhotoStore(
		configs.GetConfigs().UploadDir,
		configs.GetConfigs().ServerAddress,
		configs.GetConfigs().DefaultPhotoUrl,
	)
	blacklist := service.NewRedisTokenBlacklist()

	movieRep := repository.NewMovieRepository(mongoDB.GetDB())
	movieSvc := service.NewMovieService(movieRep, omdbClient, tmdbSource, service.RecentMoviesOptionsFromConfigs())
	movieHandler := handler.NewMovieHandler(movieSvc)

	userRep := repository.NewUserRepository(mongoDB.GetDB())
	authSvc := service.NewAuthService(userRep, blacklist, mailSender, verifier, photoStore)
	authHandler := handler.NewAuthHandler(authSvc)

	profileSvc := service.NewProfileService(userRep, photoStore)
	profileHandler := handler.NewProfileHandler(profileSvc)

	api.InitRouter(api.Handlers{
		Movie:          movieHandler,
		Auth:           authHandler,
		Profile:        profileHandler,
		AuthMiddleware: middleware.NewAuthMiddleware(blacklist),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = api.Shutdown(ctx)
	}()

	if err = api.Start("0.0.0.0:" + configs.GetConfigs().Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
