package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Hacknox/config"
	"Hacknox/controllers"
	"Hacknox/database"
	"Hacknox/metrics"
	"Hacknox/routes"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.MigrateTables(database.DB); err != nil {
		log.Fatal().Err(err).Msg("migrate tables")
	}
	if err := database.InitRedis(cfg); err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}

	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	services.Configure(services.Options{
		BaseURL:        cfg.BaseURL,
		InviteTTL:      cfg.InviteTTL,
		VerifyTTL:      cfg.VerifyTTL,
		SignedURLTTL:   cfg.SignedURLTTL,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	})
	controllers.ConfigureSession(cfg.CookieDomain, cfg.CookieSecure)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.InitStorage(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	if err := services.InitScanner(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("init archive scanner")
	}
	if err := services.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin account")
	}

	metrics.Register()
	services.Audit = services.NewAuditLogger(database.DB, cfg.AuditQueueSize)
	scheduler := services.NewAnnouncementScheduler(database.DB, cfg.SchedulerPeriod)
	scheduler.Start(ctx)

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Hackathon-Id"},
		AllowCredentials: true,
	}).Handler(routes.SetupRouter())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	scheduler.Stop()
	if err := services.Audit.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit queue drain")
	}
}
