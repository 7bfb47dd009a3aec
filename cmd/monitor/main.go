package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"fxmonitor/internal/calendar"
	"fxmonitor/internal/collector"
	"fxmonitor/internal/config"
	cronrunner "fxmonitor/internal/cron"
	"fxmonitor/internal/db"
	"fxmonitor/internal/handler"
	"fxmonitor/internal/logger"
	"fxmonitor/internal/models"
	"fxmonitor/internal/monitor"
	"fxmonitor/internal/notify"
	"fxmonitor/internal/repository"
	gormrepository "fxmonitor/internal/repository/gorm"
	"fxmonitor/internal/sentiment"

	_ "fxmonitor/docs"
)

func main() {
	cfgPath := os.Getenv("FX_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("FX_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	calendarHTTP := &http.Client{Timeout: cfg.Calendar.Timeout}
	calendarClient := calendar.NewClient(calendarHTTP, cfg.Calendar.BaseURL)

	engine := sentiment.NewEngine(store, logger, cfg.Sentiment)
	breaker := collector.NewBreaker(cfg.Collector.BreakerThreshold, cfg.Collector.BreakerCooldown)
	coll := collector.New(store, calendarClient, breaker, engine, logger, cfg.Collector)
	discord := notify.NewDiscord(cfg.Notify, logger)
	mon := monitor.New(store, discord, breaker, logger, cfg.Monitoring, cfg.Sentiment.Threshold)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Breaker: breaker}
	healthHandler.Register(router)
	sentimentHandler := &handler.SentimentHandler{Repo: store, Engine: engine}
	sentimentHandler.Register(router)
	eventHandler := &handler.EventHandler{Repo: store}
	eventHandler.Register(router)
	monitoringHandler := &handler.MonitoringHandler{Repo: store, Monitor: mon, Collector: coll}
	monitoringHandler.Register(router)
	settingsHandler := &handler.SettingsHandler{Repo: store}
	settingsHandler.Register(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)

	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.Ingest, func(ctx context.Context) {
			if _, err := coll.Ingest(ctx); err != nil {
				logger.Warn("cron ingestion failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register ingestion failed", zap.Error(err))
		}

		// Run rejects overlapping triggers itself, so a slow pass just skips
		// the next tick.
		collectSpec := fmt.Sprintf("@every %dh", cfg.Collector.IntervalHours)
		_, err = cronRunner.Add(collectSpec, func(ctx context.Context) {
			if _, err := coll.Run(ctx); err != nil {
				logger.Warn("cron collection failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register collection failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.Analysis, func(ctx context.Context) {
			if err := engine.AnalyzeCurrentWeek(ctx); err != nil {
				logger.Warn("cron analysis failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register analysis failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.HealthCheck, func(ctx context.Context) {
			mon.CheckAndAlert(ctx)
		})
		if err != nil {
			logger.Warn("cron register health check failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.WeeklyReport, func(ctx context.Context) {
			if err := sendWeeklyReport(ctx, store, engine, discord); err != nil {
				logger.Warn("weekly report failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register weekly report failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// sendWeeklyReport covers the week that just closed: recompute both views,
// then post the forecast-view summary.
func sendWeeklyReport(ctx context.Context, store *gormrepository.Store, engine *sentiment.Engine, discord *notify.Discord) error {
	weekStart, weekEnd := sentiment.WeekBounds(time.Now().UTC().AddDate(0, 0, -7))
	for _, view := range []string{models.ViewForecast, models.ViewActual} {
		if _, err := engine.AnalyzeWeek(ctx, weekStart, weekEnd, view); err != nil {
			return err
		}
	}

	view := models.ViewForecast
	rows, err := store.ListCurrencySentiments(ctx, repository.ListSentimentsParams{
		View:        &view,
		PeriodStart: &weekStart,
	})
	if err != nil {
		return err
	}
	return discord.SendReport(ctx, notify.FormatWeeklyReport(rows, weekStart))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
