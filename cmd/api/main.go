package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/audit"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/cache"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/config"
	dbpkg "github.com/jeffersongondran/luxconnect-scheduler/internal/db"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
	infraRepo "github.com/jeffersongondran/luxconnect-scheduler/internal/infra/repository"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/logger"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/routes"
	ucScheduling "github.com/jeffersongondran/luxconnect-scheduler/internal/usecase/scheduling"
	"github.com/jeffersongondran/luxconnect-scheduler/internal/worker"
)

func main() {

	// .env é opcional: em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.IsProduction())
	defer log.Sync()

	// ======================================================
	// INFRA
	// ======================================================
	gormDB := dbpkg.NewDB(cfg)
	mongoDB := dbpkg.NewMongo(cfg)
	redisClient := cache.NewRedis(cfg)

	salons := infraRepo.NewSalonMongoRepository(mongoDB)
	appointments := infraRepo.NewAppointmentMongoRepository(mongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := salons.EnsureIndexes(ctx); err != nil {
		log.Fatal("falha ao criar índices de salões", zap.Error(err))
	}
	if err := appointments.EnsureIndexes(ctx); err != nil {
		log.Fatal("falha ao criar índices de agendamentos", zap.Error(err))
	}
	cancel()

	// ======================================================
	// MOTOR DE AGENDAMENTO
	// ======================================================
	clock := domain.SystemClock()
	calendar := domain.NewSlotCalendar(clock)
	index := domain.NewIndex(clock, domain.DefaultHoldTTL)
	handles := domain.NewHandleRegistry()

	availability := cache.NewAvailability(redisClient)
	auditDispatcher := audit.NewDispatcher(audit.New(gormDB), log)

	// o índice vive só em memória: todo boot recomeça do store
	rebuild := ucScheduling.NewRebuildIndex(salons, appointments, index, calendar, clock)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := rebuild.Execute(ctx); err != nil {
			log.Fatal("falha ao reconstruir índice de disponibilidade", zap.Error(err))
		}
		cancel()
	}
	log.Info("índice de disponibilidade reconstruído")

	// ======================================================
	// WORKER (reconciliação + varredura de holds)
	// ======================================================
	w := worker.New(cfg, log, salons, appointments, index, calendar, clock)
	if err := w.Start(); err != nil {
		log.Fatal("falha ao iniciar worker", zap.Error(err))
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:  gormDB,
		Cfg: cfg,

		Salons:       salons,
		Appointments: appointments,

		Index:    index,
		Calendar: calendar,
		Clock:    clock,
		Handles:  handles,

		Availability: availability,
		Audit:        auditDispatcher,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info("servidor HTTP no ar", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("falha ao subir servidor", zap.Error(err))
		}
	}()

	// ======================================================
	// SHUTDOWN GRACIOSO
	// ======================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("desligando...")

	w.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown do servidor falhou", zap.Error(err))
	}

	log.Info("até logo")
}
