package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/jeffersongondran/luxconnect-scheduler/internal/config"
	domain "github.com/jeffersongondran/luxconnect-scheduler/internal/domain/scheduling"
)

const (
	TypeReconcileIndex = "index:reconcile"
	TypeSweepHolds     = "index:sweep"
)

// Janela da reconciliação: mesma do rebuild de boot.
const (
	reconcileLookback = 24 * time.Hour
	reconcileHorizon  = 90 * 24 * time.Hour
)

// Worker roda as tarefas de manutenção do índice de disponibilidade:
// reconciliação contra o store e varredura de holds expirados.
type Worker struct {
	cfg *config.Config
	log *zap.Logger

	directory domain.Directory
	store     domain.AppointmentStore
	index     *domain.Index
	calendar  *domain.SlotCalendar
	clock     domain.Clock

	server    *asynq.Server
	scheduler *asynq.Scheduler
}

func New(
	cfg *config.Config,
	log *zap.Logger,
	directory domain.Directory,
	store domain.AppointmentStore,
	index *domain.Index,
	calendar *domain.SlotCalendar,
	clock domain.Clock,
) *Worker {
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	server := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpts, nil)

	return &Worker{
		cfg:       cfg,
		log:       log,
		directory: directory,
		store:     store,
		index:     index,
		calendar:  calendar,
		clock:     clock,
		server:    server,
		scheduler: scheduler,
	}
}

// Start registra as tarefas periódicas e sobe servidor e scheduler em
// background. Falha de boot derruba o processo: o índice sem
// manutenção degrada silenciosamente.
func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReconcileIndex, w.handleReconcile)
	mux.HandleFunc(TypeSweepHolds, w.handleSweep)

	if _, err := w.scheduler.Register(
		w.cfg.ReconcileEvery,
		asynq.NewTask(TypeReconcileIndex, nil),
	); err != nil {
		return err
	}

	if _, err := w.scheduler.Register(
		w.cfg.SweepEvery,
		asynq.NewTask(TypeSweepHolds, nil),
	); err != nil {
		return err
	}

	go func() {
		if err := w.server.Run(mux); err != nil {
			w.log.Fatal("worker: servidor asynq parou", zap.Error(err))
		}
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Fatal("worker: scheduler asynq parou", zap.Error(err))
		}
	}()

	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

// --------------------------------------------------
// Reconciliação: store é a verdade, o índice converge
// --------------------------------------------------

func (w *Worker) handleReconcile(ctx context.Context, _ *asynq.Task) error {
	salons, err := w.directory.ListActiveSalons(ctx)
	if err != nil {
		w.log.Error("reconcile: falha ao listar salões", zap.Error(err))
		return err
	}

	now := w.clock.Now()
	from := now.Add(-reconcileLookback)
	to := now.Add(reconcileHorizon)

	var totalDrift int
	for i := range salons {
		salon := &salons[i]

		appointments, err := w.store.ListBySalon(ctx, salon.ID, from, to)
		if err != nil {
			w.log.Error("reconcile: falha ao listar agendamentos",
				zap.String("salon_id", salon.ID), zap.Error(err))
			continue
		}

		drift := w.index.ReconcileSalon(salon, appointments, w.calendar.SlotStep(salon))
		if drift > 0 {
			w.log.Warn("reconcile: índice divergente do store",
				zap.String("salon_id", salon.ID),
				zap.Int("slots_corrigidos", drift))
		}
		totalDrift += drift
	}

	w.log.Info("reconcile: ciclo concluído",
		zap.Int("saloes", len(salons)),
		zap.Int("drift_total", totalDrift))
	return nil
}

// --------------------------------------------------
// Varredura de holds expirados
// --------------------------------------------------

func (w *Worker) handleSweep(_ context.Context, _ *asynq.Task) error {
	removed := w.index.SweepExpired()
	if removed > 0 {
		w.log.Info("sweep: holds expirados removidos", zap.Int("holds", removed))
	}
	return nil
}
