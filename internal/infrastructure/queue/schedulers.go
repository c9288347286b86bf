package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"medinfo-backend/pkg/logger"
)

// Scheduler registers the recurring maintenance jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, password string, db int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

// RegisterMaintenanceJobs wires every cron job the worker runs.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerOrphanSweepJob()
}

// Orphan sweep (daily at 3 AM UTC). Deleting an entity removes its
// document even when the object delete fails, so the bucket slowly
// accumulates unreferenced objects; the sweep reconciles it against
// the document store during low traffic.
func (s *Scheduler) registerOrphanSweepJob() error {
	payload, err := json.Marshal(OrphanSweepPayload{Limit: 500})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeOrphanSweep, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *",
		task,
		asynq.Queue(QueueAssets),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register OrphanSweep job", err)
		return err
	}

	logger.Info("✓ Registered OrphanSweep: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
