package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"img2pdf-backend/internal/config"
	"img2pdf-backend/internal/domains/conversion/job"
	"img2pdf-backend/internal/shared"
	"img2pdf-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	return s.registerCleanupStaleConversionsJob()
}

// ================================================
// JOB: Cleanup Stale Conversions (cron theo config, mặc định 3 AM)
// ================================================
func (s *Scheduler) registerCleanupStaleConversionsJob() error {
	payload, err := json.Marshal(job.CleanupStaleConversionsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupStaleConversions, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.CleanupCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupStaleConversions job", err)
		return err
	}

	logger.Info("✓ Registered CleanupStaleConversions", map[string]interface{}{
		"cron": s.jobConfig.CleanupCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
