package background

import (
	"context"
	"log"
	"sync"
	"time"

	"rentfolio/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring background jobs
type JobScheduler struct {
	scheduler      gocron.Scheduler
	paymentService services.PaymentService
	authService    services.AuthService
	overdueEvery   time.Duration
	cleanupEvery   time.Duration
	jobs           map[string]gocron.Job
	mu             sync.RWMutex
}

// NewJobScheduler creates a scheduler with the overdue-payment sweep and the
// token cleanup registered.
func NewJobScheduler(paymentService services.PaymentService, authService services.AuthService, overdueEvery, cleanupEvery time.Duration) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	if overdueEvery <= 0 {
		overdueEvery = time.Hour
	}
	if cleanupEvery <= 0 {
		cleanupEvery = 24 * time.Hour
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		paymentService: paymentService,
		authService:    authService,
		overdueEvery:   overdueEvery,
		cleanupEvery:   cleanupEvery,
		jobs:           make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.overdueEvery),
		gocron.NewTask(js.sweepOverduePayments, context.Background()),
		gocron.WithName("overdue-payment-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue payment job: %v", err)
	} else {
		js.jobs["overdue-payments"] = overdueJob
	}

	cleanupJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cleanupEvery),
		gocron.NewTask(js.cleanupExpiredTokens, context.Background()),
		gocron.WithName("token-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create token cleanup job: %v", err)
	} else {
		js.jobs["token-cleanup"] = cleanupJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// sweepOverduePayments flips pending payments past their due date to overdue
func (js *JobScheduler) sweepOverduePayments(ctx context.Context) error {
	rows, err := js.paymentService.MarkOverduePayments(ctx)
	if err != nil {
		log.Printf("Overdue payment sweep failed: %v", err)
		return err
	}
	if rows > 0 {
		log.Printf("Overdue payment sweep marked %d payments", rows)
	}
	return nil
}

// cleanupExpiredTokens sweeps refresh tokens past their payload expiry
func (js *JobScheduler) cleanupExpiredTokens(ctx context.Context) error {
	if err := js.authService.CleanupExpiredTokens(ctx); err != nil {
		log.Printf("Token cleanup failed: %v", err)
		return err
	}
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
