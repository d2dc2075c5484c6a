package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"meserte/config"
	"meserte/services/booking"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeBookingReconcile = "booking:reconcile"

// InitReconcileWorker runs the reconciliation sweep in the background: an
// asynq scheduler enqueues the sweep task on an interval and a worker runs it.
// The sweep force-completes overdue stays and expires stale unpaid holds.
func InitReconcileWorker(lifecycle booking.LifecycleService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingReconcile, handleReconcileTask(lifecycle))

	interval := config.AppConfig.SweepIntervalMin
	if interval <= 0 {
		interval = 10
	}
	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %dm", interval),
		asynq.NewTask(TypeBookingReconcile, nil),
	); err != nil {
		log.Printf("[ReconcileWorker] failed to register sweep schedule: %v", err)
	}

	// Start Redis health monitor
	go monitorRedisConnection()

	go func() {
		log.Println("[ReconcileWorker] starting sweep scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Printf("[ReconcileWorker] scheduler stopped: %v", err)
		}
	}()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReconcileWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReconcileWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReconcileWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReconcileTask(lifecycle booking.LifecycleService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		completed, expired, err := lifecycle.ReconcileExpired()
		if err != nil {
			log.Printf("[ReconcileHandler] sweep failed: %v", err)
			return err
		}
		if completed > 0 || expired > 0 {
			log.Printf("[ReconcileHandler] sweep done: %d force-completed, %d expired holds", completed, expired)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReconcileWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
