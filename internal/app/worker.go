package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka/producer"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker ships outbox events to Kafka and runs the nightly attendance
// maintenance loop (punch resolution, stale check-out demotion, absence
// sweep) until interrupted.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	reg, err := buildRegistry(sqlDB, gormDB)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.WorkRules.Init(ctx); err != nil {
		return err
	}

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runAttendanceMaintenance(ctx, reg.Attendance, maintenanceInterval(), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func maintenanceInterval() time.Duration {
	if v := os.Getenv("MAINTENANCE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 15 * time.Minute
}

// runAttendanceMaintenance periodically resolves buffered punches for today
// and yesterday, demotes stale open records, and sweeps yesterday's
// no-shows into ABSENT rows. Every step is idempotent, so overlapping runs
// across worker restarts are harmless.
func runAttendanceMaintenance(ctx context.Context, svc attendance.Service, interval time.Duration, logger *zap.Logger) {
	log := logger.Named("attendance.maintenance")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("attendance maintenance started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("attendance maintenance stopped")
			return
		case <-ticker.C:
			now := time.Now()
			yesterday := now.AddDate(0, 0, -1)

			for _, date := range []time.Time{yesterday, now} {
				res, err := svc.ResolvePunches(ctx, date)
				if err != nil {
					log.Error("resolve punches failed", zap.String("date", date.Format("2006-01-02")), zap.Error(err))
					continue
				}
				if res.Resolved > 0 || res.Failed > 0 {
					log.Info("resolved punches",
						zap.String("date", res.Date),
						zap.Int("resolved", res.Resolved),
						zap.Int("failed", res.Failed))
				}
			}

			demoted, err := svc.CorrectMissingCheckouts(ctx, now)
			if err != nil {
				log.Error("correct missing checkouts failed", zap.Error(err))
			} else if demoted > 0 {
				log.Info("demoted records without check-out", zap.Int("count", demoted))
			}

			swept, err := svc.SweepAbsences(ctx, yesterday)
			if err != nil {
				log.Error("sweep absences failed", zap.String("date", yesterday.Format("2006-01-02")), zap.Error(err))
			} else if swept.Absent > 0 || swept.OnLeave > 0 {
				log.Info("swept absences",
					zap.String("date", swept.Date),
					zap.Int("absent", swept.Absent),
					zap.Int("on_leave", swept.OnLeave),
					zap.Int("skipped", swept.Skipped))
			}
		}
	}
}
