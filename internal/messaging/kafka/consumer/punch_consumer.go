package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/events"
	"github.com/Vishal6374/hr-harmony-sub000/internal/punch"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePunchCaptured feeds clock events published by biometric gateways
// into punch ingestion. Ingest deduplicates, so redelivery after a failed
// commit is harmless.
func ConsumePunchCaptured(
	ctx context.Context,
	reader *kafkago.Reader,
	punchService punch.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.punch_captured")
	log.Info("punch captured consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("punch captured consumer stopped")
				return
			}
			log.Error("fetch punch captured message failed", zap.Error(err))
			continue
		}

		var event events.PunchCapturedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode punch_captured event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		sourceType := event.SourceType
		if sourceType == "" {
			sourceType = punch.SourceBiometric
		}
		res, err := punchService.Ingest(ctx, punch.IngestPunchesRequest{
			SourceType: sourceType,
			DeviceAddr: event.DeviceAddr,
			Punches: []punch.PunchInput{{
				DeviceUserID: event.DeviceUserID,
				PunchedAt:    event.PunchedAt.Format(time.RFC3339),
				Direction:    event.Direction,
			}},
		})
		if err != nil {
			log.Error("ingest punch from event failed",
				zap.String("device_user_id", event.DeviceUserID),
				zap.String("device_addr", event.DeviceAddr),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit punch captured message failed", zap.Error(err))
			continue
		}

		log.Debug("punch ingested from event",
			zap.String("device_user_id", event.DeviceUserID),
			zap.Int("inserted", res.Inserted),
			zap.Int("skipped", res.Skipped),
		)
	}
}
