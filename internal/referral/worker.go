package referral

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

// CascadeWorker drains the cascade queue and applies each event. A cascade is
// retried as a whole; an event that keeps failing lands in the DLQ so the
// triggering transaction or distribution is never poisoned.
type CascadeWorker struct {
	Cascade     *Cascade
	RedisClient *events.RedisClient
}

func NewCascadeWorker(cascade *Cascade, redisClient *events.RedisClient) *CascadeWorker {
	return &CascadeWorker{Cascade: cascade, RedisClient: redisClient}
}

func (w *CascadeWorker) Start() {
	logger.Info("Starting cascade worker...")
	go w.processEvents()
}

func (w *CascadeWorker) processEvents() {
	for {
		result, err := w.RedisClient.Client.BLPop(context.Background(), 5*time.Second, events.CascadeQueue).Result()
		if err != nil {
			continue
		}

		eventData := []byte(result[1])
		var raw events.CascadeEvent
		if err := json.Unmarshal(eventData, &raw); err != nil {
			logger.Error("CascadeWorker: Failed to unmarshal event", logger.Fields{"error": err.Error(), "data": string(eventData)})
			w.moveToDLQ(eventData)
			continue
		}

		ev, err := toEvent(raw)
		if err != nil {
			logger.Error("CascadeWorker: Malformed event ids", logger.Fields{"error": err.Error(), "data": string(eventData)})
			w.moveToDLQ(eventData)
			continue
		}

		w.handleEvent(ev, eventData)
	}
}

func (w *CascadeWorker) handleEvent(ev Event, rawData []byte) {
	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err := w.Cascade.Apply(ev)
		if err == nil {
			logger.Info("CascadeWorker: Cascade applied", logger.Fields{
				"source_type": ev.SourceType,
				"source_id":   ev.SourceID.String(),
			})
			return
		}

		logger.Warn("CascadeWorker: Failed to apply cascade, retrying", logger.Fields{
			"source_type": ev.SourceType,
			"source_id":   ev.SourceID.String(),
			"attempt":     i + 1,
			"error":       err.Error(),
		})
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	logger.Error("CascadeWorker: Max retries exhausted, moving to DLQ", logger.Fields{"source_id": ev.SourceID.String()})
	w.moveToDLQ(rawData)
}

func (w *CascadeWorker) moveToDLQ(data []byte) {
	if err := w.RedisClient.PushToDLQ(context.Background(), data); err != nil {
		logger.Error("CascadeWorker: Failed to push to DLQ", logger.Fields{"error": err.Error()})
	}
}

func toEvent(raw events.CascadeEvent) (Event, error) {
	sourceID, err := uuid.Parse(raw.SourceID)
	if err != nil {
		return Event{}, err
	}
	userID, err := uuid.Parse(raw.UserID)
	if err != nil {
		return Event{}, err
	}
	return Event{
		SourceType:   raw.SourceType,
		SourceID:     sourceID,
		UserID:       userID,
		Amount:       raw.Amount,
		FirstDeposit: raw.FirstDeposit,
	}, nil
}
