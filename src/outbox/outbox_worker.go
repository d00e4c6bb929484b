package outbox

import (
	"encoding/json"

	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/src/model"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

const outboxWorkerName = "OutboxCronWorker"

type envelope struct {
	EventId   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

func (e envelope) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

type OutboxWorker struct {
	publisher  rabbitmq.IRabbitmqPublisher
	repository OutboxRepository
	cron       *cron.Cron
}

func NewOutboxWorker(publisher rabbitmq.IRabbitmqPublisher, repository OutboxRepository) rabbitmq.WorkerService {
	return &OutboxWorker{
		publisher:  publisher,
		repository: repository,
		cron:       cron.New(),
	}
}

func (ow *OutboxWorker) GetServiceName() string {
	return outboxWorkerName
}

func (ow *OutboxWorker) StartService() {
	err := ow.cron.AddFunc("@every 10s", func() { ow.processOutboxEvents() })
	if err != nil {
		logger.Default().Errorf(err, "Could not add function to %s", outboxWorkerName)
	}

	ow.cron.Start()
}

func (ow *OutboxWorker) processOutboxEvents() {
	outboxLogger := logger.Default()

	events, err := ow.repository.GetUnprocessedEvents()
	if err != nil {
		outboxLogger.Error(err, "Could not read events from database")
		return
	}

	for _, e := range events {
		if err := ow.publishEvent(e); err != nil {
			outboxLogger.Errorf(err, "Can't publish event %s to queue", e.EventId)
			if err := ow.repository.UpdateRetryValue(e); err != nil {
				outboxLogger.Error(err, "Could not update retry counter")
			}
			continue
		}

		if err := ow.repository.MarkEventAsProcessed(uuid.MustParse(e.EventId)); err != nil {
			outboxLogger.Errorf(err, "Could not mark event %s as processed", e.EventId)
		}
	}
}

func (ow *OutboxWorker) publishEvent(e model.OutboxEvent) error {
	return ow.publisher.Publish(envelope{
		EventId:   e.EventId,
		EventType: e.EventType,
		Payload:   json.RawMessage(e.Payload),
	})
}
