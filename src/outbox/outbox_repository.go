package outbox

import (
	"credential-ledger/pkg/utilities"
	"credential-ledger/src/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxRetries = 5

type OutboxRepository interface {
	NewEvent(eventType string, payload utilities.Serializable, now int64) (uuid.UUID, error)
	GetUnprocessedEvents() ([]model.OutboxEvent, error)
	MarkEventAsProcessed(eventId uuid.UUID) error
	UpdateRetryValue(event model.OutboxEvent) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// NewEvent buffers a domain event; callers invoke it inside the transaction
// that produced the event, so either both commit or neither does.
func (or *outboxRepository) NewEvent(eventType string, payload utilities.Serializable, now int64) (uuid.UUID, error) {
	eventId, err := uuid.NewRandom()
	if err != nil {
		return eventId, err
	}

	body, err := payload.Serialize()
	if err != nil {
		return eventId, err
	}

	result := or.db.Create(&model.OutboxEvent{
		EventId:   eventId.String(),
		EventType: eventType,
		Payload:   body,
		Processed: false,
		Retry:     0,
		CreatedAt: now,
	})

	return eventId, result.Error
}

func (or *outboxRepository) GetUnprocessedEvents() ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	result := or.db.Where("processed = ?", false).Order("id asc").Find(&events)
	return events, result.Error
}

func (or *outboxRepository) MarkEventAsProcessed(eventId uuid.UUID) error {
	return or.db.Model(&model.OutboxEvent{}).
		Where("event_id = ?", eventId.String()).
		Update("processed", true).Error
}

func (or *outboxRepository) UpdateRetryValue(event model.OutboxEvent) error {
	if event.Retry+1 >= maxRetries {
		// Poisoned events stop blocking the queue; operators inspect them
		// by the processed flag plus retry count.
		return or.db.Model(&model.OutboxEvent{}).
			Where("event_id = ?", event.EventId).
			Updates(map[string]interface{}{"retry": event.Retry + 1, "processed": true}).Error
	}

	return or.db.Model(&model.OutboxEvent{}).
		Where("event_id = ?", event.EventId).
		Update("retry", event.Retry+1).Error
}
