package model

// OutboxEvent buffers a domain event inside the same transaction as the
// state change that produced it. A cron worker drains unprocessed rows to
// the events exchange.
type OutboxEvent struct {
	Id        int    `gorm:"primaryKey;autoIncrement"`
	EventId   string `gorm:"uniqueIndex"`
	EventType string `gorm:"index"`
	Payload   []byte
	Processed bool `gorm:"index"`
	Retry     int
	CreatedAt int64
}
