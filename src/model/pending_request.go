package model

type RequestKind string

const (
	RequestKindAggregate RequestKind = "AGGREGATE"
	RequestKindReveal    RequestKind = "REVEAL"
)

// PendingRequest correlates an in-flight decryption request with the holder
// who issued it. It is the single source of truth for "whose callback is
// this". Consumed (deleted) exactly once when the matching callback is
// accepted. Nothing deduplicates overlapping requests for the same holder
// and kind; two live requests resolve last-callback-wins on the proof row.
type PendingRequest struct {
	RequestId string      `gorm:"primaryKey"`
	HolderId  string      `gorm:"index;not null"`
	Kind      RequestKind `gorm:"not null"`
	CreatedAt int64
}
