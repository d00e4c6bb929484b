package model

// CompositeProof is the single current aggregated score for a holder. A new
// successful aggregation overwrites the previous row; proofs are not
// versioned. Revealed only ever flips false -> true.
type CompositeProof struct {
	Id         int    `gorm:"primaryKey;autoIncrement"`
	HolderId   string `gorm:"uniqueIndex;not null"`
	Score      []byte `gorm:"not null"`
	Revealed   bool
	ComputedAt int64
}
