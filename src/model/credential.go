package model

// Credential is one encrypted credential appended to a holder's sequence.
// Rows are append-only: no update or delete path exists anywhere in the
// service. Seq is assigned at insertion as the holder's current count, so it
// is unique and monotonically increasing within a holder.
type Credential struct {
	Id       int    `gorm:"primaryKey;autoIncrement"`
	HolderId string `gorm:"index:idx_holder_seq,unique;not null"`
	Seq      int    `gorm:"index:idx_holder_seq,unique"`
	// Issuer is caller-asserted attribution, not an authorization boundary.
	Issuer        string `gorm:"not null"`
	EncType       []byte `gorm:"not null"`
	EncAttributes []byte `gorm:"not null"`
	EncExpiry     []byte `gorm:"not null"`
	CreatedAt     int64  // ledger time, unix seconds UTC
}
