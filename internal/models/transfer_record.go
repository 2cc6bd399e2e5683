package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus values. Only TransferStatusCompleted is ever written today;
// the other two are reserved by the schema.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusFailed    = "failed"
)

// TransferRecord is the immutable ledger entry written for a completed transfer.
type TransferRecord struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	ReferenceToken string          `gorm:"type:uuid;uniqueIndex;not null" json:"transaction_reference"`
	SenderID       uint            `gorm:"not null;index;index:idx_transfer_sender_created,priority:1" json:"sender_id"`
	ReceiverID     uint            `gorm:"not null;index;index:idx_transfer_receiver_created,priority:1" json:"receiver_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CommissionFee  decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"commission_fee"`
	Status         string          `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time       `gorm:"index;index:idx_transfer_sender_created,priority:2;index:idx_transfer_receiver_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Sender   *Account `gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT" json:"-"`
	Receiver *Account `gorm:"foreignKey:ReceiverID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TotalDebit is what the sender paid for this transfer.
func (t *TransferRecord) TotalDebit() decimal.Decimal {
	return t.Amount.Add(t.CommissionFee)
}
